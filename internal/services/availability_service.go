package services

import (
	"context"
	"fmt"
	"time"

	"github.com/joshua-takyi/roam/internal/models"
)

// AvailabilityService answers every capacity question the booking flow and
// the calendar picker ask. It never writes; occupancy is derived fresh from
// the booking ledger on each call so cancellations free capacity with no
// separate release step.
type AvailabilityService struct {
	experiences models.ExperiencesRepo
	bookings    models.BookingsRepo

	// now is swappable in tests; past-date exclusion works at day granularity.
	now func() time.Time
}

func NewAvailabilityService(experiences models.ExperiencesRepo, bookings models.BookingsRepo) *AvailabilityService {
	return &AvailabilityService{
		experiences: experiences,
		bookings:    bookings,
		now:         time.Now,
	}
}

// SlotOccupancy returns the summed participants across pending and confirmed
// bookings for one slot. Zero when nothing is booked. Date and time are not
// validated here; callers pass values drawn from the experience's own
// schedule.
func (as *AvailabilityService) SlotOccupancy(ctx context.Context, experienceId, date, timeStr string) (int, error) {
	return as.bookings.SlotOccupancy(ctx, experienceId, date, timeStr)
}

// AvailableSpots reports the remaining capacity of a slot, clamped to zero.
// The admission decision never uses this clamped figure; see IsSlotAvailable.
func (as *AvailabilityService) AvailableSpots(ctx context.Context, experienceId, date, timeStr string) (int, error) {
	experience, err := as.experiences.GetExperienceByID(ctx, experienceId)
	if err != nil {
		return 0, err
	}

	occupied, err := as.bookings.SlotOccupancy(ctx, experienceId, date, timeStr)
	if err != nil {
		return 0, err
	}

	spots := experience.MaxAttendees - occupied
	if spots < 0 {
		spots = 0
	}
	return spots, nil
}

// IsSlotAvailable decides whether a request for n participants fits the
// slot. The comparison uses the raw, unclamped subtraction so an already
// oversubscribed slot denies every request.
func (as *AvailabilityService) IsSlotAvailable(ctx context.Context, experienceId, date, timeStr string, participants int) (bool, error) {
	if participants < 1 {
		return false, fmt.Errorf("participants must be >= 1: %w", models.ErrValidation)
	}

	experience, err := as.experiences.GetExperienceByID(ctx, experienceId)
	if err != nil {
		return false, err
	}

	occupied, err := as.bookings.SlotOccupancy(ctx, experienceId, date, timeStr)
	if err != nil {
		return false, err
	}

	return experience.MaxAttendees-occupied >= participants, nil
}

// FullyBookedTimes returns the subset of the declared times for a date whose
// occupancy has reached the experience capacity, in declared order. The
// calendar greys these out after the guest picks a date.
func (as *AvailabilityService) FullyBookedTimes(ctx context.Context, experienceId, date string) ([]string, error) {
	experience, err := as.experiences.GetExperienceByID(ctx, experienceId)
	if err != nil {
		return nil, err
	}

	declared := experience.Availability.TimesFor(date)
	if len(declared) == 0 {
		return []string{}, nil
	}

	occupancy, err := as.bookings.DateOccupancy(ctx, experienceId, date)
	if err != nil {
		return nil, err
	}

	full := []string{}
	for _, t := range declared {
		if occupancy[t] >= experience.MaxAttendees {
			full = append(full, t)
		}
	}
	return full, nil
}

// AvailableDates lists the scheduled dates a guest may still pick: any date
// on the schedule with a non-empty time list, excluding past dates. Per-time
// saturation is deliberately not considered at date granularity; it is only
// surfaced after the guest selects a date (two-step disclosure).
func (as *AvailabilityService) AvailableDates(ctx context.Context, experienceId string) ([]string, error) {
	experience, err := as.experiences.GetExperienceByID(ctx, experienceId)
	if err != nil {
		return nil, err
	}

	now := as.now()
	dates := []string{}
	for _, d := range experience.Availability.Dates() {
		if models.IsPastDate(d, now) {
			continue
		}
		dates = append(dates, d)
	}
	return dates, nil
}

// TimeSlotAvailability is the per-time picker row for one date.
type TimeSlotAvailability struct {
	Time      string `json:"time"`
	Occupied  int    `json:"occupied"`
	Remaining int    `json:"remaining"` // clamped, never negative
	Full      bool   `json:"full"`
}

// DayAvailability expands one date of the schedule into picker rows.
func (as *AvailabilityService) DayAvailability(ctx context.Context, experienceId, date string) ([]TimeSlotAvailability, error) {
	experience, err := as.experiences.GetExperienceByID(ctx, experienceId)
	if err != nil {
		return nil, err
	}

	declared := experience.Availability.TimesFor(date)
	if len(declared) == 0 {
		return []TimeSlotAvailability{}, nil
	}

	occupancy, err := as.bookings.DateOccupancy(ctx, experienceId, date)
	if err != nil {
		return nil, err
	}

	slots := make([]TimeSlotAvailability, 0, len(declared))
	for _, t := range declared {
		occupied := occupancy[t]
		remaining := experience.MaxAttendees - occupied
		if remaining < 0 {
			remaining = 0
		}
		slots = append(slots, TimeSlotAvailability{
			Time:      t,
			Occupied:  occupied,
			Remaining: remaining,
			Full:      occupied >= experience.MaxAttendees,
		})
	}
	return slots, nil
}
