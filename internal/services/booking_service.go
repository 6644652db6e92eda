package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/joshua-takyi/roam/internal/models"
)

// BookingService owns the only mutating path that must respect the capacity
// invariant, plus the status lifecycle around it.
type BookingService struct {
	experiences models.ExperiencesRepo
	bookings    models.BookingsRepo
	now         func() time.Time
}

func NewBookingService(experiences models.ExperiencesRepo, bookings models.BookingsRepo) *BookingService {
	return &BookingService{
		experiences: experiences,
		bookings:    bookings,
		now:         time.Now,
	}
}

// CreateBooking validates the draft, freezes the price, and hands the
// admission check plus insert to the ledger as one atomic step. On any
// failure no booking row exists.
func (bs *BookingService) CreateBooking(ctx context.Context, draft *models.Booking) (*models.Booking, error) {
	if err := draft.ValidateDraft(); err != nil {
		return nil, err
	}

	experience, err := bs.experiences.GetExperienceByID(ctx, draft.ExperienceID)
	if err != nil {
		return nil, err
	}

	// Outright size check, independent of current occupancy. A request this
	// large is bad input, not a full slot.
	if draft.Participants > experience.MaxAttendees {
		return nil, fmt.Errorf("participants exceed the group size of %d: %w",
			experience.MaxAttendees, models.ErrValidation)
	}

	if !experience.Availability.HasSlot(draft.Date, draft.Time) {
		return nil, fmt.Errorf("%s %s is not on the schedule: %w",
			draft.Date, draft.Time, models.ErrValidation)
	}
	if models.IsPastDate(draft.Date, bs.now()) {
		return nil, fmt.Errorf("cannot book a past date: %w", models.ErrValidation)
	}

	now := bs.now()
	if draft.ID == "" {
		draft.ID = uuid.NewString()
	}
	draft.ExperienceTitle = experience.Title
	draft.ExperienceImageURL = experience.ImageURL
	draft.HostID = experience.Host.ID
	draft.HostName = experience.Host.Name
	// Frozen at creation; later catalog price edits never touch it.
	draft.TotalPrice = experience.Price * float64(draft.Participants)
	draft.Status = models.BookingPending
	draft.HostResponse = ""
	draft.CreatedAt = now
	draft.UpdatedAt = now

	return bs.bookings.CreateBooking(ctx, draft, experience.MaxAttendees)
}

// UpdateBookingStatus applies one lifecycle transition on behalf of actorId.
// Hosts confirm, reject, or complete; either party may cancel. An optional
// host response is stored with confirm/reject but has no effect on capacity.
func (bs *BookingService) UpdateBookingStatus(ctx context.Context, bookingId string, next models.BookingStatus, hostResponse string, actorId string) (*models.Booking, error) {
	if !next.IsValid() {
		return nil, fmt.Errorf("unknown status %q: %w", next, models.ErrValidation)
	}
	if next == models.BookingPending {
		return nil, fmt.Errorf("bookings cannot return to pending: %w", models.ErrValidation)
	}

	booking, err := bs.bookings.GetBookingByID(ctx, bookingId)
	if err != nil {
		return nil, err
	}

	switch next {
	case models.BookingConfirmed, models.BookingRejected, models.BookingCompleted:
		if actorId != booking.HostID {
			return nil, fmt.Errorf("only the host may set %s: %w", next, models.ErrPermission)
		}
	case models.BookingCancelled:
		if actorId != booking.GuestID && actorId != booking.HostID {
			return nil, fmt.Errorf("only the guest or host may cancel: %w", models.ErrPermission)
		}
	}

	if !booking.Status.CanTransitionTo(next) {
		return nil, fmt.Errorf("cannot move a %s booking to %s: %w",
			booking.Status, next, models.ErrValidation)
	}

	if next == models.BookingCancelled || next == models.BookingCompleted {
		hostResponse = ""
	}

	return bs.bookings.UpdateBookingStatus(ctx, bookingId, booking.Status, next, hostResponse)
}

// CancelBooking is sugar for a cancelled transition.
func (bs *BookingService) CancelBooking(ctx context.Context, bookingId, actorId string) error {
	_, err := bs.UpdateBookingStatus(ctx, bookingId, models.BookingCancelled, "", actorId)
	return err
}

func (bs *BookingService) GetBooking(ctx context.Context, bookingId, requesterId string) (*models.Booking, error) {
	booking, err := bs.bookings.GetBookingByID(ctx, bookingId)
	if err != nil {
		return nil, err
	}
	if requesterId != booking.GuestID && requesterId != booking.HostID {
		return nil, fmt.Errorf("booking belongs to another guest: %w", models.ErrPermission)
	}
	return booking, nil
}

func (bs *BookingService) ListForGuest(ctx context.Context, guestId string) ([]*models.Booking, error) {
	return bs.bookings.ListBookingsByGuest(ctx, guestId)
}

func (bs *BookingService) ListForHost(ctx context.Context, hostId string) ([]*models.Booking, error) {
	return bs.bookings.ListBookingsByHost(ctx, hostId)
}
