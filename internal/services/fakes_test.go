package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/joshua-takyi/roam/internal/models"
)

// In-memory repo fakes. The booking fake guards the occupancy re-check and
// the insert with one mutex, mirroring the transactional store.

type fakeExperiencesRepo struct {
	mu          sync.Mutex
	experiences map[string]*models.Experience
}

func newFakeExperiencesRepo(experiences ...*models.Experience) *fakeExperiencesRepo {
	repo := &fakeExperiencesRepo{experiences: map[string]*models.Experience{}}
	for _, e := range experiences {
		repo.experiences[e.ID] = e
	}
	return repo
}

func (f *fakeExperiencesRepo) CreateExperience(ctx context.Context, experience *models.Experience) (*models.Experience, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.experiences[experience.ID] = experience
	return experience, nil
}

func (f *fakeExperiencesRepo) GetExperienceByID(ctx context.Context, id string) (*models.Experience, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.experiences[id]
	if !ok {
		return nil, fmt.Errorf("experience %s: %w", id, models.ErrNotFound)
	}
	copied := *e
	return &copied, nil
}

func (f *fakeExperiencesRepo) ListExperiences(ctx context.Context, offset, limit int) ([]*models.Experience, int, error) {
	return f.QueryExperiences(ctx, models.ExperienceFilter{}, offset, limit)
}

func (f *fakeExperiencesRepo) QueryExperiences(ctx context.Context, filter models.ExperienceFilter, offset, limit int) ([]*models.Experience, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := make([]string, 0, len(f.experiences))
	for id := range f.experiences {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	all := make([]*models.Experience, 0, len(ids))
	for _, id := range ids {
		all = append(all, f.experiences[id])
	}
	if offset >= len(all) {
		return []*models.Experience{}, len(all), nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], len(all), nil
}

func (f *fakeExperiencesRepo) ListExperiencesByHost(ctx context.Context, hostId string, offset, limit int) ([]*models.Experience, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	result := []*models.Experience{}
	for _, e := range f.experiences {
		if e.Host.ID == hostId {
			result = append(result, e)
		}
	}
	return result, len(result), nil
}

func (f *fakeExperiencesRepo) UpdateExperience(ctx context.Context, id string, updates map[string]interface{}) (*models.Experience, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.experiences[id]
	if !ok {
		return nil, fmt.Errorf("experience %s: %w", id, models.ErrNotFound)
	}
	// Only the fields the tests exercise.
	if raw, ok := updates["price"]; ok {
		if price, ok := raw.(float64); ok {
			e.Price = price
		}
	}
	if raw, ok := updates["availability"]; ok {
		if availability, ok := raw.(models.Availability); ok {
			e.Availability = availability
		}
	}
	copied := *e
	return &copied, nil
}

func (f *fakeExperiencesRepo) DeleteExperience(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.experiences[id]; !ok {
		return fmt.Errorf("experience %s: %w", id, models.ErrNotFound)
	}
	delete(f.experiences, id)
	return nil
}

type fakeBookingsRepo struct {
	mu       sync.Mutex
	bookings map[string]*models.Booking
}

func newFakeBookingsRepo() *fakeBookingsRepo {
	return &fakeBookingsRepo{bookings: map[string]*models.Booking{}}
}

func (f *fakeBookingsRepo) slotOccupancyLocked(experienceId, date, timeStr string) int {
	total := 0
	for _, b := range f.bookings {
		if b.ExperienceID == experienceId && b.Date == date && b.Time == timeStr && b.Status.IsCapacityHolding() {
			total += b.Participants
		}
	}
	return total
}

func (f *fakeBookingsRepo) CreateBooking(ctx context.Context, booking *models.Booking, maxAttendees int) (*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	occupied := f.slotOccupancyLocked(booking.ExperienceID, booking.Date, booking.Time)
	if maxAttendees-occupied < booking.Participants {
		return nil, fmt.Errorf("slot %s %s has %d of %d spots taken: %w",
			booking.Date, booking.Time, occupied, maxAttendees, models.ErrCapacityExceeded)
	}

	copied := *booking
	f.bookings[booking.ID] = &copied
	return booking, nil
}

func (f *fakeBookingsRepo) SlotOccupancy(ctx context.Context, experienceId, date, timeStr string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.slotOccupancyLocked(experienceId, date, timeStr), nil
}

func (f *fakeBookingsRepo) DateOccupancy(ctx context.Context, experienceId, date string) (map[string]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	occupancy := map[string]int{}
	for _, b := range f.bookings {
		if b.ExperienceID == experienceId && b.Date == date && b.Status.IsCapacityHolding() {
			occupancy[b.Time] += b.Participants
		}
	}
	return occupancy, nil
}

func (f *fakeBookingsRepo) ActiveParticipants(ctx context.Context, experienceId string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for _, b := range f.bookings {
		if b.ExperienceID == experienceId && b.Status.IsCapacityHolding() {
			total += b.Participants
		}
	}
	return total, nil
}

func (f *fakeBookingsRepo) GetBookingByID(ctx context.Context, id string) (*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok {
		return nil, fmt.Errorf("booking %s: %w", id, models.ErrNotFound)
	}
	copied := *b
	return &copied, nil
}

func (f *fakeBookingsRepo) ListBookingsByGuest(ctx context.Context, guestId string) ([]*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	result := []*models.Booking{}
	for _, b := range f.bookings {
		if b.GuestID == guestId {
			copied := *b
			result = append(result, &copied)
		}
	}
	return result, nil
}

func (f *fakeBookingsRepo) ListBookingsByHost(ctx context.Context, hostId string) ([]*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	result := []*models.Booking{}
	for _, b := range f.bookings {
		if b.HostID == hostId {
			copied := *b
			result = append(result, &copied)
		}
	}
	return result, nil
}

func (f *fakeBookingsRepo) UpdateBookingStatus(ctx context.Context, id string, from, to models.BookingStatus, hostResponse string) (*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok {
		return nil, fmt.Errorf("booking %s: %w", id, models.ErrNotFound)
	}
	if b.Status != from {
		return nil, fmt.Errorf("booking %s is no longer %s: %w", id, from, models.ErrValidation)
	}
	b.Status = to
	if hostResponse != "" {
		b.HostResponse = hostResponse
	}
	b.UpdatedAt = time.Now()
	copied := *b
	return &copied, nil
}

type fakeMessagesRepo struct {
	mu       sync.Mutex
	messages []*models.BookingMessage
}

func newFakeMessagesRepo() *fakeMessagesRepo {
	return &fakeMessagesRepo{}
}

func (f *fakeMessagesRepo) CreateMessage(ctx context.Context, message *models.BookingMessage) (*models.BookingMessage, error) {
	if err := message.ValidateMessage(); err != nil {
		return nil, err
	}
	if err := message.BeforeCreate(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, message)
	return message, nil
}

func (f *fakeMessagesRepo) ListMessagesByBooking(ctx context.Context, bookingId string) ([]*models.BookingMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	result := []*models.BookingMessage{}
	for _, m := range f.messages {
		if m.BookingID == bookingId {
			result = append(result, m)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Timestamp.Before(result[j].Timestamp) })
	return result, nil
}

func (f *fakeMessagesRepo) LastMessageAt(ctx context.Context, bookingId, senderId string) (time.Time, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var last time.Time
	for _, m := range f.messages {
		if m.BookingID == bookingId && m.SenderID == senderId && m.Timestamp.After(last) {
			last = m.Timestamp
		}
	}
	return last, nil
}

func (f *fakeMessagesRepo) CountMessagesSince(ctx context.Context, bookingId, senderId string, since time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, m := range f.messages {
		if m.BookingID == bookingId && m.SenderID == senderId && !m.Timestamp.Before(since) {
			count++
		}
	}
	return count, nil
}
