package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/joshua-takyi/roam/internal/models"
)

func fixedNow() time.Time {
	return time.Date(2027, 6, 1, 12, 0, 0, 0, time.UTC)
}

func kayakTour() *models.Experience {
	return &models.Experience{
		ID:           "exp-1",
		Title:        "Sunset kayak tour",
		Location:     "Lisbon",
		Category:     models.CategoryAdventure,
		Price:        40,
		Duration:     120,
		MaxAttendees: 5,
		Host:         models.HostSummary{ID: "host-1", Name: "Ana"},
		Availability: models.Availability{
			"2027-07-01": {"10:00", "14:00"},
			"2027-07-02": {"10:00"},
			"2026-01-01": {"10:00"}, // stale schedule entry, in the past
		},
	}
}

func newBookingFixture(t *testing.T) (*BookingService, *fakeBookingsRepo, *fakeExperiencesRepo) {
	t.Helper()
	experiences := newFakeExperiencesRepo(kayakTour())
	bookings := newFakeBookingsRepo()
	service := NewBookingService(experiences, bookings)
	service.now = fixedNow
	return service, bookings, experiences
}

func draft(guestId, date, timeStr string, participants int) *models.Booking {
	return &models.Booking{
		ExperienceID: "exp-1",
		GuestID:      guestId,
		GuestName:    "Guest " + guestId,
		GuestEmail:   guestId + "@example.com",
		Date:         date,
		Time:         timeStr,
		Participants: participants,
	}
}

func TestCreateBookingAdmission(t *testing.T) {
	service, _, _ := newBookingFixture(t)
	ctx := context.Background()

	// 5 spots: 3 go through, 3 more would make 6, 2 exactly fill it.
	if _, err := service.CreateBooking(ctx, draft("g1", "2027-07-01", "10:00", 3)); err != nil {
		t.Fatalf("first booking: %v", err)
	}

	_, err := service.CreateBooking(ctx, draft("g2", "2027-07-01", "10:00", 3))
	if !errors.Is(err, models.ErrCapacityExceeded) {
		t.Fatalf("oversubscribing booking: got %v, want ErrCapacityExceeded", err)
	}

	if _, err := service.CreateBooking(ctx, draft("g3", "2027-07-01", "10:00", 2)); err != nil {
		t.Fatalf("exact-fit booking: %v", err)
	}

	// Slot is now full; even one more participant is denied.
	_, err = service.CreateBooking(ctx, draft("g4", "2027-07-01", "10:00", 1))
	if !errors.Is(err, models.ErrCapacityExceeded) {
		t.Fatalf("booking on full slot: got %v, want ErrCapacityExceeded", err)
	}
}

func TestCreateBookingSlotsAreIndependent(t *testing.T) {
	service, _, _ := newBookingFixture(t)
	ctx := context.Background()

	if _, err := service.CreateBooking(ctx, draft("g1", "2027-07-01", "10:00", 5)); err != nil {
		t.Fatalf("filling 10:00: %v", err)
	}

	// Same date, different time: untouched capacity.
	if _, err := service.CreateBooking(ctx, draft("g2", "2027-07-01", "14:00", 5)); err != nil {
		t.Errorf("14:00 slot should be independent: %v", err)
	}
	// Same time, different date: untouched capacity.
	if _, err := service.CreateBooking(ctx, draft("g3", "2027-07-02", "10:00", 5)); err != nil {
		t.Errorf("2027-07-02 slot should be independent: %v", err)
	}
}

func TestCreateBookingDeniedRetriesWriteNothing(t *testing.T) {
	service, bookings, _ := newBookingFixture(t)
	ctx := context.Background()

	if _, err := service.CreateBooking(ctx, draft("g1", "2027-07-01", "10:00", 4)); err != nil {
		t.Fatalf("seed booking: %v", err)
	}

	for i := 0; i < 3; i++ {
		_, err := service.CreateBooking(ctx, draft("g2", "2027-07-01", "10:00", 2))
		if !errors.Is(err, models.ErrCapacityExceeded) {
			t.Fatalf("attempt %d: got %v, want ErrCapacityExceeded", i, err)
		}
	}

	occupied, err := bookings.SlotOccupancy(ctx, "exp-1", "2027-07-01", "10:00")
	if err != nil {
		t.Fatal(err)
	}
	if occupied != 4 {
		t.Errorf("occupancy after denied retries = %d, want 4", occupied)
	}
}

func TestCreateBookingConcurrent(t *testing.T) {
	service, bookings, _ := newBookingFixture(t)
	ctx := context.Background()

	const attempts = 20
	var wg sync.WaitGroup
	results := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			b := draft("guest", "2027-07-01", "10:00", 1)
			b.GuestID = string(rune('a' + n))
			_, err := service.CreateBooking(ctx, b)
			results <- err
		}(i)
	}
	wg.Wait()
	close(results)

	admitted := 0
	for err := range results {
		if err == nil {
			admitted++
		} else if !errors.Is(err, models.ErrCapacityExceeded) {
			t.Errorf("unexpected error: %v", err)
		}
	}
	if admitted != 5 {
		t.Errorf("admitted %d bookings into a 5-spot slot", admitted)
	}

	occupied, _ := bookings.SlotOccupancy(ctx, "exp-1", "2027-07-01", "10:00")
	if occupied != 5 {
		t.Errorf("final occupancy = %d, want 5", occupied)
	}
}

func TestCreateBookingValidation(t *testing.T) {
	service, _, _ := newBookingFixture(t)
	ctx := context.Background()

	// Group larger than the experience capacity is bad input, not a full slot.
	_, err := service.CreateBooking(ctx, draft("g1", "2027-07-01", "10:00", 6))
	if !errors.Is(err, models.ErrValidation) {
		t.Errorf("oversized group: got %v, want ErrValidation", err)
	}
	if errors.Is(err, models.ErrCapacityExceeded) {
		t.Error("oversized group must not report a capacity conflict")
	}

	_, err = service.CreateBooking(ctx, draft("g1", "2027-07-01", "11:00", 1))
	if !errors.Is(err, models.ErrValidation) {
		t.Errorf("undeclared time: got %v, want ErrValidation", err)
	}

	_, err = service.CreateBooking(ctx, draft("g1", "2027-07-05", "10:00", 1))
	if !errors.Is(err, models.ErrValidation) {
		t.Errorf("undeclared date: got %v, want ErrValidation", err)
	}

	b := draft("g1", "2026-01-01", "10:00", 1)
	_, err = service.CreateBooking(ctx, b)
	if !errors.Is(err, models.ErrValidation) {
		t.Errorf("past date: got %v, want ErrValidation", err)
	}
}

func TestCreateBookingFreezesPrice(t *testing.T) {
	service, _, experiences := newBookingFixture(t)
	ctx := context.Background()

	created, err := service.CreateBooking(ctx, draft("g1", "2027-07-01", "10:00", 3))
	if err != nil {
		t.Fatal(err)
	}
	if created.TotalPrice != 120 {
		t.Fatalf("total price = %v, want 120", created.TotalPrice)
	}
	if created.Status != models.BookingPending {
		t.Fatalf("new booking status = %s, want pending", created.Status)
	}
	if created.HostID != "host-1" || created.ExperienceTitle != "Sunset kayak tour" {
		t.Error("denormalized fields not filled from the experience")
	}

	// A later price edit must not change the stored total.
	if _, err := experiences.UpdateExperience(ctx, "exp-1", map[string]interface{}{"price": 90.0}); err != nil {
		t.Fatal(err)
	}
	reloaded, err := service.GetBooking(ctx, created.ID, "g1")
	if err != nil {
		t.Fatal(err)
	}
	if reloaded.TotalPrice != 120 {
		t.Errorf("total price after catalog edit = %v, want 120", reloaded.TotalPrice)
	}
}

func TestCancellationFreesCapacity(t *testing.T) {
	service, _, _ := newBookingFixture(t)
	ctx := context.Background()

	first, err := service.CreateBooking(ctx, draft("g1", "2027-07-01", "10:00", 5))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := service.CreateBooking(ctx, draft("g2", "2027-07-01", "10:00", 1)); !errors.Is(err, models.ErrCapacityExceeded) {
		t.Fatalf("slot should be full: %v", err)
	}

	if err := service.CancelBooking(ctx, first.ID, "g1"); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	// No release step anywhere; the next read simply no longer counts it.
	if _, err := service.CreateBooking(ctx, draft("g2", "2027-07-01", "10:00", 5)); err != nil {
		t.Errorf("slot should be free after cancellation: %v", err)
	}
}

func TestRejectionFreesCapacity(t *testing.T) {
	service, _, _ := newBookingFixture(t)
	ctx := context.Background()

	first, err := service.CreateBooking(ctx, draft("g1", "2027-07-01", "10:00", 5))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := service.UpdateBookingStatus(ctx, first.ID, models.BookingRejected, "fully committed elsewhere", "host-1"); err != nil {
		t.Fatalf("reject: %v", err)
	}

	if _, err := service.CreateBooking(ctx, draft("g2", "2027-07-01", "10:00", 5)); err != nil {
		t.Errorf("slot should be free after rejection: %v", err)
	}
}

func TestCompletionFreesCapacity(t *testing.T) {
	service, bookings, _ := newBookingFixture(t)
	ctx := context.Background()

	b, err := service.CreateBooking(ctx, draft("g1", "2027-07-01", "10:00", 4))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := service.UpdateBookingStatus(ctx, b.ID, models.BookingConfirmed, "see you there", "host-1"); err != nil {
		t.Fatal(err)
	}

	// Confirmed still holds capacity.
	occupied, _ := bookings.SlotOccupancy(ctx, "exp-1", "2027-07-01", "10:00")
	if occupied != 4 {
		t.Fatalf("occupancy with confirmed booking = %d, want 4", occupied)
	}

	if _, err := service.UpdateBookingStatus(ctx, b.ID, models.BookingCompleted, "", "host-1"); err != nil {
		t.Fatal(err)
	}
	occupied, _ = bookings.SlotOccupancy(ctx, "exp-1", "2027-07-01", "10:00")
	if occupied != 0 {
		t.Errorf("occupancy with completed booking = %d, want 0", occupied)
	}
}

func TestStatusPermissions(t *testing.T) {
	service, _, _ := newBookingFixture(t)
	ctx := context.Background()

	b, err := service.CreateBooking(ctx, draft("g1", "2027-07-01", "10:00", 2))
	if err != nil {
		t.Fatal(err)
	}

	// Guests cannot confirm their own booking.
	if _, err := service.UpdateBookingStatus(ctx, b.ID, models.BookingConfirmed, "", "g1"); !errors.Is(err, models.ErrPermission) {
		t.Errorf("guest confirm: got %v, want ErrPermission", err)
	}
	// Strangers cannot cancel.
	if err := service.CancelBooking(ctx, b.ID, "someone-else"); !errors.Is(err, models.ErrPermission) {
		t.Errorf("stranger cancel: got %v, want ErrPermission", err)
	}
	// The host can cancel too.
	if err := service.CancelBooking(ctx, b.ID, "host-1"); err != nil {
		t.Errorf("host cancel: %v", err)
	}
}

func TestStatusTransitionsRejected(t *testing.T) {
	service, _, _ := newBookingFixture(t)
	ctx := context.Background()

	b, err := service.CreateBooking(ctx, draft("g1", "2027-07-01", "10:00", 2))
	if err != nil {
		t.Fatal(err)
	}

	// pending -> completed skips confirmation.
	if _, err := service.UpdateBookingStatus(ctx, b.ID, models.BookingCompleted, "", "host-1"); !errors.Is(err, models.ErrValidation) {
		t.Errorf("pending->completed: got %v, want ErrValidation", err)
	}
	// Nothing returns to pending.
	if _, err := service.UpdateBookingStatus(ctx, b.ID, models.BookingPending, "", "host-1"); !errors.Is(err, models.ErrValidation) {
		t.Errorf("->pending: got %v, want ErrValidation", err)
	}
	// Unknown status.
	if _, err := service.UpdateBookingStatus(ctx, b.ID, models.BookingStatus("archived"), "", "host-1"); !errors.Is(err, models.ErrValidation) {
		t.Errorf("unknown status: got %v, want ErrValidation", err)
	}

	if err := service.CancelBooking(ctx, b.ID, "g1"); err != nil {
		t.Fatal(err)
	}
	// Terminal states are final.
	if _, err := service.UpdateBookingStatus(ctx, b.ID, models.BookingConfirmed, "", "host-1"); !errors.Is(err, models.ErrValidation) {
		t.Errorf("cancelled->confirmed: got %v, want ErrValidation", err)
	}
}

func TestGetBookingPartiesOnly(t *testing.T) {
	service, _, _ := newBookingFixture(t)
	ctx := context.Background()

	b, err := service.CreateBooking(ctx, draft("g1", "2027-07-01", "10:00", 2))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := service.GetBooking(ctx, b.ID, "g1"); err != nil {
		t.Errorf("guest read: %v", err)
	}
	if _, err := service.GetBooking(ctx, b.ID, "host-1"); err != nil {
		t.Errorf("host read: %v", err)
	}
	if _, err := service.GetBooking(ctx, b.ID, "nosy"); !errors.Is(err, models.ErrPermission) {
		t.Errorf("stranger read: got %v, want ErrPermission", err)
	}
	if _, err := service.GetBooking(ctx, "missing", "g1"); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("missing booking: got %v, want ErrNotFound", err)
	}
}
