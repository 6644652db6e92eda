package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/joshua-takyi/roam/internal/models"
)

func newMessageFixture(t *testing.T) (*MessageService, *fakeBookingsRepo, *time.Time) {
	t.Helper()
	bookings := newFakeBookingsRepo()
	_, err := bookings.CreateBooking(context.Background(), &models.Booking{
		ID:           "bk-1",
		ExperienceID: "exp-1",
		GuestID:      "guest-1",
		HostID:       "host-1",
		Date:         "2027-07-01",
		Time:         "10:00",
		Participants: 2,
		Status:       models.BookingPending,
	}, 10)
	if err != nil {
		t.Fatal(err)
	}

	service := NewMessageService(bookings, newFakeMessagesRepo())
	clock := fixedNow()
	service.now = func() time.Time { return clock }
	return service, bookings, &clock
}

func TestSendMessageThread(t *testing.T) {
	service, _, clock := newMessageFixture(t)
	ctx := context.Background()

	sent, err := service.SendMessage(ctx, "bk-1", "guest-1", "Pat", "Is parking available nearby?")
	if err != nil {
		t.Fatal(err)
	}
	if sent.IsFromHost {
		t.Error("guest message flagged as host message")
	}

	*clock = clock.Add(time.Minute)
	reply, err := service.SendMessage(ctx, "bk-1", "host-1", "Ana", "Yes, right by the pier.")
	if err != nil {
		t.Fatal(err)
	}
	if !reply.IsFromHost {
		t.Error("host message not flagged as host message")
	}

	thread, err := service.ListThread(ctx, "bk-1", "guest-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(thread) != 2 {
		t.Fatalf("thread length = %d, want 2", len(thread))
	}
	if thread[0].SenderID != "guest-1" || thread[1].SenderID != "host-1" {
		t.Error("thread not in chronological order")
	}
}

func TestSendMessagePermission(t *testing.T) {
	service, _, _ := newMessageFixture(t)
	ctx := context.Background()

	if _, err := service.SendMessage(ctx, "bk-1", "stranger", "X", "hello"); !errors.Is(err, models.ErrPermission) {
		t.Errorf("stranger send: got %v, want ErrPermission", err)
	}
	if _, err := service.ListThread(ctx, "bk-1", "stranger"); !errors.Is(err, models.ErrPermission) {
		t.Errorf("stranger list: got %v, want ErrPermission", err)
	}
	if _, err := service.SendMessage(ctx, "missing", "guest-1", "Pat", "hello"); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("missing booking: got %v, want ErrNotFound", err)
	}
}

func TestSendMessageCooldown(t *testing.T) {
	service, _, clock := newMessageFixture(t)
	ctx := context.Background()

	if _, err := service.SendMessage(ctx, "bk-1", "guest-1", "Pat", "first"); err != nil {
		t.Fatal(err)
	}

	*clock = clock.Add(MessageCooldown / 2)
	if _, err := service.SendMessage(ctx, "bk-1", "guest-1", "Pat", "too soon"); !errors.Is(err, models.ErrValidation) {
		t.Errorf("inside cooldown: got %v, want ErrValidation", err)
	}

	// The other party has an independent cooldown.
	if _, err := service.SendMessage(ctx, "bk-1", "host-1", "Ana", "host is fine"); err != nil {
		t.Errorf("host inside guest cooldown: %v", err)
	}

	*clock = clock.Add(MessageCooldown)
	if _, err := service.SendMessage(ctx, "bk-1", "guest-1", "Pat", "second"); err != nil {
		t.Errorf("after cooldown: %v", err)
	}
}

func TestSendMessageDailyCap(t *testing.T) {
	service, _, clock := newMessageFixture(t)
	ctx := context.Background()

	for i := 0; i < DailyMessageCap; i++ {
		if _, err := service.SendMessage(ctx, "bk-1", "guest-1", "Pat", "ping"); err != nil {
			t.Fatalf("message %d: %v", i, err)
		}
		*clock = clock.Add(MessageCooldown)
	}

	if _, err := service.SendMessage(ctx, "bk-1", "guest-1", "Pat", "one over"); !errors.Is(err, models.ErrValidation) {
		t.Errorf("over daily cap: got %v, want ErrValidation", err)
	}

	// Midnight resets the count.
	next := clock.AddDate(0, 0, 1)
	*clock = time.Date(next.Year(), next.Month(), next.Day(), 0, 0, 1, 0, next.Location())
	if _, err := service.SendMessage(ctx, "bk-1", "guest-1", "Pat", "new day"); err != nil {
		t.Errorf("after midnight: %v", err)
	}
}

func TestMessageLength(t *testing.T) {
	service, _, _ := newMessageFixture(t)
	ctx := context.Background()

	if _, err := service.SendMessage(ctx, "bk-1", "guest-1", "Pat", "  "); !errors.Is(err, models.ErrValidation) {
		t.Errorf("blank message: got %v, want ErrValidation", err)
	}

	long := strings.Repeat("a", models.MaxMessageLength+1)
	if _, err := service.SendMessage(ctx, "bk-1", "guest-1", "Pat", long); !errors.Is(err, models.ErrValidation) {
		t.Errorf("oversized message: got %v, want ErrValidation", err)
	}

	exact := strings.Repeat("a", models.MaxMessageLength)
	if _, err := service.SendMessage(ctx, "bk-1", "guest-1", "Pat", exact); err != nil {
		t.Errorf("max-length message: %v", err)
	}
}

// outageMessagesRepo fails every cooldown lookup the way a dropped store
// connection would.
type outageMessagesRepo struct {
	*fakeMessagesRepo
}

func (o *outageMessagesRepo) LastMessageAt(ctx context.Context, bookingId, senderId string) (time.Time, error) {
	return time.Time{}, fmt.Errorf("connection reset by peer: %w", models.ErrStore)
}

func TestSendMessageSurfacesStoreFailures(t *testing.T) {
	bookings := newFakeBookingsRepo()
	_, err := bookings.CreateBooking(context.Background(), &models.Booking{
		ID:           "bk-1",
		ExperienceID: "exp-1",
		GuestID:      "guest-1",
		HostID:       "host-1",
		Date:         "2027-07-01",
		Time:         "10:00",
		Participants: 2,
		Status:       models.BookingPending,
	}, 10)
	if err != nil {
		t.Fatal(err)
	}

	service := NewMessageService(bookings, &outageMessagesRepo{newFakeMessagesRepo()})
	clock := fixedNow()
	service.now = func() time.Time { return clock }

	// A failed read must not be mistaken for "no prior message": that would
	// quietly disable the cooldown during an outage.
	if _, err := service.SendMessage(context.Background(), "bk-1", "guest-1", "Pat", "hello"); !errors.Is(err, models.ErrStore) {
		t.Fatalf("expected ErrStore from failing repo, got %v", err)
	}
}
