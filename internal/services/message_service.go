package services

import (
	"context"
	"fmt"
	"time"

	"github.com/joshua-takyi/roam/internal/models"
)

const (
	// MessageCooldown is the minimum gap between two messages from the same
	// sender in one thread.
	MessageCooldown = 10 * time.Second

	// DailyMessageCap bounds one sender's messages per thread per day.
	DailyMessageCap = 50
)

// MessageService handles the per-booking chat thread. The cooldown and the
// daily cap are enforced here, keyed by sender+thread, because anything the
// browser enforces locally is trivially bypassed.
type MessageService struct {
	bookings models.BookingsRepo
	messages models.MessagesRepo
	now      func() time.Time
}

func NewMessageService(bookings models.BookingsRepo, messages models.MessagesRepo) *MessageService {
	return &MessageService{
		bookings: bookings,
		messages: messages,
		now:      time.Now,
	}
}

func (ms *MessageService) SendMessage(ctx context.Context, bookingId, senderId, senderName, text string) (*models.BookingMessage, error) {
	booking, err := ms.bookings.GetBookingByID(ctx, bookingId)
	if err != nil {
		return nil, err
	}
	if senderId != booking.GuestID && senderId != booking.HostID {
		return nil, fmt.Errorf("sender is not part of this booking: %w", models.ErrPermission)
	}

	now := ms.now()

	last, err := ms.messages.LastMessageAt(ctx, bookingId, senderId)
	if err != nil {
		return nil, err
	}
	if !last.IsZero() && now.Sub(last) < MessageCooldown {
		return nil, fmt.Errorf("please wait before sending another message: %w", models.ErrValidation)
	}

	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	sentToday, err := ms.messages.CountMessagesSince(ctx, bookingId, senderId, startOfDay)
	if err != nil {
		return nil, err
	}
	if sentToday >= DailyMessageCap {
		return nil, fmt.Errorf("daily message limit reached: %w", models.ErrValidation)
	}

	message := &models.BookingMessage{
		BookingID:  bookingId,
		SenderID:   senderId,
		SenderName: senderName,
		Message:    text,
		Timestamp:  now,
		IsFromHost: senderId == booking.HostID,
	}

	return ms.messages.CreateMessage(ctx, message)
}

func (ms *MessageService) ListThread(ctx context.Context, bookingId, requesterId string) ([]*models.BookingMessage, error) {
	booking, err := ms.bookings.GetBookingByID(ctx, bookingId)
	if err != nil {
		return nil, err
	}
	if requesterId != booking.GuestID && requesterId != booking.HostID {
		return nil, fmt.Errorf("thread belongs to another booking party: %w", models.ErrPermission)
	}

	return ms.messages.ListMessagesByBooking(ctx, bookingId)
}
