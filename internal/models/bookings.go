package models

import (
	"fmt"
	"strings"
	"time"
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingRejected  BookingStatus = "rejected"
	BookingCancelled BookingStatus = "cancelled"
	BookingCompleted BookingStatus = "completed"
)

// IsCapacityHolding reports whether a booking in this status counts toward
// slot occupancy. Keeping the {pending, confirmed} subset behind one
// predicate is what makes the no-overbooking invariant enforceable in a
// single place.
func (s BookingStatus) IsCapacityHolding() bool {
	return s == BookingPending || s == BookingConfirmed
}

// IsTerminal reports whether the status admits no further transitions.
func (s BookingStatus) IsTerminal() bool {
	switch s {
	case BookingRejected, BookingCancelled, BookingCompleted:
		return true
	}
	return false
}

func (s BookingStatus) IsValid() bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingRejected, BookingCancelled, BookingCompleted:
		return true
	}
	return false
}

// CanTransitionTo encodes the booking lifecycle:
//
//	pending   -> confirmed | rejected | cancelled
//	confirmed -> cancelled | completed
//
// Any transition into a terminal state frees the capacity the booking held,
// because occupancy is filtered by status on every read; there is no separate
// release step.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	switch s {
	case BookingPending:
		return next == BookingConfirmed || next == BookingRejected || next == BookingCancelled
	case BookingConfirmed:
		return next == BookingCancelled || next == BookingCompleted
	}
	return false
}

// CapacityHoldingStatuses returns the statuses the occupancy aggregation
// filters on.
func CapacityHoldingStatuses() []BookingStatus {
	return []BookingStatus{BookingPending, BookingConfirmed}
}

type Booking struct {
	ID           string `bson:"_id,omitempty" json:"id"`
	ExperienceID string `bson:"experience_id" json:"experienceId" validate:"required"`

	// Denormalized display fields, frozen at creation so the booking list
	// survives catalog edits and deletions.
	ExperienceTitle    string `bson:"experience_title" json:"experienceTitle"`
	ExperienceImageURL string `bson:"experience_image_url" json:"experienceImageUrl"`
	HostID             string `bson:"host_id" json:"hostId"`
	HostName           string `bson:"host_name" json:"hostName"`
	GuestID            string `bson:"guest_id" json:"guestId"`
	GuestName          string `bson:"guest_name" json:"guestName"`
	GuestEmail         string `bson:"guest_email" json:"guestEmail"`

	Date         string  `bson:"date" json:"date"` // YYYY-MM-DD
	Time         string  `bson:"time" json:"time"` // HH:MM
	Participants int     `bson:"participants" json:"participants"`
	TotalPrice   float64 `bson:"total_price" json:"totalPrice"` // price x participants, frozen

	Status       BookingStatus `bson:"status" json:"status"`
	Message      string        `bson:"message,omitempty" json:"message,omitempty"`
	HostResponse string        `bson:"host_response,omitempty" json:"hostResponse,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// ValidateDraft checks the caller-supplied fields of a new booking before
// any capacity check runs. Capacity failures are reported separately as
// ErrCapacityExceeded.
func (b *Booking) ValidateDraft() error {
	if strings.TrimSpace(b.ExperienceID) == "" {
		return fmt.Errorf("experience id is required: %w", ErrValidation)
	}
	if strings.TrimSpace(b.GuestID) == "" {
		return fmt.Errorf("guest id is required: %w", ErrValidation)
	}
	if _, err := time.Parse(DateLayout, b.Date); err != nil {
		return fmt.Errorf("bad booking date %q: %w", b.Date, ErrValidation)
	}
	if _, err := time.Parse(TimeLayout, b.Time); err != nil {
		return fmt.Errorf("bad booking time %q: %w", b.Time, ErrValidation)
	}
	if b.Participants < 1 {
		return fmt.Errorf("participants must be >= 1: %w", ErrValidation)
	}
	return nil
}
