package models

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

type Category string

const (
	CategoryGastronomy Category = "Gastronomy"
	CategoryCulture    Category = "Culture"
	CategoryAdventure  Category = "Adventure"
	CategoryNature     Category = "Nature"
	CategoryHistory    Category = "History"

	// CategoryAll is a filter-only wildcard. It is accepted in list queries
	// but never stored on an experience record.
	CategoryAll Category = "All Categories"
)

func (c Category) IsStorable() bool {
	switch c {
	case CategoryGastronomy, CategoryCulture, CategoryAdventure, CategoryNature, CategoryHistory:
		return true
	}
	return false
}

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// Availability maps an ISO date (YYYY-MM-DD) to the start times (HH:MM)
// offered on that date.
type Availability map[string][]string

// TimesFor returns the declared start times for a date, nil if the date is
// not on the schedule.
func (a Availability) TimesFor(date string) []string {
	return a[date]
}

// HasSlot reports whether the schedule declares the given date+time pair.
func (a Availability) HasSlot(date, timeStr string) bool {
	for _, t := range a[date] {
		if t == timeStr {
			return true
		}
	}
	return false
}

// Dates returns the scheduled dates that carry at least one time, sorted
// ascending. Dates with empty time lists are skipped.
func (a Availability) Dates() []string {
	dates := make([]string, 0, len(a))
	for d, times := range a {
		if len(times) > 0 {
			dates = append(dates, d)
		}
	}
	sort.Strings(dates)
	return dates
}

// Validate checks every date and time against the wire formats.
func (a Availability) Validate() error {
	for d, times := range a {
		if _, err := time.Parse(DateLayout, d); err != nil {
			return fmt.Errorf("bad availability date %q: %w", d, ErrValidation)
		}
		for _, t := range times {
			if _, err := time.Parse(TimeLayout, t); err != nil {
				return fmt.Errorf("bad availability time %q on %s: %w", t, d, ErrValidation)
			}
		}
	}
	return nil
}

// IsPastDate reports whether date falls strictly before today at day
// granularity. Malformed dates are treated as past so they never surface as
// selectable.
func IsPastDate(date string, now time.Time) bool {
	d, err := time.Parse(DateLayout, date)
	if err != nil {
		return true
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return d.Before(today)
}

// HostSummary is the denormalized host block embedded on an experience.
type HostSummary struct {
	ID        string  `bson:"id" json:"id"`
	Name      string  `bson:"name" json:"name"`
	AvatarURL string  `bson:"avatar_url" json:"avatarUrl"`
	Rating    float64 `bson:"rating" json:"rating"`
}

type NormalizedLocation struct {
	Name             string `bson:"name" json:"name"`
	FormattedAddress string `bson:"formatted_address" json:"formattedAddress"`
	City             string `bson:"city,omitempty" json:"city,omitempty"`
	Country          string `bson:"country,omitempty" json:"country,omitempty"`
}

type Experience struct {
	ID          string      `bson:"_id,omitempty" json:"id"`
	Title       string      `bson:"title" json:"title" validate:"required"`
	Description string      `bson:"description" json:"description"`
	ImageURL    string      `bson:"image_url" json:"imageUrl"`
	Location    string      `bson:"location" json:"location" validate:"required"`
	Latitude    float64     `bson:"latitude" json:"latitude"`
	Longitude   float64     `bson:"longitude" json:"longitude"`
	Host        HostSummary `bson:"host" json:"host"`
	Price       float64     `bson:"price" json:"price"`
	Rating      float64     `bson:"rating" json:"rating"`
	Category    Category    `bson:"category" json:"category" validate:"required"`

	Availability Availability `bson:"availability" json:"availability"`

	Duration     int `bson:"duration" json:"duration"`          // minutes
	MaxAttendees int `bson:"max_attendees" json:"maxAttendees"` // per-slot capacity

	// CurrentAttendees is never stored. It is recomputed on read from the
	// active bookings so it cannot drift from the ledger.
	CurrentAttendees int `bson:"-" json:"currentAttendees"`

	// MeetingPoint is host-private; list responses strip it.
	MeetingPoint string `bson:"meeting_point" json:"meetingPoint,omitempty"`

	PlaceID            string              `bson:"place_id,omitempty" json:"placeId,omitempty"`
	NormalizedLocation *NormalizedLocation `bson:"normalized_location,omitempty" json:"normalizedLocation,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// ValidateExperience covers the domain rules the struct tags cannot express.
func (e *Experience) ValidateExperience() error {
	if strings.TrimSpace(e.Title) == "" {
		return fmt.Errorf("title is required: %w", ErrValidation)
	}
	if !e.Category.IsStorable() {
		return fmt.Errorf("category %q cannot be stored: %w", e.Category, ErrValidation)
	}
	if e.Price < 0 {
		return fmt.Errorf("price must be >= 0: %w", ErrValidation)
	}
	if e.Duration <= 0 {
		return fmt.Errorf("duration must be > 0 minutes: %w", ErrValidation)
	}
	if e.MaxAttendees <= 0 {
		return fmt.Errorf("max_attendees must be > 0: %w", ErrValidation)
	}
	return e.Availability.Validate()
}
