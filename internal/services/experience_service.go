package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joshua-takyi/roam/internal/connect"
	"github.com/joshua-takyi/roam/internal/helpers"
	"github.com/joshua-takyi/roam/internal/models"
)

type ExperienceService struct {
	experiences models.ExperiencesRepo
	bookings    models.BookingsRepo
}

func NewExperienceService(experiences models.ExperiencesRepo, bookings models.BookingsRepo) *ExperienceService {
	return &ExperienceService{
		experiences: experiences,
		bookings:    bookings,
	}
}

func (es *ExperienceService) CreateExperience(ctx context.Context, experience *models.Experience, host models.HostSummary) (*models.Experience, error) {
	experience.Host = host
	if err := models.Validate.Struct(experience); err != nil {
		return nil, fmt.Errorf("invalid experience data: %v: %w", err, models.ErrValidation)
	}
	if err := experience.ValidateExperience(); err != nil {
		return nil, err
	}

	// Upload the cover image first if the client sent a local path or data
	// URI instead of an https URL.
	var uploadedPublicIDs []string
	if experience.ImageURL != "" && !strings.HasPrefix(experience.ImageURL, "http") {
		urls, publicIDs, err := helpers.UploadImages(ctx, connect.Cld, []string{experience.ImageURL}, helpers.ExperienceFolder)
		if err != nil {
			return nil, fmt.Errorf("failed to upload experience image: %v", err)
		}
		if len(urls) > 0 {
			experience.ImageURL = urls[0]
			uploadedPublicIDs = publicIDs
		}
	}

	now := time.Now()
	if experience.ID == "" {
		experience.ID = uuid.NewString()
	}
	experience.Rating = 0
	experience.CreatedAt = now
	experience.UpdatedAt = now

	created, err := es.experiences.CreateExperience(ctx, experience)
	if err != nil {
		if len(uploadedPublicIDs) > 0 {
			helpers.DeleteImages(ctx, connect.Cld, helpers.ExperienceFolder, uploadedPublicIDs)
		}
		return nil, err
	}

	return created, nil
}

// GetExperience loads one catalog record and recomputes the attendee counter
// from the booking ledger. The counter is never stored, so it cannot drift.
func (es *ExperienceService) GetExperience(ctx context.Context, id string) (*models.Experience, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("experience id is required: %w", models.ErrValidation)
	}

	experience, err := es.experiences.GetExperienceByID(ctx, id)
	if err != nil {
		return nil, err
	}

	attendees, err := es.bookings.ActiveParticipants(ctx, id)
	if err != nil {
		return nil, err
	}
	experience.CurrentAttendees = attendees

	return experience, nil
}

func (es *ExperienceService) ListExperiences(ctx context.Context, filter models.ExperienceFilter, offset, limit int) ([]*models.Experience, int, error) {
	if offset < 0 || limit <= 0 {
		return nil, 0, fmt.Errorf("invalid offset or limit: %w", models.ErrValidation)
	}
	return es.experiences.QueryExperiences(ctx, filter, offset, limit)
}

func (es *ExperienceService) ListExperiencesByHost(ctx context.Context, hostId string, offset, limit int) ([]*models.Experience, int, error) {
	if offset < 0 || limit <= 0 {
		return nil, 0, fmt.Errorf("invalid offset or limit: %w", models.ErrValidation)
	}
	if strings.TrimSpace(hostId) == "" {
		return nil, 0, fmt.Errorf("host id is required: %w", models.ErrValidation)
	}
	return es.experiences.ListExperiencesByHost(ctx, hostId, offset, limit)
}

// UpdateExperience applies a partial edit. Only the owning host may edit.
// Shrinking availability never retroactively invalidates existing bookings;
// the ledger keeps them and occupancy reads still count them.
func (es *ExperienceService) UpdateExperience(ctx context.Context, id string, updates map[string]interface{}, actorId string) (*models.Experience, error) {
	experience, err := es.experiences.GetExperienceByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if experience.Host.ID != actorId {
		return nil, fmt.Errorf("only the host may edit this experience: %w", models.ErrPermission)
	}

	// Identity and ownership are not editable.
	delete(updates, "_id")
	delete(updates, "id")
	delete(updates, "host")
	delete(updates, "created_at")
	if len(updates) == 0 {
		return nil, fmt.Errorf("no fields to update: %w", models.ErrValidation)
	}

	if raw, ok := updates["category"]; ok {
		category, _ := raw.(string)
		if !models.Category(category).IsStorable() {
			return nil, fmt.Errorf("category %q cannot be stored: %w", category, models.ErrValidation)
		}
	}
	if raw, ok := updates["price"]; ok {
		price, _ := raw.(float64)
		if price < 0 {
			return nil, fmt.Errorf("price must be >= 0: %w", models.ErrValidation)
		}
	}
	if raw, ok := updates["max_attendees"]; ok {
		switch v := raw.(type) {
		case int:
			if v <= 0 {
				return nil, fmt.Errorf("max_attendees must be > 0: %w", models.ErrValidation)
			}
		case float64:
			if v <= 0 {
				return nil, fmt.Errorf("max_attendees must be > 0: %w", models.ErrValidation)
			}
		}
	}
	if raw, ok := updates["availability"]; ok {
		availability, err := coerceAvailability(raw)
		if err != nil {
			return nil, err
		}
		if err := availability.Validate(); err != nil {
			return nil, err
		}
		updates["availability"] = availability
	}

	return es.experiences.UpdateExperience(ctx, id, updates)
}

func (es *ExperienceService) DeleteExperience(ctx context.Context, id, actorId string, isAdmin bool) error {
	experience, err := es.experiences.GetExperienceByID(ctx, id)
	if err != nil {
		return err
	}
	if experience.Host.ID != actorId && !isAdmin {
		return fmt.Errorf("only the host may delete this experience: %w", models.ErrPermission)
	}

	return es.experiences.DeleteExperience(ctx, id)
}

// coerceAvailability rebuilds the schedule map from the loosely typed JSON
// a PATCH body carries.
func coerceAvailability(raw interface{}) (models.Availability, error) {
	switch v := raw.(type) {
	case models.Availability:
		return v, nil
	case map[string][]string:
		return models.Availability(v), nil
	case map[string]interface{}:
		availability := models.Availability{}
		for date, rawTimes := range v {
			times, ok := rawTimes.([]interface{})
			if !ok {
				return nil, fmt.Errorf("availability for %s is not a list: %w", date, models.ErrValidation)
			}
			list := make([]string, 0, len(times))
			for _, rawTime := range times {
				t, ok := rawTime.(string)
				if !ok {
					return nil, fmt.Errorf("availability time on %s is not a string: %w", date, models.ErrValidation)
				}
				list = append(list, t)
			}
			availability[date] = list
		}
		return availability, nil
	}
	return nil, fmt.Errorf("availability has an unexpected shape: %w", models.ErrValidation)
}
