package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/joshua-takyi/roam/internal/models"
)

type SavedService struct {
	savedRepo models.SavedRepo
}

func NewSavedService(savedRepo models.SavedRepo) *SavedService {
	return &SavedService{
		savedRepo: savedRepo,
	}
}

func (ss *SavedService) SaveExperience(ctx context.Context, userId, experienceId string) (*models.SavedList, error) {
	if strings.TrimSpace(userId) == "" {
		return nil, fmt.Errorf("invalid user id: %w", models.ErrValidation)
	}
	if strings.TrimSpace(experienceId) == "" {
		return nil, fmt.Errorf("experience id cannot be empty: %w", models.ErrValidation)
	}

	return ss.savedRepo.SaveExperience(ctx, userId, experienceId)
}

func (ss *SavedService) UnsaveExperience(ctx context.Context, userId, experienceId string) error {
	if strings.TrimSpace(userId) == "" {
		return fmt.Errorf("invalid user id: %w", models.ErrValidation)
	}
	if strings.TrimSpace(experienceId) == "" {
		return fmt.Errorf("experience id cannot be empty: %w", models.ErrValidation)
	}

	return ss.savedRepo.UnsaveExperience(ctx, userId, experienceId)
}

func (ss *SavedService) GetSavedByUserID(ctx context.Context, userId string) (*models.SavedList, error) {
	if strings.TrimSpace(userId) == "" {
		return nil, fmt.Errorf("invalid user id: %w", models.ErrValidation)
	}

	return ss.savedRepo.GetSavedByUserID(ctx, userId)
}
