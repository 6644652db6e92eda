package services

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joshua-takyi/roam/internal/connect"
	"github.com/joshua-takyi/roam/internal/helpers"
	"github.com/joshua-takyi/roam/internal/models"
)

type UserService struct {
	userRepo models.UserRepo
}

func NewUserService(userRepo models.UserRepo) *UserService {
	return &UserService{
		userRepo: userRepo,
	}
}

func (us *UserService) CreateUser(user *models.User) (interface{}, error) {
	if err := models.Validate.Var(user.Email, "required,email"); err != nil {
		return nil, fmt.Errorf("invalid email format: %w", models.ErrValidation)
	}

	if !helpers.IsPasswordStrong(user.Password) {
		return nil, fmt.Errorf("password is not strong enough: %w", models.ErrValidation)
	}

	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	return us.userRepo.CreateUser(context.Background(), user)
}

func (us *UserService) AuthenticateUser(email, password string) (interface{}, error) {
	if err := models.Validate.Var(email, "required,email"); err != nil {
		return nil, fmt.Errorf("invalid email format: %w", models.ErrValidation)
	}
	if err := models.Validate.Var(password, "required,min=8"); err != nil {
		return nil, fmt.Errorf("invalid password format: %w", models.ErrValidation)
	}
	response, err := us.userRepo.AuthenticateUser(context.Background(), email, password)
	if err != nil {
		return nil, fmt.Errorf("authentication failed: %v", err)
	}

	return response, nil
}

func (us *UserService) RefreshToken(refreshToken string) (interface{}, error) {
	if refreshToken == "" {
		return nil, fmt.Errorf("refresh token is required: %w", models.ErrValidation)
	}
	response, err := us.userRepo.RefreshToken(context.Background(), refreshToken)
	if err != nil {
		return nil, fmt.Errorf("token refresh failed: %v", err)
	}
	return response, nil
}

func (us *UserService) GetUser(id string, accessToken string) (*models.User, error) {
	res, err := us.userRepo.GetUser(context.Background(), id, accessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return res, nil
}

func (us *UserService) UpdateUser(ctx context.Context, user map[string]interface{}, userId string, accessToken string) (*models.User, error) {
	now := time.Now()
	user["updated_at"] = now

	updatedUser, err := us.userRepo.UpdateUser(ctx, user, userId, accessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return updatedUser, nil
}

func (us *UserService) DeleteUser(ctx context.Context, id string, accessToken string) error {
	if err := us.userRepo.DeleteUser(ctx, id, accessToken); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

func (us *UserService) UploadAvatar(ctx context.Context, userId string, imageData string, accessToken string) (string, error) {
	if userId == "" {
		return "", fmt.Errorf("no valid user id provided: %w", models.ErrValidation)
	}

	// Push local paths or data URIs to Cloudinary first; an https URL is
	// stored as-is.
	if imageData != "" && !strings.HasPrefix(imageData, "http") {
		urls, _, err := helpers.UploadImages(ctx, connect.Cld, []string{imageData}, helpers.AvatarFolder)
		if err != nil {
			return "", fmt.Errorf("failed to upload avatar image: %v", err)
		}
		if len(urls) > 0 {
			imageData = urls[0]
		}
	}

	avatarURL, err := us.userRepo.UploadAvatar(ctx, userId, imageData, accessToken)
	if err != nil {
		return "", fmt.Errorf("failed to upload avatar: %w", err)
	}

	return avatarURL, nil
}

// GetGoogleAuthURL builds the Supabase-hosted Google OAuth entry point.
func (us *UserService) GetGoogleAuthURL(redirectTo string) (string, error) {
	supabaseURL := os.Getenv("SUPABASE_URL")
	if supabaseURL == "" {
		return "", fmt.Errorf("SUPABASE_URL not set")
	}
	return fmt.Sprintf("%s/auth/v1/authorize?provider=google&redirect_to=%s",
		supabaseURL, url.QueryEscape(redirectTo)), nil
}
