package models

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/supabase-community/gotrue-go/types"
)

type UserRepo interface {
	CreateUser(ctx context.Context, user *User) (interface{}, error)
	AuthenticateUser(ctx context.Context, email, password string) (interface{}, error)
	RefreshToken(ctx context.Context, refreshToken string) (interface{}, error)
	GetUser(ctx context.Context, id string, accessToken string) (*User, error)
	UpdateUser(ctx context.Context, user map[string]interface{}, userId string, accessToken string) (*User, error)
	DeleteUser(ctx context.Context, id string, accessToken string) error
	UploadAvatar(ctx context.Context, userId string, avatarURL string, accessToken string) (string, error)
}

func ConvertToUser(raw map[string]interface{}) (*User, error) {
	userBytes, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal raw user: %v", err)
	}

	user := &User{}
	if err := json.Unmarshal(userBytes, user); err != nil {
		return nil, fmt.Errorf("failed to unmarshal to user struct: %v", err)
	}

	return user, nil
}

func (su *SupabaseRepo) CreateUser(ctx context.Context, user *User) (interface{}, error) {
	signed := types.SignupRequest{
		Email:    user.Email,
		Password: user.Password,
	}

	res, err := su.supabaseClient.Auth.Signup(signed)
	if err != nil {
		errMsg := err.Error()
		if strings.Contains(errMsg, "User already Registered") {
			return nil, fmt.Errorf("email already in use: %w", ErrValidation)
		}
		if strings.Contains(errMsg, "null value in column") {
			return nil, fmt.Errorf("required field is missing: %w", ErrValidation)
		}
		if strings.Contains(errMsg, "unique constraint") {
			return nil, fmt.Errorf("user already exists: %w", ErrValidation)
		}
		if strings.Contains(errMsg, "invalid input syntax") {
			return nil, fmt.Errorf("invalid input format: %w", ErrValidation)
		}
		return nil, fmt.Errorf("failed to create user: %w", ErrStore)
	}
	return res, nil
}

func (su *SupabaseRepo) AuthenticateUser(ctx context.Context, email, password string) (interface{}, error) {
	resp, err := su.supabaseClient.Auth.SignInWithEmailPassword(email, password)
	if err != nil {
		return nil, fmt.Errorf("failed to authenticate user: %v", err)
	}
	return resp, nil
}

func (su *SupabaseRepo) RefreshToken(ctx context.Context, refreshToken string) (interface{}, error) {
	resp, err := su.supabaseClient.Auth.RefreshToken(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("failed to refresh token: %v", err)
	}
	return resp, nil
}

func (su *SupabaseRepo) GetUser(ctx context.Context, id string, accessToken string) (*User, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("invalid user id: %w", ErrValidation)
	}

	client := su.supabaseClient
	if accessToken != "" {
		authClient, err := su.GetAuthenticatedClient(accessToken)
		if err != nil {
			return nil, fmt.Errorf("failed to create authenticated client: %v", err)
		}
		client = authClient
	}

	raw, status, err := client.From(ProfileTable).
		Select("id,email,username,fullname,last_name,role,location,bio,hobbies,age,preferences,phone_number,is_verified,avatar_url,created_at,updated_at", "", false).
		Eq("id", id).
		Execute()
	if err != nil {
		if status != 0 {
			return nil, fmt.Errorf("postgrest error: status=%d body=%s err=%v: %w", status, string(raw), err, ErrStore)
		}
		return nil, fmt.Errorf("failed to get user by ID: %v: %w", err, ErrStore)
	}

	// Supabase returns an array even for single results
	var users []User
	if err := json.Unmarshal(raw, &users); err != nil {
		return nil, fmt.Errorf("failed to unmarshal user rows: %v", err)
	}

	if len(users) == 0 {
		return nil, fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	if len(users) > 1 {
		return nil, fmt.Errorf("multiple users found for ID %s", id)
	}

	return &users[0], nil
}

func (su *SupabaseRepo) UpdateUser(ctx context.Context, user map[string]interface{}, userId string, accessToken string) (*User, error) {
	if strings.TrimSpace(userId) == "" {
		return nil, fmt.Errorf("invalid user id: %w", ErrValidation)
	}
	if len(user) == 0 {
		return nil, fmt.Errorf("no fields to update: %w", ErrValidation)
	}

	client := su.supabaseClient
	if accessToken != "" {
		authClient, err := su.GetAuthenticatedClient(accessToken)
		if err != nil {
			return nil, fmt.Errorf("failed to create authenticated client: %v", err)
		}
		client = authClient
	}

	raw, count, err := client.From(ProfileTable).
		Update(user, "", "exact").
		Eq("id", userId).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to update user: %v: %w", err, ErrStore)
	}
	if count == 0 {
		return nil, fmt.Errorf("no user found to update: %w", ErrNotFound)
	}

	var rawUsers []map[string]interface{}
	if err := json.Unmarshal(raw, &rawUsers); err != nil {
		return nil, fmt.Errorf("failed to unmarshal updated user: %v", err)
	}
	if len(rawUsers) == 0 {
		return nil, fmt.Errorf("no user data returned after update: %w", ErrStore)
	}

	return ConvertToUser(rawUsers[0])
}

func (su *SupabaseRepo) DeleteUser(ctx context.Context, id string, accessToken string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("invalid user id: %w", ErrValidation)
	}

	client := su.supabaseClient
	if accessToken != "" {
		authClient, err := su.GetAuthenticatedClient(accessToken)
		if err != nil {
			return fmt.Errorf("failed to create authenticated client: %v", err)
		}
		client = authClient
	}

	_, count, err := client.From(ProfileTable).Delete("", "exact").Eq("id", id).Execute()
	if err != nil {
		return fmt.Errorf("failed to delete user: %v: %w", err, ErrStore)
	}
	if count == 0 {
		return fmt.Errorf("no user found to delete: %w", ErrNotFound)
	}

	return nil
}

func (su *SupabaseRepo) UploadAvatar(ctx context.Context, userId string, avatarURL string, accessToken string) (string, error) {
	client := su.supabaseClient
	if accessToken != "" {
		authClient, err := su.GetAuthenticatedClient(accessToken)
		if err != nil {
			return "", fmt.Errorf("failed to create authenticated client: %v", err)
		}
		client = authClient
	}

	raw, count, err := client.From(ProfileTable).Update(map[string]interface{}{
		"avatar_url": avatarURL,
	}, "", "exact").Eq("id", userId).Execute()
	if err != nil {
		return "", fmt.Errorf("failed to upload avatar: %v: %w", err, ErrStore)
	}
	if count == 0 {
		return "", fmt.Errorf("no user found to update avatar: %w", ErrNotFound)
	}

	var rawUsers []map[string]interface{}
	if err := json.Unmarshal(raw, &rawUsers); err != nil {
		return "", fmt.Errorf("failed to unmarshal updated user data: %v", err)
	}
	if len(rawUsers) == 0 {
		return "", fmt.Errorf("no user data returned after avatar upload: %w", ErrStore)
	}

	updatedUser, err := ConvertToUser(rawUsers[0])
	if err != nil {
		return "", fmt.Errorf("failed to convert updated user data: %v", err)
	}

	return updatedUser.AvatarURL, nil
}
