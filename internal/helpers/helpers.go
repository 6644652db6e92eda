package helpers

import (
	"context"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/golang-jwt/jwt/v5"
)

const (
	AvatarFolder     = "avatars"
	ExperienceFolder = "experiences"
)

type CustomClaims struct {
	Role        string `json:"role"`
	Email       string `json:"email"`
	AppMetadata struct {
		Provider  string   `json:"provider"`
		Providers []string `json:"providers"`
		Roles     []string `json:"roles,omitempty"`
	} `json:"app_metadata"`
	UserMetadata map[string]interface{} `json:"user_metadata"`
	jwt.RegisteredClaims
}

func ValidateToken(tokenStr string) (*CustomClaims, error) {
	supabaseURL := os.Getenv("SUPABASE_URL")
	if supabaseURL == "" {
		return nil, errors.New("SUPABASE_URL not set")
	}

	jwksURL := fmt.Sprintf("%s/rest/v1/auth/jwks", supabaseURL)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	jwks, err := keyfunc.Get(jwksURL, keyfunc.Options{
		Ctx: ctx,
	})
	if err != nil {
		// In production a JWKS outage must fail closed; an unverified token
		// is worthless as proof of identity.
		if os.Getenv("ENVIRONMENT") == "production" {
			return nil, fmt.Errorf("JWKS fetch failed: %v", err)
		}
		// Fallback to unverified parsing if JWKS fails (for development)
		token, _, parseErr := jwt.NewParser().ParseUnverified(tokenStr, &CustomClaims{})
		if parseErr != nil {
			return nil, fmt.Errorf("JWKS validation failed and fallback parsing failed: %v", parseErr)
		}
		claims, ok := token.Claims.(*CustomClaims)
		if !ok {
			return nil, errors.New("invalid token claims")
		}
		return claims, nil
	}
	defer jwks.EndBackground()

	token, err := jwt.ParseWithClaims(tokenStr, &CustomClaims{}, jwks.Keyfunc)
	if err != nil {
		return nil, fmt.Errorf("token validation failed: %v", err)
	}

	claims, ok := token.Claims.(*CustomClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid or expired token")
	}

	return claims, nil
}

func IsPasswordStrong(password string) bool {
	if len(password) < 8 {
		return false
	}
	hasLower := regexp.MustCompile(`[a-z]`).MatchString(password)
	hasUpper := regexp.MustCompile(`[A-Z]`).MatchString(password)
	hasNumber := regexp.MustCompile(`\d`).MatchString(password)
	hasSpecial := regexp.MustCompile(`[@$!%*?&]`).MatchString(password)
	return hasLower && hasUpper && hasNumber && hasSpecial
}

func StringTrim(s string) string {
	s = strings.TrimSpace(s)
	return strings.Trim(s, "\"'")
}

// UploadImages pushes local file paths or data URIs to Cloudinary and
// returns the secure URLs together with the public IDs for later cleanup.
func UploadImages(ctx context.Context, cld *cloudinary.Cloudinary, imageNames []string, imagePath string) ([]string, []string, error) {
	var urls []string
	var publicIDs []string

	for _, filePath := range imageNames {
		if strings.TrimSpace(filePath) == "" {
			continue
		}
		uploadResult, err := cld.Upload.Upload(ctx, filePath, uploader.UploadParams{
			Folder: imagePath,
			Tags:   []string{"roam-app"},
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to upload image %s: %v", filePath, err)
		}

		urls = append(urls, uploadResult.SecureURL)
		publicIDs = append(publicIDs, uploadResult.PublicID)
	}

	return urls, publicIDs, nil
}

// DeleteImages removes previously uploaded assets. Best effort; a failed
// delete leaves an orphaned asset, not broken state.
func DeleteImages(ctx context.Context, cld *cloudinary.Cloudinary, imagePath string, publicIDs []string) {
	for _, publicID := range publicIDs {
		_, _ = cld.Upload.Destroy(ctx, uploader.DestroyParams{
			PublicID: publicID,
		})
	}
}
