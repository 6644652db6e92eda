package handlers

import (
	"fmt"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/roam/internal/services"
	"github.com/supabase-community/gotrue-go/types"
)

func frontendURL() string {
	if v := os.Getenv("FRONTEND_URL"); v != "" {
		return v
	}
	if os.Getenv("GIN_MODE") == "production" {
		return "https://roam.example.com"
	}
	return "http://localhost:3000"
}

// GoogleAuth initiates the Google OAuth flow via Supabase.
func GoogleAuth(u *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		redirectTo := c.Query("redirect_to")
		if redirectTo == "" {
			redirectTo = frontendURL() + "/auth/callback"
		}

		authURL, err := u.GetGoogleAuthURL(redirectTo)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "Failed to generate Google auth URL",
				"message": err.Error(),
			})
			return
		}

		c.Redirect(http.StatusTemporaryRedirect, authURL)
	}
}

// GoogleAuthCallback handles the redirect back from Google. Supabase sends
// tokens as URL fragments, which never reach the server, so this endpoint
// only surfaces errors and bounces the browser to the frontend callback page.
func GoogleAuthCallback(u *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authErr := c.Query("error")
		errorDescription := c.Query("error_description")

		if authErr != "" {
			redirectURL := fmt.Sprintf("%s/auth/signin?error=%s&error_description=%s",
				frontendURL(), authErr, errorDescription)
			c.Redirect(http.StatusTemporaryRedirect, redirectURL)
			return
		}

		c.Redirect(http.StatusTemporaryRedirect, frontendURL()+"/auth/callback")
	}
}

// RefreshToken exchanges the refresh_token cookie for a fresh session and
// rewrites both cookies.
func RefreshToken(u *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		refreshToken, err := c.Cookie("refresh_token")
		if err != nil || refreshToken == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "refresh token not found"})
			return
		}

		response, err := u.RefreshToken(refreshToken)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}

		isProduction := os.Getenv("GIN_MODE") == "production"
		if tokenRes, ok := response.(*types.TokenResponse); ok && tokenRes.AccessToken != "" {
			c.SetCookie("access_token", tokenRes.AccessToken, tokenRes.ExpiresIn, "/", "", isProduction, true)
			c.SetCookie("refresh_token", tokenRes.RefreshToken, 3600*24*30, "/", "", isProduction, true)
			c.JSON(http.StatusOK, gin.H{"user": tokenRes.User})
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{"error": "invalid token response"})
	}
}

// Logout clears the auth cookies.
func Logout() gin.HandlerFunc {
	return func(c *gin.Context) {
		isProduction := os.Getenv("GIN_MODE") == "production"

		c.SetCookie("access_token", "", -1, "/", "", isProduction, true)
		c.SetCookie("refresh_token", "", -1, "/", "", isProduction, true)

		c.JSON(http.StatusOK, gin.H{
			"message": "Logged out successfully",
		})
	}
}
