package middleware

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joshua-takyi/roam/internal/helpers"
	"github.com/joshua-takyi/roam/internal/services"
	"github.com/supabase-community/gotrue-go/types"
)

// RequestID middleware adds a unique request ID to each request
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set("request_id", requestID)
		c.Header("X-Request-ID", requestID)
		c.Next()
	}
}

// StructuredLogger provides structured logging middleware
func StructuredLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		clientIP := c.ClientIP()
		method := c.Request.Method
		statusCode := c.Writer.Status()

		if raw != "" {
			path = path + "?" + raw
		}

		requestID, _ := c.Get("request_id")

		logger.Info("HTTP Request",
			"request_id", requestID,
			"method", method,
			"path", path,
			"status", statusCode,
			"latency", latency,
			"client_ip", clientIP,
		)
	}
}

// ErrorHandler provides centralized error handling
func ErrorHandler(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			err := c.Errors.Last()
			requestID, _ := c.Get("request_id")

			logger.Error("Request error",
				"request_id", requestID,
				"error", err.Error(),
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
			)

			// Don't return error details in production
			c.JSON(500, gin.H{
				"error":      "Internal server error",
				"request_id": requestID,
			})
		}
	}
}

// AuthMiddleware validates the access_token cookie, transparently refreshes
// an expired session with the refresh_token cookie, and stores enhanced
// claims (JWT claims plus profile data) in the request context.
func AuthMiddleware(userService *services.UserService, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie("access_token")
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"message": "Unauthorized access",
				"error":   "JWT token not found in cookie",
			})
			c.Abort()
			return
		}

		claims, err := helpers.ValidateToken(token)
		if err != nil {
			refreshToken, refreshErr := c.Cookie("refresh_token")
			if refreshErr != nil {
				c.JSON(http.StatusUnauthorized, gin.H{
					"message": "Unauthorized access",
					"error":   err.Error(),
				})
				c.Abort()
				return
			}

			refreshResponse, refreshErr := userService.RefreshToken(refreshToken)
			if refreshErr != nil {
				logger.Error("Token refresh failed", "error", refreshErr)
				c.JSON(http.StatusUnauthorized, gin.H{
					"message": "Unauthorized access",
					"error":   "Token expired and refresh failed",
				})
				c.Abort()
				return
			}

			isProduction := os.Getenv("GIN_MODE") == "production"
			if tokenRes, ok := refreshResponse.(*types.TokenResponse); ok && tokenRes.AccessToken != "" {
				logger.Info("Token refreshed successfully",
					"user_id", tokenRes.User.ID,
					"expires_in", tokenRes.ExpiresIn,
				)
				c.SetCookie(
					"access_token",
					tokenRes.AccessToken,
					tokenRes.ExpiresIn,
					"/",
					"", // let Gin pick current domain
					isProduction,
					true,
				)
				c.SetCookie(
					"refresh_token",
					tokenRes.RefreshToken,
					3600*24*30, // 30 days
					"/",
					"",
					isProduction,
					true,
				)
				token = tokenRes.AccessToken
				claims, err = helpers.ValidateToken(token)
				if err != nil {
					c.JSON(http.StatusUnauthorized, gin.H{
						"message": "Unauthorized access",
						"error":   "Refreshed token validation failed",
					})
					c.Abort()
					return
				}
			} else {
				c.JSON(http.StatusUnauthorized, gin.H{
					"message": "Unauthorized access",
					"error":   "Invalid refresh response",
				})
				c.Abort()
				return
			}
		}

		// Fetch profile data so role checks downstream see the profiles table,
		// not just the raw JWT.
		var profileRole, username, fullname, phoneNumber, avatarURL string
		var createdAt time.Time
		if _, parseErr := uuid.Parse(claims.Subject); parseErr != nil {
			logger.Error("Invalid user ID in token", "user_id", claims.Subject, "error", parseErr)
			profileRole = "guest"
		} else {
			user, err := userService.GetUser(claims.Subject, token)
			if err != nil {
				logger.Info("Profile not found, using default role",
					"user_id", claims.Subject,
					"error", err,
				)
				profileRole = "guest"
			} else {
				profileRole = user.Role
				if profileRole == "" {
					profileRole = "guest"
					logger.Info("Empty role in profile, defaulting to guest",
						"user_id", claims.Subject,
					)
				}
				phoneNumber = user.PhoneNumber
				fullname = user.FullName
				username = user.Username
				avatarURL = user.AvatarURL
				createdAt = user.CreatedAt
			}
		}

		enhancedClaims := &helpers.EnhancedClaims{
			CustomClaims: claims,
			Role:         profileRole,
			UserID:       claims.Subject,
			Username:     username,
			Email:        claims.Email,
			Fullname:     fullname,
			PhoneNumber:  phoneNumber,
			AvatarURL:    avatarURL,
			CreatedAt:    createdAt.Format(time.RFC3339),
		}

		c.Set("user", enhancedClaims)
		c.Next()
	}
}
