package handlers

import (
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joshua-takyi/roam/internal/models"
	"github.com/joshua-takyi/roam/internal/services"
	"github.com/supabase-community/gotrue-go/types"
)

func CreateUser(u *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var user models.User
		if err := c.ShouldBindJSON(&user); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		createdUser, err := u.CreateUser(&user)
		if err != nil {
			c.JSON(httpStatus(err), gin.H{"error": err.Error()})
			return
		}

		c.JSON(201, createdUser)
	}
}

func AuthenticateUser(u *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Email    string `json:"email" binding:"required,email"`
			Password string `json:"password" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(400, gin.H{"error": err.Error(), "message": "invalid request payload"})
			return
		}

		authResponse, err := u.AuthenticateUser(req.Email, req.Password)
		if err != nil {
			c.JSON(401, gin.H{"error": err.Error(), "message": "invalid email or password"})
			return
		}

		isProduction := os.Getenv("GIN_MODE") == "production"

		if tokenRes, ok := authResponse.(*types.TokenResponse); ok && tokenRes.AccessToken != "" {
			// Access token lifetime comes from Supabase (usually one hour).
			c.SetCookie(
				"access_token",
				tokenRes.AccessToken,
				tokenRes.ExpiresIn,
				"/",
				"", // let Gin pick current domain
				isProduction,
				true,
			)

			// Refresh token - expires in 30 days
			c.SetCookie(
				"refresh_token",
				tokenRes.RefreshToken,
				3600*24*30,
				"/",
				"",
				isProduction,
				true,
			)

			// Return user info but not tokens
			c.JSON(200, gin.H{
				"user": tokenRes.User,
			})
			return
		}

		c.JSON(500, gin.H{"error": "invalid token response"})
	}
}

func GetUser(u *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		if id == "" {
			c.JSON(400, gin.H{"error": "user ID is required"})
			return
		}
		if _, err := uuid.Parse(id); err != nil {
			c.JSON(400, gin.H{"error": "invalid user ID format"})
			return
		}

		claims, ok := claimsFromContext(c)
		if !ok {
			return
		}

		// Users can read their own profile; admins can read any.
		if claims.UserID != id && !claims.IsAdmin() {
			c.JSON(403, gin.H{"error": "access denied"})
			return
		}

		accessToken, err := c.Cookie("access_token")
		if err != nil {
			c.JSON(401, gin.H{"error": "access token not found"})
			return
		}

		user, err := u.GetUser(id, accessToken)
		if err != nil {
			c.JSON(httpStatus(err), gin.H{"error": err.Error()})
			return
		}

		c.JSON(200, user)
	}
}

func UpdateUser(u *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		paramId := strings.TrimSpace(c.Param("id"))
		if paramId == "" {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "user ID is required",
			})
			return
		}

		var user map[string]interface{}
		if err := c.ShouldBindJSON(&user); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		claims, ok := claimsFromContext(c)
		if !ok {
			return
		}
		if _, err := uuid.Parse(paramId); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		accessToken, err := c.Cookie("access_token")
		if err != nil {
			c.JSON(401, gin.H{"error": "Access token not found"})
			return
		}

		if claims.UserID != paramId && !claims.IsAdmin() {
			c.JSON(403, gin.H{"error": "Access denied"})
			return
		}

		data, err := u.UpdateUser(c.Request.Context(), user, paramId, accessToken)
		if err != nil {
			c.JSON(httpStatus(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(200, data)
	}
}

func DeleteUser(u *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		paramId := strings.TrimSpace(c.Param("id"))
		if paramId == "" {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "user ID is required",
			})
			return
		}

		claims, ok := claimsFromContext(c)
		if !ok {
			return
		}

		if _, err := uuid.Parse(paramId); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		accessToken, err := c.Cookie("access_token")
		if err != nil {
			c.JSON(401, gin.H{"error": "Access token not found"})
			return
		}
		if !claims.IsAdmin() {
			c.JSON(403, gin.H{"error": "Access denied: only admins can delete users"})
			return
		}

		if err := u.DeleteUser(c.Request.Context(), paramId, accessToken); err != nil {
			c.JSON(httpStatus(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(200, gin.H{"message": "user deleted successfully"})
	}
}

func UploadAvatar(u *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var imageData string
		if err := c.ShouldBindJSON(&imageData); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		claims, ok := claimsFromContext(c)
		if !ok {
			return
		}
		accessToken, err := c.Cookie("access_token")
		if err != nil {
			c.JSON(401, gin.H{"error": "Access token not found"})
			return
		}
		avatarURL, err := u.UploadAvatar(c.Request.Context(), claims.UserID, imageData, accessToken)
		if err != nil {
			c.JSON(httpStatus(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(200, gin.H{"avatar_url": avatarURL})
	}
}
