package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/roam/internal/helpers"
	"github.com/joshua-takyi/roam/internal/services"
)

func SendMessageHandler(m *services.MessageService, u *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := bookingID(c)
		if !ok {
			return
		}
		claims, ok := claimsFromContext(c)
		if !ok {
			return
		}

		var req struct {
			Message string `json:"message" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, helpers.ErrorResponse(err.Error()))
			return
		}

		senderName := claims.Email
		if accessToken, err := c.Cookie("access_token"); err == nil {
			if profile, err := u.GetUser(claims.UserID, accessToken); err == nil && profile.FullName != "" {
				senderName = profile.FullName
			}
		}

		message, err := m.SendMessage(c.Request.Context(), id, claims.UserID, senderName, strings.TrimSpace(req.Message))
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusCreated, helpers.SuccessResponse(message, ""))
	}
}

func ListMessagesHandler(m *services.MessageService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := bookingID(c)
		if !ok {
			return
		}
		claims, ok := claimsFromContext(c)
		if !ok {
			return
		}

		messages, err := m.ListThread(c.Request.Context(), id, claims.UserID)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, helpers.SuccessResponse(messages, ""))
	}
}
