package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/roam/internal/helpers"
	"github.com/joshua-takyi/roam/internal/models"
	"github.com/joshua-takyi/roam/internal/services"
)

func bookingID(c *gin.Context) (string, bool) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		c.JSON(http.StatusBadRequest, helpers.ErrorResponse("booking ID is required"))
		return "", false
	}
	return id, true
}

func CreateBookingHandler(b *services.BookingService, u *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := claimsFromContext(c)
		if !ok {
			return
		}

		var req struct {
			ExperienceID string `json:"experienceId" binding:"required"`
			Date         string `json:"date" binding:"required"`
			Time         string `json:"time" binding:"required"`
			Participants int    `json:"participants" binding:"required"`
			Message      string `json:"message"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, helpers.ErrorResponse(err.Error()))
			return
		}

		draft := &models.Booking{
			ExperienceID: req.ExperienceID,
			GuestID:      claims.UserID,
			GuestName:    claims.Email,
			GuestEmail:   claims.Email,
			Date:         req.Date,
			Time:         req.Time,
			Participants: req.Participants,
			Message:      strings.TrimSpace(req.Message),
		}
		if accessToken, err := c.Cookie("access_token"); err == nil {
			if profile, err := u.GetUser(claims.UserID, accessToken); err == nil && profile.FullName != "" {
				draft.GuestName = profile.FullName
			}
		}

		created, err := b.CreateBooking(c.Request.Context(), draft)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusCreated, helpers.SuccessResponse(created, "Booking request sent"))
	}
}

func ListGuestBookings(b *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := claimsFromContext(c)
		if !ok {
			return
		}

		bookings, err := b.ListForGuest(c.Request.Context(), claims.UserID)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, helpers.SuccessResponse(bookings, ""))
	}
}

func ListHostBookings(b *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := claimsFromContext(c)
		if !ok {
			return
		}

		bookings, err := b.ListForHost(c.Request.Context(), claims.UserID)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, helpers.SuccessResponse(bookings, ""))
	}
}

func GetBookingHandler(b *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := bookingID(c)
		if !ok {
			return
		}
		claims, ok := claimsFromContext(c)
		if !ok {
			return
		}

		booking, err := b.GetBooking(c.Request.Context(), id, claims.UserID)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, helpers.SuccessResponse(booking, ""))
	}
}

// UpdateBookingStatusHandler drives the lifecycle: hosts confirm, reject, or
// complete, either party cancels. Permission and transition checks live in
// the service.
func UpdateBookingStatusHandler(b *services.BookingService) gin.HandlerFunc {
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
			Status       string `json:"status" binding:"required"`
			HostResponse string `json:"hostResponse"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, helpers.ErrorResponse(err.Error()))
			return
		}

		updated, err := b.UpdateBookingStatus(c.Request.Context(), id,
			models.BookingStatus(strings.ToLower(strings.TrimSpace(req.Status))),
			strings.TrimSpace(req.HostResponse), claims.UserID)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, helpers.SuccessResponse(updated, "Booking status updated"))
	}
}

func CancelBookingHandler(b *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := bookingID(c)
		if !ok {
			return
		}
		claims, ok := claimsFromContext(c)
		if !ok {
			return
		}

		if err := b.CancelBooking(c.Request.Context(), id, claims.UserID); err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, helpers.SuccessResponse(nil, "Booking cancelled"))
	}
}
