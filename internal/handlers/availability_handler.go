package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/roam/internal/helpers"
	"github.com/joshua-takyi/roam/internal/services"
)

// GetAvailability serves the two-step disclosure the booking form walks
// through: without a date it lists the bookable dates, with ?date= it
// breaks one day down per time slot.
func GetAvailability(a *services.AvailabilityService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := experienceID(c)
		if !ok {
			return
		}

		date := strings.TrimSpace(c.Query("date"))
		if date == "" {
			dates, err := a.AvailableDates(c.Request.Context(), id)
			if err != nil {
				respondError(c, err)
				return
			}
			c.JSON(http.StatusOK, helpers.SuccessResponse(gin.H{"dates": dates}, ""))
			return
		}

		slots, err := a.DayAvailability(c.Request.Context(), id, date)
		if err != nil {
			respondError(c, err)
			return
		}
		fullyBooked, err := a.FullyBookedTimes(c.Request.Context(), id, date)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, helpers.SuccessResponse(gin.H{
			"date":         date,
			"times":        slots,
			"fully_booked": fullyBooked,
		}, ""))
	}
}

// GetOccupancy reports one slot's occupancy and the spots left in it.
func GetOccupancy(a *services.AvailabilityService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := experienceID(c)
		if !ok {
			return
		}

		date := strings.TrimSpace(c.Query("date"))
		timeStr := strings.TrimSpace(c.Query("time"))
		if date == "" || timeStr == "" {
			c.JSON(http.StatusBadRequest, helpers.ErrorResponse("date and time query parameters are required"))
			return
		}

		occupied, err := a.SlotOccupancy(c.Request.Context(), id, date, timeStr)
		if err != nil {
			respondError(c, err)
			return
		}
		spots, err := a.AvailableSpots(c.Request.Context(), id, date, timeStr)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, helpers.SuccessResponse(gin.H{
			"date":            date,
			"time":            timeStr,
			"occupied":        occupied,
			"available_spots": spots,
		}, ""))
	}
}
