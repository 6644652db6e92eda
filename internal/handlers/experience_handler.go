package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/roam/internal/helpers"
	"github.com/joshua-takyi/roam/internal/models"
	"github.com/joshua-takyi/roam/internal/services"
)

func paginationParams(c *gin.Context) (offset, limit int, ok bool) {
	limitStr := c.DefaultQuery("limit", "10")
	offsetStr := c.DefaultQuery("offset", "0")
	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit <= 0 {
		c.JSON(http.StatusBadRequest, helpers.ErrorResponse("invalid limit parameter"))
		return 0, 0, false
	}
	offset, err = strconv.Atoi(offsetStr)
	if err != nil || offset < 0 {
		c.JSON(http.StatusBadRequest, helpers.ErrorResponse("invalid offset parameter"))
		return 0, 0, false
	}
	return offset, limit, true
}

func experienceID(c *gin.Context) (string, bool) {
	// Trim quotes too; clients sometimes pass values as JSON strings.
	id := helpers.StringTrim(c.Param("id"))
	if id == "" {
		c.JSON(http.StatusBadRequest, helpers.ErrorResponse("experience ID is required"))
		return "", false
	}
	return id, true
}

func CreateExperienceHandler(e *services.ExperienceService, u *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := claimsFromContext(c)
		if !ok {
			return
		}
		if !claims.IsHost() && !claims.IsAdmin() {
			c.JSON(http.StatusForbidden, helpers.ErrorResponse("only users with host role can create experiences"))
			return
		}

		var experience models.Experience
		if err := c.ShouldBindJSON(&experience); err != nil {
			c.JSON(http.StatusBadRequest, helpers.ErrorResponse(err.Error()))
			return
		}

		host := models.HostSummary{ID: claims.UserID, Name: claims.Email}
		if accessToken, err := c.Cookie("access_token"); err == nil {
			if profile, err := u.GetUser(claims.UserID, accessToken); err == nil {
				host.Name = profile.FullName
				host.AvatarURL = profile.AvatarURL
			}
		}

		created, err := e.CreateExperience(c.Request.Context(), &experience, host)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusCreated, helpers.SuccessResponse(created, "Experience created successfully"))
	}
}

func ListExperiences(e *services.ExperienceService) gin.HandlerFunc {
	return func(c *gin.Context) {
		offset, limit, ok := paginationParams(c)
		if !ok {
			return
		}

		filter := models.ExperienceFilter{
			Category: models.Category(c.Query("category")),
			Location: strings.TrimSpace(c.Query("location")),
		}
		if raw := c.Query("min_price"); raw != "" {
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil || v < 0 {
				c.JSON(http.StatusBadRequest, helpers.ErrorResponse("invalid min_price parameter"))
				return
			}
			filter.MinPrice = v
		}
		if raw := c.Query("max_price"); raw != "" {
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil || v < 0 {
				c.JSON(http.StatusBadRequest, helpers.ErrorResponse("invalid max_price parameter"))
				return
			}
			filter.MaxPrice = v
		}

		experiences, total, err := e.ListExperiences(c.Request.Context(), filter, offset, limit)
		if err != nil {
			respondError(c, err)
			return
		}

		for _, experience := range experiences {
			experience.MeetingPoint = ""
		}

		page := (offset / limit) + 1
		c.JSON(http.StatusOK, helpers.PaginatedResponse(experiences, page, limit, total))
	}
}

// GetExperienceHandler returns one experience with its live attendee count.
// The meeting point stays host-private: it is blanked unless the requester
// owns the listing.
func GetExperienceHandler(e *services.ExperienceService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := experienceID(c)
		if !ok {
			return
		}

		experience, err := e.GetExperience(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}

		claims := requesterClaims(c)
		if claims == nil || experience.Host.ID != claims.UserID {
			experience.MeetingPoint = ""
		}

		c.JSON(http.StatusOK, helpers.SuccessResponse(experience, ""))
	}
}

func UpdateExperienceHandler(e *services.ExperienceService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := experienceID(c)
		if !ok {
			return
		}
		claims, ok := claimsFromContext(c)
		if !ok {
			return
		}

		var updates map[string]interface{}
		if err := c.ShouldBindJSON(&updates); err != nil {
			c.JSON(http.StatusBadRequest, helpers.ErrorResponse(err.Error()))
			return
		}

		updated, err := e.UpdateExperience(c.Request.Context(), id, updates, claims.UserID)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, helpers.SuccessResponse(updated, "Experience updated successfully"))
	}
}

func DeleteExperienceHandler(e *services.ExperienceService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := experienceID(c)
		if !ok {
			return
		}
		claims, ok := claimsFromContext(c)
		if !ok {
			return
		}

		if err := e.DeleteExperience(c.Request.Context(), id, claims.UserID, claims.IsAdmin()); err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, helpers.SuccessResponse(nil, "experience deleted successfully"))
	}
}

func ListExperiencesByHost(e *services.ExperienceService) gin.HandlerFunc {
	return func(c *gin.Context) {
		offset, limit, ok := paginationParams(c)
		if !ok {
			return
		}

		hostID := strings.TrimSpace(c.Param("host_id"))
		if hostID == "" {
			c.JSON(http.StatusBadRequest, helpers.ErrorResponse("host ID is required"))
			return
		}

		experiences, total, err := e.ListExperiencesByHost(c.Request.Context(), hostID, offset, limit)
		if err != nil {
			respondError(c, err)
			return
		}

		// Meeting points stay host-private here too; only the host (or an
		// admin) sees them on their own listing.
		claims := requesterClaims(c)
		if claims == nil || (claims.UserID != hostID && !claims.IsAdmin()) {
			for _, experience := range experiences {
				experience.MeetingPoint = ""
			}
		}

		page := (offset / limit) + 1
		c.JSON(http.StatusOK, helpers.PaginatedResponse(experiences, page, limit, total))
	}
}
