package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/roam/internal/helpers"
	"github.com/joshua-takyi/roam/internal/services"
)

func SaveExperienceHandler(s *services.SavedService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := experienceID(c)
		if !ok {
			return
		}
		claims, ok := claimsFromContext(c)
		if !ok {
			return
		}

		saved, err := s.SaveExperience(c.Request.Context(), claims.UserID, id)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, helpers.SuccessResponse(saved, "Experience saved"))
	}
}

func UnsaveExperienceHandler(s *services.SavedService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := experienceID(c)
		if !ok {
			return
		}
		claims, ok := claimsFromContext(c)
		if !ok {
			return
		}

		if err := s.UnsaveExperience(c.Request.Context(), claims.UserID, id); err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, helpers.SuccessResponse(nil, "Experience removed from saved"))
	}
}

func GetSavedHandler(s *services.SavedService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := claimsFromContext(c)
		if !ok {
			return
		}

		saved, err := s.GetSavedByUserID(c.Request.Context(), claims.UserID)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, helpers.SuccessResponse(saved, ""))
	}
}
