package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/roam/internal/helpers"
	"github.com/joshua-takyi/roam/internal/models"
)

// httpStatus maps the sentinel error taxonomy to response codes. Capacity
// conflicts get 409 so the client can tell "slot just became full" apart
// from "bad input".
func httpStatus(err error) int {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrCapacityExceeded):
		return http.StatusConflict
	case errors.Is(err, models.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrPermission):
		return http.StatusForbidden
	case errors.Is(err, models.ErrStore):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func respondError(c *gin.Context, err error) {
	c.JSON(httpStatus(err), helpers.ErrorResponse(err.Error()))
}

// requesterClaims returns the auth claims when the middleware stored them.
// Public routes simply have none and get nil.
func requesterClaims(c *gin.Context) *helpers.EnhancedClaims {
	if userClaims, exists := c.Get("user"); exists {
		if claims, ok := userClaims.(*helpers.EnhancedClaims); ok {
			return claims
		}
	}
	return nil
}

// claimsFromContext pulls the enhanced claims the auth middleware stored.
func claimsFromContext(c *gin.Context) (*helpers.EnhancedClaims, bool) {
	userClaims, exists := c.Get("user")
	if !exists {
		c.JSON(http.StatusUnauthorized, helpers.ErrorResponse("unauthorized"))
		return nil, false
	}
	claims, ok := userClaims.(*helpers.EnhancedClaims)
	if !ok {
		c.JSON(http.StatusInternalServerError, helpers.ErrorResponse("invalid user claims"))
		return nil, false
	}
	return claims, true
}
