package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/prevozi/carpool-backend/internal/database"
	"github.com/prevozi/carpool-backend/internal/models"
	"github.com/prevozi/carpool-backend/internal/services"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// respondError maps service and storage errors onto the HTTP taxonomy.
// Unknown errors are logged and surfaced as an opaque 500 so internal
// details never leak to clients.
func respondError(c *gin.Context, logger *logrus.Logger, err error) {
	var verr *models.ValidationError
	if errors.As(err, &verr) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: verr.Message,
			Code:    "BAD_REQUEST",
		})
		return
	}

	switch {
	case errors.Is(err, database.ErrRouteNotFound),
		errors.Is(err, database.ErrRideNotFound),
		errors.Is(err, database.ErrUserNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "not_found",
			Message: err.Error(),
			Code:    "NOT_FOUND",
		})
	case errors.Is(err, services.ErrNotRouteOwner),
		errors.Is(err, services.ErrOwnRoute):
		c.JSON(http.StatusForbidden, ErrorResponse{
			Error:   "forbidden",
			Message: err.Error(),
			Code:    "FORBIDDEN",
		})
	case errors.Is(err, services.ErrRouteDeparted),
		errors.Is(err, services.ErrRouteNotActive),
		errors.Is(err, services.ErrRideNotActive),
		errors.Is(err, database.ErrNoSeatsAvailable):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "bad_request",
			Message: err.Error(),
			Code:    "BAD_REQUEST",
		})
	case errors.Is(err, services.ErrAlreadySignedUp),
		errors.Is(err, services.ErrPreviouslyCancelled),
		errors.Is(err, database.ErrDuplicateRide),
		errors.Is(err, database.ErrRouteHasRides),
		errors.Is(err, database.ErrEmailTaken):
		c.JSON(http.StatusConflict, ErrorResponse{
			Error:   "conflict",
			Message: err.Error(),
			Code:    "CONFLICT",
		})
	default:
		logger.WithError(err).WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.FullPath(),
		}).Error("Request failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "An internal error occurred",
		})
	}
}

func respondUnauthorized(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, ErrorResponse{
		Error:   "unauthorized",
		Message: "User context not found",
	})
}
