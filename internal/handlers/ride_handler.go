package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/prevozi/carpool-backend/internal/middleware"
	"github.com/prevozi/carpool-backend/internal/models"
	"github.com/prevozi/carpool-backend/internal/services"
)

// RideHandler handles seat-reservation HTTP requests
type RideHandler struct {
	rideService *services.RideService
	logger      *logrus.Logger
}

// NewRideHandler creates a new ride handler
func NewRideHandler(rideService *services.RideService, logger *logrus.Logger) *RideHandler {
	return &RideHandler{
		rideService: rideService,
		logger:      logger,
	}
}

// SignUp handles POST /api/v1/routes/:id/signup
func (h *RideHandler) SignUp(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		respondUnauthorized(c)
		return
	}

	routeID, ok := h.parseRouteID(c)
	if !ok {
		return
	}

	// The body is optional; phone is the only field it may carry.
	var req models.SignUpRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "validation_error",
				Message: "Invalid request body",
			})
			return
		}
	}

	ride, err := h.rideService.SignUp(userCtx.UserID, routeID, req.Phone)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, ride)
}

// CancelRide handles POST /api/v1/routes/:id/cancel-ride
func (h *RideHandler) CancelRide(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		respondUnauthorized(c)
		return
	}

	routeID, ok := h.parseRouteID(c)
	if !ok {
		return
	}

	if err := h.rideService.CancelRide(userCtx.UserID, routeID); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Ride cancelled"})
}

// MyRideStatus handles GET /api/v1/routes/:id/my-ride
func (h *RideHandler) MyRideStatus(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		respondUnauthorized(c)
		return
	}

	routeID, ok := h.parseRouteID(c)
	if !ok {
		return
	}

	status, err := h.rideService.RideStatus(userCtx.UserID, routeID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, status)
}

// ListMine handles GET /api/v1/rides/mine
func (h *RideHandler) ListMine(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		respondUnauthorized(c)
		return
	}

	rides, err := h.rideService.ListMyRides(userCtx.UserID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"rides": rides})
}

func (h *RideHandler) parseRouteID(c *gin.Context) (uuid.UUID, bool) {
	routeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid route id format",
		})
		return uuid.Nil, false
	}
	return routeID, true
}
