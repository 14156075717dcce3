package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/prevozi/carpool-backend/internal/middleware"
	"github.com/prevozi/carpool-backend/internal/models"
	"github.com/prevozi/carpool-backend/internal/services"
)

// RouteHandler handles route-related HTTP requests
type RouteHandler struct {
	routeService *services.RouteService
	logger       *logrus.Logger
}

// NewRouteHandler creates a new route handler
func NewRouteHandler(routeService *services.RouteService, logger *logrus.Logger) *RouteHandler {
	return &RouteHandler{
		routeService: routeService,
		logger:       logger,
	}
}

// CreateRoute handles POST /api/v1/routes
func (h *RouteHandler) CreateRoute(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		respondUnauthorized(c)
		return
	}

	var req models.CreateRouteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid request body: " + err.Error(),
		})
		return
	}

	route, err := h.routeService.CreateRoute(userCtx.UserID, &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, route)
}

// ListMine handles GET /api/v1/routes/mine
func (h *RouteHandler) ListMine(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		respondUnauthorized(c)
		return
	}

	routes, err := h.routeService.ListOwnRoutes(userCtx.UserID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"routes": routes})
}

// ListUpcoming handles GET /api/v1/routes/upcoming
//
// Query parameters: date (YYYY-MM-DD, optional), cursor (opaque token from
// a previous page, optional), limit (optional).
func (h *RouteHandler) ListUpcoming(c *gin.Context) {
	var req models.UpcomingRoutesRequest

	if dateStr := c.Query("date"); dateStr != "" {
		date, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "validation_error",
				Message: "Invalid date, expected YYYY-MM-DD",
			})
			return
		}
		req.Date = &date
	}

	if token := c.Query("cursor"); token != "" {
		cursor, err := models.DecodeRouteCursor(token)
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		req.Cursor = cursor
	}

	if limitStr := c.Query("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit <= 0 {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "validation_error",
				Message: "Invalid limit, expected a positive integer",
			})
			return
		}
		req.Limit = limit
	}

	page, err := h.routeService.ListUpcoming(req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

// GetRoute handles GET /api/v1/routes/:id
func (h *RouteHandler) GetRoute(c *gin.Context) {
	routeID, ok := h.parseRouteID(c)
	if !ok {
		return
	}

	detail, err := h.routeService.GetRoute(routeID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, detail)
}

// CancelRoute handles POST /api/v1/routes/:id/cancel
func (h *RouteHandler) CancelRoute(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		respondUnauthorized(c)
		return
	}

	routeID, ok := h.parseRouteID(c)
	if !ok {
		return
	}

	result, err := h.routeService.CancelRoute(userCtx.UserID, routeID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// DeleteRoute handles DELETE /api/v1/routes/:id
func (h *RouteHandler) DeleteRoute(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		respondUnauthorized(c)
		return
	}

	routeID, ok := h.parseRouteID(c)
	if !ok {
		return
	}

	route, err := h.routeService.DeleteRoute(userCtx.UserID, routeID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Route deleted",
		"route":   route,
	})
}

// ListPassengers handles GET /api/v1/routes/:id/passengers
func (h *RouteHandler) ListPassengers(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		respondUnauthorized(c)
		return
	}

	routeID, ok := h.parseRouteID(c)
	if !ok {
		return
	}

	passengers, err := h.routeService.ListPassengers(userCtx.UserID, routeID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"passengers": passengers})
}

func (h *RouteHandler) parseRouteID(c *gin.Context) (uuid.UUID, bool) {
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
