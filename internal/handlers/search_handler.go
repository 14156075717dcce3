package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/prevozi/carpool-backend/internal/models"
	"github.com/prevozi/carpool-backend/internal/services"
)

// SearchHandler handles proximity-search HTTP requests
type SearchHandler struct {
	searchService *services.SearchService
	logger        *logrus.Logger
}

// NewSearchHandler creates a new search handler
func NewSearchHandler(searchService *services.SearchService, logger *logrus.Logger) *SearchHandler {
	return &SearchHandler{
		searchService: searchService,
		logger:        logger,
	}
}

// Search handles GET /api/v1/routes/search
//
// Required query parameters: origin_lat, origin_lng, destination_lat,
// destination_lng, date (YYYY-MM-DD). Optional: origin_radius_km,
// destination_radius_km (config default applies when omitted).
func (h *SearchHandler) Search(c *gin.Context) {
	var req models.SearchRequest
	var ok bool

	if req.OriginLat, ok = h.parseCoord(c, "origin_lat"); !ok {
		return
	}
	if req.OriginLng, ok = h.parseCoord(c, "origin_lng"); !ok {
		return
	}
	if req.DestinationLat, ok = h.parseCoord(c, "destination_lat"); !ok {
		return
	}
	if req.DestinationLng, ok = h.parseCoord(c, "destination_lng"); !ok {
		return
	}

	dateStr := c.Query("date")
	if dateStr == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Missing required parameter: date",
		})
		return
	}
	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid date, expected YYYY-MM-DD",
		})
		return
	}
	req.Date = date

	if req.OriginRadiusKm, ok = h.parseRadius(c, "origin_radius_km"); !ok {
		return
	}
	if req.DestinationRadiusKm, ok = h.parseRadius(c, "destination_radius_km"); !ok {
		return
	}

	resp, err := h.searchService.SearchRoutes(&req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *SearchHandler) parseCoord(c *gin.Context, name string) (float64, bool) {
	raw := c.Query(name)
	if raw == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Missing required parameter: " + name,
		})
		return 0, false
	}
	val, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid value for " + name,
		})
		return 0, false
	}
	return val, true
}

func (h *SearchHandler) parseRadius(c *gin.Context, name string) (float64, bool) {
	raw := c.Query(name)
	if raw == "" {
		// Zero means "use the configured default".
		return 0, true
	}
	val, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid value for " + name,
		})
		return 0, false
	}
	return val, true
}
