package models

import (
	"fmt"
	"math"
	"time"
)

// SearchRequest represents a passenger's proximity search query.
// Date carries calendar-day semantics: it is collapsed to the UTC day
// window [00:00:00.000, 23:59:59.999] before hitting storage.
type SearchRequest struct {
	OriginLat           float64
	OriginLng           float64
	DestinationLat      float64
	DestinationLng      float64
	Date                time.Time
	OriginRadiusKm      float64
	DestinationRadiusKm float64
}

// Validate rejects non-finite or out-of-range inputs before they reach
// the storage layer
func (r *SearchRequest) Validate() error {
	coords := []struct {
		name     string
		val      float64
		min, max float64
	}{
		{"origin latitude", r.OriginLat, -90, 90},
		{"origin longitude", r.OriginLng, -180, 180},
		{"destination latitude", r.DestinationLat, -90, 90},
		{"destination longitude", r.DestinationLng, -180, 180},
	}
	for _, c := range coords {
		if math.IsNaN(c.val) || math.IsInf(c.val, 0) {
			return NewValidationError(fmt.Sprintf("%s must be a finite number", c.name))
		}
		if c.val < c.min || c.val > c.max {
			return NewValidationError(fmt.Sprintf("%s must be between %g and %g", c.name, c.min, c.max))
		}
	}
	if r.OriginRadiusKm < 0 || r.DestinationRadiusKm < 0 {
		return NewValidationError("search radius cannot be negative")
	}
	if math.IsNaN(r.OriginRadiusKm) || math.IsInf(r.OriginRadiusKm, 0) ||
		math.IsNaN(r.DestinationRadiusKm) || math.IsInf(r.DestinationRadiusKm, 0) {
		return NewValidationError("search radius must be a finite number")
	}
	if r.Date.IsZero() {
		return NewValidationError("date is required")
	}
	if r.Date.Year() < 1 || r.Date.Year() > 9999 {
		return NewValidationError("date is out of range")
	}
	return nil
}

// DayWindow returns the UTC day bounds of the requested date
func (r *SearchRequest) DayWindow() (start, end time.Time) {
	start = time.Date(r.Date.Year(), r.Date.Month(), r.Date.Day(), 0, 0, 0, 0, time.UTC)
	end = start.Add(24*time.Hour - time.Millisecond)
	return start, end
}

// SearchResponse represents the proximity search results
type SearchResponse struct {
	Results      []RouteWithCount `json:"results"`
	SearchTimeMs int64            `json:"search_time_ms"`
}

// NewValidationError creates a new validation error with a message
func NewValidationError(message string) *ValidationError {
	return &ValidationError{Message: message}
}

// ValidationError represents a validation error
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
