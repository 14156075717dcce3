package models

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Route status values
const (
	RouteStatusActive    = "ACTIVE"
	RouteStatusCancelled = "CANCELLED"
)

// Route represents a published offer to drive between two points
// at a scheduled time. Coordinates are nullable but pairwise complete:
// a route either has both members of a (lat, lng) pair or neither.
type Route struct {
	ID             uuid.UUID  `json:"id" db:"id"`
	UserID         uuid.UUID  `json:"user_id" db:"user_id"`
	Origin         string     `json:"origin" db:"origin"`
	Destination    string     `json:"destination" db:"destination"`
	OriginLat      *float64   `json:"origin_lat" db:"origin_lat"`
	OriginLng      *float64   `json:"origin_lng" db:"origin_lng"`
	DestinationLat *float64   `json:"destination_lat" db:"destination_lat"`
	DestinationLng *float64   `json:"destination_lng" db:"destination_lng"`
	PathGeoJSON    NullString `json:"path_geojson" db:"path_geojson"`
	DateTime       time.Time  `json:"date_time" db:"date_time"`
	Seats          *int       `json:"seats" db:"seats"`
	Status         string     `json:"status" db:"status"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
}

// HasCoordinates reports whether both endpoint coordinate pairs are set
func (r *Route) HasCoordinates() bool {
	return r.OriginLat != nil && r.OriginLng != nil &&
		r.DestinationLat != nil && r.DestinationLng != nil
}

// RouteWithCount is a Route annotated with its active reservation count.
// AvailableSeats is derived on read and is null when seats is unspecified.
type RouteWithCount struct {
	Route
	ActiveRides int `json:"active_rides" db:"active_rides"`
}

// MarshalJSON adds the derived available_seats field
func (r RouteWithCount) MarshalJSON() ([]byte, error) {
	type Alias RouteWithCount
	var available *int
	if r.Seats != nil {
		n := *r.Seats - r.ActiveRides
		available = &n
	}
	return json.Marshal(&struct {
		Alias
		AvailableSeats *int `json:"available_seats"`
	}{
		Alias:          Alias(r),
		AvailableSeats: available,
	})
}

// RouteDetail is a RouteWithCount with the owning driver's profile attached
type RouteDetail struct {
	RouteWithCount
	Driver UserProfile `json:"driver"`
}

// CreateRouteRequest is the payload for publishing a route
type CreateRouteRequest struct {
	Origin      string          `json:"origin" binding:"required"`
	Destination string          `json:"destination" binding:"required"`
	Directions  json.RawMessage `json:"directions"`
	DateTime    time.Time       `json:"date_time" binding:"required"`
	Seats       *int            `json:"seats"`
	Phone       string          `json:"phone"`
}

// UpcomingRoutesRequest carries the query parameters for the
// keyset-paginated upcoming listing
type UpcomingRoutesRequest struct {
	Date   *time.Time
	Cursor *RouteCursor
	Limit  int
}

// CancelRouteResult is returned by the owner cancellation: the cancelled
// route plus every reservation the cancellation cascaded to
type CancelRouteResult struct {
	Route          Route      `json:"route"`
	CancelledRides []UserRide `json:"cancelled_rides"`
}

// NullTime wraps sql.NullTime to provide proper JSON marshaling
type NullTime struct {
	sql.NullTime
}

// MarshalJSON implements json.Marshaler
func (nt NullTime) MarshalJSON() ([]byte, error) {
	if nt.Valid {
		return json.Marshal(nt.Time)
	}
	return json.Marshal(nil)
}

// UnmarshalJSON implements json.Unmarshaler
func (nt *NullTime) UnmarshalJSON(data []byte) error {
	var t *time.Time
	if err := json.Unmarshal(data, &t); err != nil {
		return err
	}
	if t != nil {
		nt.Valid = true
		nt.Time = *t
	} else {
		nt.Valid = false
	}
	return nil
}
