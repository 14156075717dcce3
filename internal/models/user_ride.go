package models

import (
	"time"

	"github.com/google/uuid"
)

// UserRide status values
const (
	RideStatusActive    = "ACTIVE"
	RideStatusCancelled = "CANCELLED"
)

// UserRide represents a passenger's claim on one seat of a Route.
// At most one row exists per (user, route) pair; the unique index on
// (user_id, route_id) enforces it.
type UserRide struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	RouteID   uuid.UUID `json:"route_id" db:"route_id"`
	Status    string    `json:"status" db:"status"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// PassengerRide is a UserRide with the embedded route and driver profile,
// as returned by the passenger's "my rides" listing
type PassengerRide struct {
	UserRide
	Route  Route       `json:"route"`
	Driver UserProfile `json:"driver"`
}

// RoutePassenger is an active UserRide with the passenger's profile,
// visible only to the route owner
type RoutePassenger struct {
	UserRide
	Passenger UserProfile `json:"passenger"`
}

// SignUpRequest is the payload for reserving a seat on a route
type SignUpRequest struct {
	Phone string `json:"phone"`
}

// RideStatusResponse reports the caller's reservation status for a route.
// Status is null when the caller never signed up.
type RideStatusResponse struct {
	Status *string `json:"status"`
}
