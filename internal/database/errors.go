// Sentinel errors shared by the repositories. Higher layers match on
// these to map storage outcomes onto the HTTP error taxonomy instead of
// inspecting driver errors.
package database

import "errors"

// ErrUserNotFound is returned when no user row matches the lookup
var ErrUserNotFound = errors.New("user not found")

// ErrEmailTaken is returned when a registration collides with an
// existing email. Handlers translate this into HTTP 409.
var ErrEmailTaken = errors.New("email already registered")

// ErrRouteNotFound is returned when no route row matches the lookup
var ErrRouteNotFound = errors.New("route not found")

// ErrRideNotFound is returned when the caller has no reservation row
// for the route
var ErrRideNotFound = errors.New("ride not found")

// ErrNoSeatsAvailable is returned by the seat-guarded signup when the
// active reservation count has reached the offered seat count. Handlers
// translate this into HTTP 400.
var ErrNoSeatsAvailable = errors.New("no seats available")

// ErrDuplicateRide is returned when a reservation row already exists for
// the (user, route) pair. Handlers translate this into HTTP 409.
var ErrDuplicateRide = errors.New("ride already exists for this route")
