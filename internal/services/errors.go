// Business-rule errors surfaced by the services. Each reflects a rule
// violation, not a transient fault; handlers map them onto the HTTP
// taxonomy and none are retried.
package services

import "errors"

// ErrNotRouteOwner is returned for owner-only actions attempted by
// another user. Maps to 403.
var ErrNotRouteOwner = errors.New("only the route owner can perform this action")

// ErrOwnRoute is returned when a driver attempts to reserve a seat on
// their own route. Maps to 403.
var ErrOwnRoute = errors.New("cannot sign up for your own route")

// ErrRouteDeparted is returned when the route's departure time has
// already passed. Maps to 400.
var ErrRouteDeparted = errors.New("route has already departed")

// ErrRouteNotActive is returned when the route has been cancelled.
// Maps to 400.
var ErrRouteNotActive = errors.New("route is no longer active")

// ErrAlreadySignedUp is returned when the caller already holds an active
// reservation for the route. Maps to 409.
var ErrAlreadySignedUp = errors.New("already signed up for this route")

// ErrPreviouslyCancelled is returned when the caller cancelled a
// reservation for this route before. Re-signup is deliberately blocked
// rather than silently reactivated; support has to intervene. Maps to 409.
var ErrPreviouslyCancelled = errors.New("previous signup for this route was cancelled; contact support to sign up again")

// ErrRideNotActive is returned when cancelling a reservation that is not
// active. Maps to 400.
var ErrRideNotActive = errors.New("ride is not active")
