package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/prevozi/carpool-backend/internal/models"
)

// ErrRouteHasRides is returned when a hard delete is attempted while
// reservation rows still reference the route
var ErrRouteHasRides = errors.New("route still has reservations")

const routeColumns = `
	id, user_id, origin, destination,
	origin_lat, origin_lng, destination_lat, destination_lng,
	path_geojson, date_time, seats, status, created_at`

// RouteRepository handles route database operations
type RouteRepository struct {
	db DB
}

// NewRouteRepository creates a new route repository
func NewRouteRepository(db DB) *RouteRepository {
	return &RouteRepository{
		db: db,
	}
}

// CreateRoute inserts a new route. ID, status and creation time are
// assigned here.
func (r *RouteRepository) CreateRoute(route *models.Route) (*models.Route, error) {
	route.ID = uuid.New()
	route.Status = models.RouteStatusActive
	route.CreatedAt = time.Now()

	query := `
		INSERT INTO routes (
			id, user_id, origin, destination,
			origin_lat, origin_lng, destination_lat, destination_lng,
			path_geojson, date_time, seats, status, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := r.db.Exec(
		query,
		route.ID,
		route.UserID,
		route.Origin,
		route.Destination,
		route.OriginLat,
		route.OriginLng,
		route.DestinationLat,
		route.DestinationLng,
		route.PathGeoJSON,
		route.DateTime,
		route.Seats,
		route.Status,
		route.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create route: %w", err)
	}

	return route, nil
}

// GetRouteByID retrieves a route by ID
func (r *RouteRepository) GetRouteByID(id uuid.UUID) (*models.Route, error) {
	var route models.Route

	query := `SELECT ` + routeColumns + ` FROM routes WHERE id = $1`

	err := r.db.Get(&route, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRouteNotFound
		}
		return nil, fmt.Errorf("failed to get route: %w", err)
	}

	return &route, nil
}

// GetRouteDetail retrieves a route with its owner profile and active
// reservation count
func (r *RouteRepository) GetRouteDetail(id uuid.UUID) (*models.RouteDetail, error) {
	var row struct {
		models.Route
		ActiveRides int               `db:"active_rides"`
		DriverID    uuid.UUID         `db:"driver_id"`
		DriverEmail string            `db:"driver_email"`
		DriverName  string            `db:"driver_name"`
		DriverPhone models.NullString `db:"driver_phone"`
		DriverImage models.NullString `db:"driver_image"`
	}

	query := `
		SELECT
			r.id, r.user_id, r.origin, r.destination,
			r.origin_lat, r.origin_lng, r.destination_lat, r.destination_lng,
			r.path_geojson, r.date_time, r.seats, r.status, r.created_at,
			(SELECT COUNT(*) FROM user_rides ur
			  WHERE ur.route_id = r.id AND ur.status = 'ACTIVE') AS active_rides,
			u.id        AS driver_id,
			u.email     AS driver_email,
			u.name      AS driver_name,
			u.phone     AS driver_phone,
			u.image_url AS driver_image
		FROM routes r
		JOIN users u ON u.id = r.user_id
		WHERE r.id = $1
	`

	err := r.db.Get(&row, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRouteNotFound
		}
		return nil, fmt.Errorf("failed to get route detail: %w", err)
	}

	return &models.RouteDetail{
		RouteWithCount: models.RouteWithCount{
			Route:       row.Route,
			ActiveRides: row.ActiveRides,
		},
		Driver: models.UserProfile{
			ID:       row.DriverID,
			Email:    row.DriverEmail,
			Name:     row.DriverName,
			Phone:    row.DriverPhone,
			ImageURL: row.DriverImage,
		},
	}, nil
}

// ListRoutesByOwner lists a user's routes, newest first, each annotated
// with its active reservation count
func (r *RouteRepository) ListRoutesByOwner(userID uuid.UUID) ([]models.RouteWithCount, error) {
	routes := []models.RouteWithCount{}

	query := `
		SELECT
			r.id, r.user_id, r.origin, r.destination,
			r.origin_lat, r.origin_lng, r.destination_lat, r.destination_lng,
			r.path_geojson, r.date_time, r.seats, r.status, r.created_at,
			(SELECT COUNT(*) FROM user_rides ur
			  WHERE ur.route_id = r.id AND ur.status = 'ACTIVE') AS active_rides
		FROM routes r
		WHERE r.user_id = $1
		ORDER BY r.created_at DESC
	`

	if err := r.db.Select(&routes, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list routes: %w", err)
	}

	return routes, nil
}

// ListUpcoming returns one page of active routes ordered by
// (date_time, id) ascending, starting after the cursor when one is given.
// Without a date filter the page starts at now; with one it covers the
// UTC day window.
func (r *RouteRepository) ListUpcoming(req models.UpcomingRoutesRequest, now time.Time) ([]models.RouteWithCount, error) {
	routes := []models.RouteWithCount{}

	query := `
		SELECT
			r.id, r.user_id, r.origin, r.destination,
			r.origin_lat, r.origin_lng, r.destination_lat, r.destination_lng,
			r.path_geojson, r.date_time, r.seats, r.status, r.created_at,
			(SELECT COUNT(*) FROM user_rides ur
			  WHERE ur.route_id = r.id AND ur.status = 'ACTIVE') AS active_rides
		FROM routes r
		WHERE r.status = 'ACTIVE'
		  AND r.date_time >= $1
		  AND r.date_time <= $2
		  AND ($3::timestamptz IS NULL OR (r.date_time, r.id) > ($3::timestamptz, $4::uuid))
		ORDER BY r.date_time ASC, r.id ASC
		LIMIT $5
	`

	from := now
	to := now.AddDate(100, 0, 0) // effectively unbounded
	if req.Date != nil {
		from = time.Date(req.Date.Year(), req.Date.Month(), req.Date.Day(), 0, 0, 0, 0, time.UTC)
		to = from.Add(24*time.Hour - time.Millisecond)
	}

	var cursorTime *time.Time
	var cursorID *uuid.UUID
	if req.Cursor != nil {
		cursorTime = &req.Cursor.DateTime
		cursorID = &req.Cursor.ID
	}

	if err := r.db.Select(&routes, query, from, to, cursorTime, cursorID, req.Limit); err != nil {
		return nil, fmt.Errorf("failed to list upcoming routes: %w", err)
	}

	return routes, nil
}

// CancelRoute sets the route status to CANCELLED and cascades the
// cancellation to every active reservation in a single transaction, so a
// partial cascade is never persisted. Ownership is checked by the caller.
func (r *RouteRepository) CancelRoute(id uuid.UUID) (*models.CancelRouteResult, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var route models.Route
	routeQuery := `
		UPDATE routes SET status = 'CANCELLED'
		WHERE id = $1
		RETURNING ` + routeColumns

	if err := tx.Get(&route, routeQuery, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRouteNotFound
		}
		return nil, fmt.Errorf("failed to cancel route: %w", err)
	}

	cancelled := []models.UserRide{}
	ridesQuery := `
		UPDATE user_rides SET status = 'CANCELLED'
		WHERE route_id = $1 AND status = 'ACTIVE'
		RETURNING id, user_id, route_id, status, created_at
	`

	if err := tx.Select(&cancelled, ridesQuery, id); err != nil {
		return nil, fmt.Errorf("failed to cancel reservations: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit cancellation: %w", err)
	}

	return &models.CancelRouteResult{Route: route, CancelledRides: cancelled}, nil
}

// DeleteRoute hard-deletes a route. Routes still referenced by
// reservation rows are never deleted; callers get ErrRouteHasRides.
func (r *RouteRepository) DeleteRoute(id uuid.UUID) (*models.Route, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var refs int
	if err := tx.Get(&refs, `SELECT COUNT(*) FROM user_rides WHERE route_id = $1`, id); err != nil {
		return nil, fmt.Errorf("failed to count reservations: %w", err)
	}
	if refs > 0 {
		return nil, ErrRouteHasRides
	}

	var route models.Route
	query := `DELETE FROM routes WHERE id = $1 RETURNING ` + routeColumns

	if err := tx.Get(&route, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRouteNotFound
		}
		return nil, fmt.Errorf("failed to delete route: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit deletion: %w", err)
	}

	return &route, nil
}
