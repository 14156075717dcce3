package database

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/prevozi/carpool-backend/internal/models"
)

// RideRepository handles reservation database operations
type RideRepository struct {
	db DB
}

// NewRideRepository creates a new ride repository
func NewRideRepository(db DB) *RideRepository {
	return &RideRepository{
		db: db,
	}
}

// GetRideForRoute retrieves the caller's reservation row for a route,
// regardless of status
func (r *RideRepository) GetRideForRoute(userID, routeID uuid.UUID) (*models.UserRide, error) {
	var ride models.UserRide

	query := `
		SELECT id, user_id, route_id, status, created_at
		FROM user_rides
		WHERE user_id = $1 AND route_id = $2
	`

	err := r.db.Get(&ride, query, userID, routeID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRideNotFound
		}
		return nil, fmt.Errorf("failed to get ride: %w", err)
	}

	return &ride, nil
}

// InsertRideGuarded creates an active reservation only if capacity
// remains. The route row is locked for the duration of the transaction so
// two concurrent signups for the last seat cannot both pass the count:
// the second blocks on the lock and then sees the first insert.
func (r *RideRepository) InsertRideGuarded(userID, routeID uuid.UUID) (*models.UserRide, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var seats *int
	if err := tx.Get(&seats, `SELECT seats FROM routes WHERE id = $1 FOR UPDATE`, routeID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRouteNotFound
		}
		return nil, fmt.Errorf("failed to lock route: %w", err)
	}

	var active int
	countQuery := `SELECT COUNT(*) FROM user_rides WHERE route_id = $1 AND status = 'ACTIVE'`
	if err := tx.Get(&active, countQuery, routeID); err != nil {
		return nil, fmt.Errorf("failed to count reservations: %w", err)
	}

	// Unset seat count offers no capacity, matching the derived
	// available-seats quantity being null.
	if seats == nil || *seats-active <= 0 {
		return nil, ErrNoSeatsAvailable
	}

	ride := &models.UserRide{
		ID:        uuid.New(),
		UserID:    userID,
		RouteID:   routeID,
		Status:    models.RideStatusActive,
		CreatedAt: time.Now(),
	}

	insertQuery := `
		INSERT INTO user_rides (id, user_id, route_id, status, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	if _, err := tx.Exec(insertQuery, ride.ID, ride.UserID, ride.RouteID, ride.Status, ride.CreatedAt); err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return nil, ErrDuplicateRide
		}
		return nil, fmt.Errorf("failed to create ride: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit signup: %w", err)
	}

	return ride, nil
}

// DeleteRide hard-deletes the caller's reservation for a route
func (r *RideRepository) DeleteRide(userID, routeID uuid.UUID) error {
	query := `DELETE FROM user_rides WHERE user_id = $1 AND route_id = $2`

	result, err := r.db.Exec(query, userID, routeID)
	if err != nil {
		return fmt.Errorf("failed to delete ride: %w", err)
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return ErrRideNotFound
	}

	return nil
}

// ListPassengerRides lists the user's active reservations with the
// embedded route and driver profile, ordered by route departure
func (r *RideRepository) ListPassengerRides(userID uuid.UUID) ([]models.PassengerRide, error) {
	rows := []struct {
		models.UserRide
		RID            uuid.UUID         `db:"r_id"`
		RouteUserID    uuid.UUID         `db:"r_user_id"`
		Origin         string            `db:"r_origin"`
		Destination    string            `db:"r_destination"`
		OriginLat      *float64          `db:"r_origin_lat"`
		OriginLng      *float64          `db:"r_origin_lng"`
		DestinationLat *float64          `db:"r_destination_lat"`
		DestinationLng *float64          `db:"r_destination_lng"`
		PathGeoJSON    models.NullString `db:"r_path_geojson"`
		DateTime       time.Time         `db:"r_date_time"`
		Seats          *int              `db:"r_seats"`
		RouteStatus    string            `db:"r_status"`
		RouteCreatedAt time.Time         `db:"r_created_at"`
		DriverID       uuid.UUID         `db:"driver_id"`
		DriverEmail    string            `db:"driver_email"`
		DriverName     string            `db:"driver_name"`
		DriverPhone    models.NullString `db:"driver_phone"`
		DriverImage    models.NullString `db:"driver_image"`
	}{}

	query := `
		SELECT
			ur.id, ur.user_id, ur.route_id, ur.status, ur.created_at,
			r.id AS r_id, r.user_id AS r_user_id,
			r.origin AS r_origin, r.destination AS r_destination,
			r.origin_lat AS r_origin_lat, r.origin_lng AS r_origin_lng,
			r.destination_lat AS r_destination_lat, r.destination_lng AS r_destination_lng,
			r.path_geojson AS r_path_geojson, r.date_time AS r_date_time,
			r.seats AS r_seats, r.status AS r_status, r.created_at AS r_created_at,
			u.id AS driver_id, u.email AS driver_email, u.name AS driver_name,
			u.phone AS driver_phone, u.image_url AS driver_image
		FROM user_rides ur
		JOIN routes r ON r.id = ur.route_id
		JOIN users u ON u.id = r.user_id
		WHERE ur.user_id = $1 AND ur.status = 'ACTIVE'
		ORDER BY r.date_time ASC
	`

	if err := r.db.Select(&rows, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list rides: %w", err)
	}

	rides := make([]models.PassengerRide, 0, len(rows))
	for _, row := range rows {
		rides = append(rides, models.PassengerRide{
			UserRide: row.UserRide,
			Route: models.Route{
				ID:             row.RID,
				UserID:         row.RouteUserID,
				Origin:         row.Origin,
				Destination:    row.Destination,
				OriginLat:      row.OriginLat,
				OriginLng:      row.OriginLng,
				DestinationLat: row.DestinationLat,
				DestinationLng: row.DestinationLng,
				PathGeoJSON:    row.PathGeoJSON,
				DateTime:       row.DateTime,
				Seats:          row.Seats,
				Status:         row.RouteStatus,
				CreatedAt:      row.RouteCreatedAt,
			},
			Driver: models.UserProfile{
				ID:       row.DriverID,
				Email:    row.DriverEmail,
				Name:     row.DriverName,
				Phone:    row.DriverPhone,
				ImageURL: row.DriverImage,
			},
		})
	}

	return rides, nil
}

// ListRoutePassengers lists the active reservations on a route with each
// passenger's profile. Ownership is checked by the caller.
func (r *RideRepository) ListRoutePassengers(routeID uuid.UUID) ([]models.RoutePassenger, error) {
	rows := []struct {
		models.UserRide
		PassengerID    uuid.UUID         `db:"passenger_id"`
		PassengerEmail string            `db:"passenger_email"`
		PassengerName  string            `db:"passenger_name"`
		PassengerPhone models.NullString `db:"passenger_phone"`
		PassengerImage models.NullString `db:"passenger_image"`
	}{}

	query := `
		SELECT
			ur.id, ur.user_id, ur.route_id, ur.status, ur.created_at,
			u.id AS passenger_id, u.email AS passenger_email, u.name AS passenger_name,
			u.phone AS passenger_phone, u.image_url AS passenger_image
		FROM user_rides ur
		JOIN users u ON u.id = ur.user_id
		WHERE ur.route_id = $1 AND ur.status = 'ACTIVE'
		ORDER BY ur.created_at ASC
	`

	if err := r.db.Select(&rows, query, routeID); err != nil {
		return nil, fmt.Errorf("failed to list passengers: %w", err)
	}

	passengers := make([]models.RoutePassenger, 0, len(rows))
	for _, row := range rows {
		passengers = append(passengers, models.RoutePassenger{
			UserRide: row.UserRide,
			Passenger: models.UserProfile{
				ID:       row.PassengerID,
				Email:    row.PassengerEmail,
				Name:     row.PassengerName,
				Phone:    row.PassengerPhone,
				ImageURL: row.PassengerImage,
			},
		})
	}

	return passengers, nil
}
