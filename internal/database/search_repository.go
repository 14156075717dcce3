package database

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/prevozi/carpool-backend/internal/geo"
	"github.com/prevozi/carpool-backend/internal/models"
)

// SearchRepository executes the proximity search against the storage
// engine. The distance predicate runs in SQL so the table is never pulled
// into application memory; a bounding-box prefilter narrows the candidate
// set to rows an index can reach before the exact great-circle distance
// is evaluated.
type SearchRepository struct {
	db DB
}

// NewSearchRepository creates a new search repository
func NewSearchRepository(db DB) *SearchRepository {
	return &SearchRepository{
		db: db,
	}
}

// distancePredicate is the spherical law of cosines evaluated by the
// storage engine. The cosine argument is clamped with LEAST/GREATEST:
// for a route queried at its own coordinates rounding can push the value
// just above 1, and acos would return NULL instead of 0.
const distancePredicate = `
	%[1]g * acos(LEAST(1.0, GREATEST(-1.0,
		cos(radians($%[2]d)) * cos(radians(r.%[4]s_lat)) * cos(radians(r.%[4]s_lng) - radians($%[3]d))
		+ sin(radians($%[2]d)) * sin(radians(r.%[4]s_lat)))))`

// SearchRoutes returns the active routes departing within the request's
// UTC day window whose stored origin and destination both lie within the
// requested radii, ordered by departure ascending. Routes missing either
// coordinate pair never match: the IS NOT NULL guards make NULL
// coordinates a non-match rather than an error.
func (r *SearchRepository) SearchRoutes(req *models.SearchRequest) ([]models.RouteWithCount, error) {
	start, end := req.DayWindow()

	originBox := geo.BoundingBoxAround(geo.LatLng{Lat: req.OriginLat, Lng: req.OriginLng}, req.OriginRadiusKm)
	destBox := geo.BoundingBoxAround(geo.LatLng{Lat: req.DestinationLat, Lng: req.DestinationLng}, req.DestinationRadiusKm)

	originDistance := fmt.Sprintf(distancePredicate, geo.EarthRadiusKm, 11, 12, "origin")
	destDistance := fmt.Sprintf(distancePredicate, geo.EarthRadiusKm, 13, 14, "destination")

	query := `
		SELECT ` + routeColumns + `
		FROM routes r
		WHERE r.status = 'ACTIVE'
		  AND r.date_time >= $1 AND r.date_time <= $2
		  AND r.origin_lat IS NOT NULL AND r.origin_lng IS NOT NULL
		  AND r.destination_lat IS NOT NULL AND r.destination_lng IS NOT NULL
		  AND r.origin_lat BETWEEN $3 AND $4
		  AND r.origin_lng BETWEEN $5 AND $6
		  AND r.destination_lat BETWEEN $7 AND $8
		  AND r.destination_lng BETWEEN $9 AND $10
		  AND` + originDistance + ` <= $15
		  AND` + destDistance + ` <= $16
		ORDER BY r.date_time ASC
	`

	routes := []models.Route{}
	err := r.db.Select(&routes, query,
		start, end,
		originBox.MinLat, originBox.MaxLat, originBox.MinLng, originBox.MaxLng,
		destBox.MinLat, destBox.MaxLat, destBox.MinLng, destBox.MaxLng,
		req.OriginLat, req.OriginLng,
		req.DestinationLat, req.DestinationLng,
		req.OriginRadiusKm, req.DestinationRadiusKm,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search routes: %w", err)
	}

	counts, err := r.activeRideCounts(routes)
	if err != nil {
		return nil, err
	}

	results := make([]models.RouteWithCount, 0, len(routes))
	for _, route := range routes {
		results = append(results, models.RouteWithCount{
			Route:       route,
			ActiveRides: counts[route.ID],
		})
	}

	return results, nil
}

// activeRideCounts fetches the active reservation count per route.
// Reservations change concurrently, so the counts are read after the main
// query rather than cached alongside the routes.
func (r *SearchRepository) activeRideCounts(routes []models.Route) (map[uuid.UUID]int, error) {
	counts := make(map[uuid.UUID]int, len(routes))
	if len(routes) == 0 {
		return counts, nil
	}

	ids := make([]uuid.UUID, 0, len(routes))
	for _, route := range routes {
		ids = append(ids, route.ID)
	}

	rows := []struct {
		RouteID uuid.UUID `db:"route_id"`
		Count   int       `db:"active_rides"`
	}{}

	query := `
		SELECT route_id, COUNT(*) AS active_rides
		FROM user_rides
		WHERE route_id = ANY($1) AND status = 'ACTIVE'
		GROUP BY route_id
	`

	if err := r.db.Select(&rows, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("failed to count reservations: %w", err)
	}

	for _, row := range rows {
		counts[row.RouteID] = row.Count
	}

	return counts, nil
}
