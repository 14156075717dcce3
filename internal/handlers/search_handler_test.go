package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/prevozi/carpool-backend/internal/database"
	"github.com/prevozi/carpool-backend/internal/observability"
	"github.com/prevozi/carpool-backend/internal/services"
)

func setupSearchTest(t *testing.T) (*gin.Engine, sqlmock.Sqlmock) {
	gin.SetMode(gin.TestMode)

	db, mock := setupTestDB(t)
	searchService := services.NewSearchService(
		database.NewSearchRepository(db),
		observability.New(),
		quietLogger(),
		2.0,
	)
	handler := NewSearchHandler(searchService, quietLogger())

	router := gin.New()
	router.GET("/routes/search", handler.Search)
	return router, mock
}

func doSearch(router *gin.Engine, query string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("GET", "/routes/search?"+query, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

const validSearchQuery = "origin_lat=42.6977&origin_lng=23.3219&destination_lat=42.1354&destination_lng=24.7453&date=2026-09-14"

func TestSearch_Success(t *testing.T) {
	router, mock := setupSearchTest(t)

	routeID := uuid.New()
	departure := time.Date(2026, 9, 14, 8, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`acos\(LEAST\(1.0, GREATEST\(-1.0,`).
		WillReturnRows(sqlmock.NewRows(routeTestColumns).
			AddRow(routeID, uuid.New(), "Sofia", "Plovdiv",
				42.6977, 23.3219, 42.1354, 24.7453,
				nil, departure, 4, "ACTIVE", time.Now()))
	mock.ExpectQuery(`SELECT route_id, COUNT\(\*\) AS active_rides`).
		WillReturnRows(sqlmock.NewRows([]string{"route_id", "active_rides"}).
			AddRow(routeID, 1))

	w := doSearch(router, validSearchQuery)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"available_seats":3`)
	assert.Contains(t, w.Body.String(), "search_time_ms")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSearch_MissingParameters(t *testing.T) {
	router, _ := setupSearchTest(t)

	tests := []struct {
		name  string
		query string
	}{
		{"No origin_lat", "origin_lng=23.3&destination_lat=42.1&destination_lng=24.7&date=2026-09-14"},
		{"No destination_lng", "origin_lat=42.7&origin_lng=23.3&destination_lat=42.1&date=2026-09-14"},
		{"No date", "origin_lat=42.7&origin_lng=23.3&destination_lat=42.1&destination_lng=24.7"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := doSearch(router, tc.query)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), "validation_error")
		})
	}
}

func TestSearch_MalformedParameters(t *testing.T) {
	router, _ := setupSearchTest(t)

	tests := []struct {
		name  string
		query string
	}{
		{"Non-numeric latitude", "origin_lat=abc&origin_lng=23.3&destination_lat=42.1&destination_lng=24.7&date=2026-09-14"},
		{"Bad date format", "origin_lat=42.7&origin_lng=23.3&destination_lat=42.1&destination_lng=24.7&date=14.09.2026"},
		{"Non-numeric radius", "origin_lat=42.7&origin_lng=23.3&destination_lat=42.1&destination_lng=24.7&date=2026-09-14&origin_radius_km=big"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := doSearch(router, tc.query)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestSearch_OutOfRangeCoordinates(t *testing.T) {
	router, _ := setupSearchTest(t)

	// Parses fine but fails validation; the storage layer is never hit.
	w := doSearch(router, "origin_lat=95&origin_lng=23.3&destination_lat=42.1&destination_lng=24.7&date=2026-09-14")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "BAD_REQUEST")
}
