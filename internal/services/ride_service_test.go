package services

import (
	"database/sql/driver"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prevozi/carpool-backend/internal/database"
	"github.com/prevozi/carpool-backend/internal/models"
	"github.com/prevozi/carpool-backend/internal/observability"
	"github.com/prevozi/carpool-backend/pkg/validator"
)

var testRouteColumns = []string{
	"id", "user_id", "origin", "destination",
	"origin_lat", "origin_lng", "destination_lat", "destination_lng",
	"path_geojson", "date_time", "seats", "status", "created_at",
}

var testRideColumns = []string{"id", "user_id", "route_id", "status", "created_at"}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newRideService(t *testing.T) (*RideService, sqlmock.Sqlmock) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	db := &database.PostgresDB{DB: sqlx.NewDb(mockDB, "sqlmock")}
	service := NewRideService(
		database.NewRouteRepository(db),
		database.NewRideRepository(db),
		database.NewUserRepository(db),
		validator.NewPhoneValidator(),
		observability.New(),
		testLogger(),
	)
	return service, mock
}

func testRouteRow(routeID, ownerID uuid.UUID, departure time.Time, seats interface{}, status string) []driver.Value {
	return []driver.Value{
		routeID, ownerID, "Sofia", "Plovdiv",
		42.6977, 23.3219, 42.1354, 24.7453,
		nil, departure, seats, status, time.Now(),
	}
}

func expectGetRoute(mock sqlmock.Sqlmock, routeID, ownerID uuid.UUID, departure time.Time, seats interface{}, status string) {
	mock.ExpectQuery(`SELECT (.+) FROM routes WHERE id`).
		WithArgs(routeID).
		WillReturnRows(sqlmock.NewRows(testRouteColumns).
			AddRow(testRouteRow(routeID, ownerID, departure, seats, status)...))
}

func expectNoExistingRide(mock sqlmock.Sqlmock, userID, routeID uuid.UUID) {
	mock.ExpectQuery(`SELECT (.+) FROM user_rides\s+WHERE user_id`).
		WithArgs(userID, routeID).
		WillReturnRows(sqlmock.NewRows(testRideColumns))
}

func TestSignUp_Success(t *testing.T) {
	service, mock := newRideService(t)
	userID := uuid.New()
	routeID := uuid.New()
	departure := time.Now().Add(24 * time.Hour)

	expectGetRoute(mock, routeID, uuid.New(), departure, 4, models.RouteStatusActive)
	expectNoExistingRide(mock, userID, routeID)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT seats FROM routes WHERE id = \$1 FOR UPDATE`).
		WithArgs(routeID).
		WillReturnRows(sqlmock.NewRows([]string{"seats"}).AddRow(4))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM user_rides`).
		WithArgs(routeID).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectExec(`INSERT INTO user_rides`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	ride, err := service.SignUp(userID, routeID, "")
	require.NoError(t, err)
	assert.Equal(t, userID, ride.UserID)
	assert.Equal(t, models.RideStatusActive, ride.Status)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSignUp_SavesPhone(t *testing.T) {
	service, mock := newRideService(t)
	userID := uuid.New()
	routeID := uuid.New()
	departure := time.Now().Add(24 * time.Hour)
	now := time.Now()

	expectGetRoute(mock, routeID, uuid.New(), departure, 4, models.RouteStatusActive)
	expectNoExistingRide(mock, userID, routeID)

	mock.ExpectQuery(`SELECT (.+) FROM users\s+WHERE id`).
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "name", "password_hash", "phone", "image_url", "created_at", "updated_at"}).
			AddRow(userID, "p@example.com", "Maria", "hashed", nil, nil, now, now))
	mock.ExpectExec(`UPDATE users SET phone`).
		WithArgs(userID, "0888123456", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT seats FROM routes WHERE id = \$1 FOR UPDATE`).
		WithArgs(routeID).
		WillReturnRows(sqlmock.NewRows([]string{"seats"}).AddRow(4))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM user_rides`).
		WithArgs(routeID).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec(`INSERT INTO user_rides`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	_, err := service.SignUp(userID, routeID, "088 812 3456")
	require.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSignUp_InvalidPhone(t *testing.T) {
	service, mock := newRideService(t)
	userID := uuid.New()
	routeID := uuid.New()
	departure := time.Now().Add(24 * time.Hour)

	expectGetRoute(mock, routeID, uuid.New(), departure, 4, models.RouteStatusActive)
	expectNoExistingRide(mock, userID, routeID)

	_, err := service.SignUp(userID, routeID, "0771234567")
	require.Error(t, err)

	var verr *models.ValidationError
	assert.ErrorAs(t, err, &verr)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSignUp_OwnRoute(t *testing.T) {
	service, mock := newRideService(t)
	userID := uuid.New()
	routeID := uuid.New()

	expectGetRoute(mock, routeID, userID, time.Now().Add(24*time.Hour), 4, models.RouteStatusActive)

	_, err := service.SignUp(userID, routeID, "")
	assert.ErrorIs(t, err, ErrOwnRoute)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSignUp_DepartedRoute(t *testing.T) {
	service, mock := newRideService(t)
	userID := uuid.New()
	routeID := uuid.New()

	expectGetRoute(mock, routeID, uuid.New(), time.Now().Add(-time.Hour), 4, models.RouteStatusActive)

	_, err := service.SignUp(userID, routeID, "")
	assert.ErrorIs(t, err, ErrRouteDeparted)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSignUp_CancelledRoute(t *testing.T) {
	service, mock := newRideService(t)
	userID := uuid.New()
	routeID := uuid.New()

	expectGetRoute(mock, routeID, uuid.New(), time.Now().Add(24*time.Hour), 4, models.RouteStatusCancelled)

	_, err := service.SignUp(userID, routeID, "")
	assert.ErrorIs(t, err, ErrRouteNotActive)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSignUp_AlreadySignedUp(t *testing.T) {
	service, mock := newRideService(t)
	userID := uuid.New()
	routeID := uuid.New()

	expectGetRoute(mock, routeID, uuid.New(), time.Now().Add(24*time.Hour), 4, models.RouteStatusActive)
	mock.ExpectQuery(`SELECT (.+) FROM user_rides\s+WHERE user_id`).
		WithArgs(userID, routeID).
		WillReturnRows(sqlmock.NewRows(testRideColumns).
			AddRow(uuid.New(), userID, routeID, models.RideStatusActive, time.Now()))

	_, err := service.SignUp(userID, routeID, "")
	assert.ErrorIs(t, err, ErrAlreadySignedUp)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSignUp_PreviouslyCancelled(t *testing.T) {
	service, mock := newRideService(t)
	userID := uuid.New()
	routeID := uuid.New()

	expectGetRoute(mock, routeID, uuid.New(), time.Now().Add(24*time.Hour), 4, models.RouteStatusActive)
	mock.ExpectQuery(`SELECT (.+) FROM user_rides\s+WHERE user_id`).
		WithArgs(userID, routeID).
		WillReturnRows(sqlmock.NewRows(testRideColumns).
			AddRow(uuid.New(), userID, routeID, models.RideStatusCancelled, time.Now()))

	// A cancelled signup permanently blocks re-signup for the pair.
	_, err := service.SignUp(userID, routeID, "")
	assert.ErrorIs(t, err, ErrPreviouslyCancelled)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSignUp_NoSeats(t *testing.T) {
	service, mock := newRideService(t)
	userID := uuid.New()
	routeID := uuid.New()

	expectGetRoute(mock, routeID, uuid.New(), time.Now().Add(24*time.Hour), 4, models.RouteStatusActive)
	expectNoExistingRide(mock, userID, routeID)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT seats FROM routes WHERE id = \$1 FOR UPDATE`).
		WithArgs(routeID).
		WillReturnRows(sqlmock.NewRows([]string{"seats"}).AddRow(4))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM user_rides`).
		WithArgs(routeID).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))
	mock.ExpectRollback()

	_, err := service.SignUp(userID, routeID, "")
	assert.ErrorIs(t, err, database.ErrNoSeatsAvailable)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSignUp_DuplicateRaceMapsToConflict(t *testing.T) {
	service, mock := newRideService(t)
	userID := uuid.New()
	routeID := uuid.New()

	expectGetRoute(mock, routeID, uuid.New(), time.Now().Add(24*time.Hour), 4, models.RouteStatusActive)
	expectNoExistingRide(mock, userID, routeID)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT seats FROM routes WHERE id = \$1 FOR UPDATE`).
		WithArgs(routeID).
		WillReturnRows(sqlmock.NewRows([]string{"seats"}).AddRow(4))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM user_rides`).
		WithArgs(routeID).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectExec(`INSERT INTO user_rides`).
		WillReturnError(fmt.Errorf("pq: duplicate key value violates unique constraint \"user_rides_user_id_route_id_key\""))
	mock.ExpectRollback()

	// The earlier existence check passed, but a concurrent signup won the
	// insert; the unique constraint backstops the rule.
	_, err := service.SignUp(userID, routeID, "")
	assert.ErrorIs(t, err, ErrAlreadySignedUp)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelRide_Success(t *testing.T) {
	service, mock := newRideService(t)
	userID := uuid.New()
	routeID := uuid.New()

	mock.ExpectQuery(`SELECT (.+) FROM user_rides\s+WHERE user_id`).
		WithArgs(userID, routeID).
		WillReturnRows(sqlmock.NewRows(testRideColumns).
			AddRow(uuid.New(), userID, routeID, models.RideStatusActive, time.Now()))
	expectGetRoute(mock, routeID, uuid.New(), time.Now().Add(24*time.Hour), 4, models.RouteStatusActive)
	mock.ExpectExec(`DELETE FROM user_rides`).
		WithArgs(userID, routeID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, service.CancelRide(userID, routeID))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelRide_NotActive(t *testing.T) {
	service, mock := newRideService(t)
	userID := uuid.New()
	routeID := uuid.New()

	mock.ExpectQuery(`SELECT (.+) FROM user_rides\s+WHERE user_id`).
		WithArgs(userID, routeID).
		WillReturnRows(sqlmock.NewRows(testRideColumns).
			AddRow(uuid.New(), userID, routeID, models.RideStatusCancelled, time.Now()))

	err := service.CancelRide(userID, routeID)
	assert.ErrorIs(t, err, ErrRideNotActive)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelRide_Departed(t *testing.T) {
	service, mock := newRideService(t)
	userID := uuid.New()
	routeID := uuid.New()

	mock.ExpectQuery(`SELECT (.+) FROM user_rides\s+WHERE user_id`).
		WithArgs(userID, routeID).
		WillReturnRows(sqlmock.NewRows(testRideColumns).
			AddRow(uuid.New(), userID, routeID, models.RideStatusActive, time.Now()))
	expectGetRoute(mock, routeID, uuid.New(), time.Now().Add(-time.Hour), 4, models.RouteStatusActive)

	err := service.CancelRide(userID, routeID)
	assert.ErrorIs(t, err, ErrRouteDeparted)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRideStatus(t *testing.T) {
	service, mock := newRideService(t)
	userID := uuid.New()
	routeID := uuid.New()

	t.Run("Active", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM user_rides\s+WHERE user_id`).
			WithArgs(userID, routeID).
			WillReturnRows(sqlmock.NewRows(testRideColumns).
				AddRow(uuid.New(), userID, routeID, models.RideStatusActive, time.Now()))

		status, err := service.RideStatus(userID, routeID)
		require.NoError(t, err)
		require.NotNil(t, status.Status)
		assert.Equal(t, models.RideStatusActive, *status.Status)
	})

	t.Run("Never Signed Up", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM user_rides\s+WHERE user_id`).
			WithArgs(userID, routeID).
			WillReturnRows(sqlmock.NewRows(testRideColumns))

		status, err := service.RideStatus(userID, routeID)
		require.NoError(t, err)
		assert.Nil(t, status.Status)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
