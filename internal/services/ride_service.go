package services

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/prevozi/carpool-backend/internal/database"
	"github.com/prevozi/carpool-backend/internal/models"
	"github.com/prevozi/carpool-backend/internal/observability"
	"github.com/prevozi/carpool-backend/pkg/validator"
)

// RideService handles business logic for seat reservations
type RideService struct {
	routes  *database.RouteRepository
	rides   *database.RideRepository
	users   *database.UserRepository
	phones  *validator.PhoneValidator
	metrics *observability.Metrics
	logger  *logrus.Logger
}

// NewRideService creates a new ride service
func NewRideService(
	routes *database.RouteRepository,
	rides *database.RideRepository,
	users *database.UserRepository,
	phones *validator.PhoneValidator,
	metrics *observability.Metrics,
	logger *logrus.Logger,
) *RideService {
	return &RideService{
		routes:  routes,
		rides:   rides,
		users:   users,
		phones:  phones,
		metrics: metrics,
		logger:  logger,
	}
}

// SignUp reserves one seat on a route for the caller. Checks run in a
// fixed order: route exists, route is active, caller is not the owner,
// route has not departed, no prior signup for this pair. The final seat
// check and the insert run in one transaction against a locked route row,
// so concurrent signups for the last seat cannot both succeed.
func (s *RideService) SignUp(userID uuid.UUID, routeID uuid.UUID, phone string) (*models.UserRide, error) {
	route, err := s.routes.GetRouteByID(routeID)
	if err != nil {
		return nil, err
	}
	if route.Status != models.RouteStatusActive {
		return nil, ErrRouteNotActive
	}
	if route.UserID == userID {
		return nil, ErrOwnRoute
	}
	if !route.DateTime.After(time.Now()) {
		return nil, ErrRouteDeparted
	}

	existing, err := s.rides.GetRideForRoute(userID, routeID)
	if err != nil && !errors.Is(err, database.ErrRideNotFound) {
		return nil, err
	}
	if existing != nil {
		if existing.Status == models.RideStatusActive {
			s.countConflict()
			return nil, ErrAlreadySignedUp
		}
		s.countConflict()
		return nil, ErrPreviouslyCancelled
	}

	if phone != "" {
		if err := s.updatePhone(userID, phone); err != nil {
			return nil, err
		}
	}

	ride, err := s.rides.InsertRideGuarded(userID, routeID)
	if err != nil {
		if errors.Is(err, database.ErrDuplicateRide) {
			// Lost the race against our own earlier check.
			s.countConflict()
			return nil, ErrAlreadySignedUp
		}
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.SignupsTotal.Inc()
	}
	s.logger.WithFields(logrus.Fields{
		"ride_id":  ride.ID,
		"route_id": routeID,
		"user_id":  userID,
	}).Info("Passenger signed up")

	return ride, nil
}

// CancelRide removes the caller's active reservation. The row is
// hard-deleted, matching the passenger-initiated cancellation flow;
// owner-initiated route cancellation flips statuses instead.
func (s *RideService) CancelRide(userID, routeID uuid.UUID) error {
	ride, err := s.rides.GetRideForRoute(userID, routeID)
	if err != nil {
		return err
	}
	if ride.Status != models.RideStatusActive {
		return ErrRideNotActive
	}

	route, err := s.routes.GetRouteByID(routeID)
	if err != nil {
		return err
	}
	if !route.DateTime.After(time.Now()) {
		return ErrRouteDeparted
	}

	if err := s.rides.DeleteRide(userID, routeID); err != nil {
		return err
	}

	s.logger.WithFields(logrus.Fields{
		"route_id": routeID,
		"user_id":  userID,
	}).Info("Ride cancelled")

	return nil
}

// RideStatus reports the caller's reservation status for a route, with a
// null status when no reservation row exists
func (s *RideService) RideStatus(userID, routeID uuid.UUID) (*models.RideStatusResponse, error) {
	ride, err := s.rides.GetRideForRoute(userID, routeID)
	if err != nil {
		if errors.Is(err, database.ErrRideNotFound) {
			return &models.RideStatusResponse{}, nil
		}
		return nil, err
	}

	return &models.RideStatusResponse{Status: &ride.Status}, nil
}

// ListMyRides lists the caller's active reservations with routes and
// driver profiles
func (s *RideService) ListMyRides(userID uuid.UUID) ([]models.PassengerRide, error) {
	return s.rides.ListPassengerRides(userID)
}

func (s *RideService) updatePhone(userID uuid.UUID, phone string) error {
	sanitized, err := s.phones.Validate(phone)
	if err != nil {
		return models.NewValidationError(err.Error())
	}

	user, err := s.users.GetUserByID(userID)
	if err != nil {
		return err
	}
	if user.Phone.Valid && user.Phone.String == sanitized {
		return nil
	}

	return s.users.UpdatePhone(userID, sanitized)
}

func (s *RideService) countConflict() {
	if s.metrics != nil {
		s.metrics.SignupConflictsTotal.Inc()
	}
}
