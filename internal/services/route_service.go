package services

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/prevozi/carpool-backend/internal/database"
	"github.com/prevozi/carpool-backend/internal/geo"
	"github.com/prevozi/carpool-backend/internal/models"
	"github.com/prevozi/carpool-backend/internal/observability"
	"github.com/prevozi/carpool-backend/pkg/validator"
)

// RouteService handles business logic for publishing and managing routes
type RouteService struct {
	routes  *database.RouteRepository
	rides   *database.RideRepository
	users   *database.UserRepository
	phones  *validator.PhoneValidator
	metrics *observability.Metrics
	logger  *logrus.Logger

	maxPageSize int
}

// NewRouteService creates a new route service
func NewRouteService(
	routes *database.RouteRepository,
	rides *database.RideRepository,
	users *database.UserRepository,
	phones *validator.PhoneValidator,
	metrics *observability.Metrics,
	logger *logrus.Logger,
	maxPageSize int,
) *RouteService {
	return &RouteService{
		routes:      routes,
		rides:       rides,
		users:       users,
		phones:      phones,
		metrics:     metrics,
		logger:      logger,
		maxPageSize: maxPageSize,
	}
}

// CreateRoute publishes a new route. The directions payload is validated
// against the typed schema and its endpoints become the stored
// coordinates; when extraction fails the route is saved without
// coordinates rather than rejected, which keeps publishing available at
// the cost of the route being unreachable through proximity search.
func (s *RouteService) CreateRoute(userID uuid.UUID, req *models.CreateRouteRequest) (*models.Route, error) {
	route := &models.Route{
		UserID:      userID,
		Origin:      req.Origin,
		Destination: req.Destination,
		DateTime:    req.DateTime,
		Seats:       req.Seats,
	}

	endpoints, err := geo.ExtractEndpoints(req.Directions)
	if err != nil {
		s.logger.WithError(err).WithField("user_id", userID).
			Warn("Directions payload yielded no coordinates; saving route without them")
		if s.metrics != nil {
			s.metrics.GeometryFailures.Inc()
		}
	} else {
		route.OriginLat = &endpoints.Origin.Lat
		route.OriginLng = &endpoints.Origin.Lng
		route.DestinationLat = &endpoints.Destination.Lat
		route.DestinationLng = &endpoints.Destination.Lng

		if path, err := endpoints.PathGeoJSON(); err == nil {
			route.PathGeoJSON.Valid = true
			route.PathGeoJSON.String = path
		}
	}

	if req.Phone != "" {
		if err := s.updatePhone(userID, req.Phone); err != nil {
			return nil, err
		}
	}

	created, err := s.routes.CreateRoute(route)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"route_id":        created.ID,
		"user_id":         userID,
		"has_coordinates": created.HasCoordinates(),
	}).Info("Route published")

	return created, nil
}

// GetRoute returns a route with its owner profile and reservation count
func (s *RouteService) GetRoute(id uuid.UUID) (*models.RouteDetail, error) {
	return s.routes.GetRouteDetail(id)
}

// ListOwnRoutes lists the caller's routes, newest first
func (s *RouteService) ListOwnRoutes(userID uuid.UUID) ([]models.RouteWithCount, error) {
	return s.routes.ListRoutesByOwner(userID)
}

// ListUpcoming returns one page of upcoming active routes with an opaque
// cursor for the next page
func (s *RouteService) ListUpcoming(req models.UpcomingRoutesRequest) (*models.RoutePage, error) {
	if req.Limit <= 0 || req.Limit > s.maxPageSize {
		req.Limit = s.maxPageSize
	}

	routes, err := s.routes.ListUpcoming(req, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	page := &models.RoutePage{Routes: routes}
	if len(routes) == req.Limit {
		last := routes[len(routes)-1]
		cursor := models.RouteCursor{DateTime: last.DateTime, ID: last.ID}.Encode()
		page.NextCursor = &cursor
	}

	return page, nil
}

// CancelRoute cancels an owned route and cascades the cancellation to its
// reservations atomically
func (s *RouteService) CancelRoute(userID, routeID uuid.UUID) (*models.CancelRouteResult, error) {
	route, err := s.routes.GetRouteByID(routeID)
	if err != nil {
		return nil, err
	}
	if route.UserID != userID {
		return nil, ErrNotRouteOwner
	}
	if route.Status != models.RouteStatusActive {
		return nil, ErrRouteNotActive
	}

	result, err := s.routes.CancelRoute(routeID)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"route_id":        routeID,
		"cancelled_rides": len(result.CancelledRides),
	}).Info("Route cancelled")

	return result, nil
}

// DeleteRoute hard-deletes an owned route that has no reservations
func (s *RouteService) DeleteRoute(userID, routeID uuid.UUID) (*models.Route, error) {
	route, err := s.routes.GetRouteByID(routeID)
	if err != nil {
		return nil, err
	}
	if route.UserID != userID {
		return nil, ErrNotRouteOwner
	}

	return s.routes.DeleteRoute(routeID)
}

// ListPassengers lists the active reservations on an owned route with
// passenger profiles
func (s *RouteService) ListPassengers(userID, routeID uuid.UUID) ([]models.RoutePassenger, error) {
	route, err := s.routes.GetRouteByID(routeID)
	if err != nil {
		return nil, err
	}
	if route.UserID != userID {
		return nil, ErrNotRouteOwner
	}

	return s.rides.ListRoutePassengers(routeID)
}

func (s *RouteService) updatePhone(userID uuid.UUID, phone string) error {
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

// IsValidationError reports whether the error is a request validation
// failure rather than a storage fault
func IsValidationError(err error) bool {
	var verr *models.ValidationError
	return errors.As(err, &verr)
}
