package services

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/prevozi/carpool-backend/internal/database"
	"github.com/prevozi/carpool-backend/internal/models"
	"github.com/prevozi/carpool-backend/internal/observability"
)

// SearchService handles business logic for proximity search
type SearchService struct {
	repo    *database.SearchRepository
	metrics *observability.Metrics
	logger  *logrus.Logger

	defaultRadiusKm float64
}

// NewSearchService creates a new search service
func NewSearchService(repo *database.SearchRepository, metrics *observability.Metrics, logger *logrus.Logger, defaultRadiusKm float64) *SearchService {
	return &SearchService{
		repo:            repo,
		metrics:         metrics,
		logger:          logger,
		defaultRadiusKm: defaultRadiusKm,
	}
}

// SearchRoutes validates the request and runs the proximity search.
// Validation failures never reach the storage layer.
func (s *SearchService) SearchRoutes(req *models.SearchRequest) (*models.SearchResponse, error) {
	startTime := time.Now()

	if req.OriginRadiusKm == 0 {
		req.OriginRadiusKm = s.defaultRadiusKm
	}
	if req.DestinationRadiusKm == 0 {
		req.DestinationRadiusKm = s.defaultRadiusKm
	}

	if err := req.Validate(); err != nil {
		return nil, err
	}

	results, err := s.repo.SearchRoutes(req)
	if err != nil {
		s.logger.WithError(err).Error("Proximity search failed")
		return nil, fmt.Errorf("error searching for routes: %w", err)
	}

	if s.metrics != nil {
		s.metrics.SearchesTotal.Inc()
		s.metrics.SearchResults.Observe(float64(len(results)))
	}

	s.logger.WithFields(logrus.Fields{
		"date":          req.Date.Format("2006-01-02"),
		"results_count": len(results),
	}).Info("Proximity search completed")

	return &models.SearchResponse{
		Results:      results,
		SearchTimeMs: time.Since(startTime).Milliseconds(),
	}, nil
}
