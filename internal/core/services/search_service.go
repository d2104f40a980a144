package services

import (
	"context"
	"iter"

	"github.com/srgjo27/rail_ticket/internal/core/domain"
)

type SearchService struct {
	backend *Backend
}

func NewSearchService(backend *Backend) *SearchService {
	backend.withDefaults()

	return &SearchService{backend: backend}
}

// SearchTrains yields trains whose route contains both stations, in
// either order. No match yields nothing.
func (s *SearchService) SearchTrains(source, destination string) iter.Seq[domain.Train] {
	return s.backend.Catalog.Search(source, destination)
}

func (s *SearchService) Train(trainID string) (*domain.Train, error) {
	train, err := s.backend.Catalog.Train(trainID)
	if err != nil {
		return nil, err
	}

	return &train, nil
}

// SeatAvailability is served from the seat cache when possible. Cache
// failures are logged and fall through to the catalog. A fill whose
// snapshot was overtaken by a booking or cancellation is dropped again,
// so it cannot outlive that writer's invalidation.
func (s *SearchService) SeatAvailability(ctx context.Context, trainID string) (*domain.SeatAvailability, error) {
	cached, err := s.backend.Cache.GetAvailability(ctx, trainID)
	if err != nil {
		s.backend.Logger.Warn("seat cache read failed", "train_id", trainID, "error", err)
	}
	if cached != nil {
		return cached, nil
	}

	availability, version, err := s.backend.Catalog.VersionedAvailability(trainID)
	if err != nil {
		return nil, err
	}

	if err := s.backend.Cache.SetAvailability(ctx, availability); err != nil {
		s.backend.Logger.Warn("seat cache write failed", "train_id", trainID, "error", err)
		return availability, nil
	}

	if current, err := s.backend.Catalog.Version(trainID); err != nil || current != version {
		s.backend.Logger.Debug("dropping overtaken seat cache fill", "train_id", trainID)
		s.backend.invalidateSeats(ctx, trainID)
	}

	return availability, nil
}
