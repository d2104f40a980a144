package ports

import (
	"context"

	"github.com/srgjo27/rail_ticket/internal/core/domain"
)

// AccountGateway durably stores the complete account set. Commit must
// leave either the previous or the new snapshot in storage, never a mix.
type AccountGateway interface {
	Load(ctx context.Context) ([]domain.User, error)
	Commit(ctx context.Context, users []domain.User) error
}

type CatalogSource interface {
	LoadTrains(ctx context.Context) ([]domain.Train, error)
}

type SeatCache interface {
	GetAvailability(ctx context.Context, trainID string) (*domain.SeatAvailability, error)
	SetAvailability(ctx context.Context, availability *domain.SeatAvailability) error
	Invalidate(ctx context.Context, trainID string) error
}
