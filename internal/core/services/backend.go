package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/srgjo27/rail_ticket/internal/core/domain"
	"github.com/srgjo27/rail_ticket/internal/core/ports"
	"github.com/srgjo27/rail_ticket/internal/core/store"
)

// Backend is the shared reservation state handed to every service
// constructor. Services created from the same Backend see the same
// accounts and catalog.
type Backend struct {
	Accounts *store.AccountStore
	Catalog  *store.CatalogStore
	Gateway  ports.AccountGateway
	Cache    ports.SeatCache
	Logger   *slog.Logger
	Now      func() time.Time
}

// Open loads the catalog and the persisted accounts, and rebuilds seat
// occupancy from the tickets found in the accounts.
func Open(ctx context.Context, catalog ports.CatalogSource, gateway ports.AccountGateway, cache ports.SeatCache, logger *slog.Logger) (*Backend, error) {
	trains, err := catalog.LoadTrains(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading catalog: %w", err)
	}

	catalogStore, err := store.NewCatalogStore(trains)
	if err != nil {
		return nil, fmt.Errorf("building catalog: %w", err)
	}

	users, err := gateway.Load(ctx)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "load accounts", Err: err}
	}

	accounts, err := store.NewAccountStore(users)
	if err != nil {
		return nil, fmt.Errorf("building accounts: %w", err)
	}

	if err := catalogStore.Reconcile(users); err != nil {
		return nil, err
	}

	b := &Backend{
		Accounts: accounts,
		Catalog:  catalogStore,
		Gateway:  gateway,
		Cache:    cache,
		Logger:   logger,
	}
	b.withDefaults()

	b.Logger.Info("reservation backend ready", "trains", catalogStore.Len(), "users", accounts.Len())

	return b, nil
}

func (b *Backend) withDefaults() {
	if b.Cache == nil {
		b.Cache = noopCache{}
	}

	if b.Logger == nil {
		b.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	if b.Now == nil {
		b.Now = time.Now
	}
}

// invalidateSeats drops the cached availability of trainID. It runs even
// when ctx is already cancelled.
func (b *Backend) invalidateSeats(ctx context.Context, trainID string) {
	if err := b.Cache.Invalidate(context.WithoutCancel(ctx), trainID); err != nil {
		b.Logger.Warn("seat cache invalidation failed", "train_id", trainID, "error", err)
	}
}

type noopCache struct{}

func (noopCache) GetAvailability(context.Context, string) (*domain.SeatAvailability, error) {
	return nil, nil
}

func (noopCache) SetAvailability(context.Context, *domain.SeatAvailability) error { return nil }

func (noopCache) Invalidate(context.Context, string) error { return nil }
