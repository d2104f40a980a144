package services_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/srgjo27/rail_ticket/internal/core/domain"
	"github.com/srgjo27/rail_ticket/internal/core/ports/mocks"
	"github.com/srgjo27/rail_ticket/internal/core/services"
)

var fixedNow = time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)

func testTrains() []domain.Train {
	return []domain.Train{
		{
			ID:          "T1",
			TrainNumber: "12345",
			Stations:    []string{"A", "B", "C"},
			StationTime: map[string]string{"A": "08:00", "B": "09:30", "C": "11:15"},
			Seats: domain.SeatMatrix{
				{0, 0, 0, 0},
				{0, 0, 0, 0},
				{0, 0, 0, 0},
			},
		},
		{
			ID:          "T2",
			TrainNumber: "67890",
			Stations:    []string{"C", "D"},
			StationTime: map[string]string{"C": "12:00", "D": "13:00"},
			Seats:       domain.SeatMatrix{{0, 1}},
		},
	}
}

type fixture struct {
	backend *services.Backend
	gateway *mocks.AccountGateway
	cache   *mocks.SeatCache
	auth    *services.AuthService
	booking *services.BookingService
	search  *services.SearchService
}

// newFixture opens a backend on the test trains and the given users.
// Commits succeed and cache invalidations are accepted unless a test
// replaces the expectations.
func newFixture(t *testing.T, users ...domain.User) *fixture {
	t.Helper()

	ctx := context.Background()
	catalog := mocks.NewCatalogSource(t)
	catalog.On("LoadTrains", ctx).Return(testTrains(), nil)

	gateway := mocks.NewAccountGateway(t)
	if users == nil {
		users = []domain.User{}
	}
	gateway.On("Load", ctx).Return(users, nil)

	cache := mocks.NewSeatCache(t)

	backend, err := services.Open(ctx, catalog, gateway, cache, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	backend.Now = func() time.Time { return fixedNow }

	return &fixture{
		backend: backend,
		gateway: gateway,
		cache:   cache,
		auth:    services.NewAuthService(backend, 4),
		booking: services.NewBookingService(backend),
		search:  services.NewSearchService(backend),
	}
}

func (f *fixture) commitsSucceed() *mock.Call {
	return f.gateway.On("Commit", mock.Anything, mock.Anything).Return(nil)
}

func (f *fixture) invalidationsSucceed() *mock.Call {
	return f.cache.On("Invalidate", mock.Anything, mock.Anything).Return(nil)
}

func (f *fixture) signUp(t *testing.T, name string) *domain.User {
	t.Helper()

	user, err := f.auth.SignUp(context.Background(), name, name+"-pw")
	require.NoError(t, err)

	return user
}

func (f *fixture) seats(t *testing.T, trainID string) domain.SeatMatrix {
	t.Helper()

	train, err := f.backend.Catalog.Train(trainID)
	require.NoError(t, err)

	return train.Seats
}

// memCache is an in-process seat cache. beforeSet, when set, runs once
// at the start of the next SetAvailability.
type memCache struct {
	mu        sync.Mutex
	entries   map[string]domain.SeatAvailability
	beforeSet func()
}

func newMemCache() *memCache {
	return &memCache{entries: map[string]domain.SeatAvailability{}}
}

func (c *memCache) GetAvailability(_ context.Context, trainID string) (*domain.SeatAvailability, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	a, ok := c.entries[trainID]
	if !ok {
		return nil, nil
	}
	a.Seats = a.Seats.Clone()

	return &a, nil
}

func (c *memCache) SetAvailability(_ context.Context, a *domain.SeatAvailability) error {
	if hook := c.beforeSet; hook != nil {
		c.beforeSet = nil
		hook()
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	stored := *a
	stored.Seats = a.Seats.Clone()
	c.entries[a.TrainID] = stored

	return nil
}

func (c *memCache) Invalidate(_ context.Context, trainID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, trainID)

	return nil
}
