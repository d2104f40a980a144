package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/srgjo27/rail_ticket/internal/core/domain"
)

func seatsKey(trainID string) string {
	return fmt.Sprintf("seats:%s", trainID)
}

// SeatCache keeps per-train seat availability in Redis under
// "seats:<trainID>". Entries expire after ttl as a bound on staleness.
type SeatCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewSeatCache(client redis.Cmdable, ttl time.Duration) *SeatCache {
	return &SeatCache{client: client, ttl: ttl}
}

// GetAvailability returns nil without error on a cache miss.
func (c *SeatCache) GetAvailability(ctx context.Context, trainID string) (*domain.SeatAvailability, error) {
	raw, err := c.client.Get(ctx, seatsKey(trainID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var availability domain.SeatAvailability
	if err := json.Unmarshal(raw, &availability); err != nil {
		return nil, fmt.Errorf("decoding cached seats for %s: %w", trainID, err)
	}

	return &availability, nil
}

func (c *SeatCache) SetAvailability(ctx context.Context, availability *domain.SeatAvailability) error {
	raw, err := json.Marshal(availability)
	if err != nil {
		return err
	}

	return c.client.Set(ctx, seatsKey(availability.TrainID), raw, c.ttl).Err()
}

func (c *SeatCache) Invalidate(ctx context.Context, trainID string) error {
	return c.client.Del(ctx, seatsKey(trainID)).Err()
}
