package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mealbridge/mealbridge-api/internal/core/domain"
)

const cacheTTL = time.Minute

// DonationCache is a read-through cache for single-donation lookups.
// Key format: donation:<id>
type DonationCache struct {
	client *redis.Client
}

// NewDonationCache creates a DonationCache wrapping the given Redis client.
func NewDonationCache(client *redis.Client) *DonationCache {
	return &DonationCache{client: client}
}

// Get returns the cached donation or (nil, nil) on a miss.
func (c *DonationCache) Get(ctx context.Context, id string) (*domain.Donation, error) {
	raw, err := c.client.Get(ctx, c.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("cache get: %w", err)
	}

	var d domain.Donation
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("cache decode: %w", err)
	}
	return &d, nil
}

// Set stores the donation for cacheTTL.
func (c *DonationCache) Set(ctx context.Context, d *domain.Donation) error {
	raw, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("cache encode: %w", err)
	}
	return c.client.Set(ctx, c.key(d.ID), raw, cacheTTL).Err()
}

// Invalidate drops the cached entry after any mutation.
func (c *DonationCache) Invalidate(ctx context.Context, id string) error {
	return c.client.Del(ctx, c.key(id)).Err()
}

func (c *DonationCache) key(id string) string {
	return "donation:" + id
}
