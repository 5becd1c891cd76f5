package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/befriend-app/befriend-backend/internal/domain"
	"github.com/befriend-app/befriend-backend/internal/repository"
	"github.com/redis/go-redis/v9"
)

type discoverCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewDiscoverCache(client redis.Cmdable, ttl time.Duration) repository.DiscoverCache {
	return &discoverCache{client: client, ttl: ttl}
}

func Key(uid string, limits domain.DiscoverLimits) string {
	return fmt.Sprintf("discover:%s:%d:%d", uid, limits.People, limits.Activities)
}

func (c *discoverCache) Get(ctx context.Context, uid string, limits domain.DiscoverLimits) (*domain.DiscoverResponse, error) {
	raw, err := c.client.Get(ctx, Key(uid, limits)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrCacheMiss
		}
		return nil, err
	}

	var resp domain.DiscoverResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("decode cached discover response: %w", err)
	}
	return &resp, nil
}

func (c *discoverCache) Set(ctx context.Context, uid string, limits domain.DiscoverLimits, resp *domain.DiscoverResponse) error {
	if c.ttl <= 0 {
		return nil
	}
	raw, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, Key(uid, limits), raw, c.ttl).Err()
}
