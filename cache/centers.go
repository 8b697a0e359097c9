// Package cache keeps the ordered center list in Redis so catalog queries
// do not hit the store on every request.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"washcenter-backend/models"

	"github.com/redis/go-redis/v9"
)

const (
	CentersKey    = "centers:all"
	GenerationKey = "centers:gen"
)

var (
	ErrMiss = errors.New("cache miss")
	// ErrStale is returned by SetCenters when the list was invalidated after
	// the generation was read; the list is not stored.
	ErrStale = errors.New("cache generation changed")
)

// CenterCache is filled with a generation token: read Generation before
// loading from the store and pass it to SetCenters. InvalidateCenters bumps
// the generation, so a fill that raced with a write is dropped.
type CenterCache interface {
	// GetCenters returns ErrMiss when nothing is cached.
	GetCenters(ctx context.Context) ([]models.Center, error)
	Generation(ctx context.Context) (int64, error)
	SetCenters(ctx context.Context, centers []models.Center, gen int64) error
	InvalidateCenters(ctx context.Context) error
}

// setIfGeneration stores ARGV[2] under KEYS[1] for ARGV[3] ms only while
// KEYS[2] still holds generation ARGV[1].
var setIfGeneration = redis.NewScript(`
local cur = redis.call('GET', KEYS[2]) or '0'
if cur ~= ARGV[1] then
  return 0
end
redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
return 1
`)

type RedisCenterCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCenterCache(client *redis.Client, ttl time.Duration) *RedisCenterCache {
	return &RedisCenterCache{client: client, ttl: ttl}
}

func (c *RedisCenterCache) GetCenters(ctx context.Context) ([]models.Center, error) {
	raw, err := c.client.Get(ctx, CentersKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrMiss
		}
		return nil, err
	}
	var centers []models.Center
	if err := json.Unmarshal(raw, &centers); err != nil {
		return nil, err
	}
	return centers, nil
}

func (c *RedisCenterCache) Generation(ctx context.Context) (int64, error) {
	gen, err := c.client.Get(ctx, GenerationKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

func (c *RedisCenterCache) SetCenters(ctx context.Context, centers []models.Center, gen int64) error {
	raw, err := json.Marshal(centers)
	if err != nil {
		return err
	}
	stored, err := setIfGeneration.Run(ctx, c.client,
		[]string{CentersKey, GenerationKey},
		gen, string(raw), c.ttl.Milliseconds()).Int64()
	if err != nil {
		return err
	}
	if stored == 0 {
		return ErrStale
	}
	return nil
}

// InvalidateCenters bumps the generation before deleting the list: a fill
// that read the old generation can no longer store, and one that already
// stored is removed.
func (c *RedisCenterCache) InvalidateCenters(ctx context.Context) error {
	if err := c.client.Incr(ctx, GenerationKey).Err(); err != nil {
		return err
	}
	return c.client.Del(ctx, CentersKey).Err()
}
