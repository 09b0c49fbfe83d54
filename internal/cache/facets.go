package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	facetsKey = "catalog:facets"

	// DefaultFacetTTL bounds staleness if an invalidation is lost
	DefaultFacetTTL = 10 * time.Minute
)

// Facets are the distinct filter values of the whole catalog.
type Facets struct {
	Categories []string `json:"categories"`
	Faculties  []string `json:"faculties"`
}

// FacetCache stores the catalog facets between product mutations.
// GetFacets returns (nil, nil) on a miss.
type FacetCache interface {
	GetFacets(ctx context.Context) (*Facets, error)
	SetFacets(ctx context.Context, facets *Facets) error
	Invalidate(ctx context.Context) error
}

// NewRedisClient parses a redis:// URL and checks the connection.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

// RedisFacetCache implements FacetCache on a single JSON key
type RedisFacetCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisFacetCache(client *redis.Client, ttl time.Duration) *RedisFacetCache {
	return &RedisFacetCache{client: client, ttl: ttl}
}

func (c *RedisFacetCache) GetFacets(ctx context.Context) (*Facets, error) {
	data, err := c.client.Get(ctx, facetsKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil // Cache miss
	}
	if err != nil {
		return nil, err
	}

	var facets Facets
	if err := json.Unmarshal(data, &facets); err != nil {
		return nil, err
	}
	return &facets, nil
}

func (c *RedisFacetCache) SetFacets(ctx context.Context, facets *Facets) error {
	data, err := json.Marshal(facets)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, facetsKey, data, c.ttl).Err()
}

func (c *RedisFacetCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, facetsKey).Err()
}

// NoopFacetCache always misses. Used when Redis is not configured.
type NoopFacetCache struct{}

func (NoopFacetCache) GetFacets(context.Context) (*Facets, error) { return nil, nil }
func (NoopFacetCache) SetFacets(context.Context, *Facets) error { return nil }
func (NoopFacetCache) Invalidate(context.Context) error { return nil }
