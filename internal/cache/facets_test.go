package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupFacetCache(t *testing.T) (*RedisFacetCache, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisFacetCache(client, time.Minute), mr
}

func TestRedisFacetCache_MissThenHit(t *testing.T) {
	c, _ := setupFacetCache(t)
	ctx := context.Background()

	got, err := c.GetFacets(ctx)
	require.NoError(t, err)
	assert.Nil(t, got, "empty cache should miss")

	want := &Facets{Categories: []string{"Books", "Electronics"}, Faculties: []string{"Engineering"}}
	require.NoError(t, c.SetFacets(ctx, want))

	got, err = c.GetFacets(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestRedisFacetCache_Invalidate(t *testing.T) {
	c, _ := setupFacetCache(t)
	ctx := context.Background()

	require.NoError(t, c.SetFacets(ctx, &Facets{Categories: []string{"Books"}}))
	require.NoError(t, c.Invalidate(ctx))

	got, err := c.GetFacets(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisFacetCache_Expires(t *testing.T) {
	c, mr := setupFacetCache(t)
	ctx := context.Background()

	require.NoError(t, c.SetFacets(ctx, &Facets{Faculties: []string{"Law"}}))
	mr.FastForward(2 * time.Minute)

	got, err := c.GetFacets(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestNewRedisClient(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewRedisClient(context.Background(), "redis://"+mr.Addr())
	require.NoError(t, err)
	defer client.Close()

	_, err = NewRedisClient(context.Background(), "not-a-url")
	assert.Error(t, err)
}
