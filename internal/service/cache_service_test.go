package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/seminary-calendar/internal/models"
	"github.com/noah-isme/seminary-calendar/internal/repository"
)

func newRedisCache(t *testing.T) (*CacheService, *miniredis.Miniredis) {
	t.Helper()
	s := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	repo := repository.NewCacheRepository(client, zap.NewNop())
	return NewCacheService(repo, NewMetricsService(), time.Minute, zap.NewNop(), true), s
}

func TestCachedLoadsOnceThenHits(t *testing.T) {
	cache, _ := newRedisCache(t)
	calls := 0
	load := func(context.Context) ([]models.EventCategory, error) {
		calls++
		return []models.EventCategory{{ID: 1, Name: "Exams"}}, nil
	}

	first, hit, err := cached(context.Background(), cache, CacheKey("categories"), load)
	require.NoError(t, err)
	assert.False(t, hit)
	second, hit, err := cached(context.Background(), cache, CacheKey("categories"), load)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls)
	assert.InDelta(t, 0.5, cache.metrics.Snapshot().CacheHitRatio, 0.001)
}

func TestCachedDoesNotStoreErrors(t *testing.T) {
	cache, s := newRedisCache(t)
	_, _, err := cached(context.Background(), cache, "broken", func(context.Context) (int, error) {
		return 0, errors.New("backend down")
	})
	require.Error(t, err)
	assert.Empty(t, s.Keys())
}

func TestCachedBypassesDisabledCache(t *testing.T) {
	disabled := NewCacheService(nil, nil, 0, nil, false)
	calls := 0
	for i := 0; i < 2; i++ {
		_, hit, err := cached(context.Background(), disabled, "k", func(context.Context) (int, error) {
			calls++
			return 1, nil
		})
		require.NoError(t, err)
		assert.False(t, hit)
	}
	assert.Equal(t, 2, calls)
}

func TestCachedSurvivesRedisOutage(t *testing.T) {
	cache, s := newRedisCache(t)
	s.Close()
	value, hit, err := cached(context.Background(), cache, "k", func(context.Context) (string, error) {
		return "fresh", nil
	})
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, "fresh", value)
}

func TestInvalidatePurgesCalendarEntries(t *testing.T) {
	cache, s := newRedisCache(t)
	ctx := context.Background()
	require.NoError(t, cache.Set(ctx, CacheKey("month", "2025", "5"), map[string]int{"year": 2025}, 0))
	require.NoError(t, cache.Set(ctx, CacheKey("categories"), []string{"Exams"}, 0))
	require.NoError(t, s.Set("other-service:key", "kept"))

	require.NoError(t, cache.Invalidate(ctx, "*"))
	assert.Equal(t, []string{"other-service:key"}, s.Keys())
}
