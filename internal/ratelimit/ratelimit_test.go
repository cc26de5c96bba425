package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type erroringStore struct{}

func (erroringStore) Add(context.Context, string, time.Time, time.Duration) (int64, time.Time, error) {
	return 0, time.Time{}, errors.New("store down")
}

func newTestLimiter(store Store) (*Limiter, *time.Time) {
	limiter := NewLimiter(store, map[string]TierLimit{
		"free": {Max: 3, Window: 24 * time.Hour},
		"pro":  {Max: 100, Window: 24 * time.Hour},
	})
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }
	return limiter, &now
}

func TestLimiterDeniesOverLimit(t *testing.T) {
	limiter, _ := newTestLimiter(NewMemoryStore())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		result := limiter.Allow(ctx, "user-1", "free")
		require.True(t, result.Allowed, "request %d should pass", i+1)
	}
	result := limiter.Allow(ctx, "user-1", "free")
	require.False(t, result.Allowed)
	require.Equal(t, 3, result.Limit)
	require.Equal(t, 0, result.Remaining)
	require.False(t, result.Reset.IsZero())
}

func TestLimiterWindowSlides(t *testing.T) {
	limiter, now := newTestLimiter(NewMemoryStore())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		limiter.Allow(ctx, "user-1", "free")
	}
	require.False(t, limiter.Allow(ctx, "user-1", "free").Allowed)

	*now = now.Add(25 * time.Hour)
	require.True(t, limiter.Allow(ctx, "user-1", "free").Allowed)
}

func TestLimiterTiersAreIndependent(t *testing.T) {
	limiter, _ := newTestLimiter(NewMemoryStore())
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		require.True(t, limiter.Allow(ctx, "pro-user", "pro").Allowed)
	}
	// Another identity on the exhausted tier starts fresh.
	for i := 0; i < 3; i++ {
		limiter.Allow(ctx, "user-1", "free")
	}
	require.False(t, limiter.Allow(ctx, "user-1", "free").Allowed)
	require.True(t, limiter.Allow(ctx, "user-2", "free").Allowed)
}

func TestLimiterUnknownTierUsesFree(t *testing.T) {
	limiter, _ := newTestLimiter(NewMemoryStore())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		limiter.Allow(ctx, "user-1", "enterprise")
	}
	require.False(t, limiter.Allow(ctx, "user-1", "enterprise").Allowed)
}

func TestLimiterFailsOpenOnStoreError(t *testing.T) {
	limiter, _ := newTestLimiter(erroringStore{})
	result := limiter.Allow(context.Background(), "user-1", "free")
	require.True(t, result.Allowed)
}

func TestLimiterNoLimitConfigured(t *testing.T) {
	limiter := NewLimiter(NewMemoryStore(), map[string]TierLimit{})
	result := limiter.Allow(context.Background(), "user-1", "free")
	require.True(t, result.Allowed)
	require.Equal(t, -1, result.Remaining)
}
