package ratelimit

import (
	"context"
	"strings"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

// Result is what the limiter tells the caller about one attempt. Reset is
// when the oldest counted event leaves the window.
type Result struct {
	Allowed   bool      `json:"allowed"`
	Limit     int       `json:"limit"`
	Remaining int       `json:"remaining"`
	Reset     time.Time `json:"reset"`
}

// Store records one attempt under key and reports how many attempts the
// window currently holds, plus the oldest one still counted.
type Store interface {
	Add(ctx context.Context, key string, now time.Time, window time.Duration) (count int64, oldest time.Time, err error)
}

type TierLimit struct {
	Max    int
	Window time.Duration
}

// Limiter applies a sliding-window limit per (identity, tier). A store
// failure fails open: an unreachable counter backend must not take the
// feature down with it.
type Limiter struct {
	store Store
	tiers map[string]TierLimit
	now   func() time.Time
}

func NewLimiter(store Store, tiers map[string]TierLimit) *Limiter {
	return &Limiter{
		store: store,
		tiers: tiers,
		now:   time.Now,
	}
}

func (l *Limiter) Allow(ctx context.Context, identity, tier string) Result {
	limit, ok := l.tiers[strings.ToLower(tier)]
	if !ok {
		limit, ok = l.tiers["free"]
	}
	if !ok || limit.Max <= 0 {
		return Result{Allowed: true, Limit: 0, Remaining: -1}
	}
	now := l.now()
	key := identity + "|" + strings.ToLower(tier)
	count, oldest, err := l.store.Add(ctx, key, now, limit.Window)
	if err != nil {
		logutil.GetLogger(ctx).Warn("rate limit store unavailable, allowing request",
			zap.Error(err), zap.String("identity", identity))
		return Result{Allowed: true, Limit: limit.Max, Remaining: limit.Max}
	}
	remaining := limit.Max - int(count)
	if remaining < 0 {
		remaining = 0
	}
	reset := oldest.Add(limit.Window)
	if oldest.IsZero() {
		reset = now.Add(limit.Window)
	}
	return Result{
		Allowed:   count <= int64(limit.Max),
		Limit:     limit.Max,
		Remaining: remaining,
		Reset:     reset,
	}
}
