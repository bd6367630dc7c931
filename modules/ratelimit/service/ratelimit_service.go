package service

import (
	"context"
	"strconv"
	"time"

	"booking-gateway/core/logger"
	"booking-gateway/core/timeout"
	"booking-gateway/core/utils"
	"booking-gateway/modules/ratelimit/entity"
	"booking-gateway/modules/ratelimit/repository"

	"golang.org/x/time/rate"
)

type RateLimiter interface {
	Admit(ctx context.Context, identity string) entity.Decision
	Limit() int64
}

type Options struct {
	MaxRequests  int64
	Window       time.Duration
	StoreTimeout time.Duration
	// FailOpen admits requests when the store cannot be reached in time.
	FailOpen bool
	Prefix   string
	Now      func() time.Time
}

type rateLimiter struct {
	store    repository.CounterStore
	opts     Options
	degraded rate.Sometimes
}

func NewRateLimiter(store repository.CounterStore, opts Options) RateLimiter {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Prefix == "" {
		opts.Prefix = "ratelimit"
	}
	return &rateLimiter{
		store: store,
		opts:  opts,
		// one degradation line per interval while the store is down
		degraded: rate.Sometimes{First: 1, Interval: 10 * time.Second},
	}
}

func (l *rateLimiter) Limit() int64 { return l.opts.MaxRequests }

// Admit counts the request against identity's current fixed window.
func (l *rateLimiter) Admit(ctx context.Context, identity string) entity.Decision {
	now := l.opts.Now()
	windowStart := now.Truncate(l.opts.Window)
	resetIn := windowStart.Add(l.opts.Window).Sub(now)
	if resetIn <= 0 {
		resetIn = time.Millisecond
	}

	key := l.opts.Prefix + ":" + utils.HashIdentity(identity) + ":" + strconv.FormatInt(windowStart.UnixMilli(), 10)
	ttl := resetIn + time.Second

	type taken struct {
		count int64
		ok    bool
	}
	res, err := timeout.Guard(ctx, l.opts.StoreTimeout, "rate limit store timed out", func(ctx context.Context) (taken, error) {
		count, ok, err := l.store.Take(ctx, key, l.opts.MaxRequests, ttl)
		return taken{count: count, ok: ok}, err
	})
	if err != nil {
		return l.degrade(identity, resetIn, err)
	}

	if !res.ok {
		return entity.Decision{
			Allowed:    false,
			RetryAfter: resetIn,
			Limit:      l.opts.MaxRequests,
			Remaining:  0,
		}
	}

	remaining := l.opts.MaxRequests - res.count
	if remaining < 0 {
		remaining = 0
	}
	return entity.Decision{
		Allowed:   true,
		Limit:     l.opts.MaxRequests,
		Remaining: remaining,
	}
}

func (l *rateLimiter) degrade(identity string, resetIn time.Duration, err error) entity.Decision {
	l.degraded.Do(func() {
		logger.Warn("RateLimiter:Admit:StoreUnavailable",
			"error", err,
			"fail_open", l.opts.FailOpen,
			"identity_hash", utils.HashIdentity(identity),
		)
	})

	if l.opts.FailOpen {
		return entity.Decision{
			Allowed:   true,
			Limit:     l.opts.MaxRequests,
			Remaining: l.opts.MaxRequests,
			Degraded:  true,
		}
	}
	return entity.Decision{
		Allowed:    false,
		RetryAfter: resetIn,
		Limit:      l.opts.MaxRequests,
		Degraded:   true,
	}
}
