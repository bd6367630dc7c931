package service

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"booking-gateway/core/logger"
	"booking-gateway/core/timeout"
	"booking-gateway/modules/calendar/provider"
)

type CacheState int

const (
	StateUninitialized CacheState = iota
	StateInitializing
	StateCached
)

func (s CacheState) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateCached:
		return "cached"
	default:
		return "uninitialized"
	}
}

// AuthClientCache holds one authenticated provider client for the process.
//
// The first caller performs the handshake under a short budget while
// concurrent callers wait for it. If the handshake fails or is slow, every
// caller involved gets a per-call client and the cache returns to
// uninitialized so a later request can try again.
type AuthClientCache struct {
	factory     provider.Factory
	initTimeout time.Duration

	mu       sync.Mutex
	client   provider.Client
	cachedAt time.Time
	inflight chan struct{}

	inits atomic.Int64
}

func NewAuthClientCache(factory provider.Factory, initTimeout time.Duration) *AuthClientCache {
	return &AuthClientCache{factory: factory, initTimeout: initTimeout}
}

// Get never fails: callers always receive a usable client.
func (c *AuthClientCache) Get(ctx context.Context) provider.Client {
	c.mu.Lock()
	if c.client != nil {
		client := c.client
		c.mu.Unlock()
		return client
	}

	if wait := c.inflight; wait != nil {
		c.mu.Unlock()
		select {
		case <-wait:
		case <-ctx.Done():
			return provider.PerCall(c.factory)
		}
		c.mu.Lock()
		client := c.client
		c.mu.Unlock()
		if client != nil {
			return client
		}
		return provider.PerCall(c.factory)
	}

	done := make(chan struct{})
	c.inflight = done
	c.mu.Unlock()

	c.inits.Add(1)
	start := time.Now()
	// The handshake result is shared, so it must not die with this request.
	client, err := timeout.Guard(context.WithoutCancel(ctx), c.initTimeout,
		"auth client initialization timed out", c.factory.Connect)

	c.mu.Lock()
	if err == nil {
		c.client = client
		c.cachedAt = time.Now()
	}
	c.inflight = nil
	close(done)
	c.mu.Unlock()

	if err != nil {
		logger.Warn("AuthClientCache:Get:InitFailed",
			"provider", c.factory.Name(),
			"error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
			"fallback", "per-call")
		return provider.PerCall(c.factory)
	}

	logger.Info("AuthClientCache:Get:Cached",
		"provider", c.factory.Name(),
		"elapsed_ms", time.Since(start).Milliseconds())
	return client
}

// Invalidate drops the cached client; the next Get performs a new handshake.
func (c *AuthClientCache) Invalidate() {
	c.mu.Lock()
	had := c.client != nil
	age := time.Since(c.cachedAt)
	c.client = nil
	c.cachedAt = time.Time{}
	c.mu.Unlock()

	if had {
		logger.Info("AuthClientCache:Invalidate", "provider", c.factory.Name(), "age", age.String())
	}
}

func (c *AuthClientCache) State() CacheState {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch {
	case c.client != nil:
		return StateCached
	case c.inflight != nil:
		return StateInitializing
	default:
		return StateUninitialized
	}
}

// Inits counts handshake attempts made by the cache itself.
func (c *AuthClientCache) Inits() int64 { return c.inits.Load() }
