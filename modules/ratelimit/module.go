package ratelimit

import (
	"booking-gateway/core/cache"
	"booking-gateway/core/config"
	"booking-gateway/core/logger"
	"booking-gateway/core/scheduler"
	"booking-gateway/modules/ratelimit/repository"
	"booking-gateway/modules/ratelimit/service"
)

// Init builds the limiter. Redis backs the counters when a cache is given;
// otherwise a process-local store is swept by the scheduler.
func Init(cfg config.RateLimitConfig, c cache.Cache, sched *scheduler.Scheduler) (service.RateLimiter, error) {
	var store repository.CounterStore
	if c != nil {
		store = repository.NewRedisCounterStore(c.Client())
		logger.Info("RateLimit:Init", "store", "redis")
	} else {
		mem := repository.NewMemoryCounterStore()
		if err := sched.Add("ratelimit-janitor", "@every 2m", mem.Cleanup); err != nil {
			return nil, err
		}
		store = mem
		logger.Warn("RateLimit:Init", "store", "memory", "note", "counters are not shared between instances")
	}

	return service.NewRateLimiter(store, service.Options{
		MaxRequests:  cfg.MaxRequests,
		Window:       cfg.Window,
		StoreTimeout: cfg.StoreTimeout,
		FailOpen:     cfg.FailOpen,
		Prefix:       cfg.Prefix,
	}), nil
}
