package repository

import (
	"context"
	"time"
)

// CounterStore holds fixed-window request counters shared between instances.
type CounterStore interface {
	// Take increments the counter at key when it is below limit. ttl is set
	// when the key is created. It returns the count after the call and
	// whether the increment happened.
	Take(ctx context.Context, key string, limit int64, ttl time.Duration) (count int64, taken bool, err error)
}
