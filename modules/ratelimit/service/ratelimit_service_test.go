package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"booking-gateway/modules/ratelimit/repository"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

type failingStore struct{ err error }

func (s failingStore) Take(context.Context, string, int64, time.Duration) (int64, bool, error) {
	return 0, false, s.err
}

type slowStore struct{ delay time.Duration }

func (s slowStore) Take(ctx context.Context, _ string, _ int64, _ time.Duration) (int64, bool, error) {
	select {
	case <-time.After(s.delay):
		return 1, true, nil
	case <-ctx.Done():
		return 0, false, ctx.Err()
	}
}

func newLimiter(store repository.CounterStore, clock *fakeClock, max int64, failOpen bool) RateLimiter {
	return NewRateLimiter(store, Options{
		MaxRequests:  max,
		Window:       time.Minute,
		StoreTimeout: 50 * time.Millisecond,
		FailOpen:     failOpen,
		Prefix:       "test",
		Now:          clock.Now,
	})
}

func TestAdmit_AllowsUpToMaxThenDenies(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 1, 1, 10, 0, 15, 0, time.UTC)}
	l := newLimiter(repository.NewMemoryCounterStore(), clock, 50, true)

	for i := 1; i <= 50; i++ {
		dec := l.Admit(context.Background(), "ip:10.0.0.1")
		if !dec.Allowed {
			t.Fatalf("request %d: expected allowed", i)
		}
		if dec.Remaining != int64(50-i) {
			t.Fatalf("request %d: expected remaining %d, got %d", i, 50-i, dec.Remaining)
		}
	}

	dec := l.Admit(context.Background(), "ip:10.0.0.1")
	if dec.Allowed {
		t.Fatalf("expected 51st request to be denied")
	}
	if dec.RetryAfter != 45*time.Second {
		t.Fatalf("expected retry after 45s, got %s", dec.RetryAfter)
	}
	if dec.RetryAfterMs() != 45000 {
		t.Fatalf("expected 45000ms, got %d", dec.RetryAfterMs())
	}
}

func TestAdmit_AllowsAgainAfterWindowElapses(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 1, 1, 10, 0, 59, 0, time.UTC)}
	l := newLimiter(repository.NewMemoryCounterStore(), clock, 1, true)

	if !l.Admit(context.Background(), "a").Allowed {
		t.Fatalf("expected first request allowed")
	}
	if dec := l.Admit(context.Background(), "a"); dec.Allowed || dec.RetryAfter <= 0 {
		t.Fatalf("expected denial with positive retry, got %+v", dec)
	}

	clock.now = clock.now.Add(time.Second)
	if !l.Admit(context.Background(), "a").Allowed {
		t.Fatalf("expected request allowed in the next window")
	}
}

func TestAdmit_IdentitiesAreIndependent(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)}
	l := newLimiter(repository.NewMemoryCounterStore(), clock, 1, true)

	if !l.Admit(context.Background(), "a").Allowed {
		t.Fatalf("expected a allowed")
	}
	if !l.Admit(context.Background(), "b").Allowed {
		t.Fatalf("expected b allowed")
	}
}

func TestAdmit_FailsOpenOnStoreError(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	l := newLimiter(failingStore{err: errors.New("connection refused")}, clock, 1, true)

	for i := 0; i < 3; i++ {
		dec := l.Admit(context.Background(), "a")
		if !dec.Allowed || !dec.Degraded {
			t.Fatalf("expected degraded admission, got %+v", dec)
		}
	}
}

func TestAdmit_FailsOpenWithinStoreTimeout(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	l := newLimiter(slowStore{delay: 2 * time.Second}, clock, 1, true)

	start := time.Now()
	dec := l.Admit(context.Background(), "a")
	if !dec.Allowed || !dec.Degraded {
		t.Fatalf("expected degraded admission, got %+v", dec)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("expected the store timeout to bound the check, took %s", elapsed)
	}
}

func TestAdmit_FailClosedDenies(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 1, 1, 10, 0, 30, 0, time.UTC)}
	l := newLimiter(failingStore{err: errors.New("down")}, clock, 5, false)

	dec := l.Admit(context.Background(), "a")
	if dec.Allowed || !dec.Degraded {
		t.Fatalf("expected degraded denial, got %+v", dec)
	}
	if dec.RetryAfter != 30*time.Second {
		t.Fatalf("expected retry after 30s, got %s", dec.RetryAfter)
	}
}
