package repository

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestMemoryCounterStore_StopsAtLimit(t *testing.T) {
	s := NewMemoryCounterStore()
	ctx := context.Background()

	for i := int64(1); i <= 3; i++ {
		count, taken, err := s.Take(ctx, "k", 3, time.Minute)
		if err != nil || !taken || count != i {
			t.Fatalf("take %d: expected (%d, true, nil), got (%d, %v, %v)", i, i, count, taken, err)
		}
	}

	count, taken, _ := s.Take(ctx, "k", 3, time.Minute)
	if taken {
		t.Fatalf("expected fourth take to be refused")
	}
	if count != 3 {
		t.Fatalf("expected count to stay at 3, got %d", count)
	}
}

func TestMemoryCounterStore_ResetsAfterExpiry(t *testing.T) {
	now := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	s := NewMemoryCounterStore(WithClock(func() time.Time { return now }))
	ctx := context.Background()

	_, _, _ = s.Take(ctx, "k", 1, time.Second)
	if _, taken, _ := s.Take(ctx, "k", 1, time.Second); taken {
		t.Fatalf("expected refusal inside the window")
	}

	now = now.Add(time.Second)
	if count, taken, _ := s.Take(ctx, "k", 1, time.Second); !taken || count != 1 {
		t.Fatalf("expected fresh window, got (%d, %v)", count, taken)
	}
}

func TestMemoryCounterStore_CleanupRemovesExpired(t *testing.T) {
	now := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	s := NewMemoryCounterStore(WithClock(func() time.Time { return now }))

	_, _, _ = s.Take(context.Background(), "a", 5, time.Second)
	_, _, _ = s.Take(context.Background(), "b", 5, time.Hour)

	now = now.Add(2 * time.Second)
	s.Cleanup()

	if s.Len() != 1 {
		t.Fatalf("expected one live entry, got %d", s.Len())
	}
}

func TestMemoryCounterStore_ConcurrentTakesNeverExceedLimit(t *testing.T) {
	s := NewMemoryCounterStore()
	var wg sync.WaitGroup
	var mu sync.Mutex
	taken := 0

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, ok, _ := s.Take(context.Background(), "k", 10, time.Minute); ok {
				mu.Lock()
				taken++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if taken != 10 {
		t.Fatalf("expected exactly 10 takes, got %d", taken)
	}
}
