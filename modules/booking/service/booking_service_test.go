package service

import (
	"context"
	stderrors "errors"
	"sync/atomic"
	"testing"
	"time"

	"booking-gateway/modules/booking/entity"
	"booking-gateway/modules/calendar/provider"
)

// gatedRecorder holds every ledger write until release is closed.
type gatedRecorder struct {
	release chan struct{}
	written atomic.Int64
}

func (r *gatedRecorder) Record(ctx context.Context, _ *entity.BookingRecord) error {
	select {
	case <-r.release:
		r.written.Add(1)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func TestBookingServiceDrainWaitsForLedgerWrites(t *testing.T) {
	p, _ := newTestPipeline(t, provider.NewMemoryCalendar())
	rec := &gatedRecorder{release: make(chan struct{})}
	svc := NewBookingService(p, "memory", rec, nil)

	if _, err := svc.Create(context.Background(), []byte(validBody), "ip:192.0.2.1"); err != nil {
		t.Fatalf("Create: %v", err)
	}

	short, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := svc.Drain(short); !stderrors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Drain with pending write = %v, want deadline exceeded", err)
	}

	close(rec.release)
	ctx, cancel2 := context.WithTimeout(context.Background(), time.Second)
	defer cancel2()
	if err := svc.Drain(ctx); err != nil {
		t.Fatalf("Drain: %v", err)
	}
	if got := rec.written.Load(); got != 1 {
		t.Errorf("written = %d, want 1", got)
	}
}

func TestBookingServiceDrainWithoutLedger(t *testing.T) {
	p, _ := newTestPipeline(t, provider.NewMemoryCalendar())
	svc := NewBookingService(p, "memory", nil, nil)

	if _, err := svc.Create(context.Background(), []byte(validBody), "ip:192.0.2.1"); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := svc.Drain(context.Background()); err != nil {
		t.Errorf("Drain = %v", err)
	}
}
