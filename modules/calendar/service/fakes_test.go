package service

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"booking-gateway/modules/calendar/entity"
	"booking-gateway/modules/calendar/provider"
)

// stubFactory wraps a MemoryCalendar with configurable handshake behavior.
type stubFactory struct {
	cal      *provider.MemoryCalendar
	delay    atomic.Int64
	fail     atomic.Bool
	connects atomic.Int64
}

func newStubFactory() *stubFactory {
	return &stubFactory{cal: provider.NewMemoryCalendar()}
}

func (f *stubFactory) Name() string { return "stub" }

func (f *stubFactory) Connect(ctx context.Context) (provider.Client, error) {
	f.connects.Add(1)
	if d := time.Duration(f.delay.Load()); d > 0 {
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.fail.Load() {
		return nil, errors.New("handshake refused")
	}
	return f.cal, nil
}

// slowClient blocks every call until its context ends.
type slowClient struct{}

func (slowClient) ListEvents(ctx context.Context, _ entity.TimeWindow) ([]entity.EventRef, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (slowClient) InsertEvent(ctx context.Context, _ *entity.NewEvent) (*entity.CalendarEvent, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

type brokenClient struct{}

func (brokenClient) ListEvents(context.Context, entity.TimeWindow) ([]entity.EventRef, error) {
	return nil, errors.New("502 bad gateway")
}

func (brokenClient) InsertEvent(context.Context, *entity.NewEvent) (*entity.CalendarEvent, error) {
	return nil, errors.New("502 bad gateway")
}

type panickyClient struct{}

func (panickyClient) ListEvents(context.Context, entity.TimeWindow) ([]entity.EventRef, error) {
	panic("nil map in provider SDK")
}

func (panickyClient) InsertEvent(context.Context, *entity.NewEvent) (*entity.CalendarEvent, error) {
	panic("nil map in provider SDK")
}
