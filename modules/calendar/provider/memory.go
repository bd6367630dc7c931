package provider

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"

	"booking-gateway/core/constants"
	"booking-gateway/core/utils"
	"booking-gateway/modules/calendar/entity"
)

// MemoryCalendar is an in-process provider for local runs and tests.
type MemoryCalendar struct {
	mu       sync.Mutex
	events   map[string]*entity.CalendarEvent
	connects atomic.Int64
}

func NewMemoryCalendar() *MemoryCalendar {
	return &MemoryCalendar{events: make(map[string]*entity.CalendarEvent)}
}

func (m *MemoryCalendar) Name() string { return constants.ProviderMemory }

func (m *MemoryCalendar) Connect(ctx context.Context) (Client, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.connects.Add(1)
	return m, nil
}

// Connects counts handshakes performed so far.
func (m *MemoryCalendar) Connects() int64 { return m.connects.Load() }

// Seed stores an existing event, e.g. to occupy a slot.
func (m *MemoryCalendar) Seed(ev entity.CalendarEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ev.ID == "" {
		ev.ID = utils.GenerateID()
	}
	if ev.Status == "" {
		ev.Status = entity.StatusConfirmed
	}
	m.events[ev.ID] = &ev
}

func (m *MemoryCalendar) ListEvents(ctx context.Context, window entity.TimeWindow) ([]entity.EventRef, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var refs []entity.EventRef
	for _, ev := range m.events {
		if ev.Status == entity.StatusCancelled || !window.Overlaps(ev.Start, ev.End) {
			continue
		}
		refs = append(refs, entity.EventRef{ID: ev.ID, Summary: ev.Summary, Start: ev.Start, End: ev.End})
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].Start.Before(refs[j].Start) })
	return refs, nil
}

func (m *MemoryCalendar) InsertEvent(ctx context.Context, ev *entity.NewEvent) (*entity.CalendarEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	created := &entity.CalendarEvent{
		ID:        utils.GenerateID(),
		Reference: ev.Reference,
		Summary:   ev.Summary,
		Start:     ev.Start,
		End:       ev.End,
		Attendees: append([]string(nil), ev.Attendees...),
		Status:    entity.StatusConfirmed,
	}

	m.mu.Lock()
	m.events[created.ID] = created
	m.mu.Unlock()

	out := *created
	return &out, nil
}
