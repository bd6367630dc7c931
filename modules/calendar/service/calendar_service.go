package service

import (
	"context"
	"sort"
	"time"

	"booking-gateway/core/errors"
	"booking-gateway/modules/calendar/dto"
	"booking-gateway/modules/calendar/entity"
)

const (
	DefaultSlotInterval = 30
	maxQueryRange       = 31 * 24 * time.Hour
)

// CalendarService serves read-only calendar queries and cache maintenance.
type CalendarService interface {
	GetFreeBusy(ctx context.Context, start, end time.Time) ([]dto.TimeSlot, error)
	GetFreeSlots(ctx context.Context, start, end time.Time, interval int) ([]dto.TimeSlot, error)
	Status() *dto.StatusResponse
	Refresh()
}

type calendarService struct {
	gateway  CalendarGateway
	cache    *AuthClientCache
	provider string
}

func NewCalendarService(gateway CalendarGateway, cache *AuthClientCache, provider string) CalendarService {
	return &calendarService{gateway: gateway, cache: cache, provider: provider}
}

func (s *calendarService) busy(ctx context.Context, start, end time.Time) ([]entity.EventRef, error) {
	if !start.Before(end) {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "end_time must be after start_time", nil)
	}
	if end.Sub(start) > maxQueryRange {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "range must not exceed 31 days", nil)
	}

	client, err := s.gateway.GetClient(ctx)
	if err != nil {
		return nil, err
	}
	res, err := s.gateway.CheckAvailability(ctx, client, entity.TimeWindow{Start: start, End: end})
	if err != nil {
		return nil, err
	}
	return res.ConflictingEvents, nil
}

func (s *calendarService) GetFreeBusy(ctx context.Context, start, end time.Time) ([]dto.TimeSlot, error) {
	events, err := s.busy(ctx, start, end)
	if err != nil {
		return nil, err
	}
	merged := mergeBusy(events)
	slots := make([]dto.TimeSlot, 0, len(merged))
	for _, w := range merged {
		slots = append(slots, dto.TimeSlot{Start: w.Start.Format(time.RFC3339), End: w.End.Format(time.RFC3339)})
	}
	return slots, nil
}

func (s *calendarService) GetFreeSlots(ctx context.Context, start, end time.Time, interval int) ([]dto.TimeSlot, error) {
	if interval <= 0 {
		interval = DefaultSlotInterval
	}
	events, err := s.busy(ctx, start, end)
	if err != nil {
		return nil, err
	}
	return computeFreeSlots(start, end, events, interval), nil
}

func (s *calendarService) Status() *dto.StatusResponse {
	return &dto.StatusResponse{
		Provider: s.provider,
		State:    s.cache.State().String(),
		Inits:    s.cache.Inits(),
	}
}

func (s *calendarService) Refresh() {
	s.cache.Invalidate()
}

// computeFreeSlots steps through [start, end) in interval-minute slots and
// keeps those that overlap no busy event.
func computeFreeSlots(start, end time.Time, busy []entity.EventRef, interval int) []dto.TimeSlot {
	slots := []dto.TimeSlot{}
	step := time.Duration(interval) * time.Minute
	for t := start; !t.Add(step).After(end); t = t.Add(step) {
		u := t.Add(step)
		if overlapsAny(t, u, busy) {
			continue
		}
		slots = append(slots, dto.TimeSlot{
			Start: t.Format(time.RFC3339),
			End:   u.Format(time.RFC3339),
		})
	}
	return slots
}

func overlapsAny(st, et time.Time, busy []entity.EventRef) bool {
	w := entity.TimeWindow{Start: st, End: et}
	for _, b := range busy {
		if w.Overlaps(b.Start, b.End) {
			return true
		}
	}
	return false
}

// mergeBusy collapses overlapping or adjacent events into busy periods.
func mergeBusy(events []entity.EventRef) []entity.TimeWindow {
	if len(events) == 0 {
		return nil
	}
	windows := make([]entity.TimeWindow, 0, len(events))
	for _, ev := range events {
		windows = append(windows, entity.TimeWindow{Start: ev.Start, End: ev.End})
	}
	sort.Slice(windows, func(i, j int) bool { return windows[i].Start.Before(windows[j].Start) })

	merged := []entity.TimeWindow{windows[0]}
	for _, cur := range windows[1:] {
		last := &merged[len(merged)-1]
		if !cur.Start.After(last.End) {
			if cur.End.After(last.End) {
				last.End = cur.End
			}
			continue
		}
		merged = append(merged, cur)
	}
	return merged
}
