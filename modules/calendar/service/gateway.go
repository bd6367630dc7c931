package service

import (
	"context"
	stderrors "errors"
	"time"

	"booking-gateway/core/errors"
	"booking-gateway/core/logger"
	"booking-gateway/core/timeout"
	"booking-gateway/modules/calendar/entity"
	"booking-gateway/modules/calendar/provider"
)

// CalendarGateway is the only path from the booking pipeline to the provider.
// Every call is bounded by its own budget and fails with a stage-tagged
// *errors.AppError.
type CalendarGateway interface {
	GetClient(ctx context.Context) (provider.Client, error)
	CheckAvailability(ctx context.Context, client provider.Client, window entity.TimeWindow) (*entity.AvailabilityResult, error)
	CreateEvent(ctx context.Context, client provider.Client, ev *entity.NewEvent) (*entity.CalendarEvent, error)
}

type Budgets struct {
	Auth         time.Duration
	Availability time.Duration
	Creation     time.Duration
}

type calendarGateway struct {
	cache   *AuthClientCache
	budgets Budgets
}

func NewCalendarGateway(cache *AuthClientCache, budgets Budgets) CalendarGateway {
	return &calendarGateway{cache: cache, budgets: budgets}
}

func (g *calendarGateway) GetClient(ctx context.Context) (provider.Client, error) {
	client, err := timeout.Guard(ctx, g.budgets.Auth, "calendar client acquisition timed out",
		func(ctx context.Context) (provider.Client, error) {
			return g.cache.Get(ctx), nil
		})
	if err != nil {
		return nil, stageError(entity.StageClient, errors.ErrAuthTimeout, err)
	}
	return client, nil
}

func (g *calendarGateway) CheckAvailability(ctx context.Context, client provider.Client, window entity.TimeWindow) (*entity.AvailabilityResult, error) {
	events, err := timeout.Guard(ctx, g.budgets.Availability, "availability check timed out",
		func(ctx context.Context) ([]entity.EventRef, error) {
			return client.ListEvents(ctx, window)
		})
	if err != nil {
		return nil, stageError(entity.StageAvailability, errors.ErrAvailabilityTimeout, err)
	}

	var conflicts []entity.EventRef
	for _, ev := range events {
		if window.Overlaps(ev.Start, ev.End) {
			conflicts = append(conflicts, ev)
		}
	}
	return &entity.AvailabilityResult{
		IsAvailable:       len(conflicts) == 0,
		ConflictingEvents: conflicts,
	}, nil
}

func (g *calendarGateway) CreateEvent(ctx context.Context, client provider.Client, ev *entity.NewEvent) (*entity.CalendarEvent, error) {
	created, err := timeout.Guard(ctx, g.budgets.Creation, "event creation timed out",
		func(ctx context.Context) (*entity.CalendarEvent, error) {
			return client.InsertEvent(ctx, ev)
		})
	if err != nil {
		if timeout.IsTimeout(err) {
			logger.Warn("CalendarGateway:CreateEvent:OutcomeUnknown", "reference", ev.Reference)
		}
		return nil, stageError(entity.StageCreate, errors.ErrCreationTimeout, err)
	}
	return created, nil
}

// stageError maps timeouts and context ends to the stage's timeout code and
// everything else to ErrProviderUnavailable.
func stageError(stage string, timeoutCode errors.ErrorCode, err error) *errors.AppError {
	if timeout.IsTimeout(err) || stderrors.Is(err, context.DeadlineExceeded) || stderrors.Is(err, context.Canceled) {
		return errors.NewAppError(timeoutCode, err.Error(), err).WithStage(stage)
	}
	return errors.NewAppError(errors.ErrProviderUnavailable, "calendar provider request failed", err).WithStage(stage)
}
