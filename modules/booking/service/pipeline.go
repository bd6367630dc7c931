package service

import (
	"context"
	"time"

	"booking-gateway/core/errors"
	"booking-gateway/core/logger"
	"booking-gateway/modules/booking/entity"
	calEntity "booking-gateway/modules/calendar/entity"
	calService "booking-gateway/modules/calendar/service"
)

type PipelineResult struct {
	Request *entity.BookingRequest
	Event   *calEntity.CalendarEvent
	Timings []entity.StageTiming
}

// RequestPipeline drives one booking from raw payload to created event.
// Stages run strictly in order and none is retried.
type RequestPipeline interface {
	Run(ctx context.Context, raw []byte) (*PipelineResult, error)
}

type requestPipeline struct {
	parser  *Parser
	gateway calService.CalendarGateway
	now     func() time.Time
}

func NewRequestPipeline(parser *Parser, gateway calService.CalendarGateway) RequestPipeline {
	return &requestPipeline{parser: parser, gateway: gateway, now: time.Now}
}

func (p *requestPipeline) Run(ctx context.Context, raw []byte) (*PipelineResult, error) {
	r := &run{start: p.now(), now: p.now, state: entity.StateReceived}

	req, err := p.parser.Parse(raw)
	if err != nil {
		return nil, r.fail(entity.StageParse, err)
	}
	r.advance(entity.StageParse, entity.StateParsed)

	client, err := p.gateway.GetClient(ctx)
	if err != nil {
		return nil, r.fail(entity.StageClient, err)
	}
	r.advance(entity.StageClient, entity.StateClientObtained)

	avail, err := p.gateway.CheckAvailability(ctx, client, req.Window())
	if err != nil {
		return nil, r.fail(entity.StageAvailability, err)
	}
	r.advance(entity.StageAvailability, entity.StateAvailabilityChecked)

	if !avail.IsAvailable {
		conflict := errors.NewAppError(errors.ErrConflict, "requested time slot is not available", nil).
			WithStage(entity.StageAvailability).
			WithDetails(entity.ConflictDetails{ConflictingEvents: avail.ConflictingEvents})
		return nil, r.fail(entity.StageAvailability, conflict)
	}

	event, err := p.gateway.CreateEvent(ctx, client, req.ToNewEvent())
	if err != nil {
		return nil, r.fail(entity.StageCreate, err)
	}
	r.advance(entity.StageCreate, entity.StateEventCreated)

	logger.Info("RequestPipeline:Run:Success",
		"reference", req.Reference,
		"event_id", event.ID,
		"timings", r.timings,
	)
	return &PipelineResult{Request: req, Event: event, Timings: r.timings}, nil
}

// run is the per-request state and timing record.
type run struct {
	start   time.Time
	now     func() time.Time
	state   entity.PipelineState
	timings []entity.StageTiming
}

func (r *run) advance(stage string, next entity.PipelineState) {
	r.timings = append(r.timings, entity.StageTiming{
		Stage:     stage,
		ElapsedMs: r.now().Sub(r.start).Milliseconds(),
	})
	logger.Debug("RequestPipeline:Transition", "from", r.state, "to", next, "stage", stage)
	r.state = next
}

// fail tags err with stage unless it already carries one.
func (r *run) fail(stage string, err error) error {
	from := r.state
	r.state = entity.StateFailed

	appErr, ok := errors.As(err)
	if !ok {
		appErr = errors.NewAppError(errors.ErrInternalServer, "booking failed", err)
	}
	if appErr.Stage == "" {
		appErr.WithStage(stage)
	}

	logger.Warn("RequestPipeline:Run:Failed",
		"stage", stage,
		"from", from,
		"code", appErr.Code,
		"elapsed_ms", r.now().Sub(r.start).Milliseconds(),
		"timings", r.timings,
	)
	return appErr
}
