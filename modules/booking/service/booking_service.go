package service

import (
	"context"
	"sync"
	"time"

	"booking-gateway/core/errors"
	"booking-gateway/core/logger"
	"booking-gateway/core/timeout"
	"booking-gateway/modules/booking/dto"
	"booking-gateway/modules/booking/entity"
	"booking-gateway/modules/booking/mapper"
	"booking-gateway/modules/booking/repository"
	"booking-gateway/modules/booking/worker"
)

const recordTimeout = 5 * time.Second

type BookingService interface {
	Create(ctx context.Context, raw []byte, identity string) (*dto.BookingResponse, error)
	GetByReference(ctx context.Context, reference string) (*dto.BookingRecordResponse, error)
	// Drain waits for background ledger writes until ctx ends.
	Drain(ctx context.Context) error
}

type bookingService struct {
	pipeline RequestPipeline
	provider string
	recorder worker.Recorder
	repo     repository.BookingRepository
	writes   sync.WaitGroup
}

// NewBookingService wires the pipeline to the ledger. recorder and repo may be
// nil when no database is configured.
func NewBookingService(pipeline RequestPipeline, provider string, recorder worker.Recorder, repo repository.BookingRepository) BookingService {
	return &bookingService{
		pipeline: pipeline,
		provider: provider,
		recorder: recorder,
		repo:     repo,
	}
}

func (s *bookingService) Create(ctx context.Context, raw []byte, identity string) (*dto.BookingResponse, error) {
	res, err := s.pipeline.Run(ctx, raw)
	if err != nil {
		return nil, err
	}

	var totalMs int64
	if n := len(res.Timings); n > 0 {
		totalMs = res.Timings[n-1].ElapsedMs
	}

	if s.recorder != nil {
		rec := mapper.ToBookingRecord(res.Request, res.Event, s.provider, identity, totalMs)
		s.writes.Add(1)
		go func() {
			defer s.writes.Done()
			// The response never waits on the ledger.
			err := timeout.Run(context.WithoutCancel(ctx), recordTimeout, "booking ledger write timed out",
				func(ctx context.Context) error { return s.recorder.Record(ctx, rec) })
			if err != nil {
				logger.Warn("BookingService:Create:Record:Error", "error", err, "reference", rec.Reference)
			}
		}()
	}

	logger.Debug("BookingService:Create", "state", entity.StateResponded, "reference", res.Event.Reference)
	return mapper.ToBookingResponse(res.Event, res.Timings), nil
}

func (s *bookingService) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.writes.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		logger.Warn("BookingService:Drain:Abandoned", "error", ctx.Err())
		return ctx.Err()
	}
}

func (s *bookingService) GetByReference(ctx context.Context, reference string) (*dto.BookingRecordResponse, error) {
	if s.repo == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "booking ledger is not enabled", nil)
	}
	rec, err := s.repo.GetByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	return mapper.ToBookingRecordResponse(rec), nil
}
