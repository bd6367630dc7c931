package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"booking-gateway/core/constants"
	"booking-gateway/core/logger"
	"booking-gateway/core/queue"
	"booking-gateway/modules/booking/dto"
	"booking-gateway/modules/booking/entity"
	"booking-gateway/modules/booking/repository"
)

// Recorder persists a completed booking to the ledger.
type Recorder interface {
	Record(ctx context.Context, rec *entity.BookingRecord) error
}

type queueRecorder struct {
	queue queue.Enqueuer
}

// NewQueueRecorder defers ledger writes to the background worker.
func NewQueueRecorder(q queue.Enqueuer) Recorder {
	return &queueRecorder{queue: q}
}

func (r *queueRecorder) Record(ctx context.Context, rec *entity.BookingRecord) error {
	return r.queue.Enqueue(ctx, constants.TaskBookingRecord, dto.RecordBookingPayload{Record: *rec})
}

type directRecorder struct {
	repo repository.BookingRepository
}

func NewDirectRecorder(repo repository.BookingRepository) Recorder {
	return &directRecorder{repo: repo}
}

func (r *directRecorder) Record(ctx context.Context, rec *entity.BookingRecord) error {
	return r.repo.Create(ctx, rec)
}

// HandleRecordBooking consumes TaskBookingRecord payloads.
func HandleRecordBooking(repo repository.BookingRepository) func(ctx context.Context, payload []byte) error {
	return func(ctx context.Context, payload []byte) error {
		var p dto.RecordBookingPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			logger.Error("RecordWorker:Handle:Decode:Error", "error", err)
			return fmt.Errorf("decode %s: %w", constants.TaskBookingRecord, err)
		}
		if err := repo.Create(ctx, &p.Record); err != nil {
			return err
		}
		logger.Info("RecordWorker:Handle:Success", "reference", p.Record.Reference)
		return nil
	}
}
