package repository

import (
	"context"
	"database/sql"
	stderrors "errors"

	"booking-gateway/core/database"
	"booking-gateway/core/errors"
	"booking-gateway/core/logger"
	"booking-gateway/modules/booking/entity"
)

type BookingRepository interface {
	Create(ctx context.Context, rec *entity.BookingRecord) error
	GetByReference(ctx context.Context, reference string) (*entity.BookingRecord, error)
}

type bookingRepository struct {
	db database.IDatabase
}

func NewBookingRepository(db database.IDatabase) BookingRepository {
	return &bookingRepository{db: db}
}

// Create is idempotent on reference so queue redeliveries are harmless.
func (r *bookingRepository) Create(ctx context.Context, rec *entity.BookingRecord) error {
	query := `
		INSERT INTO bookings (
			id, reference, event_id, provider, identity_hash,
			start_time, end_time, attendees, metadata, status, total_ms
		) VALUES (
			:id, :reference, :event_id, :provider, :identity_hash,
			:start_time, :end_time, :attendees, :metadata, :status, :total_ms
		)
		ON CONFLICT (reference) DO NOTHING`

	if _, err := r.db.NamedExecContext(ctx, query, rec); err != nil {
		logger.Error("BookingRepository:Create:Error", "error", err, "reference", rec.Reference)
		return errors.NewAppError(errors.ErrCreateFailed, "failed to record booking", err)
	}
	return nil
}

func (r *bookingRepository) GetByReference(ctx context.Context, reference string) (*entity.BookingRecord, error) {
	query := `
		SELECT id, reference, event_id, provider, identity_hash, start_time, end_time,
			attendees, metadata, status, total_ms, created_at
		FROM bookings
		WHERE reference = $1`

	var rec entity.BookingRecord
	if err := r.db.GetContext(ctx, &rec, query, reference); err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NewAppError(errors.ErrNotFound, "booking not found", nil)
		}
		logger.Error("BookingRepository:GetByReference:Error", "error", err, "reference", reference)
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to load booking", err)
	}
	return &rec, nil
}
