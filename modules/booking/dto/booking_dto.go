package dto

import (
	"time"

	"booking-gateway/modules/booking/entity"
)

// CreateBookingRequest is the inbound JSON body. Times are kept as strings so
// the parser can report which field is malformed.
type CreateBookingRequest struct {
	StartTime string            `json:"startTime"`
	EndTime   string            `json:"endTime"`
	Attendees []string          `json:"attendees"`
	Metadata  map[string]string `json:"metadata"`
}

type BookingResponse struct {
	ID        string               `json:"id"`
	Reference string               `json:"reference"`
	StartTime time.Time            `json:"startTime"`
	EndTime   time.Time            `json:"endTime"`
	Attendees []string             `json:"attendees"`
	Status    string               `json:"status"`
	Link      string               `json:"link,omitempty"`
	Timings   []entity.StageTiming `json:"timings"`
}

type BookingRecordResponse struct {
	Reference string            `json:"reference"`
	EventID   string            `json:"eventId"`
	Provider  string            `json:"provider"`
	StartTime time.Time         `json:"startTime"`
	EndTime   time.Time         `json:"endTime"`
	Attendees []string          `json:"attendees"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	Status    string            `json:"status"`
	TotalMs   int64             `json:"totalMs"`
	CreatedAt time.Time         `json:"createdAt"`
}

// RecordBookingPayload is the queue payload for a ledger write.
type RecordBookingPayload struct {
	Record entity.BookingRecord `json:"record"`
}
