package entity

import (
	"time"

	calEntity "booking-gateway/modules/calendar/entity"
)

// Pipeline stages. Client, availability and create share names with the
// calendar gateway so a stage tag reads the same from either side.
const (
	StageParse        = "parse"
	StageClient       = calEntity.StageClient
	StageAvailability = calEntity.StageAvailability
	StageCreate       = calEntity.StageCreate
)

type PipelineState string

const (
	StateReceived            PipelineState = "received"
	StateParsed              PipelineState = "parsed"
	StateClientObtained      PipelineState = "client_obtained"
	StateAvailabilityChecked PipelineState = "availability_checked"
	StateEventCreated        PipelineState = "event_created"
	StateResponded           PipelineState = "responded"
	StateFailed              PipelineState = "failed"
)

// BookingRequest is a validated booking payload.
type BookingRequest struct {
	Reference   string
	Start       time.Time
	End         time.Time
	Attendees   []string
	Metadata    map[string]string
	Summary     string
	Description string
	Location    string
	Timezone    string
}

func (r *BookingRequest) Window() calEntity.TimeWindow {
	return calEntity.TimeWindow{Start: r.Start, End: r.End}
}

func (r *BookingRequest) ToNewEvent() *calEntity.NewEvent {
	return &calEntity.NewEvent{
		Reference:   r.Reference,
		Summary:     r.Summary,
		Description: r.Description,
		Location:    r.Location,
		Timezone:    r.Timezone,
		Start:       r.Start,
		End:         r.End,
		Attendees:   r.Attendees,
		Metadata:    r.Metadata,
	}
}

// StageTiming is the wall-clock time elapsed since the request was received
// when the named stage finished.
type StageTiming struct {
	Stage     string `json:"stage"`
	ElapsedMs int64  `json:"elapsedMs"`
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ConflictDetails struct {
	ConflictingEvents []calEntity.EventRef `json:"conflictingEvents"`
}
