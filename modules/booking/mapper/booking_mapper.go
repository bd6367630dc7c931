package mapper

import (
	"encoding/json"

	"booking-gateway/core/utils"
	"booking-gateway/modules/booking/dto"
	"booking-gateway/modules/booking/entity"
	calEntity "booking-gateway/modules/calendar/entity"
)

func ToBookingResponse(ev *calEntity.CalendarEvent, timings []entity.StageTiming) *dto.BookingResponse {
	return &dto.BookingResponse{
		ID:        ev.ID,
		Reference: ev.Reference,
		StartTime: ev.Start,
		EndTime:   ev.End,
		Attendees: ev.Attendees,
		Status:    string(ev.Status),
		Link:      ev.Link,
		Timings:   timings,
	}
}

func ToBookingRecord(req *entity.BookingRequest, ev *calEntity.CalendarEvent, provider, identity string, totalMs int64) *entity.BookingRecord {
	meta, err := json.Marshal(req.Metadata)
	if err != nil || req.Metadata == nil {
		meta = []byte("{}")
	}
	var identityHash string
	if identity != "" {
		identityHash = utils.HashIdentity(identity)
	}
	return &entity.BookingRecord{
		ID:           utils.GenerateID(),
		Reference:    req.Reference,
		EventID:      ev.ID,
		Provider:     provider,
		IdentityHash: identityHash,
		StartTime:    ev.Start,
		EndTime:      ev.End,
		Attendees:    ev.Attendees,
		Metadata:     meta,
		Status:       string(ev.Status),
		TotalMs:      totalMs,
	}
}

func ToBookingRecordResponse(rec *entity.BookingRecord) *dto.BookingRecordResponse {
	var meta map[string]string
	if len(rec.Metadata) > 0 {
		_ = json.Unmarshal(rec.Metadata, &meta)
	}
	return &dto.BookingRecordResponse{
		Reference: rec.Reference,
		EventID:   rec.EventID,
		Provider:  rec.Provider,
		StartTime: rec.StartTime,
		EndTime:   rec.EndTime,
		Attendees: rec.Attendees,
		Metadata:  meta,
		Status:    rec.Status,
		TotalMs:   rec.TotalMs,
		CreatedAt: rec.CreatedAt,
	}
}
