package service

import (
	"strings"
	"testing"
	"time"

	"booking-gateway/core/errors"
	"booking-gateway/modules/booking/entity"
)

func TestParseValid(t *testing.T) {
	p := NewParser("UTC")
	req, err := p.Parse([]byte(`{
		"startTime": "2025-01-01T12:00:00+02:00",
		"endTime": "2025-01-01T11:00:00Z",
		"attendees": ["a@x.com", "Bob <b@x.com>", "A@X.com"],
		"metadata": {"title": "Quarterly Review", "timezone": "Europe/Paris", "location": "Room 4"}
	}`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if !req.Start.Equal(time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)) || req.Start.Location() != time.UTC {
		t.Errorf("start = %v", req.Start)
	}
	if got := req.Attendees; len(got) != 2 || got[0] != "a@x.com" || got[1] != "b@x.com" {
		t.Errorf("attendees = %v", got)
	}
	if req.Summary != "Quarterly Review" || req.Location != "Room 4" || req.Timezone != "Europe/Paris" {
		t.Errorf("request = %+v", req)
	}
	if !strings.HasPrefix(req.Reference, "quarterly-review-") {
		t.Errorf("reference = %q", req.Reference)
	}
}

func TestParseDefaults(t *testing.T) {
	req, err := NewParser("America/New_York").Parse([]byte(`{"startTime":"2025-01-01T10:00:00Z","endTime":"2025-01-01T11:00:00Z"}`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if req.Summary != defaultSummary || req.Timezone != "America/New_York" || len(req.Attendees) != 0 {
		t.Errorf("request = %+v", req)
	}
	if !strings.HasPrefix(req.Reference, "booking-") {
		t.Errorf("reference = %q", req.Reference)
	}
}

func TestParseValidationErrors(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"empty body", ``, ""},
		{"not json", `startTime=now`, ""},
		{"json array", `[]`, ""},
		{"missing start", `{"endTime":"2025-01-01T11:00:00Z"}`, "startTime"},
		{"missing end", `{"startTime":"2025-01-01T11:00:00Z"}`, "endTime"},
		{"bad format", `{"startTime":"01/01/2025 10:00","endTime":"2025-01-01T11:00:00Z"}`, "startTime"},
		{"end before start", `{"startTime":"2025-01-01T11:00:00Z","endTime":"2025-01-01T10:00:00Z"}`, "endTime"},
		{"zero length", `{"startTime":"2025-01-01T11:00:00Z","endTime":"2025-01-01T11:00:00Z"}`, "endTime"},
		{"bad attendee", `{"startTime":"2025-01-01T10:00:00Z","endTime":"2025-01-01T11:00:00Z","attendees":["nope"]}`, "attendees[0]"},
		{"bad timezone", `{"startTime":"2025-01-01T10:00:00Z","endTime":"2025-01-01T11:00:00Z","metadata":{"timezone":"Mars/Olympus"}}`, "metadata.timezone"},
	}

	p := NewParser("UTC")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.Parse([]byte(tt.body))
			appErr, ok := errors.As(err)
			if !ok {
				t.Fatalf("err = %v, want AppError", err)
			}
			if appErr.Code != errors.ErrInvalidInput || appErr.Stage != entity.StageParse {
				t.Fatalf("code=%s stage=%s", appErr.Code, appErr.Stage)
			}
			if tt.field == "" {
				return
			}
			details, ok := appErr.Details.([]entity.FieldError)
			if !ok || len(details) == 0 || details[0].Field != tt.field {
				t.Errorf("details = %+v, want field %s", appErr.Details, tt.field)
			}
		})
	}
}

func TestParseTooManyAttendees(t *testing.T) {
	var b strings.Builder
	b.WriteString(`{"startTime":"2025-01-01T10:00:00Z","endTime":"2025-01-01T11:00:00Z","attendees":[`)
	for i := 0; i <= maxAttendees; i++ {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString(`"a@x.com"`)
	}
	b.WriteString(`]}`)

	if _, err := NewParser("UTC").Parse([]byte(b.String())); !errors.HasCode(err, errors.ErrInvalidInput) {
		t.Fatalf("err = %v", err)
	}
}
