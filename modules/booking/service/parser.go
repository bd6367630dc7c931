package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"booking-gateway/core/errors"
	"booking-gateway/core/utils"
	"booking-gateway/modules/booking/dto"
	"booking-gateway/modules/booking/entity"
)

const (
	maxAttendees = 100

	metaTitle       = "title"
	metaDescription = "description"
	metaLocation    = "location"
	metaTimezone    = "timezone"

	defaultSummary = "Booking"
)

// Parser turns a raw payload into a BookingRequest. It performs no I/O.
type Parser struct {
	defaultTimezone string
}

func NewParser(defaultTimezone string) *Parser {
	if defaultTimezone == "" {
		defaultTimezone = "UTC"
	}
	return &Parser{defaultTimezone: defaultTimezone}
}

func (p *Parser) Parse(raw []byte) (*entity.BookingRequest, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, validationError("request body is required", nil)
	}

	var body dto.CreateBookingRequest
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, validationError("request body must be a JSON object", err)
	}

	var fieldErrs []entity.FieldError
	start, ok := parseTime("startTime", body.StartTime, &fieldErrs)
	end, ok2 := parseTime("endTime", body.EndTime, &fieldErrs)
	if ok && ok2 && !start.Before(end) {
		fieldErrs = append(fieldErrs, entity.FieldError{Field: "endTime", Message: "must be after startTime"})
	}

	attendees := normalizeAttendees(body.Attendees, &fieldErrs)

	tz := body.Metadata[metaTimezone]
	if tz == "" {
		tz = p.defaultTimezone
	} else if _, err := time.LoadLocation(tz); err != nil {
		fieldErrs = append(fieldErrs, entity.FieldError{Field: "metadata.timezone", Message: "unknown time zone"})
	}

	if len(fieldErrs) > 0 {
		return nil, validationError(fieldErrs[0].Field+" "+fieldErrs[0].Message, nil).WithDetails(fieldErrs)
	}

	summary := strings.TrimSpace(body.Metadata[metaTitle])
	if summary == "" {
		summary = defaultSummary
	}

	return &entity.BookingRequest{
		Reference:   utils.GenerateBookingRef(summary),
		Start:       start.UTC(),
		End:         end.UTC(),
		Attendees:   attendees,
		Metadata:    body.Metadata,
		Summary:     summary,
		Description: body.Metadata[metaDescription],
		Location:    body.Metadata[metaLocation],
		Timezone:    tz,
	}, nil
}

func parseTime(field, value string, errs *[]entity.FieldError) (time.Time, bool) {
	if strings.TrimSpace(value) == "" {
		*errs = append(*errs, entity.FieldError{Field: field, Message: "is required"})
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, strings.TrimSpace(value))
	if err != nil {
		*errs = append(*errs, entity.FieldError{Field: field, Message: "must be an RFC 3339 timestamp"})
		return time.Time{}, false
	}
	return t, true
}

// normalizeAttendees validates addresses and drops case-insensitive
// duplicates, keeping the first occurrence.
func normalizeAttendees(in []string, errs *[]entity.FieldError) []string {
	if len(in) > maxAttendees {
		*errs = append(*errs, entity.FieldError{Field: "attendees", Message: fmt.Sprintf("at most %d attendees allowed", maxAttendees)})
		return nil
	}

	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for i, a := range in {
		addr, err := mail.ParseAddress(strings.TrimSpace(a))
		if err != nil {
			*errs = append(*errs, entity.FieldError{Field: fmt.Sprintf("attendees[%d]", i), Message: "must be an email address"})
			continue
		}
		key := strings.ToLower(addr.Address)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, addr.Address)
	}
	return out
}

func validationError(message string, err error) *errors.AppError {
	return errors.NewAppError(errors.ErrInvalidInput, message, err).WithStage(entity.StageParse)
}
