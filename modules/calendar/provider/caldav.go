package provider

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"booking-gateway/core/config"
	"booking-gateway/core/constants"
	"booking-gateway/core/logger"
	"booking-gateway/modules/calendar/entity"

	"github.com/emersion/go-ical"
	"github.com/emersion/go-webdav/caldav"
	"github.com/google/uuid"
)

const propBookingRef = "X-BOOKING-REF"

// CalDAVCalendar talks to any CalDAV server with basic auth.
type CalDAVCalendar struct {
	cfg config.CalDAVConfig
}

func NewCalDAVCalendar(cfg config.CalDAVConfig) *CalDAVCalendar {
	return &CalDAVCalendar{cfg: cfg}
}

func (c *CalDAVCalendar) Name() string { return constants.ProviderCalDAV }

type basicAuthTransport struct {
	username string
	password string
}

func (t *basicAuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.SetBasicAuth(t.username, t.password)
	return http.DefaultTransport.RoundTrip(req)
}

// Connect resolves the principal and, unless configured, the first calendar
// that accepts events.
func (c *CalDAVCalendar) Connect(ctx context.Context) (Client, error) {
	httpClient := &http.Client{
		Transport: &basicAuthTransport{username: c.cfg.Username, password: c.cfg.Password},
	}
	client, err := caldav.NewClient(httpClient, c.cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("connect to CalDAV: %w", err)
	}

	principal, err := client.FindCurrentUserPrincipal(ctx)
	if err != nil {
		return nil, fmt.Errorf("find principal: %w", err)
	}

	path := c.cfg.CalendarPath
	if path == "" {
		homeSet, err := client.FindCalendarHomeSet(ctx, principal)
		if err != nil {
			return nil, fmt.Errorf("find home set: %w", err)
		}
		cals, err := client.FindCalendars(ctx, homeSet)
		if err != nil {
			return nil, fmt.Errorf("find calendars: %w", err)
		}
		path = pickCalendar(cals)
		if path == "" {
			return nil, fmt.Errorf("no calendar accepting events under %s", homeSet)
		}
	}

	logger.Info("CalDAVCalendar:Connect:Success", "principal", principal, "calendar", path)
	return &caldavClient{client: client, path: path}, nil
}

func pickCalendar(cals []caldav.Calendar) string {
	for _, cal := range cals {
		if len(cal.SupportedComponentSet) == 0 {
			return cal.Path
		}
		for _, comp := range cal.SupportedComponentSet {
			if comp == ical.CompEvent {
				return cal.Path
			}
		}
	}
	return ""
}

type caldavClient struct {
	client *caldav.Client
	path   string
}

func (c *caldavClient) ListEvents(ctx context.Context, window entity.TimeWindow) ([]entity.EventRef, error) {
	query := &caldav.CalendarQuery{
		CompRequest: caldav.CalendarCompRequest{
			Name:     ical.CompCalendar,
			AllProps: true,
			AllComps: true,
		},
		CompFilter: caldav.CompFilter{
			Name: ical.CompCalendar,
			Comps: []caldav.CompFilter{{
				Name:  ical.CompEvent,
				Start: window.Start,
				End:   window.End,
			}},
		},
	}

	objects, err := c.client.QueryCalendar(ctx, c.path, query)
	if err != nil {
		return nil, fmt.Errorf("query calendar: %w", err)
	}

	var refs []entity.EventRef
	for _, obj := range objects {
		if obj.Data == nil {
			continue
		}
		refs = append(refs, eventRefs(obj.Data, window)...)
	}
	return refs, nil
}

func (c *caldavClient) InsertEvent(ctx context.Context, ev *entity.NewEvent) (*entity.CalendarEvent, error) {
	uid := uuid.NewString()
	cal := eventToICS(uid, ev)

	eventPath := strings.TrimSuffix(c.path, "/") + "/" + uid + ".ics"
	if _, err := c.client.PutCalendarObject(ctx, eventPath, cal); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}

	return &entity.CalendarEvent{
		ID:        uid,
		Reference: ev.Reference,
		Summary:   ev.Summary,
		Start:     ev.Start,
		End:       ev.End,
		Attendees: append([]string(nil), ev.Attendees...),
		Status:    entity.StatusConfirmed,
		Link:      eventPath,
	}, nil
}

// eventRefs extracts the busy VEVENT occurrences that overlap window.
// Recurring masters are expanded with their RRULE, RDATE and EXDATE;
// instances replaced by a RECURRENCE-ID override are taken from the override.
// Cancelled and transparent events are skipped.
func eventRefs(cal *ical.Calendar, window entity.TimeWindow) []entity.EventRef {
	overridden := make(map[string]map[int64]bool)
	for _, comp := range cal.Children {
		if comp.Name != ical.CompEvent || comp.Props.Get(ical.PropRecurrenceID) == nil {
			continue
		}
		rid, err := comp.Props.DateTime(ical.PropRecurrenceID, time.UTC)
		if err != nil {
			continue
		}
		uid := propText(comp, ical.PropUID)
		if overridden[uid] == nil {
			overridden[uid] = make(map[int64]bool)
		}
		overridden[uid][rid.Unix()] = true
	}

	var refs []entity.EventRef
	for _, comp := range cal.Children {
		if comp.Name != ical.CompEvent {
			continue
		}
		if p := comp.Props.Get(ical.PropStatus); p != nil && strings.EqualFold(p.Value, "CANCELLED") {
			continue
		}
		if p := comp.Props.Get(ical.PropTransparency); p != nil && strings.EqualFold(p.Value, "TRANSPARENT") {
			continue
		}

		base, ok := baseRef(comp)
		if !ok {
			continue
		}

		if comp.Props.Get(ical.PropRecurrenceID) != nil {
			if window.Overlaps(base.Start, base.End) {
				refs = append(refs, base)
			}
			continue
		}

		set, err := comp.RecurrenceSet(time.UTC)
		if err != nil {
			logger.Warn("CalDAVCalendar:eventRefs:Recurrence", "uid", base.ID, "error", err)
		}
		if set == nil {
			if window.Overlaps(base.Start, base.End) {
				refs = append(refs, base)
			}
			continue
		}

		dur := base.End.Sub(base.Start)
		skip := overridden[base.ID]
		for _, start := range set.Between(window.Start.Add(-dur), window.End, true) {
			if skip[start.Unix()] {
				continue
			}
			occ := base
			occ.Start = start.UTC()
			occ.End = occ.Start.Add(dur)
			if window.Overlaps(occ.Start, occ.End) {
				refs = append(refs, occ)
			}
		}
	}
	return refs
}

// baseRef reads UID, SUMMARY and the DTSTART/DTEND span of a single VEVENT.
func baseRef(comp *ical.Component) (entity.EventRef, bool) {
	ref := entity.EventRef{
		ID:      propText(comp, ical.PropUID),
		Summary: propText(comp, ical.PropSummary),
	}

	p := comp.Props.Get(ical.PropDateTimeStart)
	if p == nil {
		return ref, false
	}
	t, err := p.DateTime(time.UTC)
	if err != nil {
		return ref, false
	}
	ref.Start = t.UTC()
	allDay := p.Params.Get(ical.ParamValue) == string(ical.ValueDate)

	if p := comp.Props.Get(ical.PropDateTimeEnd); p != nil {
		if t, err := p.DateTime(time.UTC); err == nil {
			ref.End = t.UTC()
		}
	}
	if ref.End.IsZero() {
		if allDay {
			ref.End = ref.Start.Add(24 * time.Hour)
		} else {
			ref.End = ref.Start
		}
	}
	return ref, true
}

func propText(comp *ical.Component, name string) string {
	if p := comp.Props.Get(name); p != nil {
		return p.Value
	}
	return ""
}

func eventToICS(uid string, ev *entity.NewEvent) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, "-//booking-gateway//CalDAV//EN")

	vevent := ical.NewEvent()
	vevent.Props.SetText(ical.PropUID, uid)
	vevent.Props.SetText(ical.PropSummary, ev.Summary)
	if ev.Description != "" {
		vevent.Props.SetText(ical.PropDescription, ev.Description)
	}
	if ev.Location != "" {
		vevent.Props.SetText(ical.PropLocation, ev.Location)
	}
	vevent.Props.SetDateTime(ical.PropDateTimeStart, ev.Start.UTC())
	vevent.Props.SetDateTime(ical.PropDateTimeEnd, ev.End.UTC())
	vevent.Props.SetDateTime(ical.PropDateTimeStamp, time.Now().UTC())
	vevent.Props.SetText(ical.PropStatus, "CONFIRMED")
	if ev.Reference != "" {
		vevent.Props.SetText(propBookingRef, ev.Reference)
	}

	for _, email := range ev.Attendees {
		prop := ical.NewProp(ical.PropAttendee)
		prop.Value = "mailto:" + email
		vevent.Props.Add(prop)
	}

	cal.Children = append(cal.Children, vevent.Component)
	return cal
}
