package provider

import (
	"testing"
	"time"

	"booking-gateway/modules/calendar/entity"

	"github.com/emersion/go-ical"
	"github.com/emersion/go-webdav/caldav"
	"github.com/teambition/rrule-go"
)

func TestEventToICSRoundTrip(t *testing.T) {
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	ev := &entity.NewEvent{
		Reference: "standup-abc123",
		Summary:   "Standup",
		Start:     start,
		End:       start.Add(30 * time.Minute),
		Attendees: []string{"a@example.com", "b@example.com"},
	}

	cal := eventToICS("uid-1", ev)

	events := cal.Events()
	if len(events) != 1 {
		t.Fatalf("events = %d, want 1", len(events))
	}
	if got := events[0].Props.Values(ical.PropAttendee); len(got) != 2 {
		t.Fatalf("attendees = %d, want 2", len(got))
	}
	if p := events[0].Props.Get(propBookingRef); p == nil || p.Value != "standup-abc123" {
		t.Fatalf("booking ref prop = %+v", p)
	}

	refs := eventRefs(cal, entity.TimeWindow{Start: start.Add(-time.Hour), End: start.Add(time.Hour)})
	if len(refs) != 1 {
		t.Fatalf("refs = %d, want 1", len(refs))
	}
	if refs[0].ID != "uid-1" || !refs[0].Start.Equal(ev.Start) || !refs[0].End.Equal(ev.End) {
		t.Errorf("ref = %+v", refs[0])
	}
}

func TestEventRefsSkipsFreeAndCancelled(t *testing.T) {
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	cal := ical.NewCalendar()

	for i, status := range []string{"CONFIRMED", "CANCELLED", "TRANSPARENT"} {
		ev := ical.NewEvent()
		ev.Props.SetText(ical.PropUID, status)
		ev.Props.SetDateTime(ical.PropDateTimeStart, start.Add(time.Duration(i)*time.Hour))
		ev.Props.SetDateTime(ical.PropDateTimeEnd, start.Add(time.Duration(i)*time.Hour+time.Hour))
		if status == "TRANSPARENT" {
			ev.Props.SetText(ical.PropTransparency, "TRANSPARENT")
		} else {
			ev.Props.SetText(ical.PropStatus, status)
		}
		cal.Children = append(cal.Children, ev.Component)
	}

	refs := eventRefs(cal, entity.TimeWindow{Start: start, End: start.Add(3 * time.Hour)})
	if len(refs) != 1 || refs[0].ID != "CONFIRMED" {
		t.Fatalf("refs = %+v, want only CONFIRMED", refs)
	}
}

func TestEventRefsMissingEnd(t *testing.T) {
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	cal := ical.NewCalendar()
	ev := ical.NewEvent()
	ev.Props.SetText(ical.PropUID, "point")
	ev.Props.SetDateTime(ical.PropDateTimeStart, start)
	cal.Children = append(cal.Children, ev.Component)

	refs := eventRefs(cal, entity.TimeWindow{Start: start.Add(-time.Minute), End: start.Add(time.Minute)})
	if len(refs) != 1 || !refs[0].End.Equal(start) {
		t.Fatalf("refs = %+v", refs)
	}
}

func weeklyEvent(uid string, start time.Time) *ical.Event {
	ev := ical.NewEvent()
	ev.Props.SetText(ical.PropUID, uid)
	ev.Props.SetDateTime(ical.PropDateTimeStart, start)
	ev.Props.SetDateTime(ical.PropDateTimeEnd, start.Add(time.Hour))
	ev.Props.SetRecurrenceRule(&rrule.ROption{Freq: rrule.WEEKLY})
	return ev
}

func TestEventRefsExpandsRecurringEvent(t *testing.T) {
	first := time.Date(2024, 12, 25, 10, 0, 0, 0, time.UTC)
	cal := ical.NewCalendar()
	cal.Children = append(cal.Children, weeklyEvent("weekly", first).Component)

	window := entity.TimeWindow{
		Start: time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 1, 1, 11, 0, 0, 0, time.UTC),
	}
	refs := eventRefs(cal, window)
	if len(refs) != 1 {
		t.Fatalf("refs = %+v, want the 2025-01-01 occurrence", refs)
	}
	if refs[0].ID != "weekly" || !refs[0].Start.Equal(window.Start) || !refs[0].End.Equal(window.End) {
		t.Errorf("ref = %+v", refs[0])
	}

	// An occurrence that started before the window still overlaps it.
	refs = eventRefs(cal, entity.TimeWindow{Start: window.Start.Add(30 * time.Minute), End: window.End.Add(time.Hour)})
	if len(refs) != 1 || !refs[0].Start.Equal(window.Start) {
		t.Errorf("overlapping occurrence refs = %+v", refs)
	}

	// Days between occurrences stay free.
	refs = eventRefs(cal, entity.TimeWindow{Start: window.Start.Add(24 * time.Hour), End: window.End.Add(24 * time.Hour)})
	if len(refs) != 0 {
		t.Errorf("off-day refs = %+v, want none", refs)
	}
}

func TestEventRefsRecurrenceExceptions(t *testing.T) {
	first := time.Date(2024, 12, 25, 10, 0, 0, 0, time.UTC)
	skipped := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	moved := time.Date(2025, 1, 8, 10, 0, 0, 0, time.UTC)

	master := weeklyEvent("weekly", first)
	exdate := ical.NewProp(ical.PropExceptionDates)
	exdate.SetDateTime(skipped)
	master.Props.Add(exdate)

	override := ical.NewEvent()
	override.Props.SetText(ical.PropUID, "weekly")
	override.Props.SetDateTime(ical.PropRecurrenceID, moved)
	override.Props.SetDateTime(ical.PropDateTimeStart, moved.Add(4*time.Hour))
	override.Props.SetDateTime(ical.PropDateTimeEnd, moved.Add(5*time.Hour))

	cal := ical.NewCalendar()
	cal.Children = append(cal.Children, master.Component, override.Component)

	if refs := eventRefs(cal, entity.TimeWindow{Start: skipped, End: skipped.Add(time.Hour)}); len(refs) != 0 {
		t.Errorf("excluded occurrence refs = %+v, want none", refs)
	}
	if refs := eventRefs(cal, entity.TimeWindow{Start: moved, End: moved.Add(time.Hour)}); len(refs) != 0 {
		t.Errorf("moved occurrence still busy at original time: %+v", refs)
	}
	refs := eventRefs(cal, entity.TimeWindow{Start: moved.Add(4 * time.Hour), End: moved.Add(5 * time.Hour)})
	if len(refs) != 1 || !refs[0].Start.Equal(moved.Add(4*time.Hour)) {
		t.Errorf("override refs = %+v", refs)
	}
}

func TestPickCalendar(t *testing.T) {
	cals := []caldav.Calendar{
		{Path: "/tasks/", SupportedComponentSet: []string{ical.CompToDo}},
		{Path: "/work/", SupportedComponentSet: []string{ical.CompToDo, ical.CompEvent}},
	}
	if got := pickCalendar(cals); got != "/work/" {
		t.Errorf("pickCalendar = %q, want /work/", got)
	}
	if got := pickCalendar(cals[:1]); got != "" {
		t.Errorf("pickCalendar = %q, want empty", got)
	}
}
