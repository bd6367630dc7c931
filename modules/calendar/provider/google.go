package provider

import (
	"context"
	"fmt"
	"os"
	"time"

	"booking-gateway/core/config"
	"booking-gateway/core/constants"
	"booking-gateway/core/logger"
	"booking-gateway/modules/calendar/entity"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

const bookingRefProperty = "bookingRef"

// GoogleCalendar connects to Google Calendar with either a service account
// (optionally impersonating Subject) or an OAuth refresh token.
type GoogleCalendar struct {
	cfg        config.GoogleAPIConfig
	calendarID string
}

func NewGoogleCalendar(cfg config.GoogleAPIConfig, calendarID string) *GoogleCalendar {
	if calendarID == "" {
		calendarID = "primary"
	}
	return &GoogleCalendar{cfg: cfg, calendarID: calendarID}
}

func (g *GoogleCalendar) Name() string { return constants.ProviderGoogle }

func (g *GoogleCalendar) Connect(ctx context.Context) (Client, error) {
	// The client outlives the handshake context, so its token source must not
	// be tied to that context's cancellation.
	bg := context.WithoutCancel(ctx)

	ts, err := g.tokenSource(bg)
	if err != nil {
		return nil, err
	}

	type tokenResult struct {
		tok *oauth2.Token
		err error
	}
	ch := make(chan tokenResult, 1)
	go func() {
		tok, err := ts.Token()
		ch <- tokenResult{tok: tok, err: err}
	}()

	var tok *oauth2.Token
	select {
	case r := <-ch:
		if r.err != nil {
			logger.Error("GoogleCalendar:Connect:Token:Error", "error", r.err)
			return nil, fmt.Errorf("google token: %w", r.err)
		}
		tok = r.tok
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	opts := []option.ClientOption{option.WithTokenSource(oauth2.ReuseTokenSource(tok, ts))}
	if g.cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(g.cfg.Endpoint))
	}
	svc, err := calendar.NewService(bg, opts...)
	if err != nil {
		return nil, fmt.Errorf("google calendar service: %w", err)
	}

	logger.Info("GoogleCalendar:Connect:Success", "calendar_id", g.calendarID, "expires_at", tok.Expiry)
	return newGoogleClient(svc, g.calendarID), nil
}

func (g *GoogleCalendar) tokenSource(ctx context.Context) (oauth2.TokenSource, error) {
	if g.cfg.CredentialsFile != "" {
		data, err := os.ReadFile(g.cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read google credentials: %w", err)
		}
		jwtCfg, err := google.JWTConfigFromJSON(data, calendar.CalendarEventsScope)
		if err != nil {
			return nil, fmt.Errorf("parse google credentials: %w", err)
		}
		jwtCfg.Subject = g.cfg.Subject
		return jwtCfg.TokenSource(ctx), nil
	}

	oauthConfig := &oauth2.Config{
		ClientID:     g.cfg.ClientID,
		ClientSecret: g.cfg.ClientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{calendar.CalendarEventsScope},
	}
	return oauthConfig.TokenSource(ctx, &oauth2.Token{RefreshToken: g.cfg.RefreshToken}), nil
}

type googleClient struct {
	svc        *calendar.Service
	calendarID string
}

func newGoogleClient(svc *calendar.Service, calendarID string) *googleClient {
	return &googleClient{svc: svc, calendarID: calendarID}
}

func (c *googleClient) ListEvents(ctx context.Context, window entity.TimeWindow) ([]entity.EventRef, error) {
	call := c.svc.Events.List(c.calendarID).
		TimeMin(window.Start.Format(time.RFC3339)).
		TimeMax(window.End.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx)

	var refs []entity.EventRef
	err := call.Pages(ctx, func(page *calendar.Events) error {
		for _, item := range page.Items {
			if item.Status == "cancelled" || item.Transparency == "transparent" {
				continue
			}
			start, err1 := parseEventDateTime(item.Start)
			end, err2 := parseEventDateTime(item.End)
			if err1 != nil || err2 != nil {
				logger.Warn("GoogleCalendar:ListEvents:UnparseableTime", "event_id", item.Id)
				continue
			}
			if !window.Overlaps(start, end) {
				continue
			}
			refs = append(refs, entity.EventRef{ID: item.Id, Summary: item.Summary, Start: start, End: end})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("google events list: %w", err)
	}
	return refs, nil
}

func (c *googleClient) InsertEvent(ctx context.Context, ev *entity.NewEvent) (*entity.CalendarEvent, error) {
	private := make(map[string]string, len(ev.Metadata)+1)
	for k, v := range ev.Metadata {
		private[k] = v
	}
	if ev.Reference != "" {
		private[bookingRefProperty] = ev.Reference
	}

	attendees := make([]*calendar.EventAttendee, 0, len(ev.Attendees))
	for _, email := range ev.Attendees {
		attendees = append(attendees, &calendar.EventAttendee{Email: email})
	}

	body := &calendar.Event{
		Summary:     ev.Summary,
		Description: ev.Description,
		Location:    ev.Location,
		Start:       &calendar.EventDateTime{DateTime: ev.Start.Format(time.RFC3339), TimeZone: ev.Timezone},
		End:         &calendar.EventDateTime{DateTime: ev.End.Format(time.RFC3339), TimeZone: ev.Timezone},
		Attendees:   attendees,
		ExtendedProperties: &calendar.EventExtendedProperties{
			Private: private,
		},
	}

	created, err := c.svc.Events.Insert(c.calendarID, body).SendUpdates("all").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("google events insert: %w", err)
	}
	return toCalendarEvent(created, ev)
}

func toCalendarEvent(item *calendar.Event, requested *entity.NewEvent) (*entity.CalendarEvent, error) {
	start, err := parseEventDateTime(item.Start)
	if err != nil {
		start = requested.Start
	}
	end, err := parseEventDateTime(item.End)
	if err != nil {
		end = requested.End
	}

	out := &entity.CalendarEvent{
		ID:        item.Id,
		Reference: requested.Reference,
		Summary:   item.Summary,
		Start:     start,
		End:       end,
		Status:    toStatus(item.Status),
		Link:      item.HtmlLink,
	}
	for _, a := range item.Attendees {
		out.Attendees = append(out.Attendees, a.Email)
	}
	if item.ExtendedProperties != nil && item.ExtendedProperties.Private[bookingRefProperty] != "" {
		out.Reference = item.ExtendedProperties.Private[bookingRefProperty]
	}
	return out, nil
}

func toStatus(s string) entity.EventStatus {
	switch s {
	case "tentative":
		return entity.StatusPending
	case "cancelled":
		return entity.StatusCancelled
	default:
		return entity.StatusConfirmed
	}
}

func parseEventDateTime(dt *calendar.EventDateTime) (time.Time, error) {
	if dt == nil {
		return time.Time{}, fmt.Errorf("missing date")
	}
	if dt.DateTime != "" {
		return time.Parse(time.RFC3339, dt.DateTime)
	}
	loc := time.UTC
	if dt.TimeZone != "" {
		if l, err := time.LoadLocation(dt.TimeZone); err == nil {
			loc = l
		}
	}
	return time.ParseInLocation("2006-01-02", dt.Date, loc)
}
