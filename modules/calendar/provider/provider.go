package provider

import (
	"context"

	"booking-gateway/modules/calendar/entity"
)

// Client is an authenticated connection to a calendar provider.
type Client interface {
	// ListEvents returns busy events overlapping the window.
	ListEvents(ctx context.Context, window entity.TimeWindow) ([]entity.EventRef, error)
	InsertEvent(ctx context.Context, ev *entity.NewEvent) (*entity.CalendarEvent, error)
}

// Factory performs the provider's authentication handshake.
type Factory interface {
	Name() string
	Connect(ctx context.Context) (Client, error)
}

// PerCall returns a Client that authenticates on every call. It is the
// uncached path used while no shared client is available.
func PerCall(f Factory) Client {
	return &perCallClient{factory: f}
}

type perCallClient struct {
	factory Factory
}

func (c *perCallClient) ListEvents(ctx context.Context, window entity.TimeWindow) ([]entity.EventRef, error) {
	client, err := c.factory.Connect(ctx)
	if err != nil {
		return nil, err
	}
	return client.ListEvents(ctx, window)
}

func (c *perCallClient) InsertEvent(ctx context.Context, ev *entity.NewEvent) (*entity.CalendarEvent, error) {
	client, err := c.factory.Connect(ctx)
	if err != nil {
		return nil, err
	}
	return client.InsertEvent(ctx, ev)
}
