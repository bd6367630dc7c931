package entity

import "time"

type EventStatus string

const (
	StatusConfirmed EventStatus = "confirmed"
	StatusPending   EventStatus = "pending"
	StatusCancelled EventStatus = "cancelled"
)

// Stage names used to tag gateway failures.
const (
	StageClient       = "client"
	StageAvailability = "availability"
	StageCreate       = "create"
)

type TimeWindow struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports whether [start, end) intersects the window. Touching
// edges do not overlap.
func (w TimeWindow) Overlaps(start, end time.Time) bool {
	return start.Before(w.End) && end.After(w.Start)
}

// EventRef is an opaque reference to an existing provider event.
type EventRef struct {
	ID      string    `json:"id"`
	Summary string    `json:"summary,omitempty"`
	Start   time.Time `json:"start"`
	End     time.Time `json:"end"`
}

type AvailabilityResult struct {
	IsAvailable       bool
	ConflictingEvents []EventRef
}

// NewEvent is what the gateway asks a provider to create.
type NewEvent struct {
	Reference   string
	Summary     string
	Description string
	Location    string
	Timezone    string
	Start       time.Time
	End         time.Time
	Attendees   []string
	Metadata    map[string]string
}

// CalendarEvent is owned by the provider; it is never mutated after creation.
type CalendarEvent struct {
	ID        string
	Reference string
	Summary   string
	Start     time.Time
	End       time.Time
	Attendees []string
	Status    EventStatus
	Link      string
}
