package entity

import (
	"encoding/json"
	"time"

	"github.com/lib/pq"
)

// BookingRecord is one row of the bookings ledger.
type BookingRecord struct {
	ID           string          `db:"id" json:"id"`
	Reference    string          `db:"reference" json:"reference"`
	EventID      string          `db:"event_id" json:"eventId"`
	Provider     string          `db:"provider" json:"provider"`
	IdentityHash string          `db:"identity_hash" json:"identityHash"`
	StartTime    time.Time       `db:"start_time" json:"startTime"`
	EndTime      time.Time       `db:"end_time" json:"endTime"`
	Attendees    pq.StringArray  `db:"attendees" json:"attendees"`
	Metadata     json.RawMessage `db:"metadata" json:"metadata"`
	Status       string          `db:"status" json:"status"`
	TotalMs      int64           `db:"total_ms" json:"totalMs"`
	CreatedAt    time.Time       `db:"created_at" json:"createdAt"`
}
