package entity

import "time"

// Decision is the outcome of one admission check.
type Decision struct {
	Allowed bool
	// RetryAfter is the time left in the current window. Zero when allowed.
	RetryAfter time.Duration
	Limit      int64
	Remaining  int64
	// Degraded is set when the counter store could not be consulted and the
	// configured fail policy decided the outcome.
	Degraded bool
}

// RetryAfterMs rounds up so a positive wait never reports as 0.
func (d Decision) RetryAfterMs() int64 {
	if d.RetryAfter <= 0 {
		return 0
	}
	return int64((d.RetryAfter + time.Millisecond - 1) / time.Millisecond)
}
