package dto

// TimeSlot represents a time period
type TimeSlot struct {
	Start string `json:"start"` // RFC3339
	End   string `json:"end"`   // RFC3339
}

// FreeBusyResponse lists busy periods of the configured calendar.
type FreeBusyResponse struct {
	Busy []TimeSlot `json:"busy"`
}

type FreeSlotsResponse struct {
	Interval int        `json:"interval"`
	Slots    []TimeSlot `json:"slots"`
}

// StatusResponse reports the provider client cache.
type StatusResponse struct {
	Provider string `json:"provider"`
	State    string `json:"state"`
	Inits    int64  `json:"inits"`
}
