package api

import "time"

// Status is the JSON body served by GET /status while current mode runs.
type Status struct {
	RunID     string    `json:"run_id"`
	Stream    string    `json:"stream"`
	StartedAt time.Time `json:"started_at"`

	Ticks       int       `json:"ticks"`
	Watermark   time.Time `json:"watermark"`
	LastTickAt  time.Time `json:"last_tick_at"`
	LastError   string    `json:"last_error,omitempty"`
	TotalLoaded int       `json:"total_loaded"`
	TotalFailed int       `json:"total_failed"`
}
