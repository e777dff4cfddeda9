// Package parser turns process-activity logs into validated rows.
package parser

import "time"

// Status is the lifecycle event recorded by a row.
type Status string

const (
	StatusStart Status = "START"
	StatusEnd   Status = "END"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	return s == StatusStart || s == StatusEnd
}

// Row represents a single validated log line.
type Row struct {
	// Timestamp is the time of day the event was logged, on the fixed epoch date.
	Timestamp time.Time `json:"timestamp"`

	// Description is the free-text label of the process.
	Description string `json:"description"`

	// Status is START or END.
	Status Status `json:"status"`

	// ProcessID identifies the process instance within the log.
	ProcessID string `json:"process_id"`
}

// numColumns is the number of comma separated fields in a well-formed line.
const numColumns = 4
