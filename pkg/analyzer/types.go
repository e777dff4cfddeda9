// Package analyzer pairs START/END rows and flags processes that ran too long.
package analyzer

import (
	"time"
)

// Severity grades a flagged process duration.
type Severity string

const (
	// SeverityWarning marks a duration above the warning threshold.
	SeverityWarning Severity = "WARNING"

	// SeverityError marks a duration above the error threshold.
	SeverityError Severity = "ERROR"
)

// Thresholds bound acceptable process durations.
// A duration equal to a threshold does not cross it.
type Thresholds struct {
	Warning time.Duration `json:"warning"`
	Error   time.Duration `json:"error"`
}

// DefaultThresholds returns the stock limits: warn after 5 minutes, error after 10.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Warning: 300 * time.Second,
		Error:   600 * time.Second,
	}
}

// Classify returns the severity for a duration in whole seconds.
// ok is false when the duration is within limits.
func (t Thresholds) Classify(seconds int64) (severity Severity, ok bool) {
	switch {
	case seconds > int64(t.Error/time.Second):
		return SeverityError, true
	case seconds > int64(t.Warning/time.Second):
		return SeverityWarning, true
	default:
		return "", false
	}
}

// Finding is a completed process whose duration crossed a threshold.
type Finding struct {
	ProcessID       string   `json:"process_id"`
	Severity        Severity `json:"severity"`
	DurationSeconds int64    `json:"duration_seconds"`
}

// PendingProcess is a START that no END ever matched.
type PendingProcess struct {
	ProcessID   string    `json:"process_id"`
	Description string    `json:"description"`
	StartTime   time.Time `json:"start_time"`

	// Position is the 1-based index of the START row in the input.
	Position int `json:"position"`
}

// Report is the result of scanning one row sequence.
type Report struct {
	// ProcessesStarted counts START rows.
	ProcessesStarted int `json:"processes_started"`

	// ProcessesCompleted counts END rows that matched a START.
	ProcessesCompleted int `json:"processes_completed"`

	// Flagged lists findings in the order their END rows appeared.
	Flagged []Finding `json:"flagged"`

	// Pending lists unmatched STARTs ordered by position.
	Pending []PendingProcess `json:"pending"`
}

// Count returns the number of findings with the given severity.
func (r *Report) Count(severity Severity) int {
	n := 0
	for _, f := range r.Flagged {
		if f.Severity == severity {
			n++
		}
	}
	return n
}

// HasIssues returns true if any process was flagged.
func (r *Report) HasIssues() bool {
	return len(r.Flagged) > 0
}
