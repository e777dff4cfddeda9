package analyzer

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a generation failure.
type ErrorKind int

const (
	// KindMissingStartLog means an END row had no earlier START for its process id.
	KindMissingStartLog ErrorKind = iota + 1
)

// ErrMissingStartLog is matched by GenerationError through errors.Is.
var ErrMissingStartLog = errors.New("process has no start log")

// GenerationError reports the row that stopped report generation.
type GenerationError struct {
	Kind ErrorKind

	// Position is the 1-based index of the offending row in the input.
	Position int

	// ProcessID is the id of the offending row.
	ProcessID string
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("%s, line %d", e.Unwrap(), e.Position)
}

func (e *GenerationError) Unwrap() error {
	switch e.Kind {
	case KindMissingStartLog:
		return ErrMissingStartLog
	default:
		return fmt.Errorf("unknown generation error kind %d", int(e.Kind))
	}
}
