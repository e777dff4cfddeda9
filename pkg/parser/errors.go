package parser

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a parse failure.
type ErrorKind int

const (
	KindUnexpectedColumnCount ErrorKind = iota + 1
	KindInvalidTimestamp
	KindInvalidStatus
)

// Sentinel errors matched by ParseError through errors.Is.
var (
	ErrUnexpectedColumn = errors.New("unexpected column")
	ErrInvalidTimestamp = errors.New("invalid timestamp")
	ErrInvalidStatus    = errors.New("invalid status")
)

// String returns the kind's message prefix.
func (k ErrorKind) String() string {
	if err := k.sentinel(); err != nil {
		return err.Error()
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

func (k ErrorKind) sentinel() error {
	switch k {
	case KindUnexpectedColumnCount:
		return ErrUnexpectedColumn
	case KindInvalidTimestamp:
		return ErrInvalidTimestamp
	case KindInvalidStatus:
		return ErrInvalidStatus
	default:
		return nil
	}
}

// ParseError reports the first invalid line of a log.
type ParseError struct {
	Kind ErrorKind

	// Line is the 1-based line number of the offending row.
	Line int
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s, line %d", e.Kind, e.Line)
}

// Unwrap exposes the sentinel for the error's kind.
func (e *ParseError) Unwrap() error {
	return e.Kind.sentinel()
}

func newParseError(kind ErrorKind, line int) *ParseError {
	return &ParseError{Kind: kind, Line: line}
}
