package parser

import (
	"context"
	"errors"
	"fmt"
	"os"
)

// ErrNoInput is returned when no log path was supplied.
var ErrNoInput = errors.New("must provide a path to input file")

// ReadLog reads an entire log file into memory.
// The core parser works on a single text blob, so there is no streaming here.
func ReadLog(ctx context.Context, path string) (string, error) {
	if path == "" {
		return "", ErrNoInput
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}

	data, err := os.ReadFile(path) // #nosec G304 -- user-provided paths are expected
	if err != nil {
		return "", fmt.Errorf("invalid input path: %s: %w", path, err)
	}

	return string(data), nil
}
