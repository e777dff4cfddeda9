package parser

import (
	"strings"
)

// Parse converts raw CSV text into rows.
// Each line has the form "HH:MM:SS,description,STATUS,pid".
// Parsing stops at the first invalid line and returns a *ParseError naming it;
// no rows are returned in that case. Empty input yields no rows and no error.
func Parse(raw string) ([]Row, error) {
	rows := []Row{}

	for i, line := range splitLines(raw) {
		row, err := parseLine(line, i+1)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// splitLines splits on "\n" and drops a trailing "\r" from each line.
// A final newline does not start an extra empty line.
func splitLines(raw string) []string {
	if raw == "" {
		return nil
	}

	lines := strings.Split(raw, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}

	return lines
}

func parseLine(line string, lineNum int) (Row, *ParseError) {
	fields := strings.Split(line, ",")
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}

	if len(fields) > numColumns {
		return Row{}, newParseError(KindUnexpectedColumnCount, lineNum)
	}

	ts, ok := parseTimeOfDay(fields[0])
	if !ok {
		return Row{}, newParseError(KindInvalidTimestamp, lineNum)
	}

	// Short lines have nowhere to take a status or pid from.
	if len(fields) < numColumns {
		return Row{}, newParseError(KindUnexpectedColumnCount, lineNum)
	}

	status := Status(fields[2])
	if !status.Valid() {
		return Row{}, newParseError(KindInvalidStatus, lineNum)
	}

	return Row{
		Timestamp:   ts,
		Description: fields[1],
		Status:      status,
		ProcessID:   fields[3],
	}, nil
}

// Check validates every line of raw and returns all parse errors instead of
// stopping at the first. lines is the number of lines examined.
func Check(raw string) (errs []*ParseError, lines int) {
	all := splitLines(raw)
	for i, line := range all {
		if _, perr := parseLine(line, i+1); perr != nil {
			errs = append(errs, perr)
		}
	}
	return errs, len(all)
}
