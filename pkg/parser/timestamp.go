package parser

import (
	"strconv"
	"strings"
	"time"
)

// Logs carry no date, so every timestamp lands on January 1 of EpochYear.
// Only differences between timestamps are meaningful.
const EpochYear = 0

// TimeOfDay builds a timestamp on the epoch date.
// Out of range values are not rejected; time.Date normalises them,
// so 99:99:99 is a valid (if odd) instant.
func TimeOfDay(hour, minute, second int) time.Time {
	return time.Date(EpochYear, time.January, 1, hour, minute, second, 0, time.UTC)
}

// parseTimeOfDay splits an HH:MM:SS field into three non-negative integers.
// Each segment is a base-10 unsigned 32-bit value with an optional leading "+".
func parseTimeOfDay(field string) (time.Time, bool) {
	segments := strings.Split(field, ":")
	if len(segments) != 3 {
		return time.Time{}, false
	}

	var values [3]int
	for i, seg := range segments {
		// One explicit plus sign is allowed; ParseUint rejects a second.
		seg = strings.TrimPrefix(seg, "+")
		n, err := strconv.ParseUint(seg, 10, 32)
		if err != nil {
			return time.Time{}, false
		}
		values[i] = int(n)
	}

	return TimeOfDay(values[0], values[1], values[2]), true
}
