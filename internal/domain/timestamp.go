package domain

import (
	"fmt"
	"strings"
	"time"
)

// DisplayLayout renders localized times for humans.
const DisplayLayout = "2006-01-02 15:04:05 MST"

// layouts without zone information, interpreted in the cluster timezone.
var naiveLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParsePointInTime parses an ISO 8601 timestamp. A trailing Z or numeric
// offset is honored; a naive timestamp is read as wall-clock time in loc.
// Fractional seconds are accepted.
func ParsePointInTime(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty", ErrInvalidTimestamp)
	}
	if loc == nil {
		loc = time.UTC
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q is not YYYY-MM-DDTHH:MM:SS", ErrInvalidTimestamp, s)
}

// ToEpochMillis converts an ISO 8601 timestamp to epoch milliseconds.
// Recovery points are second-granular, so sub-second precision is dropped.
func ToEpochMillis(s string, loc *time.Location) (int64, error) {
	t, err := ParsePointInTime(s, loc)
	if err != nil {
		return 0, err
	}
	return t.Unix() * 1000, nil
}

// LocalizeUTC parses a timestamp reported by the cluster, which is UTC with
// or without a trailing Z, and converts it to loc.
func LocalizeUTC(s string, loc *time.Location) (time.Time, error) {
	t, err := ParsePointInTime(s, time.UTC)
	if err != nil {
		return time.Time{}, err
	}
	if loc == nil {
		return t.UTC(), nil
	}
	return t.In(loc), nil
}
