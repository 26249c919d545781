package domain

import (
	"math"
	"strconv"
	"strings"
	"time"
)

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseDate reads ISO-8601 dates as entered by users. Layouts without a
// zone are read in loc. Bare numbers are rejected; see ParseStoredDate.
func ParseDate(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseStoredDate also accepts epoch seconds written as a string, which
// older records contain.
func ParseStoredDate(s string, loc *time.Location) (time.Time, bool) {
	if secs, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
		return FromEpochSeconds(secs)
	}
	return ParseDate(s, loc)
}

// FromEpochSeconds converts a (possibly fractional) epoch seconds value.
func FromEpochSeconds(secs float64) (time.Time, bool) {
	if math.IsNaN(secs) || math.IsInf(secs, 0) || secs <= 0 {
		return time.Time{}, false
	}
	whole := int64(secs)
	nanos := int64((secs - float64(whole)) * 1e9)
	return time.Unix(whole, nanos), true
}

// ValidDate reports whether t is usable as a calendar date.
func ValidDate(t *time.Time) bool {
	return t != nil && !t.IsZero()
}
