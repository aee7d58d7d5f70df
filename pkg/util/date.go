package util

import (
	"strconv"
	"strings"
	"time"
)

var dateLayouts = []string{
	"2006-01-02",
	"2006-1-2",
	"2006/01/02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	time.RFC3339Nano,
	"01/02/2006",
	"02-Jan-2006",
	"Jan 2, 2006",
}

// ParseDate parses a calendar date in any of the common daily-bar layouts and returns
// UTC midnight of that date. Time of day and offsets are discarded after parsing.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return TruncateDay(t), true
		}
	}
	// compact yyyymmdd
	if len(s) == 8 {
		if _, err := strconv.Atoi(s); err == nil {
			if t, err := time.Parse("20060102", s); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

// TruncateDay drops the clock part, keeping the calendar date as written.
func TruncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
