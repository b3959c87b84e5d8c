package util

import (
	"fmt"
	"strconv"
	"time"
)

// ParseDate accepts YYYY-MM-DD, RFC3339 and unix seconds and returns the
// calendar day at UTC midnight.
func ParseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return Day(t), nil
	}
	if ts, err := strconv.ParseInt(s, 10, 64); err == nil && ts > 0 {
		return Day(time.Unix(ts, 0)), nil
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}

// Day truncates t to its calendar day in UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// SameDay reports whether a and b fall on the same UTC calendar day.
func SameDay(a, b time.Time) bool {
	return Day(a).Equal(Day(b))
}
