package utils

import (
	"strings"
	"time"
)

const (
	layoutDate  = "2006-01-02"
	layoutClock = "15:04"
)

// NowUTC returns current time in UTC.
func NowUTC() time.Time {
	return time.Now().UTC()
}

// ParseDate parses a calendar date in YYYY-MM-DD form. Travel dates carry no
// time component, so they are anchored at midnight UTC.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(layoutDate, strings.TrimSpace(s))
}

// FormatDate formats a time as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(layoutDate)
}

// DateOnly strips the time component, keeping the calendar date in UTC.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// WeekdayName returns the English weekday name ("Monday" ... "Sunday") used
// in route schedules.
func WeekdayName(t time.Time) string {
	return t.Weekday().String()
}

// ValidClockTime reports whether s is a valid HH:MM clock time.
func ValidClockTime(s string) bool {
	_, err := time.Parse(layoutClock, strings.TrimSpace(s))
	return err == nil
}
