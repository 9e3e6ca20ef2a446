package models

import (
	"time"

	"daytracker.xdoubleu.com/apps/daytracker/pkg/tracker"
)

type TrackedDay struct {
	Date     time.Time
	Category tracker.Category
}

func (day TrackedDay) Key() string {
	return day.Date.Format(tracker.DateFormat)
}

// ParseDate parses a calendar date in the tracker's wire format.
func ParseDate(value string) (time.Time, error) {
	return time.ParseInLocation(tracker.DateFormat, value, time.UTC)
}

// Truncate drops the time of day, keeping the calendar date of t.
func Truncate(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
