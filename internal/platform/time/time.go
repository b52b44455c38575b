// Package time contains wall-clock helpers for daily schedules
package time

import "time"

// NextDaily returns the first hour:minute strictly after now, in now's location
func NextDaily(now time.Time, hour, minute int) time.Time {
	t := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !t.After(now) {
		t = t.AddDate(0, 0, 1)
	}
	return t
}

// StartOfDay truncates t to local midnight
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// DaysBefore returns midnight n calendar days before t
func DaysBefore(t time.Time, n int) time.Time {
	return StartOfDay(t).AddDate(0, 0, -n)
}
