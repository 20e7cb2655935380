// utils/dates.go
package utils

import "time"

func BeginningOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

func DaysBetween(start, end time.Time) int {
	start = BeginningOfDay(start)
	end = BeginningOfDay(end)
	return int(end.Sub(start).Hours() / 24)
}

// StartOfWeek returns the Monday 00:00 of the week containing t.
func StartOfWeek(t time.Time) time.Time {
	t = BeginningOfDay(t)
	offset := int(t.Weekday()) - int(time.Monday)
	if offset < 0 {
		offset += 7 // Sunday
	}
	return t.AddDate(0, 0, -offset)
}

func SameDay(a, b time.Time) bool {
	return BeginningOfDay(a).Equal(BeginningOfDay(b))
}

// DateKey formats t as the calendar-date string used in job dedup keys.
func DateKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// AtServiceTime pins a date to the fixed 09:00 time-of-day all generated jobs use.
func AtServiceTime(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 9, 0, 0, 0, t.Location())
}
