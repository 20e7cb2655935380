package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func d(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func TestStartOfWeek(t *testing.T) {
	monday := d(2024, time.January, 8)

	assert.Equal(t, monday, StartOfWeek(monday))
	assert.Equal(t, monday, StartOfWeek(d(2024, time.January, 10)))
	// Sunday belongs to the week starting the previous Monday
	assert.Equal(t, monday, StartOfWeek(d(2024, time.January, 14)))
	assert.Equal(t, monday.AddDate(0, 0, 7), StartOfWeek(d(2024, time.January, 15)))
}

func TestDaysBetweenIgnoresTimeOfDay(t *testing.T) {
	start := time.Date(2024, time.January, 1, 23, 30, 0, 0, time.UTC)
	end := time.Date(2024, time.January, 3, 0, 15, 0, 0, time.UTC)

	assert.Equal(t, 2, DaysBetween(start, end))
}

func TestSameDay(t *testing.T) {
	assert.True(t, SameDay(
		time.Date(2024, time.January, 1, 9, 0, 0, 0, time.UTC),
		time.Date(2024, time.January, 1, 17, 30, 0, 0, time.UTC),
	))
	assert.False(t, SameDay(d(2024, time.January, 1), d(2024, time.January, 2)))
}

func TestAtServiceTime(t *testing.T) {
	pinned := AtServiceTime(time.Date(2024, time.January, 1, 16, 45, 0, 0, time.UTC))
	assert.Equal(t, 9, pinned.Hour())
	assert.Equal(t, 0, pinned.Minute())
	assert.Equal(t, d(2024, time.January, 1).Day(), pinned.Day())
}

func TestDateKey(t *testing.T) {
	assert.Equal(t, "2024-02-14", DateKey(time.Date(2024, time.February, 14, 9, 0, 0, 0, time.UTC)))
}

func TestValidatePostcode(t *testing.T) {
	assert.True(t, ValidatePostcode("SY1 1AA"))
	assert.True(t, ValidatePostcode("sw1a 1aa"))
	assert.False(t, ValidatePostcode("12345"))
	assert.False(t, ValidatePostcode(""))
}
