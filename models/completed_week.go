package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CompletedWeek records which weekdays of a given week the owner has closed out
// on the runsheet. The generator consults it for the skip-today check.
type CompletedWeek struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	OwnerID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_owner_week,priority:1"`
	WeekStart time.Time `gorm:"not null;uniqueIndex:idx_owner_week,priority:2"`
	Days      JSONB     `gorm:"type:jsonb;default:'{}'"` // weekday name -> true

	gorm.Model
}

func (w *CompletedWeek) BeforeCreate(tx *gorm.DB) (err error) {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	return
}

// DayComplete reports whether the given weekday is marked complete.
func (w *CompletedWeek) DayComplete(day time.Weekday) bool {
	if w.Days == nil {
		return false
	}
	v, ok := w.Days[strings.ToLower(day.String())]
	if !ok {
		return false
	}
	b, ok := v.(bool)
	return ok && b
}
