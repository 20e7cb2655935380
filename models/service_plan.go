package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ScheduleTypeRecurring = "recurring"
	ScheduleTypeOneOff    = "one_off"
)

// ServicePlan is one recurring or one-off service commitment for a client.
// Plans are soft-disabled via IsActive, never hard-deleted while jobs reference
// them; a plan whose LastServiceDate has passed is treated as inactive.
type ServicePlan struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key"`
	OwnerID  uuid.UUID `gorm:"type:uuid;index;not null"`
	ClientID uuid.UUID `gorm:"type:uuid;index;not null"`

	ServiceType  string `gorm:"not null"`                  // display label and job join key
	ScheduleType string `gorm:"type:varchar(20);not null"` // recurring, one_off

	// Recurring plans
	FrequencyWeeks  *int
	StartDate       *time.Time
	LastServiceDate *time.Time // hard stop for generation

	// One-off plans
	ScheduledDate *time.Time

	Price    float64 `gorm:"type:decimal(10,2);default:0.0"`
	IsActive bool    `gorm:"default:true"`

	gorm.Model
}

func (p *ServicePlan) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return
}
