package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	JobStatusPending    = "pending"
	JobStatusInProgress = "in_progress"
	JobStatusCompleted  = "completed"
	JobStatusAccounted  = "accounted" // terminal: moved to accounts by the weekly rollover
	JobStatusCancelled  = "cancelled"

	PaymentStatusUnpaid = "unpaid"
	PaymentStatusPaid   = "paid"
)

// Job is one scheduled occurrence of a service for a client on a specific date.
// DedupKey is derived from (owner, client, service, date) and carries a unique
// index, so re-running the generator can never insert a second job for the same
// slot even under concurrent invocations.
type Job struct {
	ID       uuid.UUID  `gorm:"type:uuid;primary_key"`
	OwnerID  uuid.UUID  `gorm:"type:uuid;index;not null"`
	ClientID uuid.UUID  `gorm:"type:uuid;index;not null"`
	PlanID   *uuid.UUID `gorm:"type:uuid;index"` // nil for jobs from legacy client fields

	ServiceName string `gorm:"not null"`
	Address     string

	ScheduledTime time.Time `gorm:"index;not null"`
	// Set once when a job is manually moved to a different day; the generator
	// treats the original slot as still covered.
	OriginalScheduledTime *time.Time

	Status         string  `gorm:"type:varchar(20);default:'pending'"`
	Price          float64 `gorm:"type:decimal(10,2);not null"`
	HasCustomPrice bool    `gorm:"default:false"`
	PaymentStatus  string  `gorm:"type:varchar(20);default:'unpaid'"`

	ETA                *string
	CompletedAt        *time.Time
	CompletionSequence *int

	GocardlessEnabled bool `gorm:"default:false"`

	DedupKey string `gorm:"uniqueIndex;not null"`

	gorm.Model
}

func (j *Job) BeforeCreate(tx *gorm.DB) (err error) {
	if j.ID == uuid.Nil {
		j.ID = uuid.New()
	}
	if j.DedupKey == "" {
		j.DedupKey = JobDedupKey(j.OwnerID, j.ClientID, j.ServiceName, j.ScheduledTime)
	}
	return
}

// JobDedupKey builds the deterministic key identifying one (client, service,
// calendar date) slot within an owner's account.
func JobDedupKey(ownerID, clientID uuid.UUID, serviceName string, scheduled time.Time) string {
	return fmt.Sprintf("%s|%s|%s|%s", ownerID, clientID, serviceName, scheduled.Format("2006-01-02"))
}
