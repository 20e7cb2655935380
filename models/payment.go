package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Payment struct {
	ID       uuid.UUID  `gorm:"type:uuid;primary_key"`
	OwnerID  uuid.UUID  `gorm:"type:uuid;index;not null"`
	ClientID uuid.UUID  `gorm:"type:uuid;index;not null"`
	JobID    *uuid.UUID `gorm:"type:uuid;index"`

	Amount      float64   `gorm:"type:decimal(10,2);not null"`
	Method      string    `gorm:"type:varchar(20)"` // cash, transfer, cheque, direct_debit
	PaymentDate time.Time `gorm:"not null"`
	Notes       string

	gorm.Model
}

func (p *Payment) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return
}
