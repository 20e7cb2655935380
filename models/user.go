package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"roundpro-backend/utils"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is the business-owner account. Every client, plan, job and payment row is
// scoped by the owner's ID (single-user tenancy: ownerId == user.ID).
type User struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key"`
	Email    string    `gorm:"uniqueIndex;not null"`
	Password string    `gorm:"not null"`
	Name     string    `gorm:"not null"`
	Phone    string

	BusinessName    string `gorm:"not null"`
	BusinessAddress string
	Settings        JSONB `gorm:"type:jsonb;default:'{}'"`

	LastLogin *time.Time
	IsActive  bool `gorm:"default:true"`

	gorm.Model
}

// Initialize UUID and hash password before creating
func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	hashed, err := utils.HashPassword(u.Password)
	if err != nil {
		return err
	}
	u.Password = hashed
	return
}

// Custom JSONB type for settings, completed-day maps and embedded legacy services
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, j)
	case string:
		return json.Unmarshal([]byte(v), j)
	default:
		return errors.New("type assertion to []byte failed")
	}
}
