package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ClientStatusActive = "active"
	ClientStatusEx     = "ex-client"
)

type Client struct {
	ID      uuid.UUID `gorm:"type:uuid;primary_key"`
	OwnerID uuid.UUID `gorm:"type:uuid;index;not null"`

	Name          string `gorm:"not null"`
	Phone         string
	AccountNumber string
	RoundOrder    int `gorm:"default:0"`

	// Structured address, with the single-field legacy form kept as a fallback
	Address1 string
	Town     string
	Postcode string
	Address  string

	Quote             float64 `gorm:"type:decimal(10,2);default:0.0"`
	Status            string  `gorm:"type:varchar(20);default:'active'"` // active, ex-client
	GocardlessEnabled bool    `gorm:"default:false"`

	// Legacy schedule fields, predating ServicePlan. A client with NextVisit set
	// but no FrequencyWeeks is a legacy one-off.
	FrequencyWeeks     *int
	NextVisit          *time.Time
	AdditionalServices AdditionalServiceList `gorm:"type:jsonb;default:'[]'"`

	ServicePlans []ServicePlan `gorm:"foreignKey:ClientID"`
	Jobs         []Job         `gorm:"foreignKey:ClientID"`
	Payments     []Payment     `gorm:"foreignKey:ClientID"`

	gorm.Model
}

func (c *Client) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return
}

// DisplayAddress prefers the structured fields and falls back to the legacy
// single-field address.
func (c *Client) DisplayAddress() string {
	if c.Address1 != "" {
		addr := c.Address1
		if c.Town != "" {
			addr += ", " + c.Town
		}
		if c.Postcode != "" {
			addr += ", " + c.Postcode
		}
		return addr
	}
	return c.Address
}

// AdditionalService is one legacy embedded extra service on a client record.
type AdditionalService struct {
	ServiceName    string     `json:"serviceName"`
	FrequencyWeeks *int       `json:"frequencyWeeks"`
	NextVisit      *time.Time `json:"nextVisit"`
	Price          float64    `json:"price"`
}

type AdditionalServiceList []AdditionalService

func (l AdditionalServiceList) Value() (driver.Value, error) {
	if l == nil {
		return json.Marshal(AdditionalServiceList{})
	}
	return json.Marshal(l)
}

func (l *AdditionalServiceList) Scan(value interface{}) error {
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return errors.New("type assertion to []byte failed")
	}
}
