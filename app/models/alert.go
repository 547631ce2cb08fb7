package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Alert is a lightweight text-only sighting notification. Alerts share the
// post lifecycle states but are never held for review: without images only
// the text checks apply, and those reject outright.
type Alert struct {
	ID            uint           `gorm:"primaryKey" json:"-"`
	UUID          string         `gorm:"type:char(36);uniqueIndex;not null" json:"id"`
	Description   string         `gorm:"type:text;not null" json:"description"`
	AnimalType    string         `gorm:"type:varchar(10);not null;index" json:"animal_type"`
	Direction     string         `gorm:"type:varchar(200)" json:"direction,omitempty"`
	Latitude      float64        `gorm:"type:decimal(10,8);not null" json:"latitude"`
	Longitude     float64        `gorm:"type:decimal(11,8);not null" json:"longitude"`
	LocationName  string         `gorm:"type:varchar(200)" json:"location_name"`
	Status        string         `gorm:"type:varchar(20);default:'active';index" json:"status"`
	SubmitterIPv4 string         `gorm:"column:submitter_ipv4;type:varchar(15);default:null" json:"-"`
	SubmitterIPv6 string         `gorm:"column:submitter_ipv6;type:varchar(45);default:null" json:"-"`
	CreatedAt     time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate assigns the public identifier.
func (a *Alert) BeforeCreate(tx *gorm.DB) error {
	if a.UUID == "" {
		a.UUID = uuid.New().String()
	}
	return nil
}

// IsTerminal reports whether no further lifecycle transitions are allowed.
func (a *Alert) IsTerminal() bool {
	return a.Status == StatusRejected || a.Status == StatusDeleted
}

// FindAlertByUUID loads an alert by public identifier.
func FindAlertByUUID(db *gorm.DB, id string) (*Alert, error) {
	var alert Alert
	if err := db.Where("uuid = ?", id).First(&alert).Error; err != nil {
		return nil, err
	}
	return &alert, nil
}
