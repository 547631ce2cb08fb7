package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ReportStatusPending  = "pending"
	ReportStatusResolved = "resolved"
)

// Report reasons accepted from users.
const (
	ReportReasonNotAnimal     = "not_animal"
	ReportReasonInappropriate = "inappropriate"
	ReportReasonSpam          = "spam"
	ReportReasonOther         = "other"
)

// ValidReportReason reports whether the given reason is part of the accepted
// enumeration.
func ValidReportReason(reason string) bool {
	switch reason {
	case ReportReasonNotAnimal, ReportReasonInappropriate, ReportReasonSpam, ReportReasonOther:
		return true
	}
	return false
}

// Report is a user complaint against a published post or alert. Exactly one
// of PostID and AlertID is set.
type Report struct {
	ID           uint       `gorm:"primaryKey" json:"-"`
	UUID         string     `gorm:"type:char(36);uniqueIndex;not null" json:"id"`
	PostID       *uint      `gorm:"index" json:"-"`
	Post         *Post      `gorm:"foreignKey:PostID" json:"post,omitempty"`
	AlertID      *uint      `gorm:"index" json:"-"`
	Alert        *Alert     `gorm:"foreignKey:AlertID" json:"alert,omitempty"`
	Reason       string     `gorm:"type:varchar(50);not null" json:"reason"`
	Description  string     `gorm:"type:text" json:"description,omitempty"`
	Status       string     `gorm:"type:varchar(20);default:'pending';index" json:"status"`
	ReporterIPv4 string     `gorm:"column:reporter_ipv4;type:varchar(15);default:null" json:"-"`
	ReporterIPv6 string     `gorm:"column:reporter_ipv6;type:varchar(45);default:null" json:"-"`
	ResolvedAt   *time.Time `json:"resolved_at,omitempty"`
	CreatedAt    time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

// BeforeCreate assigns the public identifier.
func (r *Report) BeforeCreate(tx *gorm.DB) error {
	if r.UUID == "" {
		r.UUID = uuid.New().String()
	}
	return nil
}

// FindReportByUUID loads a report with its target by public identifier.
func FindReportByUUID(db *gorm.DB, id string) (*Report, error) {
	var report Report
	err := db.Preload("Post").Preload("Alert").Where("uuid = ?", id).First(&report).Error
	if err != nil {
		return nil, err
	}
	return &report, nil
}
