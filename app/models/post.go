package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Item lifecycle states. rejected and deleted are terminal.
const (
	StatusActive          = "active"
	StatusPendingApproval = "pending_approval"
	StatusRejected        = "rejected"
	StatusDeleted         = "deleted"
)

// Animal attributes
const (
	AnimalDog   = "dog"
	AnimalCat   = "cat"
	AnimalOther = "other"

	SizeSmall  = "small"
	SizeMedium = "medium"
	SizeLarge  = "large"

	SexMale    = "male"
	SexFemale  = "female"
	SexUnknown = "unknown"
)

// Post is a full sighting submission with photos.
type Post struct {
	ID               uint           `gorm:"primaryKey" json:"-"`
	UUID             string         `gorm:"type:char(36);uniqueIndex;not null" json:"id"`
	Description      string         `gorm:"type:text" json:"description"`
	AnimalType       string         `gorm:"type:varchar(10);default:'dog';index" json:"animal_type"`
	Size             string         `gorm:"type:varchar(10);not null" json:"size"`
	Sex              string         `gorm:"type:varchar(10);default:'unknown'" json:"sex"`
	Latitude         float64        `gorm:"type:decimal(10,8);not null" json:"latitude"`
	Longitude        float64        `gorm:"type:decimal(11,8);not null" json:"longitude"`
	LocationName     string         `gorm:"type:varchar(200)" json:"location_name"`
	SightingDate     time.Time      `gorm:"type:date;index;not null" json:"sighting_date"`
	ContactMethod    string         `gorm:"type:varchar(200)" json:"contact_method,omitempty"`
	Status           string         `gorm:"type:varchar(20);default:'active';index" json:"status"`
	ModerationReason string         `gorm:"type:varchar(500)" json:"moderation_reason,omitempty"`
	ModerationDate   *time.Time     `json:"moderation_date,omitempty"`
	SubmitterIPv4    string         `gorm:"column:submitter_ipv4;type:varchar(15);default:null" json:"-"`
	SubmitterIPv6    string         `gorm:"column:submitter_ipv6;type:varchar(45);default:null" json:"-"`
	Images           []PostImage    `gorm:"foreignKey:PostID" json:"images,omitempty"`
	CreatedAt        time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate assigns the public identifier.
func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.UUID == "" {
		p.UUID = uuid.New().String()
	}
	return nil
}

// IsTerminal reports whether no further lifecycle transitions are allowed.
func (p *Post) IsTerminal() bool {
	return p.Status == StatusRejected || p.Status == StatusDeleted
}

// FindPostByUUID loads a post with its images by public identifier.
func FindPostByUUID(db *gorm.DB, id string) (*Post, error) {
	var post Post
	err := db.Preload("Images", func(db *gorm.DB) *gorm.DB {
		return db.Order("is_primary DESC, display_order ASC")
	}).Where("uuid = ?", id).First(&post).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// PrimaryImage returns the cover image, or nil when none is loaded.
func (p *Post) PrimaryImage() *PostImage {
	for i := range p.Images {
		if p.Images[i].IsPrimary {
			return &p.Images[i]
		}
	}
	if len(p.Images) > 0 {
		return &p.Images[0]
	}
	return nil
}
