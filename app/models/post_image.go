package models

import (
	"time"
)

// PostImage is one stored photo of a post. The object keys reference the
// processed copies in the object storage bucket, never the raw upload.
type PostImage struct {
	ID           uint      `gorm:"primaryKey" json:"-"`
	PostID       uint      `gorm:"index;not null" json:"-"`
	ImageURL     string    `gorm:"type:varchar(500);not null" json:"image_url"`
	ThumbnailURL string    `gorm:"type:varchar(500);not null" json:"thumbnail_url"`
	ObjectKey    string    `gorm:"type:varchar(255)" json:"-"`
	ThumbnailKey string    `gorm:"type:varchar(255)" json:"-"`
	DisplayOrder int       `gorm:"default:0" json:"display_order"`
	IsPrimary    bool      `gorm:"default:false" json:"is_primary"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
}
