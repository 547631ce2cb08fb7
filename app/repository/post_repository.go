package repository

import (
	"strings"
	"time"

	"github.com/lazos-app/lazos-api/app/models"
	"gorm.io/gorm"
)

// postRepository implements the PostRepository interface
type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository instance
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

// Create creates a new post in the database
func (r *postRepository) Create(post *models.Post) error {
	return r.db.Create(post).Error
}

// GetByUUID retrieves a post with its images by UUID
func (r *postRepository) GetByUUID(uuid string) (*models.Post, error) {
	return models.FindPostByUUID(r.db, uuid)
}

// List retrieves posts matching the filter plus the total match count
func (r *postRepository) List(filter PostFilter) ([]models.Post, int64, error) {
	query := r.db.Model(&models.Post{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.AnimalType != "" {
		query = query.Where("animal_type = ?", filter.AnimalType)
	}
	if filter.Size != "" {
		query = query.Where("size = ?", filter.Size)
	}
	if filter.Sex != "" {
		query = query.Where("sex = ?", filter.Sex)
	}
	if filter.Since != nil {
		query = query.Where("sighting_date >= ?", filter.Since)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order := "created_at DESC"
	if filter.Sort == SortSightingDate {
		order = "sighting_date DESC, created_at DESC"
	}

	var posts []models.Post
	err := query.Preload("Images", func(db *gorm.DB) *gorm.DB {
		return db.Order("is_primary DESC, display_order ASC")
	}).Order(order).Offset(filter.Offset).Limit(filter.Limit).Find(&posts).Error
	return posts, total, err
}

// Search retrieves active posts whose text columns match the search term.
// Spanish animal names additionally match the stored animal type exactly.
func (r *postRepository) Search(filter SearchFilter) ([]models.Post, error) {
	term := "%" + strings.ToLower(filter.Term) + "%"
	match := r.db.Where("LOWER(description) LIKE ?", term).
		Or("LOWER(location_name) LIKE ?", term).
		Or("LOWER(animal_type) LIKE ?", term)
	if mapped := AnimalTypeForTerm(filter.Term); mapped != "" {
		match = match.Or("animal_type = ?", mapped)
	}

	var posts []models.Post
	err := r.db.Model(&models.Post{}).
		Where("status = ?", models.StatusActive).
		Where(match).
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("is_primary DESC, display_order ASC")
		}).
		Order("created_at DESC").Offset(filter.Offset).Limit(filter.Limit).Find(&posts).Error
	return posts, err
}

// ListByStatus retrieves a paginated list of posts in the given status
func (r *postRepository) ListByStatus(status string, offset, limit int) ([]models.Post, error) {
	var posts []models.Post
	err := r.db.Preload("Images", func(db *gorm.DB) *gorm.DB {
		return db.Order("is_primary DESC, display_order ASC")
	}).Where("status = ?", status).
		Order("created_at DESC").Offset(offset).Limit(limit).Find(&posts).Error
	return posts, err
}

// TransitionStatus atomically moves a post from one status to another
func (r *postRepository) TransitionStatus(uuid, from, to, reason string) (bool, error) {
	now := time.Now()
	updates := map[string]interface{}{
		"status":          to,
		"moderation_date": &now,
	}
	if reason != "" {
		updates["moderation_reason"] = reason
	}
	result := r.db.Model(&models.Post{}).
		Where("uuid = ? AND status = ?", uuid, from).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// CountByStatus returns the number of posts in the given status
func (r *postRepository) CountByStatus(status string) (int64, error) {
	var count int64
	err := r.db.Model(&models.Post{}).Where("status = ?", status).Count(&count).Error
	return count, err
}

// AddImages attaches processed images to an existing post
func (r *postRepository) AddImages(postID uint, images []models.PostImage) error {
	if len(images) == 0 {
		return nil
	}
	for i := range images {
		images[i].PostID = postID
	}
	return r.db.Create(&images).Error
}
