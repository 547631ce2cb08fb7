package repository

import (
	"strings"
	"time"

	"github.com/lazos-app/lazos-api/app/models"
	"gorm.io/gorm"
)

// Post listing sort orders.
const (
	SortCreated      = "created_at"
	SortSightingDate = "sighting_date"
)

// PostFilter narrows public post listings. Zero values mean "no filter";
// an empty Sort falls back to newest first.
type PostFilter struct {
	AnimalType string
	Size       string
	Sex        string
	Status     string
	Since      *time.Time
	Sort       string
	Offset     int
	Limit      int
}

// SearchFilter drives the unified free-text search. The term is matched
// case-insensitively against the text columns of each target; only active
// items are searched.
type SearchFilter struct {
	Term   string
	Offset int
	Limit  int
}

// AnimalTypeForTerm maps the Spanish animal names users search with onto the
// stored enum values. Unknown terms map to the empty string.
func AnimalTypeForTerm(term string) string {
	switch strings.ToLower(strings.TrimSpace(term)) {
	case "perro":
		return models.AnimalDog
	case "gato":
		return models.AnimalCat
	case "otro":
		return models.AnimalOther
	}
	return ""
}

// AlertFilter narrows public alert listings. Zero values mean "no filter".
type AlertFilter struct {
	AnimalType string
	Status     string
	Since      *time.Time
	Offset     int
	Limit      int
}

// PostRepository defines the interface for post-related database operations
type PostRepository interface {
	Create(post *models.Post) error
	GetByUUID(uuid string) (*models.Post, error)
	List(filter PostFilter) ([]models.Post, int64, error)
	ListByStatus(status string, offset, limit int) ([]models.Post, error)
	Search(filter SearchFilter) ([]models.Post, error)
	// TransitionStatus atomically moves a post from one status to another.
	// It returns false when the post no longer is in the expected status.
	TransitionStatus(uuid, from, to, reason string) (bool, error)
	CountByStatus(status string) (int64, error)
	AddImages(postID uint, images []models.PostImage) error
}

// AlertRepository defines the interface for alert-related database operations
type AlertRepository interface {
	Create(alert *models.Alert) error
	GetByUUID(uuid string) (*models.Alert, error)
	List(filter AlertFilter) ([]models.Alert, int64, error)
	Search(filter SearchFilter) ([]models.Alert, error)
	TransitionStatus(uuid, from, to string) (bool, error)
	CountByStatus(status string) (int64, error)
}

// ReportRepository defines the interface for report-related database operations
type ReportRepository interface {
	Create(report *models.Report) error
	GetByUUID(uuid string) (*models.Report, error)
	ListByStatus(status string, offset, limit int) ([]models.Report, error)
	// Resolve atomically marks a pending report resolved. It returns false
	// when the report was already resolved.
	Resolve(uuid string) (bool, error)
	ResolveAllForPost(postID uint) error
	ResolveAllForAlert(alertID uint) error
	CountPendingForPost(postID uint) (int64, error)
	CountPendingForAlert(alertID uint) (int64, error)
	CountByStatus(status string) (int64, error)
}

// Repositories struct holds all repository instances
type Repositories struct {
	Post   PostRepository
	Alert  AlertRepository
	Report ReportRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Post:   NewPostRepository(db),
		Alert:  NewAlertRepository(db),
		Report: NewReportRepository(db),
	}
}
