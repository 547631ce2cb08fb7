package repository

import (
	"strings"

	"github.com/lazos-app/lazos-api/app/models"
	"gorm.io/gorm"
)

// alertRepository implements the AlertRepository interface
type alertRepository struct {
	db *gorm.DB
}

// NewAlertRepository creates a new alert repository instance
func NewAlertRepository(db *gorm.DB) AlertRepository {
	return &alertRepository{db: db}
}

// Create creates a new alert in the database
func (r *alertRepository) Create(alert *models.Alert) error {
	return r.db.Create(alert).Error
}

// GetByUUID retrieves an alert by UUID
func (r *alertRepository) GetByUUID(uuid string) (*models.Alert, error) {
	return models.FindAlertByUUID(r.db, uuid)
}

// List retrieves alerts matching the filter plus the total match count
func (r *alertRepository) List(filter AlertFilter) ([]models.Alert, int64, error) {
	query := r.db.Model(&models.Alert{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.AnimalType != "" {
		query = query.Where("animal_type = ?", filter.AnimalType)
	}
	if filter.Since != nil {
		query = query.Where("created_at >= ?", filter.Since)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var alerts []models.Alert
	err := query.Order("created_at DESC").Offset(filter.Offset).Limit(filter.Limit).Find(&alerts).Error
	return alerts, total, err
}

// Search retrieves active alerts whose text columns match the search term.
// Spanish animal names additionally match the stored animal type exactly.
func (r *alertRepository) Search(filter SearchFilter) ([]models.Alert, error) {
	term := "%" + strings.ToLower(filter.Term) + "%"
	match := r.db.Where("LOWER(description) LIKE ?", term).
		Or("LOWER(location_name) LIKE ?", term).
		Or("LOWER(direction) LIKE ?", term).
		Or("LOWER(animal_type) LIKE ?", term)
	if mapped := AnimalTypeForTerm(filter.Term); mapped != "" {
		match = match.Or("animal_type = ?", mapped)
	}

	var alerts []models.Alert
	err := r.db.Model(&models.Alert{}).
		Where("status = ?", models.StatusActive).
		Where(match).
		Order("created_at DESC").Offset(filter.Offset).Limit(filter.Limit).Find(&alerts).Error
	return alerts, err
}

// TransitionStatus atomically moves an alert from one status to another
func (r *alertRepository) TransitionStatus(uuid, from, to string) (bool, error) {
	result := r.db.Model(&models.Alert{}).
		Where("uuid = ? AND status = ?", uuid, from).
		Update("status", to)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// CountByStatus returns the number of alerts in the given status
func (r *alertRepository) CountByStatus(status string) (int64, error) {
	var count int64
	err := r.db.Model(&models.Alert{}).Where("status = ?", status).Count(&count).Error
	return count, err
}
