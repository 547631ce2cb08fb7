package repository

import (
	"time"

	"github.com/lazos-app/lazos-api/app/models"
	"gorm.io/gorm"
)

// reportRepository implements the ReportRepository interface
type reportRepository struct {
	db *gorm.DB
}

// NewReportRepository creates a new report repository instance
func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{db: db}
}

// Create creates a new report in the database
func (r *reportRepository) Create(report *models.Report) error {
	return r.db.Create(report).Error
}

// GetByUUID retrieves a report with its target by UUID
func (r *reportRepository) GetByUUID(uuid string) (*models.Report, error) {
	return models.FindReportByUUID(r.db, uuid)
}

// ListByStatus retrieves a paginated list of reports in the given status
func (r *reportRepository) ListByStatus(status string, offset, limit int) ([]models.Report, error) {
	var reports []models.Report
	err := r.db.Preload("Post").Preload("Alert").
		Where("status = ?", status).
		Order("created_at DESC").Offset(offset).Limit(limit).Find(&reports).Error
	return reports, err
}

// Resolve atomically marks a pending report resolved
func (r *reportRepository) Resolve(uuid string) (bool, error) {
	now := time.Now()
	result := r.db.Model(&models.Report{}).
		Where("uuid = ? AND status = ?", uuid, models.ReportStatusPending).
		Updates(map[string]interface{}{
			"status":      models.ReportStatusResolved,
			"resolved_at": &now,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// ResolveAllForPost resolves every pending report against a post
func (r *reportRepository) ResolveAllForPost(postID uint) error {
	return r.resolveAllFor("post_id", postID)
}

// ResolveAllForAlert resolves every pending report against an alert
func (r *reportRepository) ResolveAllForAlert(alertID uint) error {
	return r.resolveAllFor("alert_id", alertID)
}

func (r *reportRepository) resolveAllFor(column string, id uint) error {
	now := time.Now()
	return r.db.Model(&models.Report{}).
		Where(column+" = ? AND status = ?", id, models.ReportStatusPending).
		Updates(map[string]interface{}{
			"status":      models.ReportStatusResolved,
			"resolved_at": &now,
		}).Error
}

// CountPendingForPost returns the number of pending reports against a post
func (r *reportRepository) CountPendingForPost(postID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Report{}).
		Where("post_id = ? AND status = ?", postID, models.ReportStatusPending).
		Count(&count).Error
	return count, err
}

// CountPendingForAlert returns the number of pending reports against an alert
func (r *reportRepository) CountPendingForAlert(alertID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Report{}).
		Where("alert_id = ? AND status = ?", alertID, models.ReportStatusPending).
		Count(&count).Error
	return count, err
}

// CountByStatus returns the number of reports in the given status
func (r *reportRepository) CountByStatus(status string) (int64, error) {
	var count int64
	err := r.db.Model(&models.Report{}).Where("status = ?", status).Count(&count).Error
	return count, err
}
