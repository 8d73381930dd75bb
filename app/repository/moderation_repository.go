package repository

import (
	"gorm.io/gorm"

	"github.com/zhandosm/baraholka/app/models"
	"github.com/zhandosm/baraholka/internal/pkg/pagination"
)

type moderationRepository struct {
	db *gorm.DB
}

// NewModerationRepository creates a new moderation repository instance
func NewModerationRepository(db *gorm.DB) ModerationRepository {
	return &moderationRepository{db: db}
}

func (r *moderationRepository) Enqueue(item *models.ModerationQueue) error {
	return r.db.Create(item).Error
}

func (r *moderationRepository) GetQueueItem(id uint) (*models.ModerationQueue, error) {
	var item models.ModerationQueue
	err := r.db.Preload("Listing").First(&item, id).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *moderationRepository) GetPendingByListing(listingID uint) (*models.ModerationQueue, error) {
	var item models.ModerationQueue
	err := r.db.Where("listing_id = ? AND status = ?", listingID, models.MODERATION_STATUS_PENDING).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *moderationRepository) UpdateQueueItem(item *models.ModerationQueue) error {
	return r.db.Save(item).Error
}

func (r *moderationRepository) ListQueue(status, priority string, p pagination.Params) ([]models.ModerationQueue, int64, error) {
	q := r.db.Model(&models.ModerationQueue{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if priority != "" {
		q = q.Where("priority = ?", priority)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []models.ModerationQueue
	err := q.Preload("Listing").
		Order("CASE priority WHEN 'high' THEN 0 WHEN 'normal' THEN 1 ELSE 2 END, created_at ASC").
		Offset(p.Offset()).Limit(p.PerPage).Find(&items).Error
	return items, total, err
}

func (r *moderationRepository) CountQueue(status string) (int64, error) {
	var count int64
	q := r.db.Model(&models.ModerationQueue{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	err := q.Count(&count).Error
	return count, err
}

func (r *moderationRepository) CreateReport(report *models.ReportedContent) error {
	return r.db.Create(report).Error
}

func (r *moderationRepository) GetReport(id uint) (*models.ReportedContent, error) {
	var report models.ReportedContent
	if err := r.db.First(&report, id).Error; err != nil {
		return nil, err
	}
	return &report, nil
}

func (r *moderationRepository) GetOpenReport(reporterID, entityID uint) (*models.ReportedContent, error) {
	var report models.ReportedContent
	err := r.db.Where("reporter_id = ? AND entity_id = ? AND status = ?",
		reporterID, entityID, models.REPORT_STATUS_PENDING).First(&report).Error
	if err != nil {
		return nil, err
	}
	return &report, nil
}

func (r *moderationRepository) UpdateReport(report *models.ReportedContent) error {
	return r.db.Save(report).Error
}

func (r *moderationRepository) ListReports(status, reason string, p pagination.Params) ([]models.ReportedContent, int64, error) {
	q := r.db.Model(&models.ReportedContent{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if reason != "" {
		q = q.Where("reason = ?", reason)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var reports []models.ReportedContent
	err := q.Order("created_at ASC").Offset(p.Offset()).Limit(p.PerPage).Find(&reports).Error
	return reports, total, err
}

func (r *moderationRepository) CountReports(status string) (int64, error) {
	var count int64
	q := r.db.Model(&models.ReportedContent{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	err := q.Count(&count).Error
	return count, err
}
