package repository

import (
	"gorm.io/gorm"

	"github.com/zhandosm/baraholka/app/models"
	"github.com/zhandosm/baraholka/internal/pkg/pagination"
)

type supportRepository struct {
	db *gorm.DB
}

// NewSupportRepository creates a new support repository instance
func NewSupportRepository(db *gorm.DB) SupportRepository {
	return &supportRepository{db: db}
}

func (r *supportRepository) CreateTicket(t *models.SupportTicket) error {
	return r.db.Create(t).Error
}

func (r *supportRepository) GetTicket(id uint) (*models.SupportTicket, error) {
	var ticket models.SupportTicket
	err := r.db.Preload("User").First(&ticket, id).Error
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *supportRepository) UpdateTicket(t *models.SupportTicket) error {
	return r.db.Save(t).Error
}

func (r *supportRepository) ListTicketsForUser(userID uint, p pagination.Params) ([]models.SupportTicket, int64, error) {
	q := r.db.Model(&models.SupportTicket{}).Where("user_id = ?", userID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var tickets []models.SupportTicket
	err := q.Order("created_at DESC").Offset(p.Offset()).Limit(p.PerPage).Find(&tickets).Error
	return tickets, total, err
}

func (r *supportRepository) ListTickets(status string, p pagination.Params) ([]models.SupportTicket, int64, error) {
	q := r.db.Model(&models.SupportTicket{})
	if status != "" {
		q = q.Where("status = ?", status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var tickets []models.SupportTicket
	err := q.Preload("User").
		Order("CASE priority WHEN 'critical' THEN 0 WHEN 'high' THEN 1 WHEN 'medium' THEN 2 ELSE 3 END, created_at ASC").
		Offset(p.Offset()).Limit(p.PerPage).Find(&tickets).Error
	return tickets, total, err
}

func (r *supportRepository) CountTickets(status string) (int64, error) {
	var count int64
	q := r.db.Model(&models.SupportTicket{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	err := q.Count(&count).Error
	return count, err
}

// AvgResolutionHours computes the mean open-to-resolved time in hours.
func (r *supportRepository) AvgResolutionHours() (float64, error) {
	var avg *float64
	err := r.db.Model(&models.SupportTicket{}).
		Select("AVG(TIMESTAMPDIFF(HOUR, created_at, resolved_at))").
		Where("resolved_at IS NOT NULL").
		Scan(&avg).Error
	if err != nil || avg == nil {
		return 0, err
	}
	return *avg, nil
}

func (r *supportRepository) ListFAQ(category string) ([]models.SupportFAQ, error) {
	q := r.db.Where("is_active = ?", true)
	if category != "" {
		q = q.Where("category = ?", category)
	}
	var faqs []models.SupportFAQ
	err := q.Order("sort_order, id").Find(&faqs).Error
	return faqs, err
}

func (r *supportRepository) GetFAQ(id uint) (*models.SupportFAQ, error) {
	var faq models.SupportFAQ
	if err := r.db.Where("is_active = ?", true).First(&faq, id).Error; err != nil {
		return nil, err
	}
	return &faq, nil
}

func (r *supportRepository) SearchFAQ(query string) ([]models.SupportFAQ, error) {
	like := "%" + query + "%"
	var faqs []models.SupportFAQ
	err := r.db.Where("is_active = ? AND (question LIKE ? OR answer LIKE ?)", true, like, like).
		Order("sort_order, id").Find(&faqs).Error
	return faqs, err
}

func (r *supportRepository) IncrementFAQView(id uint) error {
	return r.db.Model(&models.SupportFAQ{}).Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error
}
