package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/zhandosm/baraholka/app/models"
	"github.com/zhandosm/baraholka/internal/pkg/pagination"
)

type paymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository creates a new payment repository instance
func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) CreateTransaction(tx *models.PaymentTransaction) error {
	return r.db.Create(tx).Error
}

func (r *paymentRepository) GetTransaction(id uint) (*models.PaymentTransaction, error) {
	var tx models.PaymentTransaction
	if err := r.db.First(&tx, id).Error; err != nil {
		return nil, err
	}
	return &tx, nil
}

// GetByExternalID looks a transaction up by the provider's id. This is the
// webhook idempotency anchor.
func (r *paymentRepository) GetByExternalID(provider, externalID string) (*models.PaymentTransaction, error) {
	var tx models.PaymentTransaction
	err := r.db.Where("provider = ? AND external_transaction_id = ?", provider, externalID).
		First(&tx).Error
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

func (r *paymentRepository) UpdateTransaction(tx *models.PaymentTransaction) error {
	return r.db.Save(tx).Error
}

func (r *paymentRepository) ListTransactions(userID uint, txType string, p pagination.Params) ([]models.PaymentTransaction, int64, error) {
	q := r.db.Model(&models.PaymentTransaction{}).Where("user_id = ?", userID)
	if txType != "" {
		q = q.Where("type = ?", txType)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var txs []models.PaymentTransaction
	err := q.Order("created_at DESC").Offset(p.Offset()).Limit(p.PerPage).Find(&txs).Error
	return txs, total, err
}

// Balance sums successful payments minus refunds and withdrawals.
func (r *paymentRepository) Balance(userID uint) (int64, error) {
	var balance *int64
	err := r.db.Model(&models.PaymentTransaction{}).
		Select("SUM(CASE WHEN type = 'payment' THEN amount ELSE -amount END)").
		Where("user_id = ? AND status = ?", userID, models.TRANSACTION_STATUS_SUCCESS).
		Scan(&balance).Error
	if err != nil || balance == nil {
		return 0, err
	}
	return *balance, nil
}

// UserStats returns the caller's successful ledger totals grouped by type.
func (r *paymentRepository) UserStats(userID uint) (map[string]models.PaymentTypeStat, error) {
	var rows []struct {
		Type  string
		Count int64
		Sum   int64
	}
	err := r.db.Model(&models.PaymentTransaction{}).
		Select("type, COUNT(*) AS count, COALESCE(SUM(amount), 0) AS sum").
		Where("user_id = ? AND status = ?", userID, models.TRANSACTION_STATUS_SUCCESS).
		Group("type").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	stats := make(map[string]models.PaymentTypeStat, len(rows))
	for _, row := range rows {
		stats[row.Type] = models.PaymentTypeStat{Count: row.Count, TotalAmount: row.Sum}
	}
	return stats, nil
}

func (r *paymentRepository) SumByTypeSince(txType string, since time.Time) (int64, error) {
	var sum *int64
	err := r.db.Model(&models.PaymentTransaction{}).
		Select("SUM(amount)").
		Where("type = ? AND status = ? AND created_at >= ?", txType, models.TRANSACTION_STATUS_SUCCESS, since).
		Scan(&sum).Error
	if err != nil || sum == nil {
		return 0, err
	}
	return *sum, nil
}

func (r *paymentRepository) GetPaymentMethods() ([]models.PaymentMethod, error) {
	var methods []models.PaymentMethod
	err := r.db.Where("is_active = ?", true).Order("sort_order").Find(&methods).Error
	return methods, err
}

func (r *paymentRepository) GetPromotionServices() ([]models.PromotionService, error) {
	var services []models.PromotionService
	err := r.db.Where("is_active = ?", true).Order("price").Find(&services).Error
	return services, err
}

func (r *paymentRepository) GetPromotionService(id uint) (*models.PromotionService, error) {
	var service models.PromotionService
	if err := r.db.First(&service, id).Error; err != nil {
		return nil, err
	}
	return &service, nil
}

func (r *paymentRepository) CreatePromotion(promo *models.EntityPromotion) error {
	return r.db.Create(promo).Error
}

func (r *paymentRepository) GetPromotion(id uint) (*models.EntityPromotion, error) {
	var promo models.EntityPromotion
	err := r.db.Preload("Service").First(&promo, id).Error
	if err != nil {
		return nil, err
	}
	return &promo, nil
}

func (r *paymentRepository) GetPromotionByTransaction(transactionID uint) (*models.EntityPromotion, error) {
	var promo models.EntityPromotion
	err := r.db.Preload("Service").Where("transaction_id = ?", transactionID).First(&promo).Error
	if err != nil {
		return nil, err
	}
	return &promo, nil
}

func (r *paymentRepository) UpdatePromotion(promo *models.EntityPromotion) error {
	return r.db.Save(promo).Error
}

func (r *paymentRepository) ListPromotions(userID uint, p pagination.Params) ([]models.EntityPromotion, int64, error) {
	q := r.db.Model(&models.EntityPromotion{}).Where("user_id = ?", userID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var promos []models.EntityPromotion
	err := q.Preload("Service").Order("created_at DESC").
		Offset(p.Offset()).Limit(p.PerPage).Find(&promos).Error
	return promos, total, err
}

// ExpireOverduePromotions flips active promotions past their window and
// returns them so the caller can clear listing flags.
func (r *paymentRepository) ExpireOverduePromotions(now time.Time) ([]models.EntityPromotion, error) {
	var overdue []models.EntityPromotion
	err := r.db.Preload("Service").
		Where("status = ? AND ends_at IS NOT NULL AND ends_at < ?", models.PROMOTION_STATUS_ACTIVE, now).
		Find(&overdue).Error
	if err != nil {
		return nil, err
	}
	if len(overdue) == 0 {
		return nil, nil
	}

	ids := make([]uint, 0, len(overdue))
	for _, p := range overdue {
		ids = append(ids, p.ID)
	}
	err = r.db.Model(&models.EntityPromotion{}).Where("id IN ?", ids).
		Update("status", models.PROMOTION_STATUS_EXPIRED).Error
	return overdue, err
}
