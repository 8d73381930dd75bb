package models

import "time"

const (
	TRANSACTION_TYPE_PAYMENT    = "payment"
	TRANSACTION_TYPE_REFUND     = "refund"
	TRANSACTION_TYPE_WITHDRAWAL = "withdrawal"

	TRANSACTION_STATUS_PENDING = "pending"
	TRANSACTION_STATUS_SUCCESS = "success"
	TRANSACTION_STATUS_FAILED  = "failed"

	PAYMENT_PROVIDER_KASPI  = "kaspi"
	PAYMENT_PROVIDER_HALYK  = "halyk"
	PAYMENT_PROVIDER_PAYBOX = "paybox"

	RefundWindowDays = 30
)

// PaymentTransaction is the money ledger. Rows are only ever appended;
// status moves pending to success or failed exactly once.
type PaymentTransaction struct {
	ID                    uint       `gorm:"primaryKey" json:"id"`
	UserID                uint       `gorm:"index;not null" json:"user_id"`
	Type                  string     `gorm:"type:varchar(20);not null" json:"type" validate:"oneof=payment refund withdrawal"`
	Amount                int64      `gorm:"type:bigint;not null" json:"amount" validate:"gt=0"`
	CurrencyCode          string     `gorm:"type:char(3);default:'KZT'" json:"currency_code"`
	Status                string     `gorm:"type:varchar(20);default:'pending';index" json:"status" validate:"oneof=pending success failed"`
	Provider              string     `gorm:"type:varchar(20)" json:"provider" validate:"omitempty,oneof=kaspi halyk paybox"`
	ExternalTransactionID string     `gorm:"type:varchar(100);index" json:"external_transaction_id,omitempty"`
	Description           string     `gorm:"type:varchar(255)" json:"description,omitempty"`
	Metadata              JSONMap    `gorm:"type:json" json:"metadata,omitempty"`
	ErrorMessage          string     `gorm:"type:varchar(500);default:null" json:"error_message,omitempty"`
	RefundOfID            *uint      `gorm:"index" json:"refund_of_id,omitempty"`
	CompletedAt           *time.Time `gorm:"type:timestamp;default:null" json:"completed_at,omitempty"`
	CreatedAt             time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt             time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// IsFinal reports whether the transaction has reached a terminal status.
func (t *PaymentTransaction) IsFinal() bool {
	return t.Status == TRANSACTION_STATUS_SUCCESS || t.Status == TRANSACTION_STATUS_FAILED
}

// SignedAmount returns the ledger contribution of the row: payments add,
// refunds and withdrawals subtract.
func (t *PaymentTransaction) SignedAmount() int64 {
	if t.Type == TRANSACTION_TYPE_PAYMENT {
		return t.Amount
	}
	return -t.Amount
}

// PaymentTypeStat aggregates successful transactions of one type.
type PaymentTypeStat struct {
	Count       int64 `json:"count"`
	TotalAmount int64 `json:"total_amount"`
}

type PaymentMethod struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Name      string `gorm:"type:varchar(100);not null" json:"name"`
	Provider  string `gorm:"type:varchar(20);not null" json:"provider"`
	IsActive  bool   `gorm:"default:true" json:"is_active"`
	SortOrder int    `gorm:"default:0" json:"-"`
}

const (
	PROMOTION_STATUS_PENDING   = "pending"
	PROMOTION_STATUS_ACTIVE    = "active"
	PROMOTION_STATUS_EXPIRED   = "expired"
	PROMOTION_STATUS_CANCELLED = "cancelled"
)

// PromotionService is a purchasable boost (feature, urgent, top placement).
type PromotionService struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"type:varchar(100);not null" json:"name"`
	Slug         string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"slug"`
	Description  string    `gorm:"type:varchar(500)" json:"description,omitempty"`
	Price        int64     `gorm:"type:bigint;not null" json:"price"`
	DurationDays int       `gorm:"not null" json:"duration_days"`
	MakesFeature bool      `gorm:"default:false" json:"makes_featured"`
	MakesUrgent  bool      `gorm:"default:false" json:"makes_urgent"`
	IsActive     bool      `gorm:"default:true" json:"is_active"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"-"`
}

// EntityPromotion applies a promotion service to an entity. Activation is
// gated by the linked payment succeeding.
type EntityPromotion struct {
	ID            uint              `gorm:"primaryKey" json:"id"`
	EntityID      uint              `gorm:"index;not null" json:"entity_id"`
	UserID        uint              `gorm:"index;not null" json:"user_id"`
	ServiceID     uint              `gorm:"index;not null" json:"service_id"`
	Service       *PromotionService `gorm:"foreignKey:ServiceID" json:"service,omitempty"`
	TransactionID *uint             `gorm:"index" json:"transaction_id,omitempty"`
	Status        string            `gorm:"type:varchar(20);default:'pending';index" json:"status" validate:"oneof=pending active expired cancelled"`
	StartsAt      *time.Time        `gorm:"type:timestamp;default:null" json:"starts_at,omitempty"`
	EndsAt        *time.Time        `gorm:"type:timestamp;default:null;index" json:"ends_at,omitempty"`
	CreatedAt     time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time         `gorm:"autoUpdateTime" json:"updated_at"`
}

// Activate starts the promotion window once its payment succeeded.
func (p *EntityPromotion) Activate(now time.Time, durationDays int) {
	ends := now.AddDate(0, 0, durationDays)
	p.Status = PROMOTION_STATUS_ACTIVE
	p.StartsAt = &now
	p.EndsAt = &ends
}
