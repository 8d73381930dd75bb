package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

const (
	LISTING_STATUS_DRAFT      = "draft"
	LISTING_STATUS_MODERATION = "moderation"
	LISTING_STATUS_ACTIVE     = "active"
	LISTING_STATUS_REJECTED   = "rejected"
	LISTING_STATUS_SOLD       = "sold"
	LISTING_STATUS_ARCHIVED   = "archived"
	LISTING_STATUS_EXPIRED    = "expired"
)

// ListingActiveDays is how long a published listing stays active before it expires.
const ListingActiveDays = 30

type Listing struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	EntityID        uint            `gorm:"uniqueIndex;not null" json:"entity_id"`
	UserID          uint            `gorm:"index;not null" json:"user_id"`
	User            *User           `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Title           string          `gorm:"type:varchar(200);not null" json:"title" validate:"required,min=5,max=200"`
	Description     string          `gorm:"type:text" json:"description" validate:"max=10000"`
	Price           int64           `gorm:"type:bigint;not null;index" json:"price" validate:"gte=0"`
	CurrencyCode    string          `gorm:"type:char(3);default:'KZT'" json:"currency_code" validate:"oneof=KZT USD EUR RUB"`
	Status          string          `gorm:"type:varchar(20);default:'draft';index" json:"status" validate:"oneof=draft moderation active rejected sold archived expired"`
	RejectionReason string          `gorm:"type:varchar(500);default:null" json:"rejection_reason,omitempty"`
	CityID          uint            `gorm:"index;not null" json:"city_id"`
	City            *City           `gorm:"foreignKey:CityID" json:"city,omitempty"`
	Latitude        *float64        `gorm:"type:decimal(10,8)" json:"latitude,omitempty"`
	Longitude       *float64        `gorm:"type:decimal(11,8)" json:"longitude,omitempty"`
	ContactName     string          `gorm:"type:varchar(100)" json:"contact_name"`
	ContactPhone    string          `gorm:"type:varchar(20)" json:"contact_phone"`
	IsNegotiable    bool            `gorm:"default:false" json:"is_negotiable"`
	IsFeatured      bool            `gorm:"default:false;index" json:"is_featured"`
	IsUrgent        bool            `gorm:"default:false" json:"is_urgent"`
	IsActiveFlag    bool            `gorm:"column:is_active;default:true;index" json:"-"`
	ViewCount       int             `gorm:"default:0" json:"view_count"`
	FavoriteCount   int             `gorm:"default:0" json:"favorite_count"`
	PublishedDate   *time.Time      `gorm:"type:timestamp;default:null;index" json:"published_date,omitempty"`
	ExpiresDate     *time.Time      `gorm:"type:timestamp;default:null;index" json:"expires_date,omitempty"`
	Details         *ListingDetails `gorm:"foreignKey:ListingID" json:"details,omitempty"`
	Features        []CarFeature    `gorm:"many2many:listing_features;" json:"features,omitempty"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt       gorm.DeletedAt  `gorm:"index" json:"-"`
}

func (l *Listing) Validate() error {
	v := validator.New()

	return v.Struct(l)
}

// IsEditable reports whether the owner may still change the listing.
func (l *Listing) IsEditable() bool {
	switch l.Status {
	case LISTING_STATUS_DRAFT, LISTING_STATUS_MODERATION, LISTING_STATUS_ACTIVE, LISTING_STATUS_REJECTED:
		return true
	}
	return false
}

// Publish marks the listing active and stamps the publication window.
func (l *Listing) Publish(now time.Time) {
	expires := now.AddDate(0, 0, ListingActiveDays)
	l.Status = LISTING_STATUS_ACTIVE
	l.PublishedDate = &now
	l.ExpiresDate = &expires
}

// Reject moves the listing to the rejected state with a reason.
func (l *Listing) Reject(reason string) {
	l.Status = LISTING_STATUS_REJECTED
	l.RejectionReason = reason
}

// IsExpired reports whether the active window has passed.
func (l *Listing) IsExpired() bool {
	return l.ExpiresDate != nil && time.Now().After(*l.ExpiresDate)
}
