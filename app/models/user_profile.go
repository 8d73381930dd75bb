package models

import (
	"time"

	"gorm.io/gorm"
)

type UserProfile struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	UserID      uint           `gorm:"uniqueIndex;not null" json:"user_id"`
	CompanyName string         `gorm:"type:varchar(200);default:null" json:"company_name,omitempty"`
	About       string         `gorm:"type:text" json:"about,omitempty"`
	CityID      *uint          `gorm:"index" json:"city_id,omitempty"`
	City        *City          `gorm:"foreignKey:CityID" json:"city,omitempty"`
	AvatarURL   string         `gorm:"type:varchar(255);default:null" json:"avatar_url,omitempty"`
	Rating      float64        `gorm:"type:decimal(3,2);default:0" json:"rating"`
	RatingCount int            `gorm:"default:0" json:"rating_count"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

type UserSettings struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	UserID          uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	Language        string    `gorm:"type:varchar(5);default:'ru'" json:"language" validate:"oneof=ru kk en"`
	Timezone        string    `gorm:"type:varchar(50);default:'Asia/Almaty'" json:"timezone"`
	PushEnabled     bool      `gorm:"default:true" json:"push_enabled"`
	EmailEnabled    bool      `gorm:"default:true" json:"email_enabled"`
	SMSEnabled      bool      `gorm:"default:true" json:"sms_enabled"`
	ShowPhone       bool      `gorm:"default:true" json:"show_phone"`
	ShowOnlineState bool      `gorm:"default:true" json:"show_online_state"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// DefaultUserSettings returns the settings row created lazily on first access.
func DefaultUserSettings(userID uint) *UserSettings {
	return &UserSettings{
		UserID:          userID,
		Language:        "ru",
		Timezone:        "Asia/Almaty",
		PushEnabled:     true,
		EmailEnabled:    true,
		SMSEnabled:      true,
		ShowPhone:       true,
		ShowOnlineState: true,
	}
}

const (
	DEVICE_PLATFORM_IOS     = "ios"
	DEVICE_PLATFORM_ANDROID = "android"
	DEVICE_PLATFORM_WEB     = "web"
)

// DeviceRegistration holds a push token for one of the user's devices.
type DeviceRegistration struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"index;not null" json:"user_id"`
	Platform   string    `gorm:"type:varchar(10);not null" json:"platform" validate:"oneof=ios android web"`
	PushToken  string    `gorm:"type:varchar(512);uniqueIndex;not null" json:"-"`
	DeviceName string    `gorm:"type:varchar(100)" json:"device_name,omitempty"`
	IsActive   bool      `gorm:"default:true" json:"is_active"`
	LastSeenAt time.Time `gorm:"type:timestamp" json:"last_seen_at"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
