package models

import (
	"strings"
	"time"
)

const (
	CHANNEL_PUSH   = "push"
	CHANNEL_EMAIL  = "email"
	CHANNEL_SMS    = "sms"
	CHANNEL_IN_APP = "in_app"

	NOTIFICATION_STATUS_PENDING = "pending"
	NOTIFICATION_STATUS_SENT    = "sent"
	NOTIFICATION_STATUS_FAILED  = "failed"

	FREQUENCY_INSTANT = "instant"
	FREQUENCY_DAILY   = "daily"
	FREQUENCY_OFF     = "off"

	NOTIFY_TYPE_NEW_MESSAGE       = "new_message"
	NOTIFY_TYPE_LISTING_APPROVED  = "listing_approved"
	NOTIFY_TYPE_LISTING_REJECTED  = "listing_rejected"
	NOTIFY_TYPE_LISTING_EXPIRED   = "listing_expired"
	NOTIFY_TYPE_PROMOTION_STARTED = "promotion_started"
	NOTIFY_TYPE_PROMOTION_EXPIRED = "promotion_expired"
	NOTIFY_TYPE_PAYMENT_SUCCESS   = "payment_success"
	NOTIFY_TYPE_PAYMENT_FAILED    = "payment_failed"
	NOTIFY_TYPE_TICKET_REPLY      = "ticket_reply"
)

type NotificationChannel struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Name     string `gorm:"type:varchar(20);uniqueIndex;not null" json:"name" validate:"oneof=push email sms in_app"`
	IsActive bool   `gorm:"default:true" json:"is_active"`
}

// NotificationTemplate holds per-type, per-channel message bodies with
// {{var}} placeholders.
type NotificationTemplate struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Type      string    `gorm:"type:varchar(50);not null;uniqueIndex:idx_templates_type_channel" json:"type"`
	Channel   string    `gorm:"type:varchar(20);not null;uniqueIndex:idx_templates_type_channel" json:"channel"`
	Subject   string    `gorm:"type:varchar(200)" json:"subject"`
	Body      string    `gorm:"type:text;not null" json:"body"`
	Language  string    `gorm:"type:varchar(5);default:'ru'" json:"language"`
	IsActive  bool      `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"-"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"-"`
}

// Render substitutes {{key}} placeholders with values. Placeholders with
// no matching value are left in the text untouched.
func (t *NotificationTemplate) Render(vars map[string]string) (subject, body string) {
	subject = renderTemplate(t.Subject, vars)
	body = renderTemplate(t.Body, vars)
	return subject, body
}

func renderTemplate(text string, vars map[string]string) string {
	for key, value := range vars {
		text = strings.ReplaceAll(text, "{{"+key+"}}", value)
	}
	return text
}

// UserNotificationSetting gates delivery per user, type and channel. Rows
// are created lazily with the enabled/instant defaults on first query.
type UserNotificationSetting struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_notify_settings" json:"user_id"`
	Type      string    `gorm:"type:varchar(50);not null;uniqueIndex:idx_notify_settings" json:"type"`
	Channel   string    `gorm:"type:varchar(20);not null;uniqueIndex:idx_notify_settings" json:"channel"`
	IsEnabled bool      `gorm:"default:true" json:"is_enabled"`
	Frequency string    `gorm:"type:varchar(20);default:'instant'" json:"frequency" validate:"oneof=instant daily off"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"-"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"-"`
}

// DefaultNotificationSetting returns the implicit setting used until the
// user stores an explicit one.
func DefaultNotificationSetting(userID uint, notifyType, channel string) *UserNotificationSetting {
	return &UserNotificationSetting{
		UserID:    userID,
		Type:      notifyType,
		Channel:   channel,
		IsEnabled: true,
		Frequency: FREQUENCY_INSTANT,
	}
}

type Notification struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"index;not null" json:"user_id"`
	Type      string     `gorm:"type:varchar(50);not null" json:"type"`
	Channel   string     `gorm:"type:varchar(20);not null" json:"channel"`
	Subject   string     `gorm:"type:varchar(200)" json:"subject"`
	Body      string     `gorm:"type:text" json:"body"`
	Data      JSONMap    `gorm:"type:json" json:"data,omitempty"`
	Status    string     `gorm:"type:varchar(20);default:'pending';index" json:"status" validate:"oneof=pending sent failed"`
	Attempts  int        `gorm:"default:0" json:"attempts"`
	SentAt    *time.Time `gorm:"type:timestamp;default:null" json:"sent_at,omitempty"`
	ReadAt    *time.Time `gorm:"type:timestamp;default:null;index" json:"read_at,omitempty"`
	ErrorMsg  string     `gorm:"type:varchar(500);default:null" json:"-"`
	CreatedAt time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// IsRead reports whether the user has opened the notification.
func (n *Notification) IsRead() bool {
	return n.ReadAt != nil
}
