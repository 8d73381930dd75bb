package repository

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/zhandosm/baraholka/app/models"
	"github.com/zhandosm/baraholka/internal/pkg/pagination"
)

type notificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository creates a new notification repository instance
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) GetChannels() ([]models.NotificationChannel, error) {
	var channels []models.NotificationChannel
	err := r.db.Where("is_active = ?", true).Find(&channels).Error
	return channels, err
}

// GetTemplate loads the template for a type and channel, falling back to
// Russian when the requested language has none.
func (r *notificationRepository) GetTemplate(notifyType, channel, language string) (*models.NotificationTemplate, error) {
	var tpl models.NotificationTemplate
	err := r.db.Where("type = ? AND channel = ? AND language = ? AND is_active = ?",
		notifyType, channel, language, true).First(&tpl).Error
	if errors.Is(err, gorm.ErrRecordNotFound) && language != "ru" {
		err = r.db.Where("type = ? AND channel = ? AND language = ? AND is_active = ?",
			notifyType, channel, "ru", true).First(&tpl).Error
	}
	if err != nil {
		return nil, err
	}
	return &tpl, nil
}

// GetSetting returns the stored per-user gate, materializing the
// enabled/instant default on first query so later ListSettings calls
// see every type the user was ever gated on.
func (r *notificationRepository) GetSetting(userID uint, notifyType, channel string) (*models.UserNotificationSetting, error) {
	var setting models.UserNotificationSetting
	err := r.db.Where("user_id = ? AND type = ? AND channel = ?", userID, notifyType, channel).
		First(&setting).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		def := models.DefaultNotificationSetting(userID, notifyType, channel)
		if err := r.db.Create(def).Error; err != nil && !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, err
		}
		return def, nil
	}
	if err != nil {
		return nil, err
	}
	return &setting, nil
}

func (r *notificationRepository) SaveSetting(setting *models.UserNotificationSetting) error {
	var existing models.UserNotificationSetting
	err := r.db.Where("user_id = ? AND type = ? AND channel = ?",
		setting.UserID, setting.Type, setting.Channel).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return r.db.Create(setting).Error
	}
	if err != nil {
		return err
	}
	existing.IsEnabled = setting.IsEnabled
	existing.Frequency = setting.Frequency
	*setting = existing
	return r.db.Save(&existing).Error
}

func (r *notificationRepository) ListSettings(userID uint) ([]models.UserNotificationSetting, error) {
	var settings []models.UserNotificationSetting
	err := r.db.Where("user_id = ?", userID).Order("type, channel").Find(&settings).Error
	return settings, err
}

func (r *notificationRepository) Create(n *models.Notification) error {
	return r.db.Create(n).Error
}

func (r *notificationRepository) GetByID(id uint) (*models.Notification, error) {
	var n models.Notification
	if err := r.db.First(&n, id).Error; err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *notificationRepository) Update(n *models.Notification) error {
	return r.db.Save(n).Error
}

func (r *notificationRepository) ListForUser(userID uint, unreadOnly bool, p pagination.Params) ([]models.Notification, int64, error) {
	q := r.db.Model(&models.Notification{}).
		Where("user_id = ? AND channel = ?", userID, models.CHANNEL_IN_APP)
	if unreadOnly {
		q = q.Where("read_at IS NULL")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var notifications []models.Notification
	err := q.Order("created_at DESC").Offset(p.Offset()).Limit(p.PerPage).Find(&notifications).Error
	return notifications, total, err
}

func (r *notificationRepository) CountUnread(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Notification{}).
		Where("user_id = ? AND channel = ? AND read_at IS NULL", userID, models.CHANNEL_IN_APP).
		Count(&count).Error
	return count, err
}

func (r *notificationRepository) MarkRead(userID, id uint) error {
	res := r.db.Model(&models.Notification{}).
		Where("id = ? AND user_id = ? AND read_at IS NULL", id, userID).
		Update("read_at", time.Now())
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *notificationRepository) MarkAllRead(userID uint) error {
	return r.db.Model(&models.Notification{}).
		Where("user_id = ? AND read_at IS NULL", userID).
		Update("read_at", time.Now()).Error
}
