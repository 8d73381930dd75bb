package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MediaFile is an uploaded photo or document attached to an entity.
type MediaFile struct {
	ID                 uint           `gorm:"primaryKey" json:"id"`
	UUID               string         `gorm:"type:char(36) CHARACTER SET utf8 COLLATE utf8_bin;uniqueIndex;not null" json:"uuid"`
	EntityID           uint           `gorm:"index;not null" json:"entity_id"`
	UserID             uint           `gorm:"index;not null" json:"user_id"`
	FilePath           string         `gorm:"type:varchar(255);not null" json:"file_path"`
	FileName           string         `gorm:"type:varchar(255);not null" json:"file_name"`
	FileSize           int64          `gorm:"type:bigint" json:"file_size"`
	FileType           string         `gorm:"type:varchar(50)" json:"file_type"`
	Width              int            `gorm:"type:int" json:"width"`
	Height             int            `gorm:"type:int" json:"height"`
	IsPrimary          bool           `gorm:"default:false" json:"is_primary"`
	SortOrder          int            `gorm:"default:0" json:"sort_order"`
	HasThumbnailSmall  bool           `gorm:"default:false" json:"has_thumbnail_small"`
	HasThumbnailMedium bool           `gorm:"default:false" json:"has_thumbnail_medium"`
	HasWebp            bool           `gorm:"default:false" json:"has_webp"`
	BackedUp           bool           `gorm:"default:false" json:"-"`
	// EXIF metadata
	TakenAt   *time.Time     `gorm:"type:datetime" json:"taken_at,omitempty"`
	Latitude  *float64       `gorm:"type:decimal(10,8)" json:"latitude,omitempty"`
	Longitude *float64       `gorm:"type:decimal(11,8)" json:"longitude,omitempty"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate assigns a UUID when none was set.
func (m *MediaFile) BeforeCreate(tx *gorm.DB) error {
	if m.UUID == "" {
		m.UUID = uuid.New().String()
	}
	return nil
}
