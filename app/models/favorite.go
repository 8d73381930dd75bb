package models

import (
	"time"

	"gorm.io/gorm"
)

// Favorite links a user to any entity. The unique index on (user_id,
// entity_id) covers soft-deleted rows too, so toggling restores the
// existing row instead of inserting a second one.
type Favorite struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    uint           `gorm:"not null;uniqueIndex:idx_favorites_user_entity" json:"user_id"`
	EntityID  uint           `gorm:"not null;uniqueIndex:idx_favorites_user_entity" json:"entity_id"`
	Folder    string         `gorm:"type:varchar(100);default:null" json:"folder,omitempty"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
