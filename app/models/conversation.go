package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	CONVERSATION_TYPE_USER    = "user_chat"
	CONVERSATION_TYPE_SUPPORT = "support_chat"

	PARTICIPANT_ROLE_MEMBER = "member"
	PARTICIPANT_ROLE_AGENT  = "agent"
)

type Conversation struct {
	ID              uint                      `gorm:"primaryKey" json:"id"`
	EntityID        uint                      `gorm:"uniqueIndex;not null" json:"entity_id"`
	Type            string                    `gorm:"type:varchar(20);default:'user_chat'" json:"type" validate:"oneof=user_chat support_chat"`
	RelatedEntityID *uint                     `gorm:"index" json:"related_entity_id,omitempty"`
	LastMessageDate *time.Time                `gorm:"type:timestamp;default:null;index" json:"last_message_date,omitempty"`
	Participants    []ConversationParticipant `gorm:"foreignKey:ConversationID" json:"participants,omitempty"`
	CreatedAt       time.Time                 `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time                 `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt       gorm.DeletedAt            `gorm:"index" json:"-"`
}

type ConversationParticipant struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	ConversationID uint       `gorm:"not null;uniqueIndex:idx_conv_participant" json:"conversation_id"`
	UserID         uint       `gorm:"not null;uniqueIndex:idx_conv_participant;index" json:"user_id"`
	User           *User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Role           string     `gorm:"type:varchar(20);default:'member'" json:"role" validate:"oneof=member agent"`
	LastReadDate   *time.Time `gorm:"type:timestamp;default:null" json:"last_read_date,omitempty"`
	IsActive       bool       `gorm:"default:true" json:"is_active"`
	CreatedAt      time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

type Message struct {
	ID             uint                `gorm:"primaryKey" json:"id"`
	EntityID       uint                `gorm:"uniqueIndex;not null" json:"entity_id"`
	ConversationID uint                `gorm:"index;not null" json:"conversation_id"`
	SenderID       uint                `gorm:"index;not null" json:"sender_id"`
	Sender         *User               `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
	Body           string              `gorm:"type:text;not null" json:"body" validate:"required,max=5000"`
	Attachments    []MessageAttachment `gorm:"foreignKey:MessageID" json:"attachments,omitempty"`
	CreatedAt      time.Time           `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt      time.Time           `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt      gorm.DeletedAt      `gorm:"index" json:"-"`
}

type MessageAttachment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	MessageID uint      `gorm:"index;not null" json:"message_id"`
	MediaID   uint      `gorm:"index;not null" json:"media_id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
