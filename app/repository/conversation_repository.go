package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/zhandosm/baraholka/app/models"
	"github.com/zhandosm/baraholka/internal/pkg/pagination"
)

type conversationRepository struct {
	db *gorm.DB
}

// NewConversationRepository creates a new conversation repository instance
func NewConversationRepository(db *gorm.DB) ConversationRepository {
	return &conversationRepository{db: db}
}

func (r *conversationRepository) Create(conv *models.Conversation, participants []models.ConversationParticipant) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(conv).Error; err != nil {
			return err
		}
		for i := range participants {
			participants[i].ConversationID = conv.ID
		}
		if err := tx.Create(&participants).Error; err != nil {
			return err
		}
		conv.Participants = participants
		return nil
	})
}

func (r *conversationRepository) GetByID(id uint) (*models.Conversation, error) {
	var conv models.Conversation
	err := r.db.Preload("Participants").Preload("Participants.User").First(&conv, id).Error
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

// FindUserChat returns an existing chat between two users about the same
// entity, if any. Creating a second one is not allowed.
func (r *conversationRepository) FindUserChat(userA, userB uint, relatedEntityID *uint) (*models.Conversation, error) {
	q := r.db.Model(&models.Conversation{}).
		Joins("JOIN conversation_participants pa ON pa.conversation_id = conversations.id AND pa.user_id = ?", userA).
		Joins("JOIN conversation_participants pb ON pb.conversation_id = conversations.id AND pb.user_id = ?", userB).
		Where("conversations.type = ?", models.CONVERSATION_TYPE_USER)
	if relatedEntityID != nil {
		q = q.Where("conversations.related_entity_id = ?", *relatedEntityID)
	} else {
		q = q.Where("conversations.related_entity_id IS NULL")
	}

	var conv models.Conversation
	if err := q.First(&conv).Error; err != nil {
		return nil, err
	}
	return r.GetByID(conv.ID)
}

func (r *conversationRepository) ListForUser(userID uint, p pagination.Params) ([]models.Conversation, int64, error) {
	q := r.db.Model(&models.Conversation{}).
		Joins("JOIN conversation_participants cp ON cp.conversation_id = conversations.id").
		Where("cp.user_id = ? AND cp.is_active = ?", userID, true)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var convs []models.Conversation
	err := q.Preload("Participants").Preload("Participants.User").
		Order("conversations.last_message_date DESC").
		Offset(p.Offset()).Limit(p.PerPage).Find(&convs).Error
	return convs, total, err
}

func (r *conversationRepository) GetParticipant(conversationID, userID uint) (*models.ConversationParticipant, error) {
	var part models.ConversationParticipant
	err := r.db.Where("conversation_id = ? AND user_id = ?", conversationID, userID).First(&part).Error
	if err != nil {
		return nil, err
	}
	return &part, nil
}

func (r *conversationRepository) UpdateParticipant(part *models.ConversationParticipant) error {
	return r.db.Save(part).Error
}

func (r *conversationRepository) CreateMessage(msg *models.Message) error {
	return r.db.Create(msg).Error
}

func (r *conversationRepository) GetMessages(conversationID uint, p pagination.Params) ([]models.Message, int64, error) {
	q := r.db.Model(&models.Message{}).Where("conversation_id = ?", conversationID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var messages []models.Message
	err := q.Preload("Sender").Preload("Attachments").
		Order("created_at DESC").
		Offset(p.Offset()).Limit(p.PerPage).Find(&messages).Error
	return messages, total, err
}

func (r *conversationRepository) SoftDeleteMessage(id uint) error {
	return r.db.Delete(&models.Message{}, id).Error
}

// CountUnread counts messages from other senders newer than the
// participant's last read stamp.
func (r *conversationRepository) CountUnread(conversationID, userID uint, lastRead *time.Time) (int64, error) {
	q := r.db.Model(&models.Message{}).
		Where("conversation_id = ? AND sender_id <> ?", conversationID, userID)
	if lastRead != nil {
		q = q.Where("created_at > ?", *lastRead)
	}
	var count int64
	err := q.Count(&count).Error
	return count, err
}

func (r *conversationRepository) TouchLastMessage(conversationID uint, at time.Time) error {
	return r.db.Model(&models.Conversation{}).Where("id = ?", conversationID).
		Update("last_message_date", at).Error
}
