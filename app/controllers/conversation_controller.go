package controllers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/zhandosm/baraholka/app/models"
	"github.com/zhandosm/baraholka/app/repository"
	"github.com/zhandosm/baraholka/internal/pkg/apperrors"
	"github.com/zhandosm/baraholka/internal/pkg/jobqueue"
	"github.com/zhandosm/baraholka/internal/pkg/pagination"
	"github.com/zhandosm/baraholka/internal/pkg/usercontext"
)

type startConversationRequest struct {
	RecipientID uint   `json:"recipient_id"`
	ListingID   *uint  `json:"listing_id"`
	Message     string `json:"message"`
}

// HandleStartConversation opens a user chat with another user, optionally
// about a listing. An existing chat between the same pair about the same
// subject is returned instead of creating a duplicate.
func HandleStartConversation(c *fiber.Ctx) error {
	var req startConversationRequest
	if err := c.BodyParser(&req); err != nil {
		return respondBadRequest(c, "Invalid request body")
	}

	userCtx := usercontext.Get(c)
	repos := repository.GetGlobalRepositories()

	if req.RecipientID == userCtx.UserID {
		return respondError(c, apperrors.BusinessLogic("cannot start a conversation with yourself"))
	}
	recipient, err := repos.User.GetByID(req.RecipientID)
	if err != nil {
		return respondError(c, err)
	}
	if recipient.IsBlocked {
		return respondError(c, apperrors.BusinessLogic("recipient is not available"))
	}

	var relatedEntityID *uint
	if req.ListingID != nil {
		listing, err := repos.Listing.GetByID(*req.ListingID)
		if err != nil {
			return respondError(c, err)
		}
		relatedEntityID = &listing.EntityID
	}

	conv, err := repos.Conversation.FindUserChat(userCtx.UserID, recipient.ID, relatedEntityID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return respondError(c, err)
	}

	created := false
	if conv == nil || errors.Is(err, gorm.ErrRecordNotFound) {
		entity, err := repos.Entity.Create(models.EntityKindConversation)
		if err != nil {
			return respondError(c, err)
		}
		conv = &models.Conversation{
			EntityID:        entity.ID,
			Type:            models.CONVERSATION_TYPE_USER,
			RelatedEntityID: relatedEntityID,
		}
		participants := []models.ConversationParticipant{
			{UserID: userCtx.UserID, Role: models.PARTICIPANT_ROLE_MEMBER, IsActive: true},
			{UserID: recipient.ID, Role: models.PARTICIPANT_ROLE_MEMBER, IsActive: true},
		}
		if err := repos.Conversation.Create(conv, participants); err != nil {
			return respondError(c, err)
		}
		created = true
	}

	if req.Message != "" {
		if _, err := postMessage(repos, conv, userCtx.UserID, req.Message); err != nil {
			return respondError(c, err)
		}
	}

	status := fiber.StatusOK
	if created {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(fiber.Map{"conversation": conv})
}

// HandleListConversations lists the caller's chats with unread counts.
func HandleListConversations(c *fiber.Ctx) error {
	userCtx := usercontext.Get(c)
	p := pagination.FromRequest(c)

	repos := repository.GetGlobalRepositories()
	conversations, total, err := repos.Conversation.ListForUser(userCtx.UserID, p)
	if err != nil {
		return respondError(c, err)
	}

	items := make([]fiber.Map, 0, len(conversations))
	for _, conv := range conversations {
		var lastRead *time.Time
		for _, part := range conv.Participants {
			if part.UserID == userCtx.UserID {
				lastRead = part.LastReadDate
			}
		}
		unread, err := repos.Conversation.CountUnread(conv.ID, userCtx.UserID, lastRead)
		if err != nil {
			return respondError(c, err)
		}
		items = append(items, fiber.Map{"conversation": conv, "unread_count": unread})
	}
	return respondList(c, items, pagination.NewMeta(p, total))
}

// HandleGetMessages returns a page of messages. Participants only.
func HandleGetMessages(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondBadRequest(c, err.Error())
	}

	userCtx := usercontext.Get(c)
	repos := repository.GetGlobalRepositories()

	if _, err := requireParticipant(repos, id, userCtx.UserID); err != nil {
		return respondError(c, err)
	}

	p := pagination.FromRequest(c)
	messages, total, err := repos.Conversation.GetMessages(id, p)
	if err != nil {
		return respondError(c, err)
	}
	return respondList(c, messages, pagination.NewMeta(p, total))
}

type sendMessageRequest struct {
	Body string `json:"body"`
}

// HandleSendMessage posts a message, bumps the conversation's last
// message date and notifies the other participants.
func HandleSendMessage(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondBadRequest(c, err.Error())
	}
	var req sendMessageRequest
	if err := c.BodyParser(&req); err != nil || req.Body == "" {
		return respondBadRequest(c, "Message body is required")
	}

	userCtx := usercontext.Get(c)
	repos := repository.GetGlobalRepositories()

	if _, err := requireParticipant(repos, id, userCtx.UserID); err != nil {
		return respondError(c, err)
	}
	conv, err := repos.Conversation.GetByID(id)
	if err != nil {
		return respondError(c, err)
	}

	msg, err := postMessage(repos, conv, userCtx.UserID, req.Body)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": msg})
}

// HandleMarkRead stamps the caller's last read date on the conversation.
func HandleMarkRead(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondBadRequest(c, err.Error())
	}

	userCtx := usercontext.Get(c)
	repos := repository.GetGlobalRepositories()

	participant, err := requireParticipant(repos, id, userCtx.UserID)
	if err != nil {
		return respondError(c, err)
	}

	now := time.Now()
	participant.LastReadDate = &now
	if err := repos.Conversation.UpdateParticipant(participant); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "conversation marked read"})
}

// HandleLeaveConversation deactivates the caller's participation.
func HandleLeaveConversation(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondBadRequest(c, err.Error())
	}

	userCtx := usercontext.Get(c)
	repos := repository.GetGlobalRepositories()

	participant, err := requireParticipant(repos, id, userCtx.UserID)
	if err != nil {
		return respondError(c, err)
	}
	participant.IsActive = false
	if err := repos.Conversation.UpdateParticipant(participant); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "left conversation"})
}

// requireParticipant loads the caller's active participant row, mapping
// absence to an authorization error so outsiders cannot probe which
// conversation ids exist.
func requireParticipant(repos *repository.Repositories, conversationID, userID uint) (*models.ConversationParticipant, error) {
	participant, err := repos.Conversation.GetParticipant(conversationID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Authorization("not a participant of this conversation")
		}
		return nil, err
	}
	if !participant.IsActive {
		return nil, apperrors.Authorization("not a participant of this conversation")
	}
	return participant, nil
}

// postMessage stores a message and fans out new_message notifications to
// the other active participants.
func postMessage(repos *repository.Repositories, conv *models.Conversation, senderID uint, body string) (*models.Message, error) {
	entity, err := repos.Entity.Create(models.EntityKindMessage)
	if err != nil {
		return nil, err
	}
	msg := &models.Message{
		EntityID:       entity.ID,
		ConversationID: conv.ID,
		SenderID:       senderID,
		Body:           body,
	}
	if len(body) > 5000 {
		return nil, apperrors.Validation("message body must be at most 5000 characters")
	}
	if err := repos.Conversation.CreateMessage(msg); err != nil {
		return nil, err
	}
	if err := repos.Conversation.TouchLastMessage(conv.ID, msg.CreatedAt); err != nil {
		log.Warnf("last message date update failed for conversation %d: %v", conv.ID, err)
	}

	sender, err := repos.User.GetByID(senderID)
	if err != nil {
		return msg, nil
	}
	conversation, err := repos.Conversation.GetByID(conv.ID)
	if err != nil {
		return msg, nil
	}
	queue := jobqueue.GetManager().GetQueue()
	for _, part := range conversation.Participants {
		if part.UserID == senderID || !part.IsActive {
			continue
		}
		payload := jobqueue.SendNotificationJobPayload{
			UserID: part.UserID,
			Type:   models.NOTIFY_TYPE_NEW_MESSAGE,
			Variables: map[string]string{
				"sender_name": sender.FirstName,
			},
			EntityID: conv.EntityID,
		}
		if _, err := queue.EnqueueJob(jobqueue.JobTypeSendNotification, payload.ToMap()); err != nil {
			log.Warnf("new message notification enqueue failed: %v", err)
		}
	}
	return msg, nil
}
