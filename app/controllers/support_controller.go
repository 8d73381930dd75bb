package controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/zhandosm/baraholka/app/models"
	"github.com/zhandosm/baraholka/app/repository"
	"github.com/zhandosm/baraholka/internal/pkg/apperrors"
	"github.com/zhandosm/baraholka/internal/pkg/pagination"
	"github.com/zhandosm/baraholka/internal/pkg/usercontext"
)

type createTicketRequest struct {
	Subject     string `json:"subject"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
}

// HandleCreateTicket opens a support ticket together with its support
// chat conversation.
func HandleCreateTicket(c *fiber.Ctx) error {
	var req createTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return respondBadRequest(c, "Invalid request body")
	}
	if req.Priority == "" {
		req.Priority = models.TICKET_PRIORITY_MEDIUM
	}

	userCtx := usercontext.Get(c)
	repos := repository.GetGlobalRepositories()

	entity, err := repos.Entity.Create(models.EntityKindTicket)
	if err != nil {
		return respondError(c, err)
	}

	ticket := &models.SupportTicket{
		EntityID:    entity.ID,
		UserID:      userCtx.UserID,
		Subject:     req.Subject,
		Description: req.Description,
		Priority:    req.Priority,
		Status:      models.TICKET_STATUS_OPEN,
	}
	if err := validateStruct(ticket); err != nil {
		return respondValidation(c, err.Error())
	}

	convEntity, err := repos.Entity.Create(models.EntityKindConversation)
	if err != nil {
		return respondError(c, err)
	}
	conv := &models.Conversation{
		EntityID: convEntity.ID,
		Type:     models.CONVERSATION_TYPE_SUPPORT,
	}
	participants := []models.ConversationParticipant{
		{UserID: userCtx.UserID, Role: models.PARTICIPANT_ROLE_MEMBER, IsActive: true},
	}
	if err := repos.Conversation.Create(conv, participants); err != nil {
		return respondError(c, err)
	}
	ticket.ConversationID = &conv.ID

	if err := repos.Support.CreateTicket(ticket); err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"ticket": ticket})
}

// HandleListMyTickets lists the caller's tickets.
func HandleListMyTickets(c *fiber.Ctx) error {
	userCtx := usercontext.Get(c)
	p := pagination.FromRequest(c)

	repos := repository.GetGlobalRepositories()
	tickets, total, err := repos.Support.ListTicketsForUser(userCtx.UserID, p)
	if err != nil {
		return respondError(c, err)
	}
	return respondList(c, tickets, pagination.NewMeta(p, total))
}

// HandleGetTicket returns one ticket. Author or staff only.
func HandleGetTicket(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondBadRequest(c, err.Error())
	}

	userCtx := usercontext.Get(c)
	repos := repository.GetGlobalRepositories()

	ticket, err := repos.Support.GetTicket(id)
	if err != nil {
		return respondError(c, err)
	}
	if ticket.UserID != userCtx.UserID && !userCtx.IsStaff() {
		return respondForbidden(c, "Not your ticket")
	}
	return c.JSON(fiber.Map{"ticket": ticket})
}

type rateTicketRequest struct {
	Score int `json:"score"`
}

// HandleRateTicket records the author's satisfaction score after the
// ticket was resolved or closed. One rating per ticket.
func HandleRateTicket(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondBadRequest(c, err.Error())
	}
	var req rateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return respondBadRequest(c, "Invalid request body")
	}
	if req.Score < 1 || req.Score > 5 {
		return respondValidation(c, "score must be between 1 and 5")
	}

	userCtx := usercontext.Get(c)
	repos := repository.GetGlobalRepositories()

	ticket, err := repos.Support.GetTicket(id)
	if err != nil {
		return respondError(c, err)
	}
	if ticket.UserID != userCtx.UserID {
		return respondForbidden(c, "Not your ticket")
	}
	if !ticket.CanRate() {
		return respondError(c, apperrors.BusinessLogic("ticket cannot be rated"))
	}

	ticket.SatisfactionScore = &req.Score
	if err := repos.Support.UpdateTicket(ticket); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"ticket": ticket})
}

// HandleListFAQ lists FAQ entries, optionally by category or search term.
func HandleListFAQ(c *fiber.Ctx) error {
	repos := repository.GetGlobalRepositories()

	if query := c.Query("q"); query != "" {
		entries, err := repos.Support.SearchFAQ(query)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"data": entries})
	}

	entries, err := repos.Support.ListFAQ(c.Query("category"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"data": entries})
}

// HandleGetFAQ returns one entry and counts the view.
func HandleGetFAQ(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondBadRequest(c, err.Error())
	}

	repos := repository.GetGlobalRepositories()
	faq, err := repos.Support.GetFAQ(id)
	if err != nil {
		return respondError(c, err)
	}
	if err := repos.Support.IncrementFAQView(faq.ID); err != nil {
		log.Warnf("faq view count failed for %d: %v", faq.ID, err)
	}
	return c.JSON(fiber.Map{"faq": faq})
}
