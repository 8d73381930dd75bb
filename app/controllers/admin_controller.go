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
	"github.com/zhandosm/baraholka/internal/pkg/cache"
	"github.com/zhandosm/baraholka/internal/pkg/database"
	"github.com/zhandosm/baraholka/internal/pkg/jobqueue"
	"github.com/zhandosm/baraholka/internal/pkg/pagination"
	"github.com/zhandosm/baraholka/internal/pkg/usercontext"
)

// HandleAdminDashboard returns today's and this month's headline numbers.
func HandleAdminDashboard(c *fiber.Ctx) error {
	repos := repository.GetGlobalRepositories()

	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	usersToday, err := repos.User.CountSince(today)
	if err != nil {
		return respondError(c, err)
	}
	usersMonth, err := repos.User.CountSince(monthStart)
	if err != nil {
		return respondError(c, err)
	}
	listingsToday, err := repos.Listing.CountSince(today)
	if err != nil {
		return respondError(c, err)
	}
	listingsMonth, err := repos.Listing.CountSince(monthStart)
	if err != nil {
		return respondError(c, err)
	}
	revenueToday, err := repos.Payment.SumByTypeSince(models.TRANSACTION_TYPE_PAYMENT, today)
	if err != nil {
		return respondError(c, err)
	}
	revenueMonth, err := repos.Payment.SumByTypeSince(models.TRANSACTION_TYPE_PAYMENT, monthStart)
	if err != nil {
		return respondError(c, err)
	}
	pendingModeration, err := repos.Moderation.CountQueue(models.MODERATION_STATUS_PENDING)
	if err != nil {
		return respondError(c, err)
	}
	pendingReports, err := repos.Moderation.CountReports(models.REPORT_STATUS_PENDING)
	if err != nil {
		return respondError(c, err)
	}
	openTickets, err := repos.Support.CountTickets(models.TICKET_STATUS_OPEN)
	if err != nil {
		return respondError(c, err)
	}
	avgResolution, err := repos.Support.AvgResolutionHours()
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"users":      fiber.Map{"today": usersToday, "month": usersMonth},
		"listings":   fiber.Map{"today": listingsToday, "month": listingsMonth},
		"revenue":    fiber.Map{"today": revenueToday, "month": revenueMonth},
		"moderation": fiber.Map{"pending": pendingModeration},
		"reports":    fiber.Map{"pending": pendingReports},
		"tickets":    fiber.Map{"open": openTickets, "avg_resolution_hours": avgResolution},
	})
}

// HandleListModerationQueue lists review items by status and priority.
func HandleListModerationQueue(c *fiber.Ctx) error {
	p := pagination.FromRequest(c)
	repos := repository.GetGlobalRepositories()

	items, total, err := repos.Moderation.ListQueue(
		c.Query("status", models.MODERATION_STATUS_PENDING), c.Query("priority"), p)
	if err != nil {
		return respondError(c, err)
	}
	return respondList(c, items, pagination.NewMeta(p, total))
}

type moderateRequest struct {
	Decision string `json:"decision"`
	Reason   string `json:"reason"`
}

// HandleModerate decides a queue item. Approve publishes the listing,
// reject stores the reason on it; either way the owner is notified.
func HandleModerate(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondBadRequest(c, err.Error())
	}
	var req moderateRequest
	if err := c.BodyParser(&req); err != nil {
		return respondBadRequest(c, "Invalid request body")
	}

	userCtx := usercontext.Get(c)
	repos := repository.GetGlobalRepositories()

	item, err := repos.Moderation.GetQueueItem(id)
	if err != nil {
		return respondError(c, err)
	}
	if item.IsTerminal() {
		return respondError(c, apperrors.BusinessLogic("queue item is already decided"))
	}

	listing, err := repos.Listing.GetByID(item.ListingID)
	if err != nil {
		return respondError(c, err)
	}

	now := time.Now()
	var notifyType string
	switch req.Decision {
	case "approve":
		item.Status = models.MODERATION_STATUS_APPROVED
		listing.Publish(now)
		notifyType = models.NOTIFY_TYPE_LISTING_APPROVED
	case "reject":
		if req.Reason == "" {
			return respondValidation(c, "reason is required when rejecting")
		}
		item.Status = models.MODERATION_STATUS_REJECTED
		item.Reason = req.Reason
		listing.Reject(req.Reason)
		notifyType = models.NOTIFY_TYPE_LISTING_REJECTED
	default:
		return respondValidation(c, "decision must be approve or reject")
	}

	moderatorID := userCtx.UserID
	item.ModeratorID = &moderatorID
	item.ReviewedAt = &now

	if err := repos.Listing.Update(listing); err != nil {
		return respondError(c, err)
	}
	if err := repos.Moderation.UpdateQueueItem(item); err != nil {
		return respondError(c, err)
	}

	payload := jobqueue.SendNotificationJobPayload{
		UserID: listing.UserID,
		Type:   notifyType,
		Variables: map[string]string{
			"listing_title": listing.Title,
			"reason":        req.Reason,
		},
		EntityID: listing.EntityID,
	}
	if _, err := jobqueue.GetManager().GetQueue().EnqueueJob(jobqueue.JobTypeSendNotification, payload.ToMap()); err != nil {
		log.Warnf("moderation notification enqueue failed: %v", err)
	}

	return c.JSON(fiber.Map{"item": item, "listing": listing})
}

// HandleListReports lists content reports by status and reason.
func HandleListReports(c *fiber.Ctx) error {
	p := pagination.FromRequest(c)
	repos := repository.GetGlobalRepositories()

	reports, total, err := repos.Moderation.ListReports(
		c.Query("status", models.REPORT_STATUS_PENDING), c.Query("reason"), p)
	if err != nil {
		return respondError(c, err)
	}
	return respondList(c, reports, pagination.NewMeta(p, total))
}

type resolveReportRequest struct {
	Action     string `json:"action"`
	Resolution string `json:"resolution"`
}

// HandleResolveReport closes a report. Resolving applies the side effect
// its reason calls for: spam, fraud and inappropriate take the listing
// down, duplicate sends it back through moderation. Dismissing closes
// the report with no side effect.
func HandleResolveReport(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondBadRequest(c, err.Error())
	}
	var req resolveReportRequest
	if err := c.BodyParser(&req); err != nil {
		return respondBadRequest(c, "Invalid request body")
	}
	if req.Action != "resolve" && req.Action != "dismiss" {
		return respondValidation(c, "action must be resolve or dismiss")
	}

	userCtx := usercontext.Get(c)
	repos := repository.GetGlobalRepositories()

	report, err := repos.Moderation.GetReport(id)
	if err != nil {
		return respondError(c, err)
	}
	if report.Status == models.REPORT_STATUS_RESOLVED {
		return respondError(c, apperrors.Conflict("report is already resolved"))
	}

	if req.Action == "resolve" {
		if err := applyReportSideEffect(repos, report); err != nil {
			return respondError(c, err)
		}
	}

	now := time.Now()
	resolverID := userCtx.UserID
	report.Status = models.REPORT_STATUS_RESOLVED
	report.ResolvedBy = &resolverID
	report.Resolution = req.Resolution
	report.ResolvedAt = &now
	if err := repos.Moderation.UpdateReport(report); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"report": report})
}

func applyReportSideEffect(repos *repository.Repositories, report *models.ReportedContent) error {
	listing, err := repos.Listing.GetByEntityID(report.EntityID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	if report.RequiresTakedown() {
		return repos.Listing.SoftDelete(listing.ID)
	}
	if report.Reason == models.REPORT_REASON_DUPLICATE {
		if existing, err := repos.Moderation.GetPendingByListing(listing.ID); err == nil && existing != nil {
			return nil
		}
		listing.Status = models.LISTING_STATUS_MODERATION
		if err := repos.Listing.Update(listing); err != nil {
			return err
		}
		return repos.Moderation.Enqueue(&models.ModerationQueue{
			EntityID:  listing.EntityID,
			ListingID: listing.ID,
			Status:    models.MODERATION_STATUS_PENDING,
			Priority:  models.MODERATION_PRIORITY_HIGH,
		})
	}
	return nil
}

// HandleAdminListUsers lists or searches users.
func HandleAdminListUsers(c *fiber.Ctx) error {
	p := pagination.FromRequest(c)
	repos := repository.GetGlobalRepositories()

	var (
		users []models.User
		total int64
		err   error
	)
	if query := c.Query("q"); query != "" {
		users, total, err = repos.User.Search(query, p)
	} else {
		users, total, err = repos.User.List(p)
	}
	if err != nil {
		return respondError(c, err)
	}
	return respondList(c, users, pagination.NewMeta(p, total))
}

type adminUserActionRequest struct {
	Action   string `json:"action"`
	UserType string `json:"user_type"`
}

// HandleAdminUserAction blocks, unblocks or changes the type of a user.
// Blocking cascades: the user's active listings are taken down and all
// sessions revoked. Admins cannot act on themselves.
func HandleAdminUserAction(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondBadRequest(c, err.Error())
	}
	var req adminUserActionRequest
	if err := c.BodyParser(&req); err != nil {
		return respondBadRequest(c, "Invalid request body")
	}

	userCtx := usercontext.Get(c)
	if id == userCtx.UserID {
		return respondError(c, apperrors.BusinessLogic("cannot act on your own account"))
	}

	repos := repository.GetGlobalRepositories()
	user, err := repos.User.GetByID(id)
	if err != nil {
		return respondError(c, err)
	}

	switch req.Action {
	case "block":
		user.IsBlocked = true
		if err := repos.Auth.RevokeUserSessions(user.ID); err != nil {
			return respondError(c, err)
		}
		if err := deactivateUserListings(repos, user.ID); err != nil {
			return respondError(c, err)
		}
	case "unblock":
		user.IsBlocked = false
	case "set_type":
		switch req.UserType {
		case models.USER_TYPE_REGULAR, models.USER_TYPE_PRO, models.USER_TYPE_DEALER, models.USER_TYPE_MODERATOR:
		default:
			return respondValidation(c, "user_type must be one of regular, pro, dealer, moderator")
		}
		user.UserType = req.UserType
	default:
		return respondValidation(c, "action must be one of block, unblock, set_type")
	}

	if err := repos.User.Update(user); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"user": user})
}

func deactivateUserListings(repos *repository.Repositories, userID uint) error {
	filter := repository.ListingSearchFilter{
		UserID: &userID,
		Status: models.LISTING_STATUS_ACTIVE,
	}
	p := pagination.Params{Page: 1, PerPage: pagination.MaxPerPage}
	for {
		listings, _, err := repos.Listing.Search(filter, p)
		if err != nil {
			return err
		}
		if len(listings) == 0 {
			return nil
		}
		for i := range listings {
			listings[i].Status = models.LISTING_STATUS_DRAFT
			if err := repos.Listing.Update(&listings[i]); err != nil {
				return err
			}
		}
	}
}

// HandleAdminListTickets lists support tickets across all users.
func HandleAdminListTickets(c *fiber.Ctx) error {
	p := pagination.FromRequest(c)
	repos := repository.GetGlobalRepositories()

	tickets, total, err := repos.Support.ListTickets(c.Query("status"), p)
	if err != nil {
		return respondError(c, err)
	}
	return respondList(c, tickets, pagination.NewMeta(p, total))
}

type updateTicketRequest struct {
	Status     string `json:"status"`
	AssignToID *uint  `json:"assign_to_id"`
}

// HandleAdminUpdateTicket moves a ticket through its state machine and
// assigns it. The first staff touch stamps first_response_at; resolving
// stamps resolved_at and notifies the author.
func HandleAdminUpdateTicket(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondBadRequest(c, err.Error())
	}
	var req updateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return respondBadRequest(c, "Invalid request body")
	}

	repos := repository.GetGlobalRepositories()
	ticket, err := repos.Support.GetTicket(id)
	if err != nil {
		return respondError(c, err)
	}

	now := time.Now()
	if ticket.FirstResponseAt == nil {
		ticket.FirstResponseAt = &now
	}
	if req.AssignToID != nil {
		if _, err := repos.User.GetByID(*req.AssignToID); err != nil {
			return respondError(c, apperrors.Validation("unknown assignee"))
		}
		ticket.AssignedToID = req.AssignToID
	}

	resolved := false
	if req.Status != "" && req.Status != ticket.Status {
		if !ticket.CanTransitionTo(req.Status) {
			return respondError(c, apperrors.BusinessLogic(
				"cannot move ticket from "+ticket.Status+" to "+req.Status))
		}
		ticket.Status = req.Status
		if req.Status == models.TICKET_STATUS_RESOLVED {
			ticket.ResolvedAt = &now
			resolved = true
		}
	}

	if err := repos.Support.UpdateTicket(ticket); err != nil {
		return respondError(c, err)
	}

	if resolved {
		payload := jobqueue.SendNotificationJobPayload{
			UserID: ticket.UserID,
			Type:   models.NOTIFY_TYPE_TICKET_REPLY,
			Variables: map[string]string{
				"ticket_subject": ticket.Subject,
			},
			EntityID: ticket.EntityID,
		}
		if _, err := jobqueue.GetManager().GetQueue().EnqueueJob(jobqueue.JobTypeSendNotification, payload.ToMap()); err != nil {
			log.Warnf("ticket notification enqueue failed: %v", err)
		}
	}

	return c.JSON(fiber.Map{"ticket": ticket})
}

// HandleHealth is the unauthenticated liveness probe.
func HandleHealth(c *fiber.Ctx) error {
	if err := database.Ping(); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "down"})
	}
	return c.JSON(fiber.Map{"status": "ok"})
}

// HandleSystemHealth reports the state of the backing services and the
// job queue.
func HandleSystemHealth(c *fiber.Ctx) error {
	dbStatus := "ok"
	if err := database.Ping(); err != nil {
		dbStatus = "down"
	}
	cacheStatus := "ok"
	if err := cache.Ping(); err != nil {
		cacheStatus = "down"
	}

	manager := jobqueue.GetManager()
	queue := manager.GetQueue()
	ctx := c.UserContext()
	queueInfo := fiber.Map{"running": manager.IsRunning()}
	if size, err := queue.GetQueueSize(ctx); err == nil {
		queueInfo["pending"] = size
	}
	if size, err := queue.GetProcessingSize(ctx); err == nil {
		queueInfo["processing"] = size
	}
	if stats, err := queue.GetJobStats(ctx); err == nil {
		queueInfo["stats"] = stats
	}

	status := fiber.StatusOK
	if dbStatus != "ok" {
		status = fiber.StatusServiceUnavailable
	}
	return c.Status(status).JSON(fiber.Map{
		"database": dbStatus,
		"cache":    cacheStatus,
		"queue":    queueInfo,
	})
}
