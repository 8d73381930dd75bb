package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/zhandosm/baraholka/app/models"
	"github.com/zhandosm/baraholka/app/repository"
	"github.com/zhandosm/baraholka/internal/pkg/pagination"
	"github.com/zhandosm/baraholka/internal/pkg/usercontext"
)

// HandleListNotifications lists the caller's in-app feed, newest first.
func HandleListNotifications(c *fiber.Ctx) error {
	userCtx := usercontext.Get(c)
	p := pagination.FromRequest(c)
	unreadOnly := c.QueryBool("unread", false)

	repos := repository.GetGlobalRepositories()
	notifications, total, err := repos.Notification.ListForUser(userCtx.UserID, unreadOnly, p)
	if err != nil {
		return respondError(c, err)
	}
	return respondList(c, notifications, pagination.NewMeta(p, total))
}

func HandleUnreadCount(c *fiber.Ctx) error {
	userCtx := usercontext.Get(c)
	repos := repository.GetGlobalRepositories()

	count, err := repos.Notification.CountUnread(userCtx.UserID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"unread_count": count})
}

func HandleMarkNotificationRead(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondBadRequest(c, err.Error())
	}

	userCtx := usercontext.Get(c)
	repos := repository.GetGlobalRepositories()

	if err := repos.Notification.MarkRead(userCtx.UserID, id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "notification marked read"})
}

func HandleMarkAllNotificationsRead(c *fiber.Ctx) error {
	userCtx := usercontext.Get(c)
	repos := repository.GetGlobalRepositories()

	if err := repos.Notification.MarkAllRead(userCtx.UserID); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "all notifications marked read"})
}

// HandleListNotificationSettings returns the caller's stored per-type
// overrides. Types without a row use the enabled/instant defaults.
func HandleListNotificationSettings(c *fiber.Ctx) error {
	userCtx := usercontext.Get(c)
	repos := repository.GetGlobalRepositories()

	settings, err := repos.Notification.ListSettings(userCtx.UserID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"data": settings})
}

type notificationSettingRequest struct {
	Type      string `json:"type"`
	Channel   string `json:"channel"`
	IsEnabled *bool  `json:"is_enabled"`
	Frequency string `json:"frequency"`
}

// HandleUpdateNotificationSetting upserts one per-type, per-channel gate.
func HandleUpdateNotificationSetting(c *fiber.Ctx) error {
	var req notificationSettingRequest
	if err := c.BodyParser(&req); err != nil {
		return respondBadRequest(c, "Invalid request body")
	}
	if req.Type == "" {
		return respondValidation(c, "type is required")
	}
	switch req.Channel {
	case models.CHANNEL_PUSH, models.CHANNEL_EMAIL, models.CHANNEL_SMS, models.CHANNEL_IN_APP:
	default:
		return respondValidation(c, "channel must be one of push, email, sms, in_app")
	}
	if req.Frequency != "" {
		switch req.Frequency {
		case models.FREQUENCY_INSTANT, models.FREQUENCY_DAILY, models.FREQUENCY_OFF:
		default:
			return respondValidation(c, "frequency must be one of instant, daily, off")
		}
	}

	userCtx := usercontext.Get(c)
	repos := repository.GetGlobalRepositories()

	setting, err := repos.Notification.GetSetting(userCtx.UserID, req.Type, req.Channel)
	if err != nil {
		return respondError(c, err)
	}
	if req.IsEnabled != nil {
		setting.IsEnabled = *req.IsEnabled
	}
	if req.Frequency != "" {
		setting.Frequency = req.Frequency
	}
	if err := repos.Notification.SaveSetting(setting); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"setting": setting})
}
