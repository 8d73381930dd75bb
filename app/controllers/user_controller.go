package controllers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/zhandosm/baraholka/app/models"
	"github.com/zhandosm/baraholka/app/repository"
	"github.com/zhandosm/baraholka/internal/pkg/apperrors"
	"github.com/zhandosm/baraholka/internal/pkg/usercontext"
)

// HandleGetMe returns the authenticated user's account.
func HandleGetMe(c *fiber.Ctx) error {
	userCtx := usercontext.Get(c)
	repos := repository.GetGlobalRepositories()

	user, err := repos.User.GetByID(userCtx.UserID)
	if err != nil {
		return respondError(c, err)
	}
	profile, err := repos.User.GetProfile(user.ID)
	if err != nil {
		return respondError(c, err)
	}
	settings, err := repos.User.GetSettings(user.ID)
	if err != nil {
		return respondError(c, err)
	}

	user.Profile = profile
	user.Settings = settings
	return c.JSON(fiber.Map{"user": user})
}

type updateMeRequest struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Email     *string `json:"email"`
}

// HandleUpdateMe changes the account fields the owner controls. Setting a
// new email drops the email half of the verification status.
func HandleUpdateMe(c *fiber.Ctx) error {
	var req updateMeRequest
	if err := c.BodyParser(&req); err != nil {
		return respondBadRequest(c, "Invalid request body")
	}

	userCtx := usercontext.Get(c)
	repos := repository.GetGlobalRepositories()

	user, err := repos.User.GetByID(userCtx.UserID)
	if err != nil {
		return respondError(c, err)
	}

	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.Email != nil && (user.Email == nil || *req.Email != *user.Email) {
		if *req.Email != "" {
			if _, err := repos.User.GetByEmail(*req.Email); err == nil {
				return respondError(c, apperrors.ErrEmailAlreadyExists)
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return respondError(c, err)
			}
		}
		user.Email = req.Email
		switch user.VerificationStatus {
		case models.VERIFICATION_FULLY_VERIFIED:
			user.VerificationStatus = models.VERIFICATION_PHONE_VERIFIED
		case models.VERIFICATION_EMAIL_VERIFIED:
			user.VerificationStatus = models.VERIFICATION_PENDING
		}
	}

	if err := user.Validate(); err != nil {
		return respondValidation(c, err.Error())
	}
	if err := repos.User.Update(user); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"user": user})
}

// HandleGetUser returns a user's public profile.
func HandleGetUser(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondBadRequest(c, err.Error())
	}

	repos := repository.GetGlobalRepositories()
	user, err := repos.User.GetByID(id)
	if err != nil {
		return respondError(c, err)
	}
	profile, err := repos.User.GetProfile(user.ID)
	if err != nil {
		return respondError(c, err)
	}
	settings, err := repos.User.GetSettings(user.ID)
	if err != nil {
		return respondError(c, err)
	}

	response := fiber.Map{
		"id":                  user.ID,
		"first_name":          user.FirstName,
		"last_name":           user.LastName,
		"user_type":           user.UserType,
		"verification_status": user.VerificationStatus,
		"registered_at":       user.CreatedAt,
		"profile":             profile,
	}
	if settings.ShowPhone {
		response["phone"] = user.Phone
	}
	return c.JSON(response)
}

type updateProfileRequest struct {
	CompanyName *string `json:"company_name"`
	About       *string `json:"about"`
	CityID      *uint   `json:"city_id"`
	AvatarURL   *string `json:"avatar_url"`
}

// HandleUpdateProfile updates the caller's public profile.
func HandleUpdateProfile(c *fiber.Ctx) error {
	var req updateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return respondBadRequest(c, "Invalid request body")
	}

	userCtx := usercontext.Get(c)
	repos := repository.GetGlobalRepositories()

	profile, err := repos.User.GetProfile(userCtx.UserID)
	if err != nil {
		return respondError(c, err)
	}

	if req.CompanyName != nil {
		profile.CompanyName = *req.CompanyName
	}
	if req.About != nil {
		profile.About = *req.About
	}
	if req.CityID != nil {
		if _, err := repos.Catalog.GetCityByID(*req.CityID); err != nil {
			return respondError(c, apperrors.Validation("unknown city"))
		}
		profile.CityID = req.CityID
	}
	if req.AvatarURL != nil {
		profile.AvatarURL = *req.AvatarURL
	}

	if err := repos.User.SaveProfile(profile); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"profile": profile})
}

type updateSettingsRequest struct {
	Language        *string `json:"language"`
	Timezone        *string `json:"timezone"`
	PushEnabled     *bool   `json:"push_enabled"`
	EmailEnabled    *bool   `json:"email_enabled"`
	SMSEnabled      *bool   `json:"sms_enabled"`
	ShowPhone       *bool   `json:"show_phone"`
	ShowOnlineState *bool   `json:"show_online_state"`
}

// HandleUpdateSettings updates the caller's preferences.
func HandleUpdateSettings(c *fiber.Ctx) error {
	var req updateSettingsRequest
	if err := c.BodyParser(&req); err != nil {
		return respondBadRequest(c, "Invalid request body")
	}

	userCtx := usercontext.Get(c)
	repos := repository.GetGlobalRepositories()

	settings, err := repos.User.GetSettings(userCtx.UserID)
	if err != nil {
		return respondError(c, err)
	}

	if req.Language != nil {
		switch *req.Language {
		case "ru", "kk", "en":
			settings.Language = *req.Language
		default:
			return respondValidation(c, "language must be one of ru, kk, en")
		}
	}
	if req.Timezone != nil {
		settings.Timezone = *req.Timezone
	}
	if req.PushEnabled != nil {
		settings.PushEnabled = *req.PushEnabled
	}
	if req.EmailEnabled != nil {
		settings.EmailEnabled = *req.EmailEnabled
	}
	if req.SMSEnabled != nil {
		settings.SMSEnabled = *req.SMSEnabled
	}
	if req.ShowPhone != nil {
		settings.ShowPhone = *req.ShowPhone
	}
	if req.ShowOnlineState != nil {
		settings.ShowOnlineState = *req.ShowOnlineState
	}

	if err := repos.User.SaveSettings(settings); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"settings": settings})
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// HandleChangePassword verifies the current password, sets the new one and
// revokes every other session.
func HandleChangePassword(c *fiber.Ctx) error {
	var req changePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return respondBadRequest(c, "Invalid request body")
	}
	if len(req.NewPassword) < 6 {
		return respondValidation(c, "password must be at least 6 characters")
	}

	userCtx := usercontext.Get(c)
	repos := repository.GetGlobalRepositories()

	user, err := repos.User.GetByID(userCtx.UserID)
	if err != nil {
		return respondError(c, err)
	}
	if !user.CheckPassword(req.CurrentPassword) {
		return respondError(c, apperrors.Authentication("current password is incorrect"))
	}
	if err := user.SetPassword(req.NewPassword); err != nil {
		return respondError(c, err)
	}
	if err := repos.User.Update(user); err != nil {
		return respondError(c, err)
	}
	if err := repos.Auth.RevokeUserSessions(user.ID); err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"message": "password changed"})
}

type registerDeviceRequest struct {
	Platform   string `json:"platform"`
	PushToken  string `json:"push_token"`
	DeviceName string `json:"device_name"`
}

// HandleRegisterDevice stores or refreshes a push token for the caller.
func HandleRegisterDevice(c *fiber.Ctx) error {
	var req registerDeviceRequest
	if err := c.BodyParser(&req); err != nil || req.PushToken == "" {
		return respondBadRequest(c, "Missing push token")
	}
	switch req.Platform {
	case models.DEVICE_PLATFORM_IOS, models.DEVICE_PLATFORM_ANDROID, models.DEVICE_PLATFORM_WEB:
	default:
		return respondValidation(c, "platform must be one of ios, android, web")
	}

	userCtx := usercontext.Get(c)
	repos := repository.GetGlobalRepositories()

	device := &models.DeviceRegistration{
		UserID:     userCtx.UserID,
		Platform:   req.Platform,
		PushToken:  req.PushToken,
		DeviceName: req.DeviceName,
		IsActive:   true,
		LastSeenAt: time.Now(),
	}
	if err := repos.User.RegisterDevice(device); err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"device": device})
}

type unregisterDeviceRequest struct {
	PushToken string `json:"push_token"`
}

// HandleUnregisterDevice deactivates a push token.
func HandleUnregisterDevice(c *fiber.Ctx) error {
	var req unregisterDeviceRequest
	if err := c.BodyParser(&req); err != nil || req.PushToken == "" {
		return respondBadRequest(c, "Missing push token")
	}

	userCtx := usercontext.Get(c)
	repos := repository.GetGlobalRepositories()

	if err := repos.User.DeactivateDevice(userCtx.UserID, req.PushToken); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "device unregistered"})
}
