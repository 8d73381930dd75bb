package controllers

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/zhandosm/baraholka/app/models"
	"github.com/zhandosm/baraholka/app/repository"
	"github.com/zhandosm/baraholka/internal/pkg/apperrors"
	"github.com/zhandosm/baraholka/internal/pkg/env"
	"github.com/zhandosm/baraholka/internal/pkg/mail"
	"github.com/zhandosm/baraholka/internal/pkg/sms"
	"github.com/zhandosm/baraholka/internal/pkg/token"
	"github.com/zhandosm/baraholka/internal/pkg/usercontext"
)

const (
	loginAttemptWindow = 15 * time.Minute
	loginAttemptLimit  = 5
)

type registerRequest struct {
	Phone     string  `json:"phone"`
	Email     *string `json:"email"`
	Password  string  `json:"password"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
}

// HandleRegister creates a new account and sends the phone verification code.
func HandleRegister(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return respondBadRequest(c, "Invalid request body")
	}

	repos := repository.GetGlobalRepositories()

	if _, err := repos.User.GetByPhone(req.Phone); err == nil {
		return respondError(c, apperrors.ErrPhoneAlreadyExists)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return respondError(c, err)
	}
	if req.Email != nil && *req.Email != "" {
		if _, err := repos.User.GetByEmail(*req.Email); err == nil {
			return respondError(c, apperrors.ErrEmailAlreadyExists)
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return respondError(c, err)
		}
	}

	user, err := models.CreateUser(req.Phone, req.Email, req.Password, req.FirstName, req.LastName)
	if err != nil {
		return respondValidation(c, err.Error())
	}
	if err := repos.User.Create(user); err != nil {
		return respondError(c, err)
	}

	if err := sendPhoneCode(repos, user); err != nil {
		log.Errorf("[Auth] Failed to send verification code to %s: %v", user.Phone, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"user": user})
}

type loginRequest struct {
	Identity string `json:"identity"`
	Password string `json:"password"`
}

// HandleLogin authenticates by phone or email and issues a token pair.
func HandleLogin(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return respondBadRequest(c, "Invalid request body")
	}

	repos := repository.GetGlobalRepositories()
	ip := GetClientIP(c)

	attempts, err := repos.Auth.CountRecentLoginAttempts(ip, loginAttemptWindow)
	if err != nil {
		return respondError(c, err)
	}
	if attempts >= loginAttemptLimit {
		return respondError(c, apperrors.RateLimit("too many login attempts, try again later"))
	}

	user, err := findUserByIdentity(repos, req.Identity)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			recordFailedLogin(repos, req.Identity, ip)
			return respondError(c, apperrors.ErrInvalidCredentials)
		}
		return respondError(c, err)
	}

	if !user.CheckPassword(req.Password) {
		recordFailedLogin(repos, req.Identity, ip)
		return respondError(c, apperrors.ErrInvalidCredentials)
	}
	if user.IsBlocked {
		return respondError(c, apperrors.Authorization("account is blocked"))
	}

	pair, err := issueTokenPair(repos, user)
	if err != nil {
		return respondError(c, err)
	}

	now := time.Now()
	user.LastLoginAt = &now
	if err := repos.User.Update(user); err != nil {
		log.Errorf("[Auth] Failed to stamp last login for user %d: %v", user.ID, err)
	}

	return c.JSON(fiber.Map{
		"user":          user,
		"access_token":  pair.access,
		"refresh_token": pair.refresh,
		"expires_at":    pair.expiresAt.UTC().Format(time.RFC3339),
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// HandleRefresh rotates a refresh session and mints a new access token.
func HandleRefresh(c *fiber.Ctx) error {
	var req refreshRequest
	if err := c.BodyParser(&req); err != nil || req.RefreshToken == "" {
		return respondBadRequest(c, "Missing refresh token")
	}

	repos := repository.GetGlobalRepositories()

	session, err := repos.Auth.GetRefreshSessionByHash(token.HashRefreshRaw(req.RefreshToken))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return respondError(c, apperrors.Authentication("invalid refresh token"))
		}
		return respondError(c, err)
	}
	if !session.IsUsable() {
		return respondError(c, apperrors.ErrTokenRevoked)
	}

	user, err := repos.User.GetByID(session.UserID)
	if err != nil {
		return respondError(c, err)
	}
	if user.IsBlocked {
		return respondError(c, apperrors.Authorization("account is blocked"))
	}

	// Rotate: the old session dies with the new one minted.
	if err := repos.Auth.RevokeRefreshSession(session.ID); err != nil {
		return respondError(c, err)
	}
	pair, err := issueTokenPair(repos, user)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"access_token":  pair.access,
		"refresh_token": pair.refresh,
		"expires_at":    pair.expiresAt.UTC().Format(time.RFC3339),
	})
}

// HandleLogout revokes the current access token and, when supplied, the
// refresh session.
func HandleLogout(c *fiber.Ctx) error {
	userCtx := usercontext.Get(c)
	repos := repository.GetGlobalRepositories()

	if userCtx.JTI != "" {
		if err := repos.Auth.RevokeToken(userCtx.JTI, userCtx.UserID, time.Now().Add(token.DefaultAccessTTL)); err != nil {
			return respondError(c, err)
		}
	}

	var req refreshRequest
	if err := c.BodyParser(&req); err == nil && req.RefreshToken != "" {
		session, err := repos.Auth.GetRefreshSessionByHash(token.HashRefreshRaw(req.RefreshToken))
		if err == nil && session.UserID == userCtx.UserID {
			if err := repos.Auth.RevokeRefreshSession(session.ID); err != nil {
				log.Errorf("[Auth] Failed to revoke refresh session %d: %v", session.ID, err)
			}
		}
	}

	return c.JSON(fiber.Map{"message": "logged out"})
}

// HandleSendPhoneCode issues a fresh verification code for the caller.
func HandleSendPhoneCode(c *fiber.Ctx) error {
	userCtx := usercontext.Get(c)
	repos := repository.GetGlobalRepositories()

	user, err := repos.User.GetByID(userCtx.UserID)
	if err != nil {
		return respondError(c, err)
	}

	if err := sendPhoneCode(repos, user); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "verification code sent"})
}

type verifyPhoneRequest struct {
	Code string `json:"code"`
}

// HandleVerifyPhone checks the submitted code and advances the user's
// verification status.
func HandleVerifyPhone(c *fiber.Ctx) error {
	var req verifyPhoneRequest
	if err := c.BodyParser(&req); err != nil || req.Code == "" {
		return respondBadRequest(c, "Missing verification code")
	}

	userCtx := usercontext.Get(c)
	repos := repository.GetGlobalRepositories()

	verification, err := repos.Auth.GetActivePhoneVerification(userCtx.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return respondError(c, apperrors.BusinessLogic("no active verification code, request a new one"))
		}
		return respondError(c, err)
	}

	if !verification.CanAttempt() {
		return respondError(c, apperrors.BusinessLogic("verification code expired or attempt limit reached"))
	}

	ok := verification.Check(req.Code)
	if err := repos.Auth.UpdatePhoneVerification(verification); err != nil {
		return respondError(c, err)
	}
	if !ok {
		return respondError(c, apperrors.Validation("incorrect verification code"))
	}

	user, err := repos.User.GetByID(userCtx.UserID)
	if err != nil {
		return respondError(c, err)
	}
	user.MarkPhoneVerified()
	if err := repos.User.Update(user); err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"verification_status": user.VerificationStatus})
}

// HandleSendEmailVerification mails a verification link to the caller.
func HandleSendEmailVerification(c *fiber.Ctx) error {
	userCtx := usercontext.Get(c)
	repos := repository.GetGlobalRepositories()

	user, err := repos.User.GetByID(userCtx.UserID)
	if err != nil {
		return respondError(c, err)
	}
	if user.Email == nil || *user.Email == "" {
		return respondError(c, apperrors.BusinessLogic("no email address on the account"))
	}

	verification, err := models.NewEmailVerification(user.ID, *user.Email)
	if err != nil {
		return respondError(c, err)
	}
	if err := repos.Auth.CreateEmailVerification(verification); err != nil {
		return respondError(c, err)
	}

	link := fmt.Sprintf("%s/api/auth/verify-email?token=%s",
		strings.TrimRight(env.GetEnv("PUBLIC_DOMAIN", "http://localhost:3000"), "/"), verification.Token)
	body := fmt.Sprintf("<p>Confirm your email address by opening this link:</p><p><a href=%q>%s</a></p>", link, link)
	if err := mail.SendMail(*user.Email, "Confirm your email", body); err != nil {
		return respondError(c, apperrors.Wrap(err, "failed to send verification email"))
	}

	return c.JSON(fiber.Map{"message": "verification email sent"})
}

// HandleVerifyEmail consumes an email verification token.
func HandleVerifyEmail(c *fiber.Ctx) error {
	tokenStr := c.Query("token")
	if tokenStr == "" {
		return respondBadRequest(c, "Missing token")
	}

	repos := repository.GetGlobalRepositories()

	verification, err := repos.Auth.GetEmailVerificationByToken(tokenStr)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return respondError(c, apperrors.Validation("invalid verification token"))
		}
		return respondError(c, err)
	}
	if !verification.IsValid() {
		return respondError(c, apperrors.Validation("verification token expired or already used"))
	}

	now := time.Now()
	verification.UsedAt = &now
	if err := repos.Auth.UpdateEmailVerification(verification); err != nil {
		return respondError(c, err)
	}

	user, err := repos.User.GetByID(verification.UserID)
	if err != nil {
		return respondError(c, err)
	}
	user.MarkEmailVerified()
	if err := repos.User.Update(user); err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"verification_status": user.VerificationStatus})
}

type tokenPair struct {
	access    string
	refresh   string
	expiresAt time.Time
}

func issueTokenPair(repos *repository.Repositories, user *models.User) (*tokenPair, error) {
	access, err := token.NewAccessToken(user.ID, user.UserType, user.VerificationStatus, token.DefaultAccessTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := token.NewRefreshToken(token.DefaultRefreshTTL)
	if err != nil {
		return nil, err
	}
	session := &models.RefreshSession{
		UserID:    user.ID,
		TokenHash: token.HashRefreshRaw(refresh.Raw),
		ExpiresAt: refresh.Exp,
	}
	if err := repos.Auth.CreateRefreshSession(session); err != nil {
		return nil, err
	}
	return &tokenPair{access: access.Token, refresh: refresh.Raw, expiresAt: access.Exp}, nil
}

func findUserByIdentity(repos *repository.Repositories, identity string) (*models.User, error) {
	if strings.Contains(identity, "@") {
		return repos.User.GetByEmail(identity)
	}
	return repos.User.GetByPhone(identity)
}

func recordFailedLogin(repos *repository.Repositories, identity, ip string) {
	if err := repos.Auth.RecordLoginAttempt(identity, ip); err != nil {
		log.Errorf("[Auth] Failed to record login attempt: %v", err)
	}
}

func sendPhoneCode(repos *repository.Repositories, user *models.User) error {
	verification, err := models.NewPhoneVerification(user.ID, user.Phone)
	if err != nil {
		return err
	}
	if err := repos.Auth.CreatePhoneVerification(verification); err != nil {
		return err
	}
	if err := sms.SendVerificationCode(user.Phone, verification.Code); err != nil {
		return apperrors.Wrap(err, "failed to send verification code")
	}
	return nil
}
