package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/zhandosm/baraholka/app/repository"
	"github.com/zhandosm/baraholka/internal/pkg/token"
	"github.com/zhandosm/baraholka/internal/pkg/usercontext"
)

// RequireAuth validates the bearer token, checks the revocation list and
// populates the user context. Returns JSON 401 on failure.
func RequireAuth(c *fiber.Ctx) error {
	raw := bearerToken(c)
	if raw == "" {
		return unauthorized(c, "authorization token required")
	}

	claims, err := token.ParseAccessToken(raw)
	if err != nil {
		if errors.Is(err, token.ErrExpiredToken) {
			return unauthorized(c, "token expired")
		}
		return unauthorized(c, "invalid token")
	}

	revoked, err := repository.GetGlobalFactory().GetAuthRepository().IsTokenRevoked(claims.JTI)
	if err == nil && revoked {
		return unauthorized(c, "token revoked")
	}

	usercontext.Set(c, usercontext.UserContext{
		UserID:   claims.UserID,
		UserType: claims.UserType,
		Verified: claims.Verified,
		JTI:      claims.JTI,
	})
	return c.Next()
}

// OptionalAuth populates the user context when a valid token is present
// and stays silent otherwise. Used by public endpoints that personalize
// their output for logged-in callers.
func OptionalAuth(c *fiber.Ctx) error {
	raw := bearerToken(c)
	if raw == "" {
		return c.Next()
	}
	claims, err := token.ParseAccessToken(raw)
	if err != nil {
		return c.Next()
	}
	if revoked, err := repository.GetGlobalFactory().GetAuthRepository().IsTokenRevoked(claims.JTI); err == nil && revoked {
		return c.Next()
	}
	usercontext.Set(c, usercontext.UserContext{
		UserID:   claims.UserID,
		UserType: claims.UserType,
		Verified: claims.Verified,
		JTI:      claims.JTI,
	})
	return c.Next()
}

// RequireStaff ensures the caller is an admin or moderator. Must run after
// RequireAuth.
func RequireStaff(c *fiber.Ctx) error {
	uc := usercontext.Get(c)
	if !uc.IsStaff() {
		return forbidden(c, "moderator access required")
	}
	return c.Next()
}

// RequireAdmin ensures the caller is an admin. Must run after RequireAuth.
func RequireAdmin(c *fiber.Ctx) error {
	uc := usercontext.Get(c)
	if !uc.IsAdmin() {
		return forbidden(c, "admin access required")
	}
	return c.Next()
}

func bearerToken(c *fiber.Ctx) string {
	header := c.Get(fiber.HeaderAuthorization)
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func unauthorized(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error":   "authentication_error",
		"message": message,
	})
}

func forbidden(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
		"error":   "authorization_error",
		"message": message,
	})
}
