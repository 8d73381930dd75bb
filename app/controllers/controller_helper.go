package controllers

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/zhandosm/baraholka/internal/pkg/apperrors"
	"github.com/zhandosm/baraholka/internal/pkg/pagination"
)

// respondError maps an error to the JSON error envelope. AppErrors carry
// their own status and code; gorm's not-found becomes 404; everything
// else is a 500 with the detail kept out of the response.
func respondError(c *fiber.Ctx, err error) error {
	if appErr, ok := apperrors.As(err); ok {
		if appErr.Status >= fiber.StatusInternalServerError {
			log.Errorf("[API] %s %s: %v", c.Method(), c.Path(), err)
		}
		return c.Status(appErr.Status).JSON(fiber.Map{"error": appErr.Code, "message": appErr.Message})
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Resource not found"})
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "conflict", "message": "Resource already exists"})
	}
	log.Errorf("[API] %s %s: %v", c.Method(), c.Path(), err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Internal server error"})
}

func respondNotFound(c *fiber.Ctx, resource string) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": resource + " not found"})
}

func respondValidation(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "validation_error", "message": message})
}

func respondForbidden(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "authorization_error", "message": message})
}

func respondBadRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": message})
}

// respondList wraps list payloads in the shared pagination envelope.
func respondList(c *fiber.Ctx, items interface{}, meta pagination.Meta) error {
	return c.JSON(fiber.Map{"data": items, "meta": meta})
}

var validate = validator.New()

// validateStruct runs the struct tag validations of a request model.
func validateStruct(s interface{}) error {
	return validate.Struct(s)
}

// paramID parses a positive numeric path parameter.
func paramID(c *fiber.Ctx, name string) (uint, error) {
	id, err := c.ParamsInt(name)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid " + name)
	}
	return uint(id), nil
}

// GetClientIP determines the actual client IP address considering proxies.
func GetClientIP(c *fiber.Ctx) string {
	if cfIP := c.Get("CF-Connecting-IP"); cfIP != "" {
		return cfIP
	}
	if xff := c.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		if len(parts) > 0 {
			return strings.TrimSpace(parts[0])
		}
	}
	ip := c.IP()
	// Unwrap IPv4-mapped-IPv6 addresses (::ffff:192.168.1.1)
	if strings.HasPrefix(ip, "::ffff:") && strings.Contains(ip, ".") {
		return strings.TrimPrefix(ip, "::ffff:")
	}
	return ip
}
