package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

func TestErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    *AppError
		status int
		code   string
	}{
		{"validation", Validation("title required"), fiber.StatusUnprocessableEntity, CodeValidation},
		{"authentication", Authentication("bad token"), fiber.StatusUnauthorized, CodeAuthentication},
		{"authorization", Authorization("moderator required"), fiber.StatusForbidden, CodeAuthorization},
		{"not found", NotFound("listing"), fiber.StatusNotFound, CodeNotFound},
		{"conflict", Conflict("duplicate"), fiber.StatusConflict, CodeConflict},
		{"rate limit", RateLimit("slow down"), fiber.StatusTooManyRequests, CodeRateLimit},
		{"business", BusinessLogic("listing limit reached"), fiber.StatusBadRequest, CodeBusinessLogic},
		{"payment", Payment("signature mismatch"), fiber.StatusBadRequest, CodePayment},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, tt.err.Status)
			assert.Equal(t, tt.code, tt.err.Code)
		})
	}
}

func TestWrapKeepsCodeAndStatus(t *testing.T) {
	orig := NotFound("listing")
	wrapped := Wrap(fmt.Errorf("load listing 42: %w", orig), "could not load listing")

	assert.Equal(t, CodeNotFound, wrapped.Code)
	assert.Equal(t, fiber.StatusNotFound, wrapped.Status)
	assert.True(t, errors.Is(wrapped, orig))
}

func TestWrapUnknownBecomesInternal(t *testing.T) {
	wrapped := Wrap(errors.New("driver: bad connection"), "query failed")

	assert.Equal(t, CodeInternal, wrapped.Code)
	assert.Equal(t, fiber.StatusInternalServerError, wrapped.Status)
}

func TestAs(t *testing.T) {
	appErr, ok := As(fmt.Errorf("outer: %w", ErrPhoneAlreadyExists))
	assert.True(t, ok)
	assert.Equal(t, CodeConflict, appErr.Code)

	_, ok = As(errors.New("plain"))
	assert.False(t, ok)
}
