package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/zhandosm/baraholka/internal/pkg/apperrors"
	"github.com/zhandosm/baraholka/internal/pkg/pagination"
)

func performRequest(t *testing.T, app *fiber.App, method, target string) (int, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var body map[string]interface{}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &body))
	}
	return resp.StatusCode, body
}

func TestRespondErrorAppError(t *testing.T) {
	app := fiber.New()
	app.Get("/conflict", func(c *fiber.Ctx) error {
		return respondError(c, apperrors.Conflict("already exists"))
	})

	status, body := performRequest(t, app, "GET", "/conflict")
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, "conflict", body["error"])
	assert.Equal(t, "already exists", body["message"])
}

func TestRespondErrorRecordNotFound(t *testing.T) {
	app := fiber.New()
	app.Get("/missing", func(c *fiber.Ctx) error {
		return respondError(c, gorm.ErrRecordNotFound)
	})

	status, body := performRequest(t, app, "GET", "/missing")
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "not_found", body["error"])
}

func TestRespondErrorDuplicatedKey(t *testing.T) {
	app := fiber.New()
	app.Get("/dup", func(c *fiber.Ctx) error {
		// A unique index violation surfaces as a wrapped duplicate-key
		// error when two writers race past the existence check.
		return respondError(c, fmt.Errorf("create user: %w", gorm.ErrDuplicatedKey))
	})

	status, body := performRequest(t, app, "GET", "/dup")
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, "conflict", body["error"])
}

func TestRespondErrorInternalHidesDetail(t *testing.T) {
	app := fiber.New()
	app.Get("/boom", func(c *fiber.Ctx) error {
		return respondError(c, errors.New("dial tcp: connection refused"))
	})

	status, body := performRequest(t, app, "GET", "/boom")
	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.NotContains(t, body["message"], "dial tcp")
}

func TestRespondListEnvelope(t *testing.T) {
	app := fiber.New()
	app.Get("/items", func(c *fiber.Ctx) error {
		p := pagination.Normalize(2, 10)
		return respondList(c, []string{"a", "b"}, pagination.NewMeta(p, 25))
	})

	status, body := performRequest(t, app, "GET", "/items")
	assert.Equal(t, fiber.StatusOK, status)

	meta, ok := body["meta"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(2), meta["page"])
	assert.Equal(t, float64(25), meta["total"])
	assert.Equal(t, float64(3), meta["total_pages"])
	assert.Equal(t, true, meta["has_next"])
	assert.Equal(t, true, meta["has_prev"])
}

func TestParamID(t *testing.T) {
	app := fiber.New()
	app.Get("/things/:id", func(c *fiber.Ctx) error {
		id, err := paramID(c, "id")
		if err != nil {
			return respondBadRequest(c, err.Error())
		}
		return c.JSON(fiber.Map{"id": id})
	})

	status, body := performRequest(t, app, "GET", "/things/42")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, float64(42), body["id"])

	status, _ = performRequest(t, app, "GET", "/things/abc")
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _ = performRequest(t, app, "GET", "/things/0")
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestGetClientIP(t *testing.T) {
	app := fiber.New()
	app.Get("/ip", func(c *fiber.Ctx) error {
		return c.SendString(GetClientIP(c))
	})

	cases := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{"cloudflare header wins", map[string]string{"CF-Connecting-IP": "203.0.113.7", "X-Forwarded-For": "10.0.0.1"}, "203.0.113.7"},
		{"first forwarded entry", map[string]string{"X-Forwarded-For": "198.51.100.4, 10.0.0.1"}, "198.51.100.4"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/ip", nil)
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			defer resp.Body.Close()
			raw, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			assert.Equal(t, tc.want, string(raw))
		})
	}
}
