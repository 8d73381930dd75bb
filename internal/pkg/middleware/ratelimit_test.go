package middleware

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhandosm/baraholka/internal/pkg/env"
	"github.com/zhandosm/baraholka/internal/pkg/token"
	"github.com/zhandosm/baraholka/internal/pkg/usercontext"
)

func init() {
	env.Env = map[string]string{"JWT_SECRET": "test-secret-do-not-use"}
}

func echoLimiterKey(t *testing.T, handler fiber.Handler, authorization string) string {
	t.Helper()
	app := fiber.New()
	app.Get("/", handler, func(c *fiber.Ctx) error {
		return c.SendString(limiterKey(c))
	})

	req := httptest.NewRequest("GET", "/", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

func passthrough(c *fiber.Ctx) error { return c.Next() }

func TestLimiterKeyBearerToken(t *testing.T) {
	at, err := token.NewAccessToken(77, "regular", "pending", time.Minute)
	require.NoError(t, err)

	key := echoLimiterKey(t, passthrough, "Bearer "+at.Token)
	assert.Equal(t, "u:77", key)
}

func TestLimiterKeyAnonymousFallsBackToIP(t *testing.T) {
	key := echoLimiterKey(t, passthrough, "")
	assert.Equal(t, "ip:0.0.0.0", key)
}

func TestLimiterKeyInvalidTokenFallsBackToIP(t *testing.T) {
	key := echoLimiterKey(t, passthrough, "Bearer not.a.jwt")
	assert.Equal(t, "ip:0.0.0.0", key)
}

func TestLimiterKeyPrefersUserContext(t *testing.T) {
	set := func(c *fiber.Ctx) error {
		usercontext.Set(c, usercontext.UserContext{UserID: 12, UserType: "regular"})
		return c.Next()
	}
	key := echoLimiterKey(t, set, "")
	assert.Equal(t, "u:12", key)
}
