package ratelimit

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bookmarksdev/api/internal/types"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimit_PublicScope(t *testing.T) {
	limits := &Limits{PublicMaxRequests: 3, PublicWindowDuration: time.Minute}
	app := fiber.New()
	app.Use(New(Config{Scope: ScopePublic, Limits: limits}))
	app.Get("/tags", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	for i := 0; i < 3; i++ {
		resp, err := app.Test(httptest.NewRequest("GET", "/tags", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	}

	resp, err := app.Test(httptest.NewRequest("GET", "/tags", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "60", resp.Header.Get(fiber.HeaderRetryAfter))

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "RATE_LIMIT_EXCEEDED")
}

func TestRateLimit_WriteScopeKeysBySubject(t *testing.T) {
	limits := &Limits{WriteMaxRequests: 1, WriteWindowDuration: time.Minute}
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals(types.PrincipalCtxName, types.Principal{SubjectID: c.Get("X-Sub")})
		return c.Next()
	})
	app.Use(New(Config{Scope: ScopeWrite, Limits: limits, Next: WritesOnly}))
	app.All("/bookmarks", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	do := func(method, sub string) int {
		req := httptest.NewRequest(method, "/bookmarks", nil)
		req.Header.Set("X-Sub", sub)
		resp, err := app.Test(req)
		require.NoError(t, err)
		return resp.StatusCode
	}

	assert.Equal(t, fiber.StatusOK, do("POST", "alice"))
	assert.Equal(t, fiber.StatusTooManyRequests, do("POST", "alice"))
	assert.Equal(t, fiber.StatusOK, do("POST", "bob"))
	assert.Equal(t, fiber.StatusOK, do("GET", "alice"))
}
