package admin

import (
	"net/http/httptest"
	"testing"

	"github.com/bookmarksdev/api/internal/types"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newApp(principal *types.Principal, cfg Config) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if principal != nil {
			c.Locals(types.PrincipalCtxName, *principal)
		}
		return c.Next()
	})
	app.Use(New(cfg))
	app.Get("/admin", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })
	return app
}

func TestAdminMiddleware(t *testing.T) {
	cases := []struct {
		name      string
		principal *types.Principal
		cfg       Config
		want      int
	}{
		{"no principal", nil, Config{}, fiber.StatusUnauthorized},
		{"regular user", &types.Principal{SubjectID: "u1", Roles: []string{"ROLE_USER"}}, Config{}, fiber.StatusForbidden},
		{"admin", &types.Principal{SubjectID: "u1", Admin: true}, Config{}, fiber.StatusOK},
		{
			"custom access hook",
			&types.Principal{SubjectID: "u1", Roles: []string{"curator"}},
			Config{HasAccess: func(p types.Principal) bool { return p.HasRole("curator") }},
			fiber.StatusOK,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := newApp(tc.principal, tc.cfg).Test(httptest.NewRequest("GET", "/admin", nil))
			require.NoError(t, err)
			assert.Equal(t, tc.want, resp.StatusCode)
		})
	}
}
