package bookmarks

import (
	"github.com/bookmarksdev/api/bookmarks/handlers"
	"github.com/bookmarksdev/api/internal/middleware/admin"
	"github.com/bookmarksdev/api/internal/middleware/authjwt"
	"github.com/bookmarksdev/api/internal/middleware/ratelimit"
	platformconfig "github.com/bookmarksdev/api/internal/platform/config"
	"github.com/bookmarksdev/api/internal/types"
	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Personal *handlers.PersonalHandler
	Admin    *handlers.AdminHandler
	Public   *handlers.PublicHandler
}

// RegisterRoutes wires bookmark endpoints behind JWT verification built from cfg.JWT.
func RegisterRoutes(router fiber.Router, h *Handlers, cfg *platformconfig.Config) {
	auth := authjwt.New(authjwt.Config{
		PublicKey:        cfg.JWT.PublicKey,
		AdminRole:        cfg.JWT.AdminRole,
		Issuer:           cfg.JWT.Issuer,
		PrincipalCtxName: types.PrincipalCtxName,
	})
	RegisterRoutesWithAuth(router, h, auth, cfg)
}

// RegisterRoutesWithAuth wires bookmark endpoints behind the given authentication middleware.
func RegisterRoutesWithAuth(router fiber.Router, h *Handlers, auth fiber.Handler, cfg *platformconfig.Config) {
	publicLimit, writeLimit := limiters(cfg)

	public := router.Group("/public", publicLimit)
	public.Get("/bookmarks", h.Public.List)
	public.Get("/bookmarks/latest-entries", h.Public.LatestEntries)
	public.Get("/bookmarks/:bookmarkId", h.Public.Get)
	public.Get("/tags", h.Public.Tags)

	personal := router.Group("/personal/users/:userId/bookmarks", auth, writeLimit)
	personal.Post("/", h.Personal.Create)
	personal.Get("/", h.Personal.List)
	personal.Get("/tags", h.Personal.Tags)
	personal.Get("/:bookmarkId", h.Personal.Get)
	personal.Put("/:bookmarkId", h.Personal.Update)
	personal.Delete("/:bookmarkId", h.Personal.Delete)

	adminOnly := admin.New(admin.Config{PrincipalCtxName: types.PrincipalCtxName})
	adminGroup := router.Group("/admin", auth, adminOnly, writeLimit)
	adminGroup.Get("/tags", h.Admin.Tags)
	adminGroup.Get("/bookmarks", h.Admin.List)
	adminGroup.Post("/bookmarks", h.Admin.Create)
	adminGroup.Delete("/bookmarks", h.Admin.BulkDelete)
	adminGroup.Get("/bookmarks/latest-entries", h.Admin.LatestEntries)
	adminGroup.Get("/bookmarks/:bookmarkId", h.Admin.Get)
	adminGroup.Put("/bookmarks/:bookmarkId", h.Admin.Update)
	adminGroup.Delete("/bookmarks/:bookmarkId", h.Admin.Delete)
}

func limiters(cfg *platformconfig.Config) (fiber.Handler, fiber.Handler) {
	if !cfg.RateLimit.Enabled {
		pass := func(c *fiber.Ctx) error { return c.Next() }
		return pass, pass
	}

	limits := &ratelimit.Limits{
		PublicMaxRequests:    cfg.RateLimit.PublicMax,
		PublicWindowDuration: cfg.RateLimit.Window,
		WriteMaxRequests:     cfg.RateLimit.WriteMax,
		WriteWindowDuration:  cfg.RateLimit.Window,
	}
	public := ratelimit.New(ratelimit.Config{Scope: ratelimit.ScopePublic, Limits: limits})
	write := ratelimit.New(ratelimit.Config{Scope: ratelimit.ScopeWrite, Limits: limits, Next: ratelimit.WritesOnly})
	return public, write
}
