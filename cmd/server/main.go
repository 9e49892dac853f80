package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bookmarksdev/api/bookmarks"
	"github.com/bookmarksdev/api/bookmarks/handlers"
	"github.com/bookmarksdev/api/bookmarks/markdown"
	bookmarksRepository "github.com/bookmarksdev/api/bookmarks/repository"
	"github.com/bookmarksdev/api/bookmarks/search"
	"github.com/bookmarksdev/api/bookmarks/services"
	"github.com/bookmarksdev/api/internal/cache"
	"github.com/bookmarksdev/api/internal/middleware/metrics"
	"github.com/bookmarksdev/api/internal/middleware/requestid"
	"github.com/bookmarksdev/api/internal/pkg/log"
	"github.com/bookmarksdev/api/internal/platform"
	platformconfig "github.com/bookmarksdev/api/internal/platform/config"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func main() {
	cfg, err := platformconfig.LoadFromEnv()
	if err != nil {
		log.Error("Failed to load platform config: %v", err)
		os.Exit(1)
	}
	log.SetDebug(cfg.Server.Debug)

	ctx := context.Background()
	backend, err := platform.NewBackend(ctx, cfg, platform.DefaultConnectOptions())
	if err != nil {
		log.Error("Failed to connect to %s: %v", cfg.Database.Type, err)
		os.Exit(1)
	}

	var (
		bookmarkRepo bookmarksRepository.Repository
		userRepo     bookmarksRepository.UserRepository
		searcher     search.Searcher
	)
	if backend.Mongo != nil {
		db := backend.Mongo.Database()
		bookmarkRepo = bookmarksRepository.NewMongoRepository(db)
		userRepo = bookmarksRepository.NewMongoUserRepository(db)
		searcher = search.NewMongoSearcher(db)
	} else {
		bookmarkRepo = bookmarksRepository.NewPostgresRepositoryWithSchema(backend.Postgres, backend.Schema)
		userRepo = bookmarksRepository.NewPostgresUserRepository(backend.Postgres, backend.Schema)
		searcher = search.NewPostgresSearcher(backend.Postgres, backend.Schema)
	}

	breaker := search.DefaultBreakerConfig()
	breaker.Timeout = cfg.Bookmarks.SearchBreakerTimeout
	breaker.MinRequests = uint32(cfg.Bookmarks.SearchBreakerMinRequests)
	searcher = search.NewBreakerSearcher(searcher, breaker)

	cacheService := newCacheService(cfg)

	bookmarkService := services.NewBookmarkService(
		bookmarkRepo,
		userRepo,
		searcher,
		markdown.NewRenderer(),
		cacheService,
		services.Config{
			DefaultSearchLimit: cfg.Bookmarks.DefaultSearchLimit,
			LatestEntriesDays:  cfg.Bookmarks.LatestEntriesDays,
		},
	)

	indexCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	if err := bookmarkService.EnsureIndexes(indexCtx); err != nil {
		cancel()
		log.Error("Failed to ensure bookmark indexes: %v", err)
		os.Exit(1)
	}
	cancel()
	log.Info("Bookmark indexes ensured on %s", backend.Type)

	app := fiber.New(fiber.Config{
		AppName:      "bookmarks-api",
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	if cfg.Server.MetricsEnabled {
		m := metrics.New()
		app.Use(m.Middleware())
		app.Get("/metrics", m.Handler())
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:  cfg.Server.WebDomain,
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization",
		AllowMethods:  "GET, POST, PUT, DELETE, OPTIONS",
		ExposeHeaders: "Location",
	}))

	router := app.Group(cfg.Server.BaseRoute)
	router.Get("/health", func(c *fiber.Ctx) error {
		if err := backend.HealthCheck(c.UserContext()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable"})
		}
		return c.JSON(fiber.Map{"status": "ok", "cache": cacheService.GetStats()})
	})

	bookmarks.RegisterRoutes(router, &bookmarks.Handlers{
		Personal: handlers.NewPersonalHandler(bookmarkService, cfg.Server.PublicAPIURL),
		Admin:    handlers.NewAdminHandler(bookmarkService, cfg.Server.PublicAPIURL),
		Public:   handlers.NewPublicHandler(bookmarkService),
	}, cfg)

	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		log.Info("Starting Bookmarks API on %s", addr)
		if err := app.Listen(addr); err != nil {
			log.Error("Server stopped: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error("Graceful shutdown failed: %v", err)
	}
	if err := cacheService.Close(); err != nil {
		log.Warn("Failed to close cache: %v", err)
	}
	if err := backend.Close(ctx); err != nil {
		log.Warn("Failed to close database: %v", err)
	}
}

// newCacheService falls back to a disabled cache when the backend cannot be created.
func newCacheService(cfg *platformconfig.Config) *cache.GenericCacheService {
	cacheConfig := &cache.CacheConfig{
		Enabled:         cfg.Cache.Enabled,
		Backend:         cache.CacheType(cfg.Cache.Backend),
		TTL:             cfg.Cache.TTL,
		Prefix:          cfg.Cache.Prefix,
		CleanupInterval: time.Minute,
		Redis: cache.RedisConfig{
			Address:      cfg.Cache.Redis.Address,
			Password:     cfg.Cache.Redis.Password,
			Database:     cfg.Cache.Redis.Database,
			PoolSize:     cfg.Cache.Redis.PoolSize,
			MinIdleConns: cfg.Cache.Redis.MinIdleConns,
			MaxConnAge:   cfg.Cache.Redis.MaxConnAge,
		},
	}
	if !cacheConfig.Enabled {
		return cache.NewGenericCacheService(nil, cacheConfig)
	}

	backend, err := cache.NewCache(cacheConfig)
	if err != nil {
		log.Warn("Cache disabled: %v", err)
		cacheConfig.Enabled = false
		return cache.NewGenericCacheService(nil, cacheConfig)
	}
	return cache.NewGenericCacheService(backend, cacheConfig)
}
