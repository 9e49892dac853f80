// Package ratelimit throttles the anonymous read surface and authenticated writes per client.
package ratelimit

import (
	"fmt"
	"time"

	"github.com/bookmarksdev/api/internal/pkg/log"
	"github.com/bookmarksdev/api/internal/types"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// Limits defines request budgets per scope
type Limits struct {
	// Public read endpoints: 120 per minute per IP
	PublicMaxRequests    int
	PublicWindowDuration time.Duration

	// Create, update and delete: 30 per minute per subject
	WriteMaxRequests    int
	WriteWindowDuration time.Duration
}

// DefaultLimits returns the default request budgets
func DefaultLimits() Limits {
	return Limits{
		PublicMaxRequests:    120,
		PublicWindowDuration: time.Minute,
		WriteMaxRequests:     30,
		WriteWindowDuration:  time.Minute,
	}
}

// Scope selects which budget applies
type Scope int

const (
	ScopePublic Scope = iota
	ScopeWrite
)

func (s Scope) String() string {
	switch s {
	case ScopePublic:
		return "public"
	case ScopeWrite:
		return "write"
	default:
		return "unknown"
	}
}

// Config holds the configuration for rate limiting middleware
type Config struct {
	Scope  Scope
	Limits *Limits

	// Next defines a function to skip this middleware when returned true
	Next func(c *fiber.Ctx) bool

	// Custom key generator (optional)
	KeyGenerator func(c *fiber.Ctx) string
}

func (c Config) budget() (int, time.Duration) {
	switch c.Scope {
	case ScopeWrite:
		return c.Limits.WriteMaxRequests, c.Limits.WriteWindowDuration
	default:
		return c.Limits.PublicMaxRequests, c.Limits.PublicWindowDuration
	}
}

// defaultKey keys writes by subject when a principal is present, else by IP.
func defaultKey(scope Scope) func(c *fiber.Ctx) string {
	return func(c *fiber.Ctx) string {
		if scope == ScopeWrite {
			if p, ok := c.Locals(types.PrincipalCtxName).(types.Principal); ok {
				return "sub:" + p.SubjectID
			}
		}
		return "ip:" + c.IP()
	}
}

// New creates a new rate limiting middleware handler
func New(config Config) fiber.Handler {
	if config.Limits == nil {
		limits := DefaultLimits()
		config.Limits = &limits
	}
	if config.KeyGenerator == nil {
		config.KeyGenerator = defaultKey(config.Scope)
	}

	maxRequests, window := config.budget()
	scope := config.Scope

	return limiter.New(limiter.Config{
		Max:          maxRequests,
		Expiration:   window,
		KeyGenerator: config.KeyGenerator,
		Next:         config.Next,
		LimitReached: func(c *fiber.Ctx) error {
			log.WarnWithContext(c.UserContext(), "[RateLimit] %s limit exceeded for %s", scope, config.KeyGenerator(c))
			c.Set(fiber.HeaderRetryAfter, fmt.Sprintf("%d", int(window.Seconds())))
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"code":    "RATE_LIMIT_EXCEEDED",
				"message": fmt.Sprintf("Too many %s requests. Please try again later.", scope),
			})
		},
	})
}

// WritesOnly skips GET and HEAD requests.
func WritesOnly(c *fiber.Ctx) bool {
	return c.Method() == fiber.MethodGet || c.Method() == fiber.MethodHead
}
