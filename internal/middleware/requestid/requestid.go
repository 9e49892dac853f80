package requestid

import (
	"github.com/bookmarksdev/api/internal/pkg/log"
	"github.com/gofiber/fiber/v2"
	"github.com/gofrs/uuid"
)

const (
	// HeaderRequestID is the HTTP header name for request ID
	HeaderRequestID = "X-Request-ID"
	// ContextKeyRequestID is the key used to store request ID in Fiber context
	ContextKeyRequestID = "request_id"
)

// New creates a middleware that reuses an incoming X-Request-ID header or generates one.
// The id is also attached to the user context so services can log with it.
func New() fiber.Handler {
	return func(c *fiber.Ctx) error {
		requestID := c.Get(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.Must(uuid.NewV4()).String()
		}

		c.Locals(ContextKeyRequestID, requestID)
		c.SetUserContext(log.WithRequestID(c.UserContext(), requestID))
		c.Set(HeaderRequestID, requestID)

		return c.Next()
	}
}

// GetRequestID retrieves the request ID from Fiber context
func GetRequestID(c *fiber.Ctx) string {
	if id, ok := c.Locals(ContextKeyRequestID).(string); ok {
		return id
	}
	return ""
}
