package handlers

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	bookmarksErrors "github.com/bookmarksdev/api/bookmarks/errors"
	"github.com/bookmarksdev/api/bookmarks/models"
	"github.com/bookmarksdev/api/bookmarks/query"
	"github.com/bookmarksdev/api/internal/middleware/authjwt"
	"github.com/bookmarksdev/api/internal/types"
	"github.com/gofiber/fiber/v2"
)

// principal returns the verified caller or writes a 401 response.
func principal(c *fiber.Ctx) (types.Principal, bool, error) {
	p, ok := authjwt.PrincipalFrom(c)
	if !ok || p.SubjectID == "" {
		return types.Principal{}, false, bookmarksErrors.HandleUnauthorizedError(c, "Missing or invalid principal")
	}
	return p, true, nil
}

func parseBookmark(c *fiber.Ctx) (*models.Bookmark, error) {
	var b models.Bookmark
	if err := c.BodyParser(&b); err != nil {
		return nil, fmt.Errorf("%w: %v", bookmarksErrors.ErrInvalidRequestBody, err)
	}
	return &b, nil
}

// parseTimeWindow reads since and to as epoch milliseconds, or days.
func parseTimeWindow(c *fiber.Ctx) (query.TimeWindow, error) {
	var window query.TimeWindow

	if raw := c.Query("since"); raw != "" {
		since, err := parseEpochMillis(raw)
		if err != nil {
			return window, fmt.Errorf("%w: since: %v", bookmarksErrors.ErrValidation, err)
		}
		window.Since = &since

		if rawTo := c.Query("to"); rawTo != "" {
			to, err := parseEpochMillis(rawTo)
			if err != nil {
				return window, fmt.Errorf("%w: to: %v", bookmarksErrors.ErrValidation, err)
			}
			window.To = &to
		}
		return window, nil
	}

	if raw := c.Query("days"); raw != "" {
		days, err := strconv.Atoi(raw)
		if err != nil || days <= 0 {
			return window, fmt.Errorf("%w: days must be a positive integer", bookmarksErrors.ErrValidation)
		}
		window.Days = days
	}
	return window, nil
}

func parseEpochMillis(raw string) (time.Time, error) {
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	return time.UnixMilli(ms).UTC(), nil
}

// bookmarkLocation builds the Location header value of a created bookmark.
func bookmarkLocation(publicAPIURL, userID, bookmarkID string) string {
	if publicAPIURL != "" && !strings.HasSuffix(publicAPIURL, "/") {
		publicAPIURL += "/"
	}
	return fmt.Sprintf("%spersonal/users/%s/bookmarks/%s", publicAPIURL, userID, bookmarkID)
}

func createdResponse(c *fiber.Ctx, publicAPIURL, userID, bookmarkID string) error {
	c.Set(types.HeaderLocation, bookmarkLocation(publicAPIURL, userID, bookmarkID))
	return c.Status(fiber.StatusCreated).JSON(models.CreateResponse{
		ID:       bookmarkID,
		Response: "Bookmark created for userId " + userID,
	})
}
