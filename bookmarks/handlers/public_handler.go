package handlers

import (
	bookmarksErrors "github.com/bookmarksdev/api/bookmarks/errors"
	"github.com/bookmarksdev/api/bookmarks/services"
	"github.com/gofiber/fiber/v2"
)

// PublicHandler serves the unauthenticated read surface over shared bookmarks.
type PublicHandler struct {
	service services.BookmarkService
}

func NewPublicHandler(service services.BookmarkService) *PublicHandler {
	return &PublicHandler{service: service}
}

// List handles GET /public/bookmarks?q=&limit=&location=&tag=
func (h *PublicHandler) List(c *fiber.Ctx) error {
	ctx := c.UserContext()
	limit := c.QueryInt("limit", 0)

	switch {
	case c.Query("q") != "":
		bookmarks, err := h.service.SearchPublic(ctx, c.Query("q"), limit)
		if err != nil {
			return bookmarksErrors.HandleServiceError(c, err)
		}
		return c.JSON(bookmarks)

	case c.Query("location") != "":
		bookmark, err := h.service.FindPublicByLocation(ctx, c.Query("location"))
		if err != nil {
			return bookmarksErrors.HandleServiceError(c, err)
		}
		return c.JSON(bookmark)

	case c.Query("tag") != "":
		bookmarks, err := h.service.ListPublicByTag(ctx, c.Query("tag"), limit)
		if err != nil {
			return bookmarksErrors.HandleServiceError(c, err)
		}
		return c.JSON(bookmarks)
	}

	bookmarks, err := h.service.ListPublic(ctx, limit)
	if err != nil {
		return bookmarksErrors.HandleServiceError(c, err)
	}
	return c.JSON(bookmarks)
}

// LatestEntries handles GET /public/bookmarks/latest-entries?since=&to=&days=
func (h *PublicHandler) LatestEntries(c *fiber.Ctx) error {
	window, err := parseTimeWindow(c)
	if err != nil {
		return bookmarksErrors.HandleServiceError(c, err)
	}
	bookmarks, err := h.service.LatestEntries(c.UserContext(), window)
	if err != nil {
		return bookmarksErrors.HandleServiceError(c, err)
	}
	return c.JSON(bookmarks)
}

// Get handles GET /public/bookmarks/:bookmarkId
func (h *PublicHandler) Get(c *fiber.Ctx) error {
	bookmark, err := h.service.GetPublic(c.UserContext(), c.Params("bookmarkId"))
	if err != nil {
		return bookmarksErrors.HandleServiceError(c, err)
	}
	return c.JSON(bookmark)
}

// Tags handles GET /public/tags
func (h *PublicHandler) Tags(c *fiber.Ctx) error {
	tags, err := h.service.PublicTags(c.UserContext())
	if err != nil {
		return bookmarksErrors.HandleServiceError(c, err)
	}
	return c.JSON(tags)
}
