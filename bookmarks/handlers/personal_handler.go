package handlers

import (
	bookmarksErrors "github.com/bookmarksdev/api/bookmarks/errors"
	"github.com/bookmarksdev/api/bookmarks/security"
	"github.com/bookmarksdev/api/bookmarks/services"
	"github.com/gofiber/fiber/v2"
)

// PersonalHandler serves /personal/users/:userId/bookmarks for the owner.
type PersonalHandler struct {
	service      services.BookmarkService
	publicAPIURL string
}

func NewPersonalHandler(service services.BookmarkService, publicAPIURL string) *PersonalHandler {
	return &PersonalHandler{service: service, publicAPIURL: publicAPIURL}
}

// Create handles POST /personal/users/:userId/bookmarks
func (h *PersonalHandler) Create(c *fiber.Ctx) error {
	p, ok, err := principal(c)
	if !ok {
		return err
	}

	ownerID := c.Params("userId")
	if err := security.AuthorizeOwner(p, security.OpCreate, ownerID); err != nil {
		return bookmarksErrors.HandleServiceError(c, err)
	}

	b, err := parseBookmark(c)
	if err != nil {
		return bookmarksErrors.HandleServiceError(c, err)
	}

	id, err := h.service.CreateForUser(c.UserContext(), p, ownerID, b)
	if err != nil {
		return bookmarksErrors.HandleServiceError(c, err)
	}
	return createdResponse(c, h.publicAPIURL, ownerID, id)
}

// List handles GET /personal/users/:userId/bookmarks.
// q searches, location looks up a single bookmark, otherwise the latest accessed are returned.
func (h *PersonalHandler) List(c *fiber.Ctx) error {
	p, ok, err := principal(c)
	if !ok {
		return err
	}
	ctx := c.UserContext()
	ownerID := c.Params("userId")

	if text := c.Query("q"); text != "" {
		bookmarks, err := h.service.SearchPersonal(ctx, p, ownerID, text, c.QueryInt("limit", 0))
		if err != nil {
			return bookmarksErrors.HandleServiceError(c, err)
		}
		return c.JSON(bookmarks)
	}

	if location := c.Query("location"); location != "" {
		bookmark, err := h.service.FindPersonalByLocation(ctx, p, ownerID, location)
		if err != nil {
			return bookmarksErrors.HandleServiceError(c, err)
		}
		return c.JSON(bookmark)
	}

	bookmarks, err := h.service.LatestPersonal(ctx, p, ownerID)
	if err != nil {
		return bookmarksErrors.HandleServiceError(c, err)
	}
	return c.JSON(bookmarks)
}

// Tags handles GET /personal/users/:userId/bookmarks/tags
func (h *PersonalHandler) Tags(c *fiber.Ctx) error {
	p, ok, err := principal(c)
	if !ok {
		return err
	}
	tags, err := h.service.AccessibleTags(c.UserContext(), p, c.Params("userId"))
	if err != nil {
		return bookmarksErrors.HandleServiceError(c, err)
	}
	return c.JSON(tags)
}

// Get handles GET /personal/users/:userId/bookmarks/:bookmarkId
func (h *PersonalHandler) Get(c *fiber.Ctx) error {
	p, ok, err := principal(c)
	if !ok {
		return err
	}
	bookmark, err := h.service.GetPersonal(c.UserContext(), p, c.Params("userId"), c.Params("bookmarkId"))
	if err != nil {
		return bookmarksErrors.HandleServiceError(c, err)
	}
	return c.JSON(bookmark)
}

// Update handles PUT /personal/users/:userId/bookmarks/:bookmarkId as a full replacement.
func (h *PersonalHandler) Update(c *fiber.Ctx) error {
	p, ok, err := principal(c)
	if !ok {
		return err
	}

	ownerID := c.Params("userId")
	if err := security.AuthorizeOwner(p, security.OpUpdate, ownerID); err != nil {
		return bookmarksErrors.HandleServiceError(c, err)
	}

	b, err := parseBookmark(c)
	if err != nil {
		return bookmarksErrors.HandleServiceError(c, err)
	}

	updated, err := h.service.UpdateForUser(c.UserContext(), p, ownerID, c.Params("bookmarkId"), b)
	if err != nil {
		return bookmarksErrors.HandleServiceError(c, err)
	}
	return c.JSON(updated)
}

// Delete handles DELETE /personal/users/:userId/bookmarks/:bookmarkId
func (h *PersonalHandler) Delete(c *fiber.Ctx) error {
	p, ok, err := principal(c)
	if !ok {
		return err
	}
	if err := h.service.DeleteForUser(c.UserContext(), p, c.Params("userId"), c.Params("bookmarkId")); err != nil {
		return bookmarksErrors.HandleServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
