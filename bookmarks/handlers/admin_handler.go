package handlers

import (
	bookmarksErrors "github.com/bookmarksdev/api/bookmarks/errors"
	"github.com/bookmarksdev/api/bookmarks/query"
	"github.com/bookmarksdev/api/bookmarks/services"
	"github.com/bookmarksdev/api/internal/pkg/log"
	"github.com/gofiber/fiber/v2"
)

// AdminHandler serves /admin. Routes are expected behind the admin middleware,
// the service checks the role again.
type AdminHandler struct {
	service      services.BookmarkService
	publicAPIURL string
}

func NewAdminHandler(service services.BookmarkService, publicAPIURL string) *AdminHandler {
	return &AdminHandler{service: service, publicAPIURL: publicAPIURL}
}

// List handles GET /admin/bookmarks?public=true&location=&userId=
func (h *AdminHandler) List(c *fiber.Ctx) error {
	p, ok, err := principal(c)
	if !ok {
		return err
	}

	filter := query.AdminFilter{
		PublicOnly: c.Query("public") == "true",
		Location:   c.Query("location"),
		UserID:     c.Query("userId"),
	}
	bookmarks, err := h.service.AdminList(c.UserContext(), p, filter)
	if err != nil {
		return bookmarksErrors.HandleServiceError(c, err)
	}
	return c.JSON(bookmarks)
}

// Tags handles GET /admin/tags
func (h *AdminHandler) Tags(c *fiber.Ctx) error {
	p, ok, err := principal(c)
	if !ok {
		return err
	}
	tags, err := h.service.AdminTags(c.UserContext(), p)
	if err != nil {
		return bookmarksErrors.HandleServiceError(c, err)
	}
	return c.JSON(tags)
}

// LatestEntries handles GET /admin/bookmarks/latest-entries?since=&to=&days=
func (h *AdminHandler) LatestEntries(c *fiber.Ctx) error {
	p, ok, err := principal(c)
	if !ok {
		return err
	}
	window, err := parseTimeWindow(c)
	if err != nil {
		return bookmarksErrors.HandleServiceError(c, err)
	}
	bookmarks, err := h.service.AdminLatestEntries(c.UserContext(), p, window)
	if err != nil {
		return bookmarksErrors.HandleServiceError(c, err)
	}
	return c.JSON(bookmarks)
}

// Get handles GET /admin/bookmarks/:bookmarkId
func (h *AdminHandler) Get(c *fiber.Ctx) error {
	p, ok, err := principal(c)
	if !ok {
		return err
	}
	bookmark, err := h.service.GetAsAdmin(c.UserContext(), p, c.Params("bookmarkId"))
	if err != nil {
		return bookmarksErrors.HandleServiceError(c, err)
	}
	return c.JSON(bookmark)
}

// Create handles POST /admin/bookmarks
func (h *AdminHandler) Create(c *fiber.Ctx) error {
	p, ok, err := principal(c)
	if !ok {
		return err
	}
	b, err := parseBookmark(c)
	if err != nil {
		return bookmarksErrors.HandleServiceError(c, err)
	}

	id, err := h.service.CreateAsAdmin(c.UserContext(), p, b)
	if err != nil {
		return bookmarksErrors.HandleServiceError(c, err)
	}
	return createdResponse(c, h.publicAPIURL, b.UserID, id)
}

// Update handles PUT /admin/bookmarks/:bookmarkId
func (h *AdminHandler) Update(c *fiber.Ctx) error {
	p, ok, err := principal(c)
	if !ok {
		return err
	}
	b, err := parseBookmark(c)
	if err != nil {
		return bookmarksErrors.HandleServiceError(c, err)
	}

	updated, err := h.service.UpdateAsAdmin(c.UserContext(), p, c.Params("bookmarkId"), b)
	if err != nil {
		return bookmarksErrors.HandleServiceError(c, err)
	}
	return c.JSON(updated)
}

// Delete handles DELETE /admin/bookmarks/:bookmarkId
func (h *AdminHandler) Delete(c *fiber.Ctx) error {
	p, ok, err := principal(c)
	if !ok {
		return err
	}
	if err := h.service.DeleteAsAdmin(c.UserContext(), p, c.Params("bookmarkId")); err != nil {
		return bookmarksErrors.HandleServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// BulkDelete handles DELETE /admin/bookmarks?location=&userId=
func (h *AdminHandler) BulkDelete(c *fiber.Ctx) error {
	p, ok, err := principal(c)
	if !ok {
		return err
	}
	deleted, err := h.service.BulkDelete(c.UserContext(), p, c.Query("location"), c.Query("userId"))
	if err != nil {
		return bookmarksErrors.HandleServiceError(c, err)
	}
	log.Debug("bulk delete removed %d bookmarks", deleted)
	return c.SendStatus(fiber.StatusNoContent)
}
