package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	bookmarksErrors "github.com/bookmarksdev/api/bookmarks/errors"
	"github.com/bookmarksdev/api/bookmarks/handlers"
	"github.com/bookmarksdev/api/bookmarks/markdown"
	"github.com/bookmarksdev/api/bookmarks/models"
	"github.com/bookmarksdev/api/bookmarks/query"
	"github.com/bookmarksdev/api/bookmarks/services"
	dbi "github.com/bookmarksdev/api/internal/database/interfaces"
	"github.com/bookmarksdev/api/internal/types"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testAPIURL = "https://www.bookmarks.dev/api/"

type testServer struct {
	app      *fiber.App
	repo     *services.MockRepository
	users    *services.MockUserRepository
	searcher *services.MockSearcher
}

// newTestServer mounts every handler and injects p as the verified caller when it has a subject.
func newTestServer(p types.Principal) *testServer {
	repo := new(services.MockRepository)
	users := new(services.MockUserRepository)
	searcher := new(services.MockSearcher)
	svc := services.NewBookmarkService(repo, users, searcher, markdown.NewRenderer(), nil, services.Config{})

	personal := handlers.NewPersonalHandler(svc, testAPIURL)
	adminHandler := handlers.NewAdminHandler(svc, testAPIURL)
	public := handlers.NewPublicHandler(svc)

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if p.SubjectID != "" {
			c.Locals(types.PrincipalCtxName, p)
		}
		return c.Next()
	})

	app.Post("/personal/users/:userId/bookmarks", personal.Create)
	app.Get("/personal/users/:userId/bookmarks", personal.List)
	app.Get("/personal/users/:userId/bookmarks/tags", personal.Tags)
	app.Get("/personal/users/:userId/bookmarks/:bookmarkId", personal.Get)
	app.Put("/personal/users/:userId/bookmarks/:bookmarkId", personal.Update)
	app.Delete("/personal/users/:userId/bookmarks/:bookmarkId", personal.Delete)

	app.Get("/admin/bookmarks", adminHandler.List)
	app.Post("/admin/bookmarks", adminHandler.Create)
	app.Delete("/admin/bookmarks", adminHandler.BulkDelete)
	app.Get("/admin/bookmarks/latest-entries", adminHandler.LatestEntries)
	app.Get("/admin/tags", adminHandler.Tags)

	app.Get("/public/bookmarks", public.List)
	app.Get("/public/bookmarks/latest-entries", public.LatestEntries)
	app.Get("/public/bookmarks/:bookmarkId", public.Get)

	return &testServer{app: app, repo: repo, users: users, searcher: searcher}
}

func (s *testServer) do(t *testing.T, method, target string, body interface{}) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set(types.HeaderContentType, fiber.MIMEApplicationJSON)
	}

	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, raw
}

func errorCode(t *testing.T, raw []byte) string {
	t.Helper()
	var body bookmarksErrors.ErrorResponse
	require.NoError(t, json.Unmarshal(raw, &body))
	return body.Code
}

var (
	alice = types.NewPrincipal("alice", []string{"ROLE_USER"}, "")
	root  = types.NewPrincipal("root", []string{types.DefaultAdminRole}, "")
)

func payload(userID string, tags ...string) map[string]interface{} {
	if len(tags) == 0 {
		tags = []string{"go"}
	}
	return map[string]interface{}{
		"userId":   userID,
		"name":     "The Go Blog",
		"location": "https://go.dev/blog",
		"tags":     tags,
	}
}

func TestPersonalCreate(t *testing.T) {
	t.Run("201 with Location header", func(t *testing.T) {
		s := newTestServer(alice)
		s.repo.On("Insert", mock.Anything, mock.Anything).Return("b-1", nil).Once()

		resp, raw := s.do(t, http.MethodPost, "/personal/users/alice/bookmarks", payload("alice"))

		require.Equal(t, http.StatusCreated, resp.StatusCode)
		assert.Equal(t, testAPIURL+"personal/users/alice/bookmarks/b-1", resp.Header.Get(types.HeaderLocation))

		var created models.CreateResponse
		require.NoError(t, json.Unmarshal(raw, &created))
		assert.Equal(t, "b-1", created.ID)
		assert.Equal(t, "Bookmark created for userId alice", created.Response)
	})

	t.Run("401 when path owner is someone else", func(t *testing.T) {
		s := newTestServer(alice)
		resp, raw := s.do(t, http.MethodPost, "/personal/users/bob/bookmarks", payload("bob"))

		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, bookmarksErrors.CodeUnauthorized, errorCode(t, raw))
	})

	t.Run("400 when payload owner differs", func(t *testing.T) {
		s := newTestServer(alice)
		resp, _ := s.do(t, http.MethodPost, "/personal/users/alice/bookmarks", payload("bob"))
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("400 listing blocked tags", func(t *testing.T) {
		s := newTestServer(alice)
		resp, raw := s.do(t, http.MethodPost, "/personal/users/alice/bookmarks", payload("alice", "java", "awesome-list"))

		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Contains(t, string(raw), "awesome-list")
		s.repo.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
	})

	t.Run("409 on shared location conflict", func(t *testing.T) {
		s := newTestServer(alice)
		body := payload("alice")
		body["shared"] = true
		s.repo.On("FindOne", mock.Anything, query.SharedLocationConflict("https://go.dev/blog", "", "")).
			Return(&models.Bookmark{ID: "b-0", Shared: true}, nil).Once()

		resp, raw := s.do(t, http.MethodPost, "/personal/users/alice/bookmarks", body)

		require.Equal(t, http.StatusConflict, resp.StatusCode)
		assert.Equal(t, bookmarksErrors.CodeDuplicateLocation, errorCode(t, raw))
	})

	t.Run("401 without a principal", func(t *testing.T) {
		s := newTestServer(types.Principal{})
		resp, _ := s.do(t, http.MethodPost, "/personal/users/alice/bookmarks", payload("alice"))
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestMalformedBodyOnForeignPath(t *testing.T) {
	send := func(t *testing.T, s *testServer, method, target string) int {
		t.Helper()
		req := httptest.NewRequest(method, target, strings.NewReader(`{"name":`))
		req.Header.Set(types.HeaderContentType, fiber.MIMEApplicationJSON)
		resp, err := s.app.Test(req, -1)
		require.NoError(t, err)
		return resp.StatusCode
	}

	t.Run("create under someone else is 401", func(t *testing.T) {
		s := newTestServer(alice)
		assert.Equal(t, http.StatusUnauthorized, send(t, s, http.MethodPost, "/personal/users/bob/bookmarks"))
	})

	t.Run("update under someone else is 401", func(t *testing.T) {
		s := newTestServer(alice)
		assert.Equal(t, http.StatusUnauthorized, send(t, s, http.MethodPut, "/personal/users/bob/bookmarks/b-1"))
	})

	t.Run("own path is 400", func(t *testing.T) {
		s := newTestServer(alice)
		assert.Equal(t, http.StatusBadRequest, send(t, s, http.MethodPost, "/personal/users/alice/bookmarks"))
		assert.Equal(t, http.StatusBadRequest, send(t, s, http.MethodPut, "/personal/users/alice/bookmarks/b-1"))
	})

	t.Run("admin update is 400", func(t *testing.T) {
		s := newTestServer(root)
		assert.Equal(t, http.StatusBadRequest, send(t, s, http.MethodPut, "/personal/users/bob/bookmarks/b-1"))
	})
}

func TestPersonalReads(t *testing.T) {
	t.Run("location lookup 404", func(t *testing.T) {
		s := newTestServer(alice)
		s.repo.On("FindOne", mock.Anything, query.ByLocation("https://nowhere.dev", "alice")).Return(nil, dbi.ErrNoDocuments).Once()

		resp, raw := s.do(t, http.MethodGet, "/personal/users/alice/bookmarks?location=https://nowhere.dev", nil)

		require.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, bookmarksErrors.CodeNotFound, errorCode(t, raw))
	})

	t.Run("search with limit", func(t *testing.T) {
		s := newTestServer(alice)
		s.searcher.On("Search", mock.Anything, query.SearchSpec{Text: "generics", Limit: 5, Domain: query.DomainPersonal, OwnerID: "alice"}).
			Return([]models.Bookmark{{ID: "b-1", Name: "Generics"}}, nil).Once()

		resp, raw := s.do(t, http.MethodGet, "/personal/users/alice/bookmarks?q=generics&limit=5", nil)

		require.Equal(t, http.StatusOK, resp.StatusCode)
		var bookmarks []models.Bookmark
		require.NoError(t, json.Unmarshal(raw, &bookmarks))
		assert.Len(t, bookmarks, 1)
	})

	t.Run("latest accessed by default", func(t *testing.T) {
		s := newTestServer(alice)
		s.repo.On("Find", mock.Anything, query.Personal("alice")).Return([]models.Bookmark{}, nil).Once()

		resp, raw := s.do(t, http.MethodGet, "/personal/users/alice/bookmarks", nil)

		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.JSONEq(t, "[]", string(raw))
	})

	t.Run("accessible tags", func(t *testing.T) {
		s := newTestServer(alice)
		s.repo.On("Distinct", mock.Anything, query.FieldTags, query.AccessibleTags("alice")).Return([]string{"go", "java"}, nil).Once()

		resp, raw := s.do(t, http.MethodGet, "/personal/users/alice/bookmarks/tags", nil)

		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.JSONEq(t, `["go","java"]`, string(raw))
	})
}

func TestPersonalDelete(t *testing.T) {
	s := newTestServer(alice)
	s.repo.On("DeleteOne", mock.Anything, query.ByID("b-1", "alice")).Return(true, nil).Once()
	s.users.On("PullBookmarkReferences", mock.Anything, "b-1").Return(int64(3), nil).Once()

	resp, _ := s.do(t, http.MethodDelete, "/personal/users/alice/bookmarks/b-1", nil)

	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	s.users.AssertExpectations(t)
}

func TestAdminEndpoints(t *testing.T) {
	t.Run("bulk delete without filters is a bad request", func(t *testing.T) {
		s := newTestServer(root)
		resp, _ := s.do(t, http.MethodDelete, "/admin/bookmarks", nil)

		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		s.repo.AssertNotCalled(t, "DeleteMany", mock.Anything, mock.Anything)
	})

	t.Run("bulk delete by location", func(t *testing.T) {
		s := newTestServer(root)
		spec, err := query.BulkDelete("https://go.dev", "")
		require.NoError(t, err)
		s.repo.On("DeleteMany", mock.Anything, spec).Return(int64(2), nil).Once()

		resp, _ := s.do(t, http.MethodDelete, "/admin/bookmarks?location=https://go.dev", nil)
		require.Equal(t, http.StatusNoContent, resp.StatusCode)
	})

	t.Run("list filters", func(t *testing.T) {
		s := newTestServer(root)
		s.repo.On("Find", mock.Anything, query.AdminList(query.AdminFilter{PublicOnly: true, UserID: "bob"})).
			Return([]models.Bookmark{{ID: "b-1"}}, nil).Once()

		resp, _ := s.do(t, http.MethodGet, "/admin/bookmarks?public=true&userId=bob", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		s.repo.AssertExpectations(t)
	})

	t.Run("non admin is forbidden", func(t *testing.T) {
		s := newTestServer(alice)
		resp, raw := s.do(t, http.MethodGet, "/admin/tags", nil)

		require.Equal(t, http.StatusForbidden, resp.StatusCode)
		assert.Equal(t, bookmarksErrors.CodeForbidden, errorCode(t, raw))
	})

	t.Run("admin create allows blocked tags", func(t *testing.T) {
		s := newTestServer(root)
		s.repo.On("Insert", mock.Anything, mock.Anything).Return("b-7", nil).Once()

		resp, _ := s.do(t, http.MethodPost, "/admin/bookmarks", payload("bob", "awesome-go"))

		require.Equal(t, http.StatusCreated, resp.StatusCode)
		assert.Equal(t, testAPIURL+"personal/users/bob/bookmarks/b-7", resp.Header.Get(types.HeaderLocation))
	})
}

func TestPublicEndpoints(t *testing.T) {
	t.Run("latest entries with inverted window", func(t *testing.T) {
		s := newTestServer(types.Principal{})
		now := time.Now()
		since := strconv.FormatInt(now.Add(-2*24*time.Hour).UnixMilli(), 10)
		to := strconv.FormatInt(now.Add(-7*24*time.Hour).UnixMilli(), 10)

		resp, raw := s.do(t, http.MethodGet, "/public/bookmarks/latest-entries?since="+since+"&to="+to, nil)

		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, bookmarksErrors.CodeInvalidTimeRange, errorCode(t, raw))
	})

	t.Run("latest entries without parameters", func(t *testing.T) {
		s := newTestServer(types.Principal{})
		s.repo.On("Find", mock.Anything, mock.AnythingOfType("query.Spec")).Return([]models.Bookmark{}, nil).Once()

		resp, _ := s.do(t, http.MethodGet, "/public/bookmarks/latest-entries", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("unknown location", func(t *testing.T) {
		s := newTestServer(types.Principal{})
		s.repo.On("FindOne", mock.Anything, query.PublicByLocation("unknown_url")).Return(nil, dbi.ErrNoDocuments).Once()

		resp, _ := s.do(t, http.MethodGet, "/public/bookmarks?location=unknown_url", nil)
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("by tag", func(t *testing.T) {
		s := newTestServer(types.Principal{})
		s.repo.On("Find", mock.Anything, query.PublicByTag("java", 0)).Return([]models.Bookmark{{ID: "b-1"}}, nil).Once()

		resp, _ := s.do(t, http.MethodGet, "/public/bookmarks?tag=java", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("shared bookmark by id", func(t *testing.T) {
		s := newTestServer(types.Principal{})
		s.repo.On("FindOne", mock.Anything, query.PublicByID("b-1")).Return(&models.Bookmark{ID: "b-1", Shared: true}, nil).Once()

		resp, raw := s.do(t, http.MethodGet, "/public/bookmarks/b-1", nil)

		require.Equal(t, http.StatusOK, resp.StatusCode)
		var b models.Bookmark
		require.NoError(t, json.Unmarshal(raw, &b))
		assert.Equal(t, "b-1", b.ID)
	})
}

