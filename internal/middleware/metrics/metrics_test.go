package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestMetricsMiddleware(t *testing.T) {
	m := New()

	app := fiber.New()
	app.Use(m.Middleware())
	app.Get("/public/bookmarks/:bookmarkId", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNotFound)
	})
	app.Get("/metrics", m.Handler())

	for _, id := range []string{"a", "b"} {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/public/bookmarks/"+id, nil))
		require.NoError(t, err)
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
	}

	require.Equal(t, float64(2), testutil.ToFloat64(m.requestsTotal.WithLabelValues("GET", "/public/bookmarks/:bookmarkId", "404")))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), "bookmarks_http_request_duration_seconds")
}
