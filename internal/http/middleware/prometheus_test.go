package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPromApp(t *testing.T) (*fiber.App, *PrometheusMiddleware, *prometheus.Registry) {
	t.Helper()
	// Fresh registry per test: collectors may only be registered once.
	reg := prometheus.NewRegistry()
	pm, err := NewPrometheusMiddleware(reg)
	require.NoError(t, err)

	app := fiber.New()
	app.Use(pm.Handler())
	return app, pm, reg
}

func TestPrometheusMiddleware(t *testing.T) {
	app, pm, _ := newPromApp(t)

	app.Get("/workspaces", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	app.Delete("/workspaces/:workspace_id/members/:user_id", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})
	app.Get("/error", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusBadRequest, "bad request")
	})

	resp, _ := app.Test(httptest.NewRequest("GET", "/workspaces", nil))
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, 1.0, testutil.ToFloat64(pm.requestCount.WithLabelValues("GET", "/workspaces", "200")))

	// Route patterns, not concrete ids, are used as labels.
	resp, _ = app.Test(httptest.NewRequest("DELETE", "/workspaces/w1/members/u1", nil))
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	assert.Equal(t, 1.0, testutil.ToFloat64(pm.requestCount.WithLabelValues("DELETE", "/workspaces/:workspace_id/members/:user_id", "204")))

	app.Test(httptest.NewRequest("GET", "/error", nil))
	assert.Equal(t, 1.0, testutil.ToFloat64(pm.requestCount.WithLabelValues("GET", "/error", "400")))

	assert.Equal(t, 3, testutil.CollectAndCount(pm.requestDuration))
}

func TestPrometheusMiddleware_UnmatchedRoutes(t *testing.T) {
	app, pm, _ := newPromApp(t)

	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	ws := app.Group("/workspaces", func(c *fiber.Ctx) error {
		return c.Next()
	})
	ws.Get("", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	ws.Get("/:workspace_id/documents/:document_id", func(c *fiber.Ctx) error {
		// Endpoints render their own 404 envelope.
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
	})

	for _, target := range []string{"/wp-admin/setup.php", "/.env", "/workspaces/w1/unknown"} {
		resp, err := app.Test(httptest.NewRequest("GET", target, nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode, target)
	}
	resp, err := app.Test(httptest.NewRequest("DELETE", "/workspaces", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusMethodNotAllowed, resp.StatusCode)

	app.Test(httptest.NewRequest("GET", "/", nil))
	app.Test(httptest.NewRequest("GET", "/workspaces/w1/documents/d1", nil))

	assert.Equal(t, 3.0, testutil.ToFloat64(pm.requestCount.WithLabelValues("GET", unmatchedRoute, "404")))
	assert.Equal(t, 1.0, testutil.ToFloat64(pm.requestCount.WithLabelValues("DELETE", unmatchedRoute, "405")))
	assert.Equal(t, 1.0, testutil.ToFloat64(pm.requestCount.WithLabelValues("GET", "/", "200")))
	assert.Equal(t, 0.0, testutil.ToFloat64(pm.requestCount.WithLabelValues("GET", "/", "404")))
	assert.Equal(t, 1.0, testutil.ToFloat64(pm.requestCount.WithLabelValues("GET", "/workspaces/:workspace_id/documents/:document_id", "404")))
}

func TestPrometheusMiddleware_SkipPaths(t *testing.T) {
	reg := prometheus.NewRegistry()
	pm, err := NewPrometheusMiddleware(reg, "/healthz")
	require.NoError(t, err)
	app := fiber.New()
	app.Use(pm.Handler())
	for _, p := range []string{"/metrics", "/healthz"} {
		app.Get(p, func(c *fiber.Ctx) error {
			return c.SendStatus(fiber.StatusOK)
		})
	}

	app.Test(httptest.NewRequest("GET", "/metrics", nil))
	app.Test(httptest.NewRequest("GET", "/healthz", nil))

	mfs, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range mfs {
		assert.Empty(t, mf.GetMetric(), "%s must not record skipped paths", mf.GetName())
	}
}

func TestNewPrometheusMiddleware_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewPrometheusMiddleware(reg)
	require.NoError(t, err)

	_, err = NewPrometheusMiddleware(reg)
	assert.Error(t, err)
}
