package middleware

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
)

// unmatchedRoute labels requests that reached no endpoint, so scans of random
// URLs cannot blow up label cardinality.
const unmatchedRoute = "unmatched"

// PrometheusMiddleware records request counts and latency per route pattern.
type PrometheusMiddleware struct {
	requestCount    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	skip            map[string]struct{}
}

// NewPrometheusMiddleware registers the HTTP collectors on reg. Requests to
// /metrics and to any of skipPaths are not recorded.
func NewPrometheusMiddleware(reg prometheus.Registerer, skipPaths ...string) (*PrometheusMiddleware, error) {
	m := &PrometheusMiddleware{
		requestCount: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests processed.",
			},
			[]string{"method", "path", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency.",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		skip: map[string]struct{}{"/metrics": {}},
	}
	for _, p := range skipPaths {
		m.skip[p] = struct{}{}
	}

	for _, c := range []prometheus.Collector{m.requestCount, m.requestDuration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Handler returns the fiber middleware.
func (m *PrometheusMiddleware) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := m.skip[c.Path()]; ok {
			return c.Next()
		}

		start := time.Now()
		err := c.Next()

		path := routePattern(c, err)
		m.requestCount.WithLabelValues(c.Method(), path, strconv.Itoa(statusOf(c, err))).Inc()
		m.requestDuration.WithLabelValues(c.Method(), path).Observe(time.Since(start).Seconds())
		return err
	}
}

// routePattern returns the matched endpoint's pattern, e.g.
// /workspaces/:workspace_id/query. Endpoints render their own 404s, so a
// framework 404 or 405 reaching this point means the router found no endpoint;
// c.Route() then points at the last Use handler, not at anything the client asked for.
func routePattern(c *fiber.Ctx, err error) string {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) &&
		(fiberErr.Code == fiber.StatusNotFound || fiberErr.Code == fiber.StatusMethodNotAllowed) {
		return unmatchedRoute
	}
	r := c.Route()
	if r == nil || r.Path == "" {
		return unmatchedRoute
	}
	return r.Path
}
