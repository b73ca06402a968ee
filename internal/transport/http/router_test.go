package httptransport

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"loginguard/internal/platform/metrics"
	"loginguard/pkg/testutil"
)

type RouterSuite struct {
	suite.Suite
	logger *slog.Logger
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) SetupSuite() {
	s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
}

func (s *RouterSuite) health(router http.Handler, expected int) healthResponse {
	rec := testutil.Get(router, "/healthz")
	testutil.AssertStatus(s.T(), rec, expected, "application/json")
	return testutil.UnmarshalResponse[healthResponse](s.T(), rec)
}

func (s *RouterSuite) TestHealthy() {
	ok := func(context.Context) error { return nil }
	router := NewRouter(NewHandler(map[string]HealthCheck{"postgres": ok, "redis": ok}, prometheus.NewRegistry(), s.logger))

	body := s.health(router, http.StatusOK)
	s.Equal("ok", body.Status)
	s.Equal(map[string]string{"postgres": "ok", "redis": "ok"}, body.Checks)
}

func (s *RouterSuite) TestDegraded() {
	checks := map[string]HealthCheck{
		"postgres": func(context.Context) error { return nil },
		"redis":    func(context.Context) error { return errors.New("connection refused") },
	}
	router := NewRouter(NewHandler(checks, prometheus.NewRegistry(), s.logger))

	body := s.health(router, http.StatusServiceUnavailable)
	s.Equal("degraded", body.Status)
	s.Equal("unavailable", body.Checks["redis"])
	s.Equal("ok", body.Checks["postgres"])
}

func (s *RouterSuite) TestMetrics() {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	m.IncrementEventsReceived()
	router := NewRouter(NewHandler(nil, reg, s.logger))

	rec := testutil.Get(router, "/metrics")
	testutil.AssertStatus(s.T(), rec, http.StatusOK, "text/plain")
	s.Contains(rec.Body.String(), "loginguard_bridge_events_received_total 1")
}

func TestRouter_MethodNotAllowed(t *testing.T) {
	router := NewRouter(NewHandler(nil, prometheus.NewRegistry(), nil))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/healthz", nil))
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Empty(t, rec.Body.String())
}
