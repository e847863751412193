package app

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tablecli/internal/config"
	"tablecli/internal/infrastructure"
	"tablecli/internal/security"
	"tablecli/internal/services"
)

func newTestApplication(t *testing.T) *Application {
	t.Helper()
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	cfg := &config.Config{}
	cfg.Server.Port = 0
	cfg.Server.ReadTimeout = 15 * time.Second
	cfg.Server.RateLimit.Enabled = false

	app := &Application{
		Config:   cfg,
		Dataset:  services.NewDatasetServiceWithLogger(logger),
		Registry: prometheus.NewRegistry(),
		Logger:   logger,
	}
	app.Metrics = infrastructure.NewMetrics(app.Registry)
	app.setupRouter()
	return app
}

func TestApplication_HealthEndpoint(t *testing.T) {
	app := newTestApplication(t)

	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"healthy"`)
	assert.Contains(t, rec.Body.String(), `"dataset_loaded":false`)
}

func TestApplication_MetricsEndpoint(t *testing.T) {
	app := newTestApplication(t)

	// Drive one request through the instrumented group first
	app.Router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/health", nil))

	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "tablecli_http_requests_total")
}

func TestApplication_DatasetRoutesMounted(t *testing.T) {
	app := newTestApplication(t)

	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/dataset/status", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"loaded":false`)
}

func TestApplication_AuthGatesDatasetRoutes(t *testing.T) {
	app := newTestApplication(t)
	app.Verifier = security.NewStaticVerifier(map[string]string{"analyst": "open-sesame"}, app.Logger)
	app.setupRouter()

	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/dataset/status", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/dataset/status", nil)
	req.SetBasicAuth("analyst", "open-sesame")
	authed := httptest.NewRecorder()
	app.Router.ServeHTTP(authed, req)
	assert.Equal(t, http.StatusOK, authed.Code)

	// Health stays open regardless of the credential gate
	health := httptest.NewRecorder()
	app.Router.ServeHTTP(health, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusOK, health.Code)
}
