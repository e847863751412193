package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"tablecli/internal/config"
	"tablecli/internal/files"
	"tablecli/internal/infrastructure"
	custommw "tablecli/internal/middleware"
	"tablecli/internal/security"
	"tablecli/internal/services"
	handlers "tablecli/internal/transport/http"
)

// Version is set at build time via -ldflags
var Version = "dev"

// Application wires the service, transport and infrastructure layers
// together for the HTTP server
type Application struct {
	Config   *config.Config
	Router   *chi.Mux
	Server   *http.Server
	Dataset  *services.DatasetService
	Verifier security.Verifier
	Metrics  *infrastructure.Metrics
	Registry *prometheus.Registry
	Logger   *slog.Logger
	Paths    *config.Paths
}

// NewApplication creates a fully wired application from configuration
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.Info("application starting",
		slog.String("version", Version),
		slog.Int("port", cfg.Server.Port))

	paths := config.NewPaths(cfg.Paths)
	if err := paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}

	app := &Application{
		Config:   cfg,
		Dataset:  services.NewDatasetServiceWithLogger(logger),
		Registry: prometheus.NewRegistry(),
		Logger:   logger,
		Paths:    paths,
	}
	app.Registry.MustRegister(collectors.NewGoCollector())
	app.Metrics = infrastructure.NewMetrics(app.Registry)

	if cfg.Auth.Enabled {
		verifier, err := security.NewScryptVerifier(cfg.Auth.CredentialsFile, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to load credentials: %w", err)
		}
		app.Verifier = verifier
	}

	app.setupRouter()
	app.createServer()
	return app, nil
}

// setupRouter configures the HTTP router with all routes
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	r.Use(custommw.RequestID)
	r.Use(chimiddleware.RealIP)

	r.Group(func(r chi.Router) {
		r.Use(custommw.Metrics(a.Metrics))
		r.Use(custommw.StructuredLogger(a.Logger))
		r.Use(custommw.Recoverer(a.Logger))
		r.Use(custommw.SecureHeaders)
		r.Use(custommw.Timeout(a.Config.Server.ReadTimeout, a.Logger))

		if a.Config.Server.RateLimit.Enabled {
			r.Use(custommw.NewRateLimiter(
				a.Config.Server.RateLimit.RPS,
				a.Config.Server.RateLimit.Burst,
				a.Logger,
			).Handler)
		}

		r.Get("/api/health", a.handleHealth)

		if a.Paths != nil {
			discovery := files.NewDiscovery(a.Paths)
			r.Mount("/api/files", handlers.NewFilesHandler(discovery, a.Logger).Routes())
		}

		r.Route("/api/dataset", func(r chi.Router) {
			if a.Verifier != nil {
				r.Use(custommw.BasicAuth(a.Verifier, a.Logger))
			}
			r.Mount("/", handlers.NewDatasetHandler(a.Dataset, a.Logger).Routes())
		})
	})

	// Outside the middleware group so scrapes stay cheap
	r.Handle("/metrics", promhttp.HandlerFor(a.Registry, promhttp.HandlerOpts{}))

	a.Router = r
}

// handleHealth reports process liveness and dataset state
func (a *Application) handleHealth(w http.ResponseWriter, r *http.Request) {
	st := a.Dataset.Status()
	a.Metrics.DatasetRows.Set(float64(st.Rows))
	a.Metrics.DatasetColumns.Set(float64(st.Columns))

	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"status":"healthy","version":%q,"dataset_loaded":%t}`, Version, st.Loaded)
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:         fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:      a.Router,
		ReadTimeout:  a.Config.Server.ReadTimeout,
		WriteTimeout: a.Config.Server.WriteTimeout,
		IdleTimeout:  a.Config.Server.IdleTimeout,
	}
}

// Run starts the HTTP server and blocks until the context is
// cancelled, then shuts down gracefully
func (a *Application) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.Logger.InfoContext(ctx, "server listening", slog.String("addr", a.Server.Addr))
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		a.Logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Config.Server.ShutdownTimeout)
		defer cancel()
		if err := a.Server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		return nil
	})

	err := g.Wait()
	infrastructure.CloseLogFile()
	return err
}
