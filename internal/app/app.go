package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"energycli/internal/config"
	apperrors "energycli/internal/errors"
	"energycli/internal/infrastructure"
	customMiddleware "energycli/internal/middleware"
	"energycli/internal/services"
	handlers "energycli/internal/transport/http"
	"energycli/internal/websocket"
)

// Application represents the HTTP query server
type Application struct {
	Config       *config.Config
	Router       *chi.Mux
	Server       *http.Server
	Summary      *services.SummaryService
	Health       *services.HealthService
	Logger       *slog.Logger
	Telemetry    *infrastructure.OTelProviders
	Refresh      *services.RefreshService
	Hub          *websocket.Hub
	errorHandler *apperrors.ErrorHandler
}

// Option configures optional parts of the Application.
type Option func(*Application)

// WithRefresh exposes the refresh endpoints. The application closes the
// service on Stop.
func WithRefresh(refresh *services.RefreshService) Option {
	return func(a *Application) {
		a.Refresh = refresh
	}
}

// WithHub serves refresh progress on /ws. The application stops the hub on
// Stop.
func WithHub(hub *websocket.Hub) Option {
	return func(a *Application) {
		a.Hub = hub
	}
}

// NewApplication creates the server over summary. A nil summary serves
// DATA_NOT_FOUND until a refresh fills it. A nil telemetry falls back to
// no-op providers.
func NewApplication(cfg *config.Config, summary *services.SummaryService, telemetry *infrastructure.OTelProviders, logger *slog.Logger, opts ...Option) *Application {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	if telemetry == nil {
		telemetry = infrastructure.NoopProviders(logger)
	}
	if summary == nil {
		summary = services.NewEmptySummaryService(telemetry.Metrics, logger)
	}

	a := &Application{
		Config:       cfg,
		Summary:      summary,
		Health:       services.NewHealthService(summary),
		Logger:       logger,
		Telemetry:    telemetry,
		errorHandler: apperrors.NewErrorHandler(logger, cfg.Logging.Development),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.setupRouter()
	a.createServer()
	return a
}

// setupRouter configures the chi router. Middleware order: RequestID,
// telemetry, logging, recovery, security headers, rate limit, timeout.
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.NewTelemetry(a.Telemetry).Handler)
	r.Use(customMiddleware.StructuredLogger(a.Logger))
	r.Use(customMiddleware.Recoverer(a.errorHandler))
	r.Use(customMiddleware.SecurityHeaders)

	if a.Config.Server.RateLimit.Enabled {
		r.Use(customMiddleware.NewRateLimiter(
			a.Config.Server.RateLimit.RPS,
			a.Config.Server.RateLimit.Burst,
			a.Logger,
			a.errorHandler,
		).Handler)
	}

	r.NotFound(a.errorHandler.NotFound)
	r.MethodNotAllowed(a.errorHandler.MethodNotAllowed)

	if a.Telemetry.PrometheusHTTP != nil {
		r.Method(http.MethodGet, "/metrics", a.Telemetry.PrometheusHTTP)
	}

	if a.Hub != nil {
		r.Method(http.MethodGet, "/ws", websocket.NewHandler(a.Hub, a.Logger))
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Use(chimiddleware.Timeout(a.Config.Server.WriteTimeout))

		healthHandler := handlers.NewHealthHandler(a.Health)
		r.Get("/health", healthHandler.HealthCheck)
		r.Get("/version", healthHandler.Version)

		summaryHandler := handlers.NewSummaryHandler(a.Summary, a.Logger, a.errorHandler)
		if a.Refresh != nil {
			summaryHandler.WithRefresh(handlers.NewRefreshHandler(a.Refresh, a.errorHandler))
		}
		r.Mount("/v1/summary", summaryHandler.Routes())
	})

	a.Router = r
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

// Run listens on the configured port and serves until ctx is cancelled.
func (a *Application) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.Server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", a.Server.Addr, err)
	}
	return a.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled, then shuts down gracefully.
func (a *Application) Serve(ctx context.Context, ln net.Listener) error {
	a.Logger.InfoContext(ctx, "Starting server",
		slog.String("address", ln.Addr().String()),
		slog.String("version", config.AppVersion))

	serveErr := make(chan error, 1)
	go func() {
		if err := a.Server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			return err
		}
		return nil
	case <-ctx.Done():
		a.Logger.InfoContext(ctx, "Shutdown requested")
	}

	return a.Stop(context.WithoutCancel(ctx))
}

// Stop shuts the server down, waiting up to ShutdownTimeout for in-flight
// requests. WebSocket clients are disconnected first, since Shutdown does
// not track hijacked connections. Telemetry providers stay with their owner.
func (a *Application) Stop(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	if a.Hub != nil {
		a.Hub.Stop()
	}
	if a.Refresh != nil {
		a.Refresh.Close()
	}

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	a.Logger.InfoContext(ctx, "Server stopped")
	return nil
}
