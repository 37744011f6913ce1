package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"twstock/internal/config"
	apierrors "twstock/internal/errors"
	"twstock/internal/infrastructure"
	customMiddleware "twstock/internal/middleware"
	"twstock/internal/services"
	"twstock/internal/table"
	handlers "twstock/internal/transport/http"
)

// Application represents the main application container
type Application struct {
	Config        *config.Config
	Paths         *config.Paths
	Router        *chi.Mux
	Server        *http.Server
	Logger        *slog.Logger
	Services      *ServiceContainer
	OTelProviders *infrastructure.OTelProviders
	ErrorHandler  *apierrors.ErrorHandler
}

// ServiceContainer holds all application services
type ServiceContainer struct {
	Stock    *services.StockService
	Analysis *services.AnalysisService
	Daily    *services.DailyService
	Catalog  *services.Catalog
	Health   *services.HealthService
}

// NewApplication loads the configuration and logger from the environment
// and builds the application.
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return New(cfg, logger)
}

// New wires the application from an explicit configuration.
func New(cfg *config.Config, logger *slog.Logger) (*Application, error) {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}

	logger.Info("Application starting",
		slog.String("name", config.AppName),
		slog.String("version", config.AppVersion))

	paths, err := config.ResolvePaths(cfg.Paths)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve paths: %w", err)
	}

	logger.Info("Ensuring required directories exist")
	if err := paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}
	paths.LogPathResolution(logger)

	otelProviders, err := infrastructure.InitializeOTel(cfg.Telemetry, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Paths:         paths,
		Logger:        logger,
		OTelProviders: otelProviders,
		ErrorHandler:  apierrors.NewErrorHandler(logger, cfg.Server.Debug),
	}

	if err := app.initializeServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	if err := app.setupRouter(); err != nil {
		return nil, fmt.Errorf("failed to set up router: %w", err)
	}

	app.createServer()

	return app, nil
}

// initializeServices initializes all application services
func (a *Application) initializeServices() error {
	metrics, err := infrastructure.NewQueryMetrics(a.OTelProviders.Meter)
	if err != nil {
		return fmt.Errorf("failed to create query metrics: %w", err)
	}

	loader := table.NewLoader(a.Logger, table.WithObserver(metrics))
	opts := []services.Option{
		services.WithMetrics(metrics),
		services.WithTracer(a.OTelProviders.Tracer),
		services.WithConcurrency(a.Config.Query.BatchConcurrency),
	}

	a.Services = &ServiceContainer{
		Stock:    services.NewStockService(loader, a.Paths, a.Logger, opts...),
		Analysis: services.NewAnalysisService(loader, a.Paths, a.Logger, opts...),
		Daily:    services.NewDailyService(loader, a.Paths, a.Logger, opts...),
		Catalog:  services.NewCatalog(a.Paths, a.Logger),
		Health:   services.NewHealthService(config.AppVersion, a.Paths, a.Logger),
	}

	return nil
}

// setupRouter configures the HTTP router with all routes.
// Middleware order: RequestID → RealIP → OTel → Logger → Recoverer → headers → CORS → rate limit.
func (a *Application) setupRouter() error {
	r := chi.NewRouter()

	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)

	otelMiddleware, err := customMiddleware.NewOTelMiddleware(a.OTelProviders)
	if err != nil {
		return fmt.Errorf("failed to create OpenTelemetry middleware: %w", err)
	}
	r.Use(otelMiddleware.Handler)

	r.Use(customMiddleware.StructuredLogger(a.Logger))
	r.Use(customMiddleware.Recoverer(a.ErrorHandler))

	secure := customMiddleware.DefaultSecureHeaders()
	secure.DevMode = a.Config.Server.Debug
	r.Use(secure.Handler)

	if a.Config.Security.EnableCORS {
		r.Use(customMiddleware.CORS(a.corsConfig()))
	}

	if a.Config.Security.RateLimit.Enabled {
		r.Use(customMiddleware.NewRateLimiter(
			a.Config.Security.RateLimit.RPS,
			a.Config.Security.RateLimit.Burst,
			a.Logger,
		).Handler)
	}

	r.NotFound(a.ErrorHandler.NotFound)
	r.MethodNotAllowed(a.ErrorHandler.MethodNotAllowed)

	healthHandler := handlers.NewHealthHandler(a.Services.Health, a.Logger)
	r.Get("/health", healthHandler.HealthCheck)
	r.Handle("/metrics", handlers.NewMetricsHandler(a.OTelProviders.PrometheusHTTP))

	a.setupAPIRoutes(r, healthHandler)
	a.setupHTMLRoutes(r)

	a.Router = r
	return nil
}

// setupAPIRoutes configures the versioned query API
func (a *Application) setupAPIRoutes(r chi.Router, healthHandler *handlers.HealthHandler) {
	decoder := customMiddleware.NewParamValidator(a.Logger)
	query := a.Config.Query

	r.Route(config.APIPrefix, func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Use(customMiddleware.Timeout(a.Config.Server.RequestTimeout))
		r.Use(customMiddleware.StripSlashes)
		r.Use(customMiddleware.Compress(5))

		r.Get("/health/ready", healthHandler.ReadinessCheck)
		r.Get("/health/live", healthHandler.LivenessCheck)
		r.Get("/version", healthHandler.Version)
		r.Get("/stats", healthHandler.Stats)

		stockHandler := handlers.NewStockHandler(a.Services.Stock, a.Services.Catalog, decoder, query, a.Logger, a.ErrorHandler)
		r.Mount("/stock", stockHandler.Routes())

		analysisHandler := handlers.NewAnalysisHandler(a.Services.Analysis, decoder, query, a.Logger, a.ErrorHandler)
		r.Mount("/analysis", analysisHandler.Routes())

		dailyHandler := handlers.NewDailyHandler(a.Services.Daily, a.Services.Catalog, decoder, query, a.Logger, a.ErrorHandler)
		r.Mount("/daily", dailyHandler.Routes())
	})
}

// setupHTMLRoutes serves the frontend and the raw data files
func (a *Application) setupHTMLRoutes(r chi.Router) {
	r.Get("/", handlers.ServeMainApp(a.Paths.StaticDir))
	r.Get("/favicon.ico", handlers.ServeFavicon(a.Paths.StaticDir))
	r.Handle("/static/*", handlers.StaticFiles("/static", a.Paths.StaticDir, a.Config.Server.Debug))
	r.Handle("/data/*", handlers.DataFiles("/data", a.Paths.DataDir))
}

func (a *Application) corsConfig() customMiddleware.CORSConfig {
	return customMiddleware.CORSConfig{
		AllowedOrigins: a.Config.Security.AllowedOrigins,
		AllowedMethods: []string{"*"},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{customMiddleware.RequestIDHeader},
		MaxAge:         300,
		Logger:         a.Logger,
	}
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           a.Config.Server.Addr(),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
		ErrorLog:       slog.NewLogLogger(a.Logger.Handler(), slog.LevelError),
	}
}

// Start starts serving in the background. A listen failure cancels ctx
// through cancel.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	a.Logger.InfoContext(ctx, "Starting application",
		slog.String("name", config.AppName),
		slog.String("version", config.AppVersion),
		slog.String("address", a.Server.Addr),
		slog.String("level", a.Config.Logging.Level))

	if err := a.performStartupHealthCheck(ctx); err != nil {
		a.Logger.WarnContext(ctx, "Startup health check warnings", slog.String("warnings", err.Error()))
	}

	go func() {
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	if a.Config.Server.Debug {
		a.printBanner()
	}

	a.Logger.InfoContext(ctx, "Application started successfully",
		slog.String("address", a.Server.Addr))
	return nil
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}

	if err := infrastructure.CloseLogFile(); err != nil {
		a.Logger.ErrorContext(ctx, "Error closing log file", slog.String("error", err.Error()))
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return nil
}

// Run runs the application until interrupted
func (a *Application) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.Start(ctx, stop); err != nil {
		return err
	}

	<-ctx.Done()
	a.Logger.InfoContext(ctx, "Received interrupt signal")

	return a.Stop(ctx)
}

// performStartupHealthCheck reports data directories that cannot be read.
// Missing data is not fatal: queries answer 404 until files appear.
func (a *Application) performStartupHealthCheck(ctx context.Context) error {
	status := a.Services.Health.ReadinessCheck(ctx)
	if status.Status != services.StatusReady {
		return fmt.Errorf("data directories not ready: %v", status.Services)
	}
	if !config.FileExists(a.Paths.StaticFile("index.html")) {
		a.Logger.InfoContext(ctx, "Frontend not found, only the API is served",
			slog.String("static_dir", a.Paths.StaticDir))
	}

	a.Logger.InfoContext(ctx, "Startup health check passed")
	return nil
}

func (a *Application) printBanner() {
	host := a.Config.Server.Host
	if host == "" || host == "0.0.0.0" {
		host = "localhost"
	}
	url := fmt.Sprintf("http://%s:%d", host, a.Config.Server.Port)

	fmt.Println("========================================")
	fmt.Printf("%s %s\n", config.AppName, config.AppVersion)
	fmt.Printf("  Frontend: %s/\n", url)
	fmt.Printf("  API:      %s%s\n", url, config.APIPrefix)
	fmt.Printf("  Started:  %s\n", time.Now().Format(time.DateTime))
	fmt.Println("========================================")
}
