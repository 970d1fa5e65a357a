package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/errgroup"

	database "github.com/FACorreiaa/go-simple-crud/app/db"
	appLogger "github.com/FACorreiaa/go-simple-crud/app/logger"
	"github.com/FACorreiaa/go-simple-crud/app/observability/metrics"
	"github.com/FACorreiaa/go-simple-crud/app/tracer"
	"github.com/FACorreiaa/go-simple-crud/config"
	_ "github.com/FACorreiaa/go-simple-crud/docs"
	"github.com/FACorreiaa/go-simple-crud/internal/api/access"
	"github.com/FACorreiaa/go-simple-crud/internal/api/auth"
	"github.com/FACorreiaa/go-simple-crud/internal/api/credential"
	"github.com/FACorreiaa/go-simple-crud/internal/api/post"
	"github.com/FACorreiaa/go-simple-crud/internal/api/user"
	"github.com/FACorreiaa/go-simple-crud/internal/router"
)

// @title        go-simple-crud API
// @version      1.0
// @description  Session-authenticated posts with owner-only mutation and soft delete.
// @host         localhost:8080
// @BasePath     /
func main() {
	// --- Initial Loading ---
	// Use standard log until slog is configured, in case godotenv fails
	err := godotenv.Load()
	if err != nil {
		log.Println("Warning: .env file not found or error loading:", err)
	}

	cfg, err := config.InitConfig()
	if err != nil {
		log.Fatalf("FATAL: Error initializing config: %v", err)
	}

	// --- Logger Setup ---
	logger := setupLogger()
	slog.SetDefault(logger) // Set globally after initialization

	// --- Application Context & Shutdown ---
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// --- Telemetry ---
	providers, err := tracer.InitTracingAndMetrics("go-simple-crud")
	if err != nil {
		logger.Error("Failed to initialize telemetry", slog.Any("error", err))
		os.Exit(1)
	}
	metrics.InitAppMetrics()

	// --- Database Setup ---
	dbConfig, err := database.NewDatabaseConfig(&cfg, logger)
	if err != nil {
		logger.Error("Failed to generate database config", slog.Any("error", err))
		os.Exit(1)
	}

	// Run migrations *before* initializing the main pool
	if err = database.RunMigrations(dbConfig.ConnectionURL, logger); err != nil {
		logger.Error("Failed to run database migrations", slog.Any("error", err))
		os.Exit(1)
	}

	pool, err := database.Init(dbConfig.ConnectionURL, logger)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	if !database.WaitForDB(ctx, pool, logger) {
		logger.Error("Database not ready after waiting, exiting.")
		os.Exit(1)
	}

	// --- Session Store ---
	var sessions auth.SessionStore
	switch cfg.Session.Store {
	case "redis":
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Repositories.Redis.Addr,
			Password: cfg.Repositories.Redis.Password,
			DB:       cfg.Repositories.Redis.DB,
		})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Error("Failed to connect to redis", slog.Any("error", err))
			os.Exit(1)
		}
		sessions = auth.NewRedisSessionStore(rdb, logger)
	default:
		sessions = auth.NewPostgresSessionStore(pool, logger)
	}
	logger.Info("Session store selected", slog.String("store", cfg.Session.Store))

	// --- Dependency Injection ---
	hasher := credential.NewHasher(cfg.Credential.BcryptCost)
	userService := user.NewUserService(user.NewPostgresUserRepo(pool, logger), hasher, logger)
	authService := auth.NewAuthService(userService, hasher, sessions, cfg.Session, logger)
	postService := post.NewPostService(post.NewPostgresPostRepo(pool, logger), logger)

	controller := access.NewController(userService, authService, postService, logger)
	cookies := auth.NewCookieManager(cfg.Session)
	handler := access.NewHandler(controller, cookies, logger)

	// --- Router Setup ---
	mainRouter := router.SetupRouter(&router.Config{
		Handler:        handler,
		Cookies:        cookies,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		LoginRequests:  cfg.RateLimit.Login.Requests,
		LoginWindow:    cfg.RateLimit.Login.Window,
		SwaggerEnabled: cfg.Handlers.Swagger.Enabled,
	})

	r := chi.NewMux()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(appLogger.StructuredLogger(logger))
	r.Use(tracer.RequestMetrics())
	r.Use(middleware.Recoverer)
	r.Use(middleware.StripSlashes)
	r.Use(middleware.Timeout(cfg.Server.Timeout))
	r.Use(middleware.Compress(5, "application/json")) // Compress JSON responses
	r.Mount("/", mainRouter)

	// --- HTTP Server Setup ---
	serverAddress := fmt.Sprintf(":%s", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         serverAddress,
		Handler:      otelhttp.NewHandler(r, "go-simple-crud"),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError), // Pipe server errors to slog
	}

	metricsAddress := fmt.Sprintf(":%s", cfg.Handlers.Prometheus.Port)
	metricsSrv := &http.Server{
		Addr:              metricsAddress,
		Handler:           providers.MetricsHandler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", serverAddress))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		logger.Info("Starting metrics server", slog.String("address", metricsAddress))
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("metrics server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		// Block until a signal arrives or a server fails
		<-gCtx.Done()
		logger.Info("Shutdown signal received, starting graceful shutdown...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		return errors.Join(
			srv.Shutdown(shutdownCtx),
			metricsSrv.Shutdown(shutdownCtx),
			providers.Shutdown(shutdownCtx),
		)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server stopped with error", slog.Any("error", err))
	}

	// Pool is closed by defer statement earlier
	logger.Info("Application shut down complete.")
}

// setupLogger configures and returns the application logger.
func setupLogger() *slog.Logger {
	var logger *slog.Logger
	env := os.Getenv("APP_ENV")

	if env == "development" || env == "" { // Default to development if not set
		// Colored logs for development
		tintOpts := &tint.Options{
			Level:      slog.LevelDebug, // More verbose in dev
			TimeFormat: time.Kitchen,
			AddSource:  true, // Show file:line
		}
		logger = slog.New(tint.NewHandler(os.Stdout, tintOpts))
		log.Println("Initialized development logger (tint)") // Use standard log before slog default is set
	} else {
		// JSON logs for production or other environments
		jsonOpts := &slog.HandlerOptions{
			Level:     slog.LevelInfo,
			AddSource: false, // Don't add source in prod unless needed for specific errors
		}
		logger = slog.New(slog.NewJSONHandler(os.Stdout, jsonOpts))
		log.Println("Initialized production logger (JSON)")
	}
	return logger
}
