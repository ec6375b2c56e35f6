package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/intern-assistant/platform/internal/identity"
	"github.com/intern-assistant/platform/internal/patient"
	"github.com/intern-assistant/platform/internal/report"
	"github.com/intern-assistant/platform/internal/shared/auth"
	"github.com/intern-assistant/platform/internal/shared/config"
	"github.com/intern-assistant/platform/internal/shared/database"
	"github.com/intern-assistant/platform/internal/shared/logging"
	"github.com/intern-assistant/platform/internal/shared/metrics"
	secmiddleware "github.com/intern-assistant/platform/internal/shared/middleware"
	"github.com/intern-assistant/platform/internal/visit"
)

// App holds all application dependencies
type App struct {
	Config *config.Config
	DB     *database.DB
}

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Server.Env)

	db, err := database.New(ctx, cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("database connection failed")
	}
	defer db.Close()

	if err := db.Migrate(&identity.User{}, &patient.Patient{}, &visit.Visit{}); err != nil {
		logger.Fatal().Err(err).Msg("migration failed")
	}

	app := &App{Config: cfg, DB: db}

	// Repositories
	userRepo := identity.NewRepository(db.Gorm)
	patientRepo := patient.NewRepository(db.Gorm)
	visitRepo := visit.NewRepository(db.Gorm)

	// The roster must exist before the first login can succeed.
	if err := identity.Seed(ctx, userRepo, cfg.Seed); err != nil {
		logger.Fatal().Err(err).Msg("user seeding failed")
	}

	// Domain services
	deriver := patient.NewDeriver(cfg.Derive)
	aggregator := visit.NewAggregator(visitRepo, userRepo, patientRepo)

	var engine report.Engine
	if cfg.Report.PDFEnabled {
		engine = report.NewMarotoEngine()
	}

	// Handlers
	identityHandler := identity.NewHandler(userRepo, cfg.Auth)
	patientHandler := patient.NewHandler(patientRepo, deriver, aggregator)
	visitHandler := visit.NewHandler(visitRepo, aggregator, patientRepo)
	reportHandler := report.NewHandler(aggregator, engine)

	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(secmiddleware.SecurityHeaders)
	r.Use(secmiddleware.InputSanitizer)
	r.Use(metrics.Middleware)
	r.Use(logging.RequestLogger(logger))
	r.Use(corsMiddleware)

	// Unauthenticated surface
	r.Get("/", infoHandler)
	r.Get("/health", healthHandler(app))
	r.Get("/ready", readyHandler(app))
	r.Handle("/metrics", metrics.Handler())

	loginLimiter := secmiddleware.NewIPRateLimiter(cfg.Auth.LoginRPS, cfg.Auth.LoginBurst)
	r.Group(func(r chi.Router) {
		r.Use(loginLimiter.Middleware)
		r.Mount("/auth", identityHandler.Routes())
	})

	// Everything else requires a bearer token.
	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware(cfg.Auth, userRepo))
		r.Mount("/patients", patientHandler.Routes())
		r.Mount("/visits", visitHandler.Routes())
		r.Mount("/reports", reportHandler.Routes())
		r.Get("/ai/rollup.pdf", reportHandler.RollupPDF)
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	done := make(chan bool)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		logger.Info().Msg("shutting down server")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Error().Err(err).Msg("server shutdown error")
		}
		close(done)
	}()

	logger.Info().
		Str("env", cfg.Server.Env).
		Int("port", cfg.Server.Port).
		Bool("pdf_enabled", cfg.Report.PDFEnabled).
		Msg("intern rounds assistant listening")

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal().Err(err).Msg("server error")
	}

	<-done
	logger.Info().Msg("server stopped")
}

func infoHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"ok":      true,
		"name":    "Intern Rounds Assistant",
		"version": "0.1.0",
		"ts":      visit.LocalNow().Format(time.RFC3339),
	})
}

func healthHandler(app *App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{
			"status": "healthy",
		})
	}
}

func readyHandler(app *App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := map[string]string{
			"server": "ready",
		}

		if err := app.DB.Health(r.Context()); err != nil {
			checks["database"] = "not ready: " + err.Error()
		} else {
			checks["database"] = "ready"
		}

		allReady := true
		for _, status := range checks {
			if status != "ready" {
				allReady = false
				break
			}
		}

		status := http.StatusOK
		if !allReady {
			status = http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]any{
			"status": map[bool]string{true: "ready", false: "not ready"}[allReady],
			"checks": checks,
		})
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Authorization, Content-Type, X-Request-ID")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
