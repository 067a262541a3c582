// main is the entry point of the School API application.
//
// STARTUP SEQUENCE:
//  1. Load configuration (YAML file and/or environment)
//  2. Initialise the logger
//  3. Open the database and migrate the schema
//  4. Build the router with its shared dependencies
//  5. Start the HTTP server in a separate goroutine
//  6. Block until SIGINT or SIGTERM arrives
//  7. Gracefully shut down: finish in-flight requests, then release resources
//
// RUNNING THE SERVER:
//
//	JWT_SECRET=change-me-please-0123 go run ./cmd/school-api --config=config/local.yaml
//
// or with the path in the environment:
//
//	CONFIG_PATH=config/local.yaml go run ./cmd/school-api
//
//	@title						School API
//	@version					1.0
//	@description				Students, teachers and courses behind JWT authentication.
//	@BasePath					/
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Type "Bearer" followed by a space and the JWT.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aanand-mishra/school-api/internal/auth"
	"github.com/aanand-mishra/school-api/internal/config"
	"github.com/aanand-mishra/school-api/internal/http/middleware"
	"github.com/aanand-mishra/school-api/internal/http/router"
	"github.com/aanand-mishra/school-api/internal/logger"
	"github.com/aanand-mishra/school-api/internal/storage/gormstore"
)

const version = "1.0.0"

func main() {
	// ── 1. Load Config ────────────────────────────────────────────────────
	// MustLoad exits if the config is unreadable or JWT_SECRET is unset.
	cfg := config.MustLoad()

	// ── 2. Initialise Logger ──────────────────────────────────────────────
	log := logger.New(cfg.Env)

	log.Info().
		Str("env", cfg.Env).
		Str("version", version).
		Msg("starting school-api")

	// ── 3. Initialise Storage (Database) ──────────────────────────────────
	// The store is built once here and handed to every handler.
	store, err := gormstore.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialise storage")
	}
	log.Info().
		Str("driver", cfg.Storage.Driver).
		Msg("storage initialised")

	// ── 4. Build Router ───────────────────────────────────────────────────
	limiter := middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	handler := router.New(router.Deps{
		Store:          store,
		Issuer:         auth.NewIssuer(cfg.JWT.Secret, cfg.JWT.TTL),
		Limiter:        limiter,
		Log:            log,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
	})

	server := &http.Server{
		Addr:         cfg.HTTPServer.Addr(),
		Handler:      handler,
		ReadTimeout:  cfg.HTTPServer.ReadTimeout,
		WriteTimeout: cfg.HTTPServer.WriteTimeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	// ── 5. Start Server in a Goroutine ────────────────────────────────────
	go func() {
		log.Info().Str("address", server.Addr).Msg("server started")

		// ErrServerClosed is the normal result of Shutdown.
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server encountered an error")
		}
	}()

	// ── 6. Wait for Shutdown Signal ───────────────────────────────────────
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)
	<-done

	log.Info().Msg("shutdown signal received, stopping server...")

	// ── 7. Graceful Shutdown ──────────────────────────────────────────────
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	exitCode := 0
	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("failed to shutdown server gracefully")
		exitCode = 1
	}

	limiter.Stop()
	if err := store.Close(); err != nil {
		log.Error().Err(err).Msg("failed to close storage")
		exitCode = 1
	}

	log.Info().Msg("server stopped")
	os.Exit(exitCode)
}
