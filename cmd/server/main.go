package main

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"golang.org/x/sync/errgroup"

	"github.com/flowgrid/flowgrid-backend/internal/api/middleware"
	"github.com/flowgrid/flowgrid-backend/internal/api/rest"
	"github.com/flowgrid/flowgrid-backend/internal/auth"
	"github.com/flowgrid/flowgrid-backend/internal/config"
	"github.com/flowgrid/flowgrid-backend/internal/gate"
	"github.com/flowgrid/flowgrid-backend/internal/pkg/logger"
	"github.com/flowgrid/flowgrid-backend/internal/pkg/tracing"
	"github.com/flowgrid/flowgrid-backend/internal/repository"
	"github.com/flowgrid/flowgrid-backend/migrations"
)

func main() {
	log := logger.StdLogger()
	log.Info("flowgrid backend starting")

	cfg, err := config.Load()
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	cleanup, err := tracing.Init("flowgrid-backend", cfg.TracingEndpoint, cfg.TracingSamplingRate)
	if err != nil {
		log.Error("failed to init tracing", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	store, err := openStore(cfg)
	if err != nil {
		log.Error("failed to open store", "error", err, "driver", cfg.DatabaseDriver)
		os.Exit(1)
	}
	defer store.Close()

	migrationSQL, err := loadMigrations()
	if err != nil {
		log.Error("failed to load migrations", "error", err)
		os.Exit(1)
	}
	if err := store.RunMigrations(migrationSQL); err != nil {
		log.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	log.Info("database ready", "driver", cfg.DatabaseDriver)

	instrumented := repository.Instrument(store)

	g := gate.New(instrumented, cfg.WhitelistPrefixes, gate.Options{
		KeyValidator: buildKeyValidator(cfg, store, log),
		License:      buildLicense(cfg),
	})

	router := mux.NewRouter()
	router.HandleFunc("/health", rest.Healthz).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	apiRouter := router.PathPrefix("/api/v1").Subrouter()
	rest.SetupRoutes(apiRouter, rest.NewHandler(store))

	// Built outside router.Use so the gate sees every request, matched route
	// or not: an unknown /api/v1 path must still be denied, not 404'd past
	// the credential check.
	var handler http.Handler = router
	handler = g.Middleware(log, store)(handler)
	handler = middleware.Recover(handler)
	handler = middleware.SecureHeaders(handler)
	handler = middleware.StructuredLog(handler)
	handler = middleware.Tracing(handler)
	handler = middleware.RequestID(handler)

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", gate.ForwardedEmailHeader},
		AllowCredentials: true,
	})

	timeout := time.Duration(cfg.RequestTimeoutSec) * time.Second
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      c.Handler(handler),
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		log.Info("server listening", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	eg.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(),
			time.Duration(cfg.ShutdownTimeoutSec)*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := eg.Wait(); err != nil {
		log.Error("server failed", "error", err)
		os.Exit(1)
	}
	log.Info("server exited gracefully")
}

func openStore(cfg *config.Config) (repository.Store, error) {
	switch cfg.DatabaseDriver {
	case "postgres":
		return repository.NewPostgresRepository(cfg.DatabaseURL)
	case "sqlite", "":
		return repository.NewSQLiteRepository(cfg.DatabasePath)
	default:
		return nil, fmt.Errorf("unknown database driver: %s", cfg.DatabaseDriver)
	}
}

func loadMigrations() (string, error) {
	entries, err := fs.Glob(migrations.FS, "*.sql")
	if err != nil {
		return "", err
	}
	sort.Strings(entries)

	var sb strings.Builder
	for _, name := range entries {
		b, err := migrations.FS.ReadFile(name)
		if err != nil {
			return "", err
		}
		sb.Write(b)
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

func buildKeyValidator(cfg *config.Config, store repository.Store, log *slog.Logger) auth.KeyValidator {
	switch cfg.KeyValidatorMode {
	case "apikey":
		v, err := auth.NewAPIKeyValidator(store)
		if err != nil {
			log.Warn("api key validator unavailable", "error", err)
			return nil
		}
		return v
	case "jwt":
		if cfg.JWTSecret == "" {
			log.Warn("jwt key validator requested without a secret; disabled")
			return nil
		}
		return auth.NewJWTValidator(cfg.JWTSecret)
	default:
		return nil
	}
}

func buildLicense(cfg *config.Config) auth.LicenseChecker {
	platform := auth.ParsePlatform(cfg.PlatformType)
	if platform == auth.PlatformOpenSource {
		return nil
	}
	return auth.NewStaticLicense(platform, cfg.LicenseKey)
}
