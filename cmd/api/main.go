// Command api runs the recipeclub integration service: the payment provider
// webhook that mirrors subscription state, and the password recovery flow.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"recipeclub/internal/api/handlers"
	"recipeclub/internal/config"
	"recipeclub/internal/core"
	"recipeclub/internal/db"
	"recipeclub/internal/external"
	"recipeclub/internal/identity"
	"recipeclub/internal/payments"
	"recipeclub/internal/recovery"
)

const (
	shutdownTimeout = 10 * time.Second
	reaperInterval  = 1 * time.Hour
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	logger.Info("starting service",
		slog.String("service", cfg.Service),
		slog.String("environment", string(cfg.Environment)),
	)

	if err := db.RunMigrations(cfg.Database.URL.Unmask()); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := core.NewPrometheusMetrics(registry)

	profileRepo := db.NewSubscriptionProfileRepo(pool, logger)
	webhookLogRepo := db.NewWebhookLogRepo(pool, logger)
	codeRepo := db.NewVerificationCodeRepo(pool, logger)

	directory := identity.NewClient(cfg.Identity, logger)

	var sender recovery.CodeSender
	if cfg.Feature.EnableEmail {
		sender = external.NewMailer(
			&http.Client{Timeout: 15 * time.Second},
			external.MailerConfigFromApp(cfg.Email, logger),
		)
	} else {
		logger.Warn("email delivery disabled, recovery codes will only be logged")
	}

	processor := payments.NewProcessor(profileRepo, webhookLogRepo, directory, metrics, nil, logger)
	recoverySvc := recovery.NewService(codeRepo, sender, directory, metrics, nil, logger)

	verifier := payments.NewSignatureVerifier(cfg.Payment.WebhookSecret, logger)
	webhookHandler := handlers.NewPaymentWebhookHandler(verifier, processor, logger)

	srv, err := core.NewServer(cfg, logger)
	if err != nil {
		return fmt.Errorf("create server: %w", err)
	}
	srv.Metrics = metrics
	srv.HealthProbes = []core.HealthProbe{
		{Name: "database", Check: db.PoolProbe(pool)},
	}

	recoveryHandler := handlers.NewRecoveryHandler(recoverySvc, srv.Validator, !cfg.IsProduction(), logger)

	srv.V1RouteRegistrars = append(srv.V1RouteRegistrars,
		webhookHandler.RegisterRoutes,
		recoveryHandler.RegisterRoutes,
	)
	srv.MountRoutes()

	apiServer := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      srv.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	metricsServer := &http.Server{
		Addr:        ":" + cfg.Server.MetricsPort,
		Handler:     metricsMux,
		ReadTimeout: 15 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("api server listening", slog.String("addr", apiServer.Addr))
		if err := apiServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("api server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		logger.Info("metrics server listening", slog.String("addr", metricsServer.Addr))
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("metrics server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		runCodeReaper(gctx, recoverySvc, logger)
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		var errs []error
		if err := apiServer.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("api server shutdown: %w", err))
		}
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("metrics server shutdown: %w", err))
		}
		return errors.Join(errs...)
	})

	return g.Wait()
}

// runCodeReaper periodically deletes expired recovery codes so the table does
// not accumulate rows for codes nobody redeemed.
func runCodeReaper(ctx context.Context, svc *recovery.Service, logger *slog.Logger) {
	ticker := time.NewTicker(reaperInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := svc.PurgeExpired(ctx)
			if err != nil {
				logger.Error("expired code purge failed", slog.String("error", err.Error()))
				continue
			}
			if removed > 0 {
				logger.Info("purged expired recovery codes", slog.Int64("count", removed))
			}
		}
	}
}

func newLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	return slog.New(handler).With(
		slog.String("service", cfg.Service),
	)
}
