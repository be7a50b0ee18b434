package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"familybooking/internal/api"
	"familybooking/internal/backup"
	"familybooking/internal/config"
	"familybooking/internal/domain"
	"familybooking/internal/events"
	"familybooking/internal/export"
	"familybooking/internal/family"
	"familybooking/internal/logging"
	"familybooking/internal/metrics"
	"familybooking/internal/repository"
	"familybooking/internal/service"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func() { _ = closer.Close() })()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	blobs, err := repository.Open(ctx, cfg, logging.Component(&logger, "storage"))
	if err != nil {
		logger.Error().Err(err).Str("backend", cfg.Storage.Backend).Msg("open storage")
		return err
	}
	defer blobs.Close()

	if cfg.Monitoring.PrometheusEnabled {
		metrics.Register()
	}

	registry := family.Default()
	eventBus := newEventBus(&logger)
	storage := repository.NewSnapshotStore(blobs, cfg.Storage.Key)
	store := service.NewBookingStore(ctx, storage, registry, eventBus, logging.Component(&logger, "booking-store"))

	exporter := export.NewExporter(cfg.Exports.Path, registry, logging.Component(&logger, "export"))
	httpServer := api.NewHTTPServer(cfg.API, store, registry, exporter, &logger)

	startBackups(ctx, store, cfg, &logger)
	startMetrics(ctx, cfg, &logger)

	return startServer(ctx, httpServer, cfg, &logger)
}

func loadConfigAndLogger() (*config.Config, zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("init logger: %w", err)
	}
	logger := baseLogger.With().Str("component", "main").Logger()

	return cfg, logger, closer, nil
}

// newEventBus logs every booking lifecycle event.
func newEventBus(logger *zerolog.Logger) *events.EventBus {
	bus := events.NewEventBus()
	eventLogger := logging.Component(logger, "events")

	bus.SubscribeAll(func(event *events.Event) error {
		var payload events.BookingEventPayload
		if err := event.Decode(&payload); err != nil {
			return err
		}
		eventLogger.Info().
			Str("event_type", event.Type).
			Str("booking_id", payload.BookingID).
			Str("date", payload.Date).
			Str("family_member", payload.FamilyMember).
			Msg("booking event")
		return nil
	}, events.EventBookingCreated, events.EventBookingUpdated, events.EventBookingDeleted)

	return bus
}

func startBackups(ctx context.Context, reader domain.BookingReader, cfg *config.Config, logger *zerolog.Logger) {
	svc := backup.NewBackupService(reader, cfg.Backup, logging.Component(logger, "backup"))
	go func() {
		if err := svc.Start(ctx); err != nil {
			logger.Error().Err(err).Msg("backup service stopped")
		}
	}()
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}

	port := cfg.Monitoring.PrometheusPort
	if port == 0 {
		port = 9090
	}
	go startMetricsServer(ctx, port, logger)
}

func startServer(ctx context.Context, httpServer *api.HTTPServer, cfg *config.Config, logger *zerolog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.Start()
	}()

	logger.Info().Int("http_port", cfg.API.HTTP.Port).Str("backend", cfg.Storage.Backend).Msg("familybooking started")

	select {
	case <-ctx.Done():
		logger.Info().Msg("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			logger.Error().Err(err).Msg("http server stopped")
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("http shutdown")
	}

	logger.Info().Msg("familybooking stopped")
	return nil
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
