package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/wildfire-risk-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/wildfire-risk-service/internal/adapter/kafka"
	"github.com/couchcryptid/wildfire-risk-service/internal/adapter/postgres"
	"github.com/couchcryptid/wildfire-risk-service/internal/app"
	"github.com/couchcryptid/wildfire-risk-service/internal/config"
	"github.com/couchcryptid/wildfire-risk-service/internal/observability"
	"github.com/couchcryptid/wildfire-risk-service/internal/pipeline"
	"github.com/couchcryptid/wildfire-risk-service/internal/scheduler"
	"github.com/joho/godotenv"
)

func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	assessor := app.NewAssessor(cfg, logger, metrics)

	var (
		ready   app.Readiness
		sinks   pipeline.MultiLoader
		closers []func() error
	)

	// Optional Postgres sink.
	if cfg.DatabaseURL != "" {
		store, err := postgres.Open(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			logger.Error("failed to open postgres", "error", err)
			os.Exit(1)
		}
		sinks = append(sinks, store)
		ready = append(ready, store)
		closers = append(closers, store.Close)
		logger.Info("postgres sink enabled")
	}

	// Optional Kafka request stream.
	var p *pipeline.Pipeline
	if cfg.KafkaEnabled {
		reader := kafkaadapter.NewReader(cfg, logger)
		writer := kafkaadapter.NewWriter(cfg, logger)
		streamSinks := append(pipeline.MultiLoader{writer}, sinks...)
		p = pipeline.New(reader, pipeline.NewTransformer(assessor, logger), streamSinks, logger, metrics, cfg.BatchSize)
		sinks = append(sinks, writer)
		ready = append(ready, p)
		closers = append(closers, reader.Close, writer.Close)
		logger.Info("kafka request stream enabled",
			"source_topic", cfg.KafkaSourceTopic,
			"sink_topic", cfg.KafkaSinkTopic,
		)
	}

	// Optional watch list, written to whichever sinks are enabled.
	var sched *scheduler.Scheduler
	if len(cfg.WatchLocations) > 0 {
		if len(sinks) == 0 {
			logger.Warn("WATCH_LOCATIONS set but no sink is enabled, watch list disabled")
		} else {
			sched, err = scheduler.New(cfg.WatchSchedule, cfg.WatchLocations, assessor, sinks, logger, metrics)
			if err != nil {
				logger.Error("failed to create scheduler", "error", err)
				os.Exit(1)
			}
			if err := sched.Start(ctx); err != nil {
				logger.Error("failed to start scheduler", "error", err)
				os.Exit(1)
			}
		}
	}

	srv := httpadapter.NewServer(cfg.HTTPAddr, assessor, ready, logger)

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start request stream.
	if p != nil {
		go func() {
			if err := p.Run(ctx); err != nil {
				logger.Error("pipeline error", "error", err)
			}
		}()
	}

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if sched != nil {
		select {
		case <-sched.Stop().Done():
		case <-shutdownCtx.Done():
			logger.Warn("watch run still in progress at shutdown")
		}
	}
	for _, c := range closers {
		if err := c(); err != nil {
			logger.Error("close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
