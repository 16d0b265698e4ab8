package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"statuspage-cron/api"
	"statuspage-cron/client"
	"statuspage-cron/config"
	v1 "statuspage-cron/services/v1"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Invalid configuration")
	}
	logger := config.NewLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	schema, err := v1.ParseSchemaVersion(cfg.SchemaVersion)
	if err != nil {
		logger.WithError(err).Fatal("Invalid configuration")
	}

	sources, closeSources, err := sourceRepository(ctx, cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed setting up sources")
	}
	defer closeSources()

	var sinks []v1.Sink
	if cfg.RedisURI != "" {
		rdb, err := client.ConnectRedis(ctx, cfg.RedisURI)
		if err != nil {
			logger.WithError(err).Fatal("Failed connecting to Redis")
		}
		defer rdb.Close()
		sinks = append(sinks, v1.NewRedisPublisher(rdb))
		logger.Info("Publishing snapshots to Redis")
	}

	store := v1.NewMetricsStore()
	updater := v1.NewMetricsUpdater(v1.UpdaterOptions{
		Sources: sources,
		Factory: client.DefaultFactory,
		Builder: v1.NewSnapshotBuilder(schema, logger.WithField("component", "builder")),
		Store:   store,
		Sinks:   sinks,
		Timeout: cfg.BuildTimeout,
		Workers: cfg.Workers,
		Logger:  logger.WithField("component", "updater"),
	})

	scheduler, err := v1.NewMetricsScheduler(cfg.UpdateSchedule, updater, logger.WithField("component", "cron"))
	if err != nil {
		logger.WithError(err).Fatal("Invalid configuration")
	}
	scheduler.Start()

	if logger.GetLevel() < logrus.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           api.NewRouter(store, client.DefaultFactory, logger.WithField("component", "api")),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.WithField("port", cfg.Port).Info("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("HTTP server failed")
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.BuildTimeout+5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Warn("HTTP server did not shut down cleanly")
	}
	if err := scheduler.Stop(shutdownCtx); err != nil {
		logger.WithError(err).Warn("Metrics scheduler did not stop in time")
	}
}

// sourceRepository picks the configured backend. The Postgres backend is
// seeded from the sources file when that file exists.
func sourceRepository(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (v1.SourceRepository, func(), error) {
	file := v1.NewFileSourceRepository(cfg.SourcesFile)
	if cfg.SourcesBackend == config.BackendFile {
		logger.WithField("file", cfg.SourcesFile).Info("Reading sources from file")
		return file, func() {}, nil
	}

	db, err := client.ConnectPostgres(ctx, cfg.PostgresURI)
	if err != nil {
		return nil, nil, err
	}
	closeDB := func() { _ = db.Close() }

	repo := v1.NewPostgresSourceRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		closeDB()
		return nil, nil, err
	}

	if _, err := os.Stat(cfg.SourcesFile); err == nil {
		n, err := repo.Seed(ctx, file)
		if err != nil {
			closeDB()
			return nil, nil, err
		}
		logger.WithFields(logrus.Fields{"file": cfg.SourcesFile, "sources": n}).Info("Seeded sources into Postgres")
	}

	logger.Info("Reading sources from Postgres")
	return repo, closeDB, nil
}
