package main

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/elokman/health-api/internal/config"
	"github.com/elokman/health-api/internal/repository"
	"github.com/elokman/health-api/internal/repository/memory"
	"github.com/elokman/health-api/internal/repository/postgres"
	reportsvc "github.com/elokman/health-api/internal/service/report"
	"github.com/elokman/health-api/internal/storage"
	"github.com/elokman/health-api/internal/worker"
	"github.com/elokman/health-api/pkg/logger"
	"github.com/elokman/health-api/pkg/messaging"
	"github.com/elokman/health-api/pkg/messaging/redis"
	"github.com/elokman/health-api/pkg/metrics"
)

// app holds the dependencies shared by serve and worker.
type app struct {
	cfg     *config.Config
	log     zerolog.Logger
	metrics *metrics.Metrics
	repos   *repository.Repositories
	broker  messaging.Broker
	files   *storage.FileStore
	reports *reportsvc.Service
	closers []func()
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	paths, _ := cmd.Flags().GetStringSlice("config-path")
	cfg, err := config.LoadConfig(paths...)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{
		cfg:     cfg,
		log:     logger.New(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format}),
		metrics: metrics.New("elokman"),
	}

	if err := a.openRepositories(ctx); err != nil {
		a.Close()
		return nil, err
	}
	if err := a.openBroker(ctx); err != nil {
		a.Close()
		return nil, err
	}

	files, err := storage.NewFileStore(cfg.Uploads.Dir)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.files = files
	a.reports = reportsvc.NewService(a.repos.Reports, files, a.broker, a.metrics)
	return a, nil
}

func (a *app) openRepositories(ctx context.Context) error {
	if a.cfg.Database.Driver == "memory" {
		a.log.Warn().Msg("using in-memory datastore, records are lost on restart")
		a.repos = memory.NewRepositories()
		return nil
	}

	db, err := postgres.NewDB(ctx, a.cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	a.closers = append(a.closers, func() { db.Close() })
	a.repos = postgres.NewRepositories(db)
	return nil
}

// openBroker uses redis when configured and an in-process broker otherwise.
func (a *app) openBroker(ctx context.Context) error {
	if a.cfg.Redis.URL == "" {
		a.broker = messaging.NewMemoryBroker()
	} else {
		connectCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		broker, err := redis.NewRedisBroker(connectCtx, redis.Config{URL: a.cfg.Redis.URL}, a.log)
		if err != nil {
			return err
		}
		a.broker = broker
	}
	a.closers = append(a.closers, func() { a.broker.Close() })
	return nil
}

// runWorkers starts the orphan sweeper and the file cleanup subscriber.
// Both stop when ctx is done.
func (a *app) runWorkers(ctx context.Context) {
	log := a.log.With().Str("component", "worker").Logger()

	sweeper := worker.NewOrphanSweeper(a.repos.Reports, a.files, a.cfg.Worker.SweepInterval, a.cfg.Worker.OrphanGrace, log, a.metrics)
	go sweeper.Start(ctx)

	cleanup := worker.NewFileCleanup(a.broker, a.reports, worker.FileCleanupConfig{}, log)
	go func() {
		if err := cleanup.Start(ctx); err != nil {
			log.Error().Err(err).Msg("file cleanup stopped")
		}
	}()
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}
