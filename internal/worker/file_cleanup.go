package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/elokman/health-api/internal/service/report"
	"github.com/elokman/health-api/pkg/messaging"
)

type FileCleanupConfig struct {
	RetryAttempts int
	RetryDelay    time.Duration
}

// FileRemover deletes a stored report file by name.
type FileRemover interface {
	RemoveFile(name string) error
}

// FileCleanup listens for orphaned-file events and retries the removal.
type FileCleanup struct {
	broker  messaging.Broker
	remover FileRemover
	config  FileCleanupConfig
	logger  zerolog.Logger
}

func NewFileCleanup(broker messaging.Broker, remover FileRemover, config FileCleanupConfig, logger zerolog.Logger) *FileCleanup {
	if config.RetryAttempts <= 0 {
		config.RetryAttempts = 3
	}
	if config.RetryDelay <= 0 {
		config.RetryDelay = time.Second
	}
	return &FileCleanup{
		broker:  broker,
		remover: remover,
		config:  config,
		logger:  logger.With().Str("worker", "file_cleanup").Logger(),
	}
}

// Start subscribes and blocks until ctx is done or the channel closes.
func (w *FileCleanup) Start(ctx context.Context) error {
	msgs, err := w.broker.Subscribe(ctx, report.Channel)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", report.Channel, err)
	}

	w.logger.Info().Msg("starting file cleanup subscriber")
	for {
		select {
		case <-ctx.Done():
			w.logger.Info().Msg("shutting down file cleanup subscriber")
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return nil
			}
			w.handle(ctx, msg)
		}
	}
}

func (w *FileCleanup) handle(ctx context.Context, msg []byte) {
	var event messaging.Event
	if err := json.Unmarshal(msg, &event); err != nil {
		w.logger.Warn().Err(err).Msg("dropping malformed report event")
		return
	}
	if event.Type != report.EventFileOrphaned {
		return
	}

	name := event.Attributes["file_name"]
	if name == "" {
		return
	}
	err := retry(ctx, w.config.RetryAttempts, w.config.RetryDelay, func() error {
		return w.remover.RemoveFile(name)
	})
	if err != nil {
		w.logger.Error().Err(err).Str("file", name).Int64("report_id", event.ResourceID).Msg("failed to remove orphaned file, leaving it to the sweeper")
		return
	}
	w.logger.Info().Str("file", name).Int64("report_id", event.ResourceID).Msg("removed orphaned file")
}

func retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(); err == nil {
			return nil
		}
		if i < attempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}
	return err
}
