package report

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/elokman/health-api/internal/model"
	"github.com/elokman/health-api/internal/repository"
	"github.com/elokman/health-api/internal/storage"
	apperrors "github.com/elokman/health-api/pkg/errors"
	"github.com/elokman/health-api/pkg/messaging"
	"github.com/elokman/health-api/pkg/metrics"
)

// Channel carries report lifecycle events.
const Channel = "reports"

const (
	EventCreated      = "report.created"
	EventDeleted      = "report.deleted"
	EventFileOrphaned = "report.file_orphaned"
)

// Upload is an accepted report file.
type Upload struct {
	Name   string
	Reader io.Reader
}

type Service struct {
	repo    repository.ReportRepository
	files   *storage.FileStore
	broker  messaging.Broker
	metrics *metrics.Metrics
}

func NewService(repo repository.ReportRepository, files *storage.FileStore, broker messaging.Broker, m *metrics.Metrics) *Service {
	return &Service{
		repo:    repo,
		files:   files,
		broker:  broker,
		metrics: m,
	}
}

// Create stores the optional file, then inserts the row. If the insert
// fails the file is removed again.
func (s *Service) Create(ctx context.Context, rep *model.Report, upload *Upload) error {
	var stored *storage.StoredFile
	if upload != nil {
		f, err := s.files.Save(upload.Name, upload.Reader)
		s.observe("save", err)
		if err != nil {
			return fmt.Errorf("failed to store report file: %w", err)
		}
		stored = f
		rep.FileName = &f.Name
		rep.FilePath = &f.Path
	}

	if err := s.repo.Create(ctx, rep); err != nil {
		if stored != nil {
			s.removeFile(ctx, rep.UserID, 0, stored.Name)
		}
		return err
	}

	attrs := map[string]string{"type": rep.Type}
	if stored != nil {
		attrs["file_name"] = stored.Name
	}
	s.publish(ctx, EventCreated, rep.UserID, rep.ID, attrs)
	return nil
}

// Delete removes the row first, then its file.
func (s *Service) Delete(ctx context.Context, ownerID, id int64) error {
	rep, err := s.repo.Delete(ctx, ownerID, id)
	if err != nil {
		return err
	}
	if rep.HasFile() {
		s.removeFile(ctx, ownerID, id, *rep.FileName)
	}
	s.publish(ctx, EventDeleted, ownerID, id, nil)
	return nil
}

// File resolves the stored file of a report for download.
func (s *Service) File(ctx context.Context, ownerID, id int64) (*model.Report, string, error) {
	rep, err := s.repo.Get(ctx, ownerID, id)
	if err != nil {
		return nil, "", err
	}
	if rep.FileName == nil || *rep.FileName == "" {
		return nil, "", apperrors.NewNotFound("report file", nil)
	}

	path, err := s.files.Path(*rep.FileName)
	if err != nil {
		return nil, "", apperrors.NewNotFound("report file", err)
	}
	if _, err := s.files.Stat(*rep.FileName); err != nil {
		if errors.Is(err, storage.ErrNotExist) {
			log.Ctx(ctx).Warn().Int64("report_id", id).Str("file", *rep.FileName).Msg("report file missing on disk")
			return nil, "", apperrors.NewNotFound("report file", err)
		}
		return nil, "", fmt.Errorf("failed to stat report file: %w", err)
	}
	s.observe("download", nil)
	return rep, path, nil
}

// RemoveFile deletes a stored file; a missing file is not an error.
func (s *Service) RemoveFile(name string) error {
	err := s.files.Remove(name)
	if errors.Is(err, storage.ErrNotExist) {
		return nil
	}
	return err
}

func (s *Service) removeFile(ctx context.Context, ownerID, reportID int64, name string) {
	err := s.files.Remove(name)
	switch {
	case err == nil:
		s.observe("remove", nil)
	case errors.Is(err, storage.ErrNotExist):
		log.Ctx(ctx).Warn().Str("file", name).Msg("report file already gone")
	default:
		s.observe("remove", err)
		log.Ctx(ctx).Error().Err(err).Str("file", name).Msg("failed to remove report file")
		s.publish(ctx, EventFileOrphaned, ownerID, reportID, map[string]string{"file_name": name})
	}
}

func (s *Service) publish(ctx context.Context, typ string, ownerID, reportID int64, attrs map[string]string) {
	if s.broker == nil {
		return
	}
	event := messaging.Event{
		Type:       typ,
		UserID:     ownerID,
		ResourceID: reportID,
		Attributes: attrs,
		OccurredAt: time.Now().UTC(),
	}
	if err := s.broker.Publish(ctx, Channel, event); err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("event", typ).Int64("report_id", reportID).Msg("failed to publish report event")
	}
}

func (s *Service) observe(op string, err error) {
	if s.metrics == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	s.metrics.FileOperations.WithLabelValues(op, status).Inc()
}
