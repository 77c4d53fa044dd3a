// Package user serves the caller's own profile and an aggregated view of
// their records.
package user

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/elokman/health-api/internal/model"
	"github.com/elokman/health-api/internal/repository"
	"github.com/elokman/health-api/pkg/patch"
)

// SummaryLimit is how many recent items of each kind the summary holds.
const SummaryLimit = 5

type Service struct {
	repos *repository.Repositories
}

func NewService(repos *repository.Repositories) *Service {
	return &Service{repos: repos}
}

func (s *Service) Profile(ctx context.Context, userID int64) (*model.User, error) {
	return s.repos.Users.GetByID(ctx, userID)
}

func (s *Service) UpdateProfile(ctx context.Context, userID int64, set []patch.Assignment) (*model.User, error) {
	return s.repos.Users.Update(ctx, userID, set)
}

// HealthSummary fails only when the user itself cannot be loaded; a
// failing section is logged and left empty.
func (s *Service) HealthSummary(ctx context.Context, userID int64) (*model.HealthSummary, error) {
	u, err := s.repos.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	summary := &model.HealthSummary{
		User: model.SummaryUser{
			ID:          u.ID,
			Name:        u.DisplayName(),
			Email:       u.Email,
			PhoneNumber: u.PhoneNumber,
			MemberSince: u.CreatedAt,
		},
		Medications:   []*model.Medication{},
		Appointments:  []*model.Appointment{},
		Reports:       []*model.Report{},
		HealthHistory: []*model.HealthHistoryEntry{},
	}

	logger := log.Ctx(ctx)
	if meds, err := s.repos.Medications.Recent(ctx, userID, SummaryLimit); err != nil {
		logger.Error().Err(err).Msg("failed to load medications for summary")
	} else {
		summary.Medications = meds
	}
	if appts, err := s.repos.Appointments.Recent(ctx, userID, SummaryLimit); err != nil {
		logger.Error().Err(err).Msg("failed to load appointments for summary")
	} else {
		summary.Appointments = appts
	}
	if reports, err := s.repos.Reports.Recent(ctx, userID, SummaryLimit); err != nil {
		logger.Error().Err(err).Msg("failed to load reports for summary")
	} else {
		summary.Reports = reports
	}
	if history, err := s.repos.HealthHistory.Recent(ctx, userID, SummaryLimit); err != nil {
		logger.Error().Err(err).Msg("failed to load health history for summary")
	} else {
		summary.HealthHistory = history
	}
	return summary, nil
}
