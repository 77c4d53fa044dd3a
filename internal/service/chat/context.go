package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/elokman/health-api/internal/model"
	"github.com/elokman/health-api/internal/repository"
)

// Context fetch limits.
const (
	MedicationLimit = 5
	HistoryLimit    = 3
	ReportLimit     = 3
)

const unknown = "Belirtilmemiş"

// Age returns whole years between birth and now, or nil when unknown.
func Age(birth *time.Time, now time.Time) *int {
	if birth == nil || birth.IsZero() {
		return nil
	}
	age := now.Year() - birth.Year()
	if now.Month() < birth.Month() || (now.Month() == birth.Month() && now.Day() < birth.Day()) {
		age--
	}
	if age < 0 {
		return nil
	}
	return &age
}

// Assembler gathers the caller's records for prompting.
type Assembler struct {
	repos *repository.Repositories
	now   func() time.Time
}

func NewAssembler(repos *repository.Repositories) *Assembler {
	return &Assembler{repos: repos, now: time.Now}
}

// Assemble never fails; each fetch error is logged and that part left empty.
func (a *Assembler) Assemble(ctx context.Context, userID int64) *model.ChatContext {
	logger := log.Ctx(ctx).With().Int64("user_id", userID).Logger()
	cc := &model.ChatContext{
		Medications:   []*model.Medication{},
		HealthHistory: []*model.HealthHistoryEntry{},
		Reports:       []*model.Report{},
	}

	if user, err := a.repos.Users.GetByID(ctx, userID); err != nil {
		logger.Error().Err(err).Msg("failed to load profile for chat context")
	} else {
		cc.Profile = &model.ChatProfile{
			FullName:    user.FullName,
			Email:       user.Email,
			PhoneNumber: user.PhoneNumber,
			BirthDate:   user.BirthDate,
			Gender:      user.Gender,
			Age:         Age(user.BirthDate, a.now()),
		}
	}

	if meds, err := a.repos.Medications.Recent(ctx, userID, MedicationLimit); err != nil {
		logger.Error().Err(err).Msg("failed to load medications for chat context")
	} else {
		cc.Medications = meds
	}

	if history, err := a.repos.HealthHistory.Recent(ctx, userID, HistoryLimit); err != nil {
		logger.Error().Err(err).Msg("failed to load health history for chat context")
	} else {
		cc.HealthHistory = history
	}

	if reports, err := a.repos.Reports.Recent(ctx, userID, ReportLimit); err != nil {
		logger.Error().Err(err).Msg("failed to load reports for chat context")
	} else {
		cc.Reports = reports
	}

	return cc
}

// ContextBlock renders the context as the lines appended to the system
// instruction. An empty string means nothing is known about the user.
func ContextBlock(cc *model.ChatContext) string {
	var b strings.Builder

	if p := cc.Profile; p != nil {
		b.WriteString("Kullanıcı Profili: " + orDefault(p.FullName, "Bilinmiyor"))
		if p.Age != nil && *p.Age > 0 {
			fmt.Fprintf(&b, ", %d yaşında", *p.Age)
		}
		if p.Gender != nil && *p.Gender != "" {
			b.WriteString(", Cinsiyet: " + *p.Gender)
		}
		b.WriteString("\n")
	}

	if len(cc.Medications) > 0 {
		b.WriteString("Kullandığı İlaçlar: " + medicationList(cc.Medications) + "\n")
	}

	if len(cc.HealthHistory) > 0 {
		items := make([]string, 0, len(cc.HealthHistory))
		for _, h := range cc.HealthHistory {
			items = append(items, fmt.Sprintf("%s - %s (%s)", h.VisitType, orDefault(h.Department, unknown), h.HospitalName))
		}
		b.WriteString("Son Sağlık Geçmişi: " + strings.Join(items, ", ") + "\n")
	}

	if len(cc.Reports) > 0 {
		items := make([]string, 0, len(cc.Reports))
		for _, r := range cc.Reports {
			items = append(items, fmt.Sprintf("%s - %s (%s)", r.Type, r.Status, orDefault(r.DoctorName, unknown)))
		}
		b.WriteString("Son Raporları: " + strings.Join(items, ", ") + "\n")
	}

	return b.String()
}

func medicationList(meds []*model.Medication) string {
	items := make([]string, 0, len(meds))
	for _, m := range meds {
		dose := m.Dose
		if strings.TrimSpace(dose) == "" {
			dose = "Doz belirtilmemiş"
		}
		items = append(items, fmt.Sprintf("%s (%s)", m.Name, dose))
	}
	return strings.Join(items, ", ")
}

func orDefault(s *string, def string) string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return def
	}
	return *s
}
