package repository

import (
	"context"

	"github.com/elokman/health-api/internal/model"
	"github.com/elokman/health-api/pkg/httputil"
	"github.com/elokman/health-api/pkg/patch"
)

// All repository interfaces in one file.
// Owned resources are always addressed by (ownerID, id); a row owned by
// someone else is indistinguishable from a missing one.
type (
	UserRepository interface {
		Create(ctx context.Context, user *model.User) error
		GetByID(ctx context.Context, id int64) (*model.User, error)
		GetByEmail(ctx context.Context, email string) (*model.User, error)
		ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error)
		Update(ctx context.Context, id int64, set []patch.Assignment) (*model.User, error)
	}

	MedicationRepository interface {
		List(ctx context.Context, ownerID int64, page httputil.Page) ([]*model.Medication, int, error)
		Recent(ctx context.Context, ownerID int64, n int) ([]*model.Medication, error)
		Get(ctx context.Context, ownerID, id int64) (*model.Medication, error)
		Create(ctx context.Context, m *model.Medication) error
		Update(ctx context.Context, ownerID, id int64, set []patch.Assignment) (*model.Medication, error)
		Delete(ctx context.Context, ownerID, id int64) error
	}

	AppointmentRepository interface {
		List(ctx context.Context, ownerID int64, page httputil.Page) ([]*model.Appointment, int, error)
		Recent(ctx context.Context, ownerID int64, n int) ([]*model.Appointment, error)
		Get(ctx context.Context, ownerID, id int64) (*model.Appointment, error)
		Create(ctx context.Context, a *model.Appointment) error
		Update(ctx context.Context, ownerID, id int64, set []patch.Assignment) (*model.Appointment, error)
		Delete(ctx context.Context, ownerID, id int64) error
	}

	HealthHistoryRepository interface {
		List(ctx context.Context, ownerID int64, page httputil.Page) ([]*model.HealthHistoryEntry, int, error)
		Recent(ctx context.Context, ownerID int64, n int) ([]*model.HealthHistoryEntry, error)
		Get(ctx context.Context, ownerID, id int64) (*model.HealthHistoryEntry, error)
		Create(ctx context.Context, h *model.HealthHistoryEntry) error
		Update(ctx context.Context, ownerID, id int64, set []patch.Assignment) (*model.HealthHistoryEntry, error)
		Delete(ctx context.Context, ownerID, id int64) error
	}

	ReportRepository interface {
		List(ctx context.Context, ownerID int64, page httputil.Page) ([]*model.Report, int, error)
		Recent(ctx context.Context, ownerID int64, n int) ([]*model.Report, error)
		Get(ctx context.Context, ownerID, id int64) (*model.Report, error)
		Create(ctx context.Context, r *model.Report) error
		Update(ctx context.Context, ownerID, id int64, set []patch.Assignment) (*model.Report, error)
		// Delete returns the removed row so its file can be cleaned up.
		Delete(ctx context.Context, ownerID, id int64) (*model.Report, error)
		// FileReferenced reports whether any row points at the stored file name.
		FileReferenced(ctx context.Context, fileName string) (bool, error)
	}

	// Pinger is satisfied by datastores that can report readiness.
	Pinger interface {
		PingContext(ctx context.Context) error
	}
)

// Repositories bundles every datastore used by the API.
type Repositories struct {
	Users         UserRepository
	Medications   MedicationRepository
	Appointments  AppointmentRepository
	HealthHistory HealthHistoryRepository
	Reports       ReportRepository
	Pinger        Pinger
}
