package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/elokman/health-api/internal/model"
	"github.com/elokman/health-api/internal/repository"
	apperrors "github.com/elokman/health-api/pkg/errors"
	"github.com/elokman/health-api/pkg/httputil"
	"github.com/elokman/health-api/pkg/patch"
)

// NewRepositories returns an empty in-memory datastore.
func NewRepositories() *repository.Repositories {
	return &repository.Repositories{
		Users:         NewUserRepository(),
		Medications:   NewMedicationRepository(),
		Appointments:  NewAppointmentRepository(),
		HealthHistory: NewHealthHistoryRepository(),
		Reports:       NewReportRepository(),
		Pinger:        pinger{},
	}
}

type pinger struct{}

func (pinger) PingContext(ctx context.Context) error { return ctx.Err() }

// UserRepository keeps users with unique username and email.
type UserRepository struct {
	mu    sync.RWMutex
	seq   int64
	users map[int64]*model.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[int64]*model.User)}
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Username == user.Username || strings.EqualFold(u.Email, user.Email) {
			return apperrors.NewConflict("user already exists", nil)
		}
	}
	r.seq++
	user.ID = r.seq
	user.CreatedAt = now()
	user.UpdatedAt = user.CreatedAt
	r.users[user.ID] = clone(user)
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, apperrors.NewNotFound(model.ResourceUser, nil)
	}
	return clone(u), nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			return clone(u), nil
		}
	}
	return nil, apperrors.NewNotFound(model.ResourceUser, nil)
}

func (r *UserRepository) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Username == username || strings.EqualFold(u.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (r *UserRepository) Update(ctx context.Context, id int64, set []patch.Assignment) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return nil, apperrors.NewNotFound(model.ResourceUser, nil)
	}
	updated := clone(u)
	if err := assign(updated, set); err != nil {
		return nil, err
	}
	updated.UpdatedAt = now()
	r.users[id] = updated
	return clone(updated), nil
}

// MedicationRepository orders by creation time, newest first.
type MedicationRepository struct {
	t *table[model.Medication]
}

func NewMedicationRepository() *MedicationRepository {
	return &MedicationRepository{t: newTable(model.ResourceMedication,
		func(m *model.Medication) *model.Owned { return &m.Owned },
		func(a, b *model.Medication) bool {
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.After(b.CreatedAt)
			}
			return a.ID > b.ID
		},
	)}
}

func (r *MedicationRepository) List(ctx context.Context, ownerID int64, page httputil.Page) ([]*model.Medication, int, error) {
	items, total := r.t.list(ownerID, page)
	return items, total, nil
}

func (r *MedicationRepository) Recent(ctx context.Context, ownerID int64, n int) ([]*model.Medication, error) {
	return r.t.recent(ownerID, n), nil
}

func (r *MedicationRepository) Get(ctx context.Context, ownerID, id int64) (*model.Medication, error) {
	return r.t.get(ownerID, id)
}

func (r *MedicationRepository) Create(ctx context.Context, m *model.Medication) error {
	r.t.create(m)
	return nil
}

func (r *MedicationRepository) Update(ctx context.Context, ownerID, id int64, set []patch.Assignment) (*model.Medication, error) {
	return r.t.update(ownerID, id, set)
}

func (r *MedicationRepository) Delete(ctx context.Context, ownerID, id int64) error {
	_, err := r.t.delete(ownerID, id)
	return err
}

// AppointmentRepository orders by date then time, earliest first.
type AppointmentRepository struct {
	t *table[model.Appointment]
}

func NewAppointmentRepository() *AppointmentRepository {
	return &AppointmentRepository{t: newTable(model.ResourceAppointment,
		func(a *model.Appointment) *model.Owned { return &a.Owned },
		func(a, b *model.Appointment) bool {
			if !a.AppointmentDate.Equal(b.AppointmentDate) {
				return a.AppointmentDate.Before(b.AppointmentDate)
			}
			return a.AppointmentTime < b.AppointmentTime
		},
	)}
}

func (r *AppointmentRepository) List(ctx context.Context, ownerID int64, page httputil.Page) ([]*model.Appointment, int, error) {
	items, total := r.t.list(ownerID, page)
	return items, total, nil
}

func (r *AppointmentRepository) Recent(ctx context.Context, ownerID int64, n int) ([]*model.Appointment, error) {
	return r.t.recent(ownerID, n), nil
}

func (r *AppointmentRepository) Get(ctx context.Context, ownerID, id int64) (*model.Appointment, error) {
	return r.t.get(ownerID, id)
}

func (r *AppointmentRepository) Create(ctx context.Context, a *model.Appointment) error {
	r.t.create(a)
	return nil
}

func (r *AppointmentRepository) Update(ctx context.Context, ownerID, id int64, set []patch.Assignment) (*model.Appointment, error) {
	return r.t.update(ownerID, id, set)
}

func (r *AppointmentRepository) Delete(ctx context.Context, ownerID, id int64) error {
	_, err := r.t.delete(ownerID, id)
	return err
}

// HealthHistoryRepository orders by visit date, newest first.
type HealthHistoryRepository struct {
	t *table[model.HealthHistoryEntry]
}

func NewHealthHistoryRepository() *HealthHistoryRepository {
	return &HealthHistoryRepository{t: newTable(model.ResourceHealthHistory,
		func(h *model.HealthHistoryEntry) *model.Owned { return &h.Owned },
		func(a, b *model.HealthHistoryEntry) bool {
			if !a.VisitDate.Equal(b.VisitDate) {
				return a.VisitDate.After(b.VisitDate)
			}
			return a.ID > b.ID
		},
	)}
}

func (r *HealthHistoryRepository) List(ctx context.Context, ownerID int64, page httputil.Page) ([]*model.HealthHistoryEntry, int, error) {
	items, total := r.t.list(ownerID, page)
	return items, total, nil
}

func (r *HealthHistoryRepository) Recent(ctx context.Context, ownerID int64, n int) ([]*model.HealthHistoryEntry, error) {
	return r.t.recent(ownerID, n), nil
}

func (r *HealthHistoryRepository) Get(ctx context.Context, ownerID, id int64) (*model.HealthHistoryEntry, error) {
	return r.t.get(ownerID, id)
}

func (r *HealthHistoryRepository) Create(ctx context.Context, h *model.HealthHistoryEntry) error {
	r.t.create(h)
	return nil
}

func (r *HealthHistoryRepository) Update(ctx context.Context, ownerID, id int64, set []patch.Assignment) (*model.HealthHistoryEntry, error) {
	return r.t.update(ownerID, id, set)
}

func (r *HealthHistoryRepository) Delete(ctx context.Context, ownerID, id int64) error {
	_, err := r.t.delete(ownerID, id)
	return err
}

// ReportRepository orders by report date, newest first.
type ReportRepository struct {
	t *table[model.Report]
}

func NewReportRepository() *ReportRepository {
	return &ReportRepository{t: newTable(model.ResourceReport,
		func(r *model.Report) *model.Owned { return &r.Owned },
		func(a, b *model.Report) bool {
			if !a.ReportDate.Equal(b.ReportDate) {
				return a.ReportDate.After(b.ReportDate)
			}
			return a.ID > b.ID
		},
	)}
}

func (r *ReportRepository) List(ctx context.Context, ownerID int64, page httputil.Page) ([]*model.Report, int, error) {
	items, total := r.t.list(ownerID, page)
	return items, total, nil
}

func (r *ReportRepository) Recent(ctx context.Context, ownerID int64, n int) ([]*model.Report, error) {
	return r.t.recent(ownerID, n), nil
}

func (r *ReportRepository) Get(ctx context.Context, ownerID, id int64) (*model.Report, error) {
	return r.t.get(ownerID, id)
}

func (r *ReportRepository) Create(ctx context.Context, rep *model.Report) error {
	r.t.create(rep)
	return nil
}

func (r *ReportRepository) Update(ctx context.Context, ownerID, id int64, set []patch.Assignment) (*model.Report, error) {
	return r.t.update(ownerID, id, set)
}

func (r *ReportRepository) Delete(ctx context.Context, ownerID, id int64) (*model.Report, error) {
	return r.t.delete(ownerID, id)
}

func (r *ReportRepository) FileReferenced(ctx context.Context, fileName string) (bool, error) {
	return r.t.exists(func(rep *model.Report) bool {
		return rep.FileName != nil && *rep.FileName == fileName
	}), nil
}
