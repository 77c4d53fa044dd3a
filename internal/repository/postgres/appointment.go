package postgres

import (
	"context"

	"github.com/elokman/health-api/internal/model"
	"github.com/elokman/health-api/pkg/httputil"
	"github.com/elokman/health-api/pkg/patch"
)

func (r *appointmentRepository) List(ctx context.Context, ownerID int64, page httputil.Page) ([]*model.Appointment, int, error) {
	items := []*model.Appointment{}
	total, err := r.list(ctx, &items, ownerID, page)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *appointmentRepository) Recent(ctx context.Context, ownerID int64, n int) ([]*model.Appointment, error) {
	items := []*model.Appointment{}
	if err := r.recent(ctx, &items, ownerID, n); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *appointmentRepository) Get(ctx context.Context, ownerID, id int64) (*model.Appointment, error) {
	var a model.Appointment
	if err := r.get(ctx, &a, ownerID, id); err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *appointmentRepository) Create(ctx context.Context, a *model.Appointment) error {
	query := `
		INSERT INTO appointments (
			user_id, hospital, department, doctor,
			appointment_date, appointment_time, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		a.UserID,
		a.Hospital,
		a.Department,
		a.Doctor,
		a.AppointmentDate,
		a.AppointmentTime,
		a.Status,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return translate(err, r.resource, "create")
	}
	return nil
}

func (r *appointmentRepository) Update(ctx context.Context, ownerID, id int64, set []patch.Assignment) (*model.Appointment, error) {
	var a model.Appointment
	if err := r.update(ctx, &a, ownerID, id, set); err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *appointmentRepository) Delete(ctx context.Context, ownerID, id int64) error {
	var a model.Appointment
	return r.delete(ctx, &a, ownerID, id)
}
