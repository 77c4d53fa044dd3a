package postgres

import (
	"context"

	"github.com/elokman/health-api/internal/model"
	"github.com/elokman/health-api/pkg/httputil"
	"github.com/elokman/health-api/pkg/patch"
)

func (r *healthHistoryRepository) List(ctx context.Context, ownerID int64, page httputil.Page) ([]*model.HealthHistoryEntry, int, error) {
	items := []*model.HealthHistoryEntry{}
	total, err := r.list(ctx, &items, ownerID, page)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *healthHistoryRepository) Recent(ctx context.Context, ownerID int64, n int) ([]*model.HealthHistoryEntry, error) {
	items := []*model.HealthHistoryEntry{}
	if err := r.recent(ctx, &items, ownerID, n); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *healthHistoryRepository) Get(ctx context.Context, ownerID, id int64) (*model.HealthHistoryEntry, error) {
	var h model.HealthHistoryEntry
	if err := r.get(ctx, &h, ownerID, id); err != nil {
		return nil, err
	}
	return &h, nil
}

func (r *healthHistoryRepository) Create(ctx context.Context, h *model.HealthHistoryEntry) error {
	query := `
		INSERT INTO health_history (
			user_id, visit_date, hospital_name, visit_type,
			department, doctor_name, notes
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		h.UserID,
		h.VisitDate,
		h.HospitalName,
		h.VisitType,
		h.Department,
		h.DoctorName,
		h.Notes,
	).Scan(&h.ID, &h.CreatedAt, &h.UpdatedAt)
	if err != nil {
		return translate(err, r.resource, "create")
	}
	return nil
}

func (r *healthHistoryRepository) Update(ctx context.Context, ownerID, id int64, set []patch.Assignment) (*model.HealthHistoryEntry, error) {
	var h model.HealthHistoryEntry
	if err := r.update(ctx, &h, ownerID, id, set); err != nil {
		return nil, err
	}
	return &h, nil
}

func (r *healthHistoryRepository) Delete(ctx context.Context, ownerID, id int64) error {
	var h model.HealthHistoryEntry
	return r.delete(ctx, &h, ownerID, id)
}
