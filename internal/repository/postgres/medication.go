package postgres

import (
	"context"

	"github.com/elokman/health-api/internal/model"
	"github.com/elokman/health-api/pkg/httputil"
	"github.com/elokman/health-api/pkg/patch"
)

func (r *medicationRepository) List(ctx context.Context, ownerID int64, page httputil.Page) ([]*model.Medication, int, error) {
	items := []*model.Medication{}
	total, err := r.list(ctx, &items, ownerID, page)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *medicationRepository) Recent(ctx context.Context, ownerID int64, n int) ([]*model.Medication, error) {
	items := []*model.Medication{}
	if err := r.recent(ctx, &items, ownerID, n); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *medicationRepository) Get(ctx context.Context, ownerID, id int64) (*model.Medication, error) {
	var m model.Medication
	if err := r.get(ctx, &m, ownerID, id); err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *medicationRepository) Create(ctx context.Context, m *model.Medication) error {
	query := `
		INSERT INTO medications (user_id, name, dose, schedules)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowxContext(ctx, query, m.UserID, m.Name, m.Dose, m.Schedules).
		Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return translate(err, r.resource, "create")
	}
	return nil
}

func (r *medicationRepository) Update(ctx context.Context, ownerID, id int64, set []patch.Assignment) (*model.Medication, error) {
	var m model.Medication
	if err := r.update(ctx, &m, ownerID, id, set); err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *medicationRepository) Delete(ctx context.Context, ownerID, id int64) error {
	var m model.Medication
	return r.delete(ctx, &m, ownerID, id)
}
