package postgres

import (
	"context"
	"fmt"

	"github.com/elokman/health-api/internal/model"
	"github.com/elokman/health-api/pkg/httputil"
	"github.com/elokman/health-api/pkg/patch"
)

func (r *reportRepository) List(ctx context.Context, ownerID int64, page httputil.Page) ([]*model.Report, int, error) {
	items := []*model.Report{}
	total, err := r.list(ctx, &items, ownerID, page)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *reportRepository) Recent(ctx context.Context, ownerID int64, n int) ([]*model.Report, error) {
	items := []*model.Report{}
	if err := r.recent(ctx, &items, ownerID, n); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *reportRepository) Get(ctx context.Context, ownerID, id int64) (*model.Report, error) {
	var rep model.Report
	if err := r.get(ctx, &rep, ownerID, id); err != nil {
		return nil, err
	}
	return &rep, nil
}

func (r *reportRepository) Create(ctx context.Context, rep *model.Report) error {
	query := `
		INSERT INTO reports (
			user_id, type, doctor_name, report_date,
			status, file_name, file_path
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		rep.UserID,
		rep.Type,
		rep.DoctorName,
		rep.ReportDate,
		rep.Status,
		rep.FileName,
		rep.FilePath,
	).Scan(&rep.ID, &rep.CreatedAt, &rep.UpdatedAt)
	if err != nil {
		return translate(err, r.resource, "create")
	}
	return nil
}

func (r *reportRepository) Update(ctx context.Context, ownerID, id int64, set []patch.Assignment) (*model.Report, error) {
	var rep model.Report
	if err := r.update(ctx, &rep, ownerID, id, set); err != nil {
		return nil, err
	}
	return &rep, nil
}

func (r *reportRepository) Delete(ctx context.Context, ownerID, id int64) (*model.Report, error) {
	var rep model.Report
	if err := r.delete(ctx, &rep, ownerID, id); err != nil {
		return nil, err
	}
	return &rep, nil
}

func (r *reportRepository) FileReferenced(ctx context.Context, fileName string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM reports WHERE file_name = $1)`
	if err := r.db.GetContext(ctx, &exists, query, fileName); err != nil {
		return false, fmt.Errorf("failed to check report file reference: %w", err)
	}
	return exists, nil
}
