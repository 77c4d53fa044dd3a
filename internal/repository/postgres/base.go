package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/elokman/health-api/pkg/httputil"
	"github.com/elokman/health-api/pkg/patch"
)

// ownedTable provides the statements shared by every per-user table.
type ownedTable struct {
	db       *sqlx.DB
	table    string
	columns  string
	orderBy  string
	resource string
}

func (t ownedTable) list(ctx context.Context, dst interface{}, ownerID int64, page httputil.Page) (int, error) {
	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE user_id = $1`, t.table)
	if err := t.db.GetContext(ctx, &total, countQuery, ownerID); err != nil {
		return 0, translate(err, t.resource, "count")
	}

	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE user_id = $1
		ORDER BY %s
		LIMIT $2 OFFSET $3`, t.columns, t.table, t.orderBy)
	if err := t.db.SelectContext(ctx, dst, query, ownerID, page.Limit, page.Offset()); err != nil {
		return 0, translate(err, t.resource, "list")
	}
	return total, nil
}

func (t ownedTable) recent(ctx context.Context, dst interface{}, ownerID int64, n int) error {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE user_id = $1 ORDER BY %s LIMIT $2`,
		t.columns, t.table, t.orderBy)
	if err := t.db.SelectContext(ctx, dst, query, ownerID, n); err != nil {
		return translate(err, t.resource, "list")
	}
	return nil
}

func (t ownedTable) get(ctx context.Context, dst interface{}, ownerID, id int64) error {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1 AND user_id = $2`, t.columns, t.table)
	if err := t.db.GetContext(ctx, dst, query, id, ownerID); err != nil {
		return translate(err, t.resource, "get")
	}
	return nil
}

func (t ownedTable) update(ctx context.Context, dst interface{}, ownerID, id int64, set []patch.Assignment) error {
	query, args := buildUpdate(t.table, t.columns, set, "id = $%d AND user_id = $%d", id, ownerID)
	if err := t.db.GetContext(ctx, dst, query, args...); err != nil {
		return translate(err, t.resource, "update")
	}
	return nil
}

func (t ownedTable) delete(ctx context.Context, dst interface{}, ownerID, id int64) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1 AND user_id = $2 RETURNING %s`, t.table, t.columns)
	if err := t.db.GetContext(ctx, dst, query, id, ownerID); err != nil {
		return translate(err, t.resource, "delete")
	}
	return nil
}

// buildUpdate renders UPDATE ... SET ..., updated_at = CURRENT_TIMESTAMP
// WHERE <where> RETURNING <columns>. where holds one %d per key argument.
func buildUpdate(table, columns string, set []patch.Assignment, where string, keys ...interface{}) (string, []interface{}) {
	parts := make([]string, 0, len(set)+1)
	args := make([]interface{}, 0, len(set)+len(keys))
	for i, a := range set {
		parts = append(parts, fmt.Sprintf("%s = $%d", a.Column, i+1))
		args = append(args, a.Value)
	}
	parts = append(parts, "updated_at = CURRENT_TIMESTAMP")

	positions := make([]interface{}, len(keys))
	for i, k := range keys {
		positions[i] = len(args) + 1
		args = append(args, k)
	}

	query := fmt.Sprintf(`UPDATE %s SET %s WHERE %s RETURNING %s`,
		table, strings.Join(parts, ", "), fmt.Sprintf(where, positions...), columns)
	return query, args
}
