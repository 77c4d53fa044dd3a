// Package memory implements the repositories in process for tests and
// local runs without a database.
package memory

import (
	"fmt"
	"reflect"
	"sort"
	"sync"
	"time"

	"github.com/elokman/health-api/internal/model"
	apperrors "github.com/elokman/health-api/pkg/errors"
	"github.com/elokman/health-api/pkg/httputil"
	"github.com/elokman/health-api/pkg/patch"
)

// now is the clock used for timestamps.
var now = time.Now

// table is an owner-scoped set of rows kept in insertion order.
type table[T any] struct {
	mu       sync.RWMutex
	seq      int64
	rows     map[int64]*T
	owned    func(*T) *model.Owned
	less     func(a, b *T) bool
	resource string
}

func newTable[T any](resource string, owned func(*T) *model.Owned, less func(a, b *T) bool) *table[T] {
	return &table[T]{
		rows:     make(map[int64]*T),
		owned:    owned,
		less:     less,
		resource: resource,
	}
}

func clone[T any](row *T) *T {
	c := *row
	return &c
}

func (t *table[T]) sorted(ownerID int64) []*T {
	out := make([]*T, 0)
	for _, row := range t.rows {
		if t.owned(row).UserID == ownerID {
			out = append(out, clone(row))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if t.less(out[i], out[j]) {
			return true
		}
		if t.less(out[j], out[i]) {
			return false
		}
		return t.owned(out[i]).ID < t.owned(out[j]).ID
	})
	return out
}

func (t *table[T]) list(ownerID int64, page httputil.Page) ([]*T, int) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	all := t.sorted(ownerID)
	total := len(all)
	start := page.Offset()
	if start >= total {
		return []*T{}, total
	}
	end := start + page.Limit
	if end > total {
		end = total
	}
	return all[start:end], total
}

func (t *table[T]) recent(ownerID int64, n int) []*T {
	t.mu.RLock()
	defer t.mu.RUnlock()

	all := t.sorted(ownerID)
	if len(all) > n {
		all = all[:n]
	}
	return all
}

func (t *table[T]) get(ownerID, id int64) (*T, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	row, ok := t.rows[id]
	if !ok || t.owned(row).UserID != ownerID {
		return nil, apperrors.NewNotFound(t.resource, nil)
	}
	return clone(row), nil
}

func (t *table[T]) create(row *T) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.seq++
	o := t.owned(row)
	o.ID = t.seq
	o.CreatedAt = now()
	o.UpdatedAt = o.CreatedAt
	t.rows[o.ID] = clone(row)
}

func (t *table[T]) update(ownerID, id int64, set []patch.Assignment) (*T, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	row, ok := t.rows[id]
	if !ok || t.owned(row).UserID != ownerID {
		return nil, apperrors.NewNotFound(t.resource, nil)
	}
	updated := clone(row)
	if err := assign(updated, set); err != nil {
		return nil, err
	}
	t.owned(updated).UpdatedAt = now()
	t.rows[id] = updated
	return clone(updated), nil
}

func (t *table[T]) delete(ownerID, id int64) (*T, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	row, ok := t.rows[id]
	if !ok || t.owned(row).UserID != ownerID {
		return nil, apperrors.NewNotFound(t.resource, nil)
	}
	delete(t.rows, id)
	return row, nil
}

func (t *table[T]) exists(match func(*T) bool) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	for _, row := range t.rows {
		if match(row) {
			return true
		}
	}
	return false
}

// assign applies column assignments to the struct fields carrying the
// matching db tag, descending into embedded structs.
func assign(dst interface{}, set []patch.Assignment) error {
	v := reflect.ValueOf(dst).Elem()
	for _, a := range set {
		field, ok := fieldByColumn(v, a.Column)
		if !ok {
			return fmt.Errorf("unknown column %q", a.Column)
		}
		if err := setField(field, a.Value); err != nil {
			return fmt.Errorf("column %s: %w", a.Column, err)
		}
	}
	return nil
}

func fieldByColumn(v reflect.Value, column string) (reflect.Value, bool) {
	typ := v.Type()
	for i := 0; i < typ.NumField(); i++ {
		sf := typ.Field(i)
		if sf.Anonymous && sf.Type.Kind() == reflect.Struct {
			if f, ok := fieldByColumn(v.Field(i), column); ok {
				return f, true
			}
			continue
		}
		if sf.Tag.Get("db") == column {
			return v.Field(i), true
		}
	}
	return reflect.Value{}, false
}

func setField(field reflect.Value, value interface{}) error {
	if value == nil {
		field.Set(reflect.Zero(field.Type()))
		return nil
	}

	val := reflect.ValueOf(value)
	target := field.Type()
	if target.Kind() == reflect.Ptr && val.Kind() != reflect.Ptr {
		if !val.Type().ConvertibleTo(target.Elem()) {
			return fmt.Errorf("cannot assign %s to %s", val.Type(), target)
		}
		p := reflect.New(target.Elem())
		p.Elem().Set(val.Convert(target.Elem()))
		field.Set(p)
		return nil
	}
	if !val.Type().ConvertibleTo(target) {
		return fmt.Errorf("cannot assign %s to %s", val.Type(), target)
	}
	field.Set(val.Convert(target))
	return nil
}
