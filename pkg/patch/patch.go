// Package patch builds partial updates from JSON request bodies.
//
// A field takes part in an update only when its key is present in the body,
// so an explicit null is distinct from an omitted key.
package patch

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrEmpty is returned when a body carries no updatable field.
var ErrEmpty = errors.New("no fields to update")

// NullFieldError reports an explicit null on a column that cannot be cleared.
type NullFieldError struct {
	Field string
}

func (e *NullFieldError) Error() string {
	return fmt.Sprintf("%s cannot be null", e.Field)
}

// Fields holds the raw top-level keys of a JSON object body.
type Fields map[string]json.RawMessage

// Decode unmarshals body into dst and records which keys were present.
func Decode(body []byte, dst interface{}) (Fields, error) {
	var fields Fields
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, fmt.Errorf("request body must be a JSON object: %w", err)
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return nil, err
	}
	return fields, nil
}

func (f Fields) Has(key string) bool {
	_, ok := f[key]
	return ok
}

func (f Fields) IsNull(key string) bool {
	raw, ok := f[key]
	return ok && bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// Assignment is one column = value pair of an UPDATE statement.
type Assignment struct {
	Column string
	Value  interface{}
}

type setter struct {
	key      string
	column   string
	nullable bool
	value    func() interface{}
}

// Builder collects setters keyed by JSON field name.
type Builder struct {
	fields  Fields
	setters []setter
}

func NewBuilder(fields Fields) *Builder {
	return &Builder{fields: fields}
}

// Set registers a nullable column. An explicit null clears it.
func (b *Builder) Set(key, column string, value func() interface{}) *Builder {
	b.setters = append(b.setters, setter{key: key, column: column, nullable: true, value: value})
	return b
}

// Required registers a column that may be changed but never cleared.
func (b *Builder) Required(key, column string, value func() interface{}) *Builder {
	b.setters = append(b.setters, setter{key: key, column: column, value: value})
	return b
}

// Assignments returns the ordered assignments for the present keys.
func (b *Builder) Assignments() ([]Assignment, error) {
	var out []Assignment
	for _, s := range b.setters {
		if !b.fields.Has(s.key) {
			continue
		}
		if b.fields.IsNull(s.key) {
			if !s.nullable {
				return nil, &NullFieldError{Field: s.key}
			}
			out = append(out, Assignment{Column: s.column, Value: nil})
			continue
		}
		out = append(out, Assignment{Column: s.column, Value: s.value()})
	}

	if len(out) == 0 {
		return nil, ErrEmpty
	}
	return out, nil
}

// Value dereferences an optional request field.
func Value[T any](p *T) func() interface{} {
	return func() interface{} {
		if p == nil {
			return nil
		}
		return *p
	}
}
