// Package handler holds the helpers shared by the resource handlers:
// owner lookup, path ids, binding and partial-update assembly.
package handler

import (
	"errors"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/elokman/health-api/pkg/auth"
	apperrors "github.com/elokman/health-api/pkg/errors"
	"github.com/elokman/health-api/pkg/httputil"
	"github.com/elokman/health-api/pkg/patch"
	"github.com/elokman/health-api/pkg/validator"
)

var errNoClaims = errors.New("no claims in request context")

// OwnerID returns the authenticated user's id.
func OwnerID(c *gin.Context) (int64, error) {
	claims, ok := auth.FromContext(c.Request.Context())
	if !ok {
		return 0, apperrors.Unauthorized(errNoClaims)
	}
	return claims.UserID, nil
}

// ParseID reads a positive integer path parameter.
func ParseID(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, validator.Field(name, "must be a positive integer")
	}
	return id, nil
}

// BindJSON binds and validates a JSON body.
func BindJSON(c *gin.Context, dst interface{}) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return validator.Translate(err)
	}
	return nil
}

// BindPage binds ?page=&limit=.
func BindPage(c *gin.Context) (httputil.Page, error) {
	var q httputil.PageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		return httputil.Page{}, validator.Translate(err)
	}
	return httputil.NewPage(q), nil
}

// BindPatch decodes a partial-update body into dst, validates it and
// returns the keys present in the body.
func BindPatch(c *gin.Context, dst interface{}) (patch.Fields, error) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return nil, validator.Errors{{Message: "failed to read request body"}}
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		return nil, validator.Errors{{Message: "request body is required"}}
	}
	fields, err := patch.Decode(body, dst)
	if err != nil {
		return nil, validator.Translate(err)
	}
	if err := validator.Struct(dst); err != nil {
		return nil, validator.Translate(err)
	}
	return fields, nil
}

// Assignments resolves a builder, mapping its failures to 400s.
func Assignments(b *patch.Builder) ([]patch.Assignment, error) {
	set, err := b.Assignments()
	if err == nil {
		return set, nil
	}
	var nullErr *patch.NullFieldError
	switch {
	case errors.Is(err, patch.ErrEmpty):
		return nil, apperrors.NewBadRequest("at least one field must be provided", err)
	case errors.As(err, &nullErr):
		return nil, validator.Field(nullErr.Field, "cannot be null")
	}
	return nil, err
}

// Text yields the escaped value of an optional free-text field.
func Text(p *string) func() interface{} {
	return func() interface{} {
		if p == nil {
			return nil
		}
		return validator.Escape(*p)
	}
}

// Date yields the calendar day of an already validated date field.
func Date(p *string) func() interface{} {
	return func() interface{} {
		if p == nil {
			return nil
		}
		d, _ := validator.ParseDate(*p)
		return d
	}
}

// MustDate parses a validated date field.
func MustDate(s string) time.Time {
	d, _ := validator.ParseDate(s)
	return d
}

// Clock normalizes HH:MM to HH:MM:SS.
func Clock(s string) string {
	s = strings.TrimSpace(s)
	if len(s) == len("15:04") {
		return s + ":00"
	}
	return s
}
