// Package validator registers the request rules used by the API on top of
// go-playground/validator and renders their failures as field errors.
package validator

import (
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

const DateLayout = "2006-01-02"

var (
	hhmmPattern     = regexp.MustCompile(`^([01]\d|2[0-3]):([0-5]\d)$`)
	clockPattern    = regexp.MustCompile(`^([01]\d|2[0-3]):([0-5]\d)(:[0-5]\d)?$`)
	trMobilePattern = regexp.MustCompile(`^(\+?90|0)?5\d{9}$`)

	// Now is the clock used by date rules.
	Now = time.Now
)

var messages = map[string]string{
	"required":  "is required",
	"email":     "must be a valid email address",
	"isodate":   "must be a valid ISO 8601 date",
	"notpast":   "cannot be earlier than today",
	"notfuture": "cannot be in the future",
	"hhmm":      "must be in HH:MM format",
	"clock":     "must be in HH:MM or HH:MM:SS format",
	"trmobile":  "must be a valid mobile phone number",
	"notblank":  "cannot be blank",
}

// FieldError is one rejected input field.
type FieldError struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// Errors is a validation failure rendered as 400.
type Errors []FieldError

func (e Errors) Error() string {
	parts := make([]string, 0, len(e))
	for _, fe := range e {
		if fe.Field == "" {
			parts = append(parts, fe.Message)
			continue
		}
		parts = append(parts, fe.Field+" "+fe.Message)
	}
	return strings.Join(parts, "; ")
}

func (e Errors) StatusCode() int { return http.StatusBadRequest }

// Field builds a single-field failure.
func Field(field, message string) Errors {
	return Errors{{Field: field, Message: message}}
}

// Register installs the custom rules and json tag naming on v.
func Register(v *validator.Validate) error {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})

	rules := map[string]validator.Func{
		"isodate":   isISODate,
		"notpast":   notPast,
		"notfuture": notFuture,
		"hhmm":      matches(hhmmPattern),
		"clock":     matches(clockPattern),
		"trmobile":  matches(trMobilePattern),
		"notblank":  notBlank,
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("failed to register %s: %w", tag, err)
		}
	}
	return nil
}

var (
	ginOnce sync.Once
	ginErr  error
)

// RegisterWithGin installs the rules on gin's default binding engine.
// Only the first call registers; later calls return its result.
func RegisterWithGin() error {
	ginOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			ginErr = errors.New("gin binding engine is not go-playground/validator")
			return
		}
		ginErr = Register(v)
	})
	return ginErr
}

// Struct validates obj with gin's engine, for payloads decoded outside ShouldBind.
func Struct(obj interface{}) error {
	return binding.Validator.ValidateStruct(obj)
}

// Translate converts binding and validation failures into field errors.
func Translate(err error) Errors {
	if err == nil {
		return nil
	}

	var fieldErrs Errors
	if errors.As(err, &fieldErrs) {
		return fieldErrs
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := make(Errors, 0, len(verrs))
		for _, fe := range verrs {
			out = append(out, FieldError{Field: fieldPath(fe), Message: message(fe)})
		}
		return out
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return Field(typeErr.Field, "has an invalid type")
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return Errors{{Message: "malformed JSON body"}}
	}

	var numErr *strconv.NumError
	if errors.As(err, &numErr) {
		return Errors{{Message: fmt.Sprintf("%q is not a valid integer", numErr.Num)}}
	}

	if errors.Is(err, io.EOF) {
		return Errors{{Message: "request body is required"}}
	}

	return Errors{{Message: "invalid request"}}
}

// Escape trims s and escapes HTML metacharacters.
func Escape(s string) string {
	return html.EscapeString(strings.TrimSpace(s))
}

// EscapePtr is Escape for optional fields.
func EscapePtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := Escape(*s)
	return &v
}

// ParseDate accepts YYYY-MM-DD or RFC3339 and returns the calendar day as written, at UTC midnight.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}

// Today is the current server calendar day at UTC midnight.
func Today() time.Time {
	now := Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	if msg, ok := messages[fe.Tag()]; ok {
		return msg
	}

	switch fe.Tag() {
	case "min", "max", "len":
		word := map[string]string{"min": "at least", "max": "at most", "len": "exactly"}[fe.Tag()]
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be %s %s characters long", word, fe.Param())
		}
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("must contain %s %s items", word, fe.Param())
		}
		return fmt.Sprintf("must be %s %s", word, fe.Param())
	case "gt", "gte", "lt", "lte":
		return fmt.Sprintf("must be %s %s", fe.Tag(), fe.Param())
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	}
	return "is invalid"
}

func stringField(fl validator.FieldLevel) (string, bool) {
	f := fl.Field()
	if f.Kind() != reflect.String {
		return "", false
	}
	return f.String(), true
}

func isISODate(fl validator.FieldLevel) bool {
	s, ok := stringField(fl)
	if !ok {
		return false
	}
	_, err := ParseDate(s)
	return err == nil
}

func notPast(fl validator.FieldLevel) bool {
	s, ok := stringField(fl)
	if !ok {
		return false
	}
	d, err := ParseDate(s)
	if err != nil {
		// isodate reports the format problem
		return true
	}
	return !d.Before(Today())
}

func notFuture(fl validator.FieldLevel) bool {
	s, ok := stringField(fl)
	if !ok {
		return false
	}
	d, err := ParseDate(s)
	if err != nil {
		return true
	}
	return !d.After(Today())
}

func notBlank(fl validator.FieldLevel) bool {
	s, ok := stringField(fl)
	return ok && strings.TrimSpace(s) != ""
}

func matches(re *regexp.Regexp) validator.Func {
	return func(fl validator.FieldLevel) bool {
		s, ok := stringField(fl)
		return ok && re.MatchString(s)
	}
}
