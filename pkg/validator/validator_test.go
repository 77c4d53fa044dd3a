package validator

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type schedule struct {
	Period string `json:"period" binding:"required,oneof=morning noon evening night"`
	Time   string `json:"time" binding:"required,hhmm"`
}

type sample struct {
	Hospital  string     `json:"hospital" binding:"required,notblank"`
	Date      string     `json:"appointment_date" binding:"required,isodate,notpast"`
	Time      string     `json:"appointment_time" binding:"required,clock"`
	Phone     *string    `json:"phoneNumber" binding:"omitempty,trmobile"`
	BirthDate *string    `json:"birthDate" binding:"omitempty,isodate,notfuture"`
	Schedules []schedule `json:"schedules" binding:"omitempty,dive"`
}

func newEngine(t *testing.T) *validator.Validate {
	t.Helper()
	v := validator.New()
	v.SetTagName("binding")
	require.NoError(t, Register(v))
	return v
}

func withToday(t *testing.T, day string) {
	t.Helper()
	d, err := time.Parse(DateLayout, day)
	require.NoError(t, err)
	prev := Now
	Now = func() time.Time { return d.Add(15 * time.Hour) }
	t.Cleanup(func() { Now = prev })
}

func strp(s string) *string { return &s }

func TestRules_Valid(t *testing.T) {
	withToday(t, "2026-10-17")
	v := newEngine(t)

	err := v.Struct(sample{
		Hospital:  "Hacettepe",
		Date:      "2026-10-17",
		Time:      "09:30:00",
		Phone:     strp("05321234567"),
		BirthDate: strp("1990-02-03"),
		Schedules: []schedule{{Period: "morning", Time: "08:00"}},
	})
	assert.NoError(t, err)
}

func TestRules_PastDateRejected(t *testing.T) {
	withToday(t, "2026-10-17")
	v := newEngine(t)

	err := v.Struct(sample{Hospital: "x", Date: "2026-10-16", Time: "09:30"})
	errs := Translate(err)
	require.Len(t, errs, 1)
	assert.Equal(t, FieldError{Field: "appointment_date", Message: "cannot be earlier than today"}, errs[0])
}

func TestRules_DateOnlyComparison(t *testing.T) {
	withToday(t, "2026-10-17")
	v := newEngine(t)

	// earlier hour on the same day still counts as today
	err := v.Struct(sample{Hospital: "x", Date: "2026-10-17T00:01:00Z", Time: "00:00"})
	assert.NoError(t, err)
}

func TestRules_Formats(t *testing.T) {
	withToday(t, "2026-10-17")
	v := newEngine(t)

	err := v.Struct(sample{
		Hospital:  "   ",
		Date:      "17/10/2026",
		Time:      "24:00",
		Phone:     strp("12345"),
		BirthDate: strp("2030-01-01"),
		Schedules: []schedule{{Period: "midnight", Time: "8:00"}},
	})

	got := map[string]string{}
	for _, fe := range Translate(err) {
		got[fe.Field] = fe.Message
	}
	assert.Equal(t, map[string]string{
		"hospital":            "cannot be blank",
		"appointment_date":    "must be a valid ISO 8601 date",
		"appointment_time":    "must be in HH:MM or HH:MM:SS format",
		"phoneNumber":         "must be a valid mobile phone number",
		"birthDate":           "cannot be in the future",
		"schedules[0].period": "must be one of: morning, noon, evening, night",
		"schedules[0].time":   "must be in HH:MM format",
	}, got)
}

func TestTranslate_DecodeErrors(t *testing.T) {
	var s sample
	err := json.Unmarshal([]byte(`{"hospital":5}`), &s)
	assert.Equal(t, Errors{{Field: "hospital", Message: "has an invalid type"}}, Translate(err))

	err = json.Unmarshal([]byte(`{"hospital":`), &s)
	assert.Equal(t, "malformed JSON body", Translate(err)[0].Message)

	passthrough := Field("userMessage", "is required")
	assert.Equal(t, passthrough, Translate(passthrough))
	assert.Equal(t, "invalid request", Translate(errors.New("x"))[0].Message)
}

func TestEscape(t *testing.T) {
	assert.Equal(t, "&lt;b&gt;Dr. Öz&lt;/b&gt;", Escape("  <b>Dr. Öz</b> "))
	assert.Nil(t, EscapePtr(nil))
	assert.Equal(t, "a &amp; b", *EscapePtr(strp("a & b")))
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2026-03-04T22:00:00+03:00")
	require.NoError(t, err)
	assert.Equal(t, "2026-03-04", d.Format(DateLayout))

	_, err = ParseDate("yesterday")
	assert.Error(t, err)
}
