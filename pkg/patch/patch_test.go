package patch

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type appointmentPatch struct {
	Hospital *string `json:"hospital"`
	Doctor   *string `json:"doctor"`
	Status   *string `json:"status"`
}

func build(t *testing.T, body string) ([]Assignment, error) {
	t.Helper()
	var req appointmentPatch
	fields, err := Decode([]byte(body), &req)
	require.NoError(t, err)

	return NewBuilder(fields).
		Required("hospital", "hospital", Value(req.Hospital)).
		Set("doctor", "doctor", Value(req.Doctor)).
		Required("status", "status", Value(req.Status)).
		Assignments()
}

func TestBuilder_OnlyPresentFields(t *testing.T) {
	set, err := build(t, `{"status":"completed","hospital":"Ankara Şehir"}`)
	require.NoError(t, err)

	// registration order, not body order
	assert.Equal(t, []Assignment{
		{Column: "hospital", Value: "Ankara Şehir"},
		{Column: "status", Value: "completed"},
	}, set)
}

func TestBuilder_ExplicitNullClearsNullable(t *testing.T) {
	set, err := build(t, `{"doctor":null}`)
	require.NoError(t, err)
	assert.Equal(t, []Assignment{{Column: "doctor", Value: nil}}, set)
}

func TestBuilder_ExplicitNullOnRequired(t *testing.T) {
	_, err := build(t, `{"hospital":null}`)

	var nullErr *NullFieldError
	require.True(t, errors.As(err, &nullErr))
	assert.Equal(t, "hospital", nullErr.Field)
}

func TestBuilder_Empty(t *testing.T) {
	for _, body := range []string{`{}`, `{"unknown":1,"user_id":7}`, `null`} {
		_, err := build(t, body)
		assert.ErrorIs(t, err, ErrEmpty, body)
	}
}

func TestBuilder_EmptyStringIsPresent(t *testing.T) {
	set, err := build(t, `{"doctor":""}`)
	require.NoError(t, err)
	assert.Equal(t, []Assignment{{Column: "doctor", Value: ""}}, set)
}

func TestDecode_RejectsNonObject(t *testing.T) {
	var req appointmentPatch
	_, err := Decode([]byte(`["status"]`), &req)
	assert.Error(t, err)
}
