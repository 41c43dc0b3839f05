package state

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "profilegraph/backend/pkg/errors"
)

func TestCapitalize(t *testing.T) {
	tests := map[string]string{
		"john":      "John",
		"JOHN":      "John",
		"mARY-jane": "Mary-jane",
		"":          "",
		"élodie":    "Élodie",
		"o'neil":    "O'neil",
	}
	for in, want := range tests {
		assert.Equal(t, want, Capitalize(in), "Capitalize(%q)", in)
	}
}

func TestNewProfile(t *testing.T) {
	p := NewProfile("john", "DOE", WithPhone("123"), WithDOB("1990-01-01"))

	assert.Equal(t, "John", p.Firstname)
	assert.Equal(t, "Doe", p.Lastname)
	assert.Equal(t, "123", p.PhoneOrEmpty())
	assert.Equal(t, "1990-01-01", p.DOBOrEmpty())
	assert.Equal(t, "John Doe", p.Label())
	assert.False(t, p.Resolved())
	assert.Zero(t, p.ID())

	bare := NewProfile("jane", "doe")
	assert.Nil(t, bare.Phone)
	assert.Equal(t, "", bare.DOBOrEmpty())
}

func TestSetID_WriteOnce(t *testing.T) {
	p := NewProfile("john", "doe")
	p.SetID(1)
	assert.True(t, p.Resolved())

	assert.NotPanics(t, func() { p.SetID(1) })
	assert.Panics(t, func() { p.SetID(2) })
	assert.Equal(t, int64(1), p.ID())

	assert.Panics(t, func() { NewProfile("a", "b").SetID(0) })
}

func TestUnresolved(t *testing.T) {
	p := NewProfile("john", "doe", WithPhone("123"))
	p.SetID(1)

	c := p.Unresolved()
	assert.False(t, c.Resolved())
	assert.Equal(t, "John Doe", c.Label())
	assert.Equal(t, "123", c.PhoneOrEmpty())
	assert.NotPanics(t, func() { c.SetID(2) })
	assert.Equal(t, int64(1), p.ID())
}

func TestSameIdentity(t *testing.T) {
	a := NewProfile("john", "doe")
	b := NewProfile("JOHN", "doe")
	assert.True(t, a.SameIdentity(b))

	a.SetID(1)
	b.SetID(2)
	assert.False(t, a.SameIdentity(b))
}

func TestValidate(t *testing.T) {
	long := strings.Repeat("a", 100)

	tests := []struct {
		name    string
		profile *Profile
		field   string
	}{
		{"ok", NewProfile("john", "doe", WithPhone("1")), ""},
		{"empty names allowed", NewProfile("", ""), ""},
		{"firstname too long", NewProfile(long, "doe"), "firstname"},
		{"lastname too long", NewProfile("john", long), "lastname"},
		{"empty phone", NewProfile("john", "doe", WithPhone("")), "phone"},
		{"dob too long", NewProfile("john", "doe", WithDOB(long+"1")), "dob"},
		{"dob at limit", NewProfile("john", "doe", WithDOB(long)), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.profile.Validate()
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			var invalid *apperrors.ErrInvalidValue
			require.ErrorAs(t, err, &invalid)
			assert.Equal(t, tt.field, invalid.Field)
		})
	}
}

func TestParseField(t *testing.T) {
	for _, name := range []string{"firstname", "lastname", "phone", "dob", "email"} {
		f, err := ParseField(name)
		require.NoError(t, err)
		assert.Equal(t, Field(name), f)
	}

	_, err := ParseField("id")
	var unsupported *apperrors.ErrUnsupportedField
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, "id", unsupported.Field)

	assert.False(t, FieldEmail.Persisted())
	assert.True(t, FieldDOB.Persisted())
}

func TestValidateFieldValue(t *testing.T) {
	assert.NoError(t, ValidateFieldValue(FieldPhone, "999"))
	assert.NoError(t, ValidateFieldValue(FieldFirstname, ""))
	assert.Error(t, ValidateFieldValue(FieldPhone, ""))
	assert.Error(t, ValidateFieldValue(FieldLastname, strings.Repeat("x", 100)))

	var unsupported *apperrors.ErrUnsupportedField
	assert.ErrorAs(t, ValidateFieldValue(FieldEmail, "a@b.c"), &unsupported)
}

func TestApply(t *testing.T) {
	p := NewProfile("john", "doe")
	p.Apply(FieldFirstname, "jOHNNY")
	p.Apply(FieldPhone, "999")

	assert.Equal(t, "Johnny", p.Firstname)
	assert.Equal(t, "999", p.PhoneOrEmpty())
}

func TestMarshalJSON(t *testing.T) {
	p := NewProfile("john", "doe", WithPhone("123"))
	p.SetID(7)

	data, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":7,"firstname":"John","lastname":"Doe","phone":"123"}`, string(data))
}
