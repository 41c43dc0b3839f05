package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"profilegraph/backend/internal/constants"
	apperrors "profilegraph/backend/pkg/errors"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Profile represents one person, labelled by (Firstname, Lastname).
//
// A Profile starts unresolved (ID() == 0). The store resolves it by filling
// the id, phone and dob from persisted state; once set the id never changes.
// Callers hold detached copies: a Profile goes stale if the store is mutated
// elsewhere.
type Profile struct {
	id        int64
	Firstname string  `json:"firstname" validate:"max=99"`
	Lastname  string  `json:"lastname" validate:"max=99"`
	Phone     *string `json:"phone,omitempty" validate:"omitnil,min=1,max=100"`
	DOB       *string `json:"dob,omitempty" validate:"omitnil,min=1,max=100"`
}

// ProfileOption sets an optional attribute at construction
type ProfileOption func(*Profile)

// WithPhone sets the phone attribute
func WithPhone(phone string) ProfileOption {
	return func(p *Profile) { p.Phone = &phone }
}

// WithDOB sets the date-of-birth attribute
func WithDOB(dob string) ProfileOption {
	return func(p *Profile) { p.DOB = &dob }
}

// NewProfile creates an unresolved profile descriptor with capitalized names.
func NewProfile(firstname, lastname string, opts ...ProfileOption) *Profile {
	p := &Profile{
		Firstname: Capitalize(firstname),
		Lastname:  Capitalize(lastname),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Capitalize upper-cases the first rune and lower-cases the rest.
func Capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError && size <= 1 {
		return strings.ToLower(s)
	}
	return string(unicode.ToTitle(r)) + strings.ToLower(s[size:])
}

// ID returns the store-assigned id, 0 while unresolved.
func (p *Profile) ID() int64 {
	return p.id
}

// Resolved reports whether the store has assigned an id.
func (p *Profile) Resolved() bool {
	return p.id != 0
}

// SetID records the store-assigned id. Re-setting the same id is a no-op;
// assigning a different id to a resolved profile is a programming error.
func (p *Profile) SetID(id int64) {
	if id <= 0 {
		panic(fmt.Sprintf("state: invalid profile id %d for %s", id, p.Label()))
	}
	if p.id != 0 && p.id != id {
		panic(fmt.Sprintf("state: profile %s already resolved to id %d, refusing %d", p.Label(), p.id, id))
	}
	p.id = id
}

// Unresolved returns a copy of p with the id cleared.
func (p *Profile) Unresolved() *Profile {
	c := *p
	c.id = 0
	return &c
}

// Label returns "Firstname Lastname".
func (p *Profile) Label() string {
	return p.Firstname + " " + p.Lastname
}

// PhoneOrEmpty returns the phone or "" when unset
func (p *Profile) PhoneOrEmpty() string {
	if p.Phone == nil {
		return ""
	}
	return *p.Phone
}

// DOBOrEmpty returns the date of birth or "" when unset
func (p *Profile) DOBOrEmpty() string {
	if p.DOB == nil {
		return ""
	}
	return *p.DOB
}

// SameIdentity reports whether p and other denote the same profile, by id
// when both are resolved and by label otherwise.
func (p *Profile) SameIdentity(other *Profile) bool {
	if p.Resolved() && other.Resolved() {
		return p.id == other.id
	}
	return p.Firstname == other.Firstname && p.Lastname == other.Lastname
}

// Validate checks the length constraints on every attribute
func (p *Profile) Validate() error {
	if err := validate.Struct(p); err != nil {
		return toInvalidValue(err)
	}
	return nil
}

// MarshalJSON includes the unexported id.
func (p *Profile) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID        int64   `json:"id,omitempty"`
		Firstname string  `json:"firstname"`
		Lastname  string  `json:"lastname"`
		Phone     *string `json:"phone,omitempty"`
		DOB       *string `json:"dob,omitempty"`
	}{p.id, p.Firstname, p.Lastname, p.Phone, p.DOB})
}

func toInvalidValue(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return apperrors.NewInvalidValue(fe.Field(), describeRule(fe.Tag(), fe.Param()))
	}
	return apperrors.NewInvalidValue("profile", err.Error())
}

func describeRule(tag, param string) string {
	switch tag {
	case "max":
		return "must be at most " + param + " characters"
	case "min":
		return "must be at least " + param + " characters"
	}
	return "fails " + tag
}

// Field names a modifiable profile attribute
type Field string

const (
	FieldFirstname Field = "firstname"
	FieldLastname  Field = "lastname"
	FieldPhone     Field = "phone"
	FieldDOB       Field = "dob"
	// FieldEmail is accepted by the command surface but has no persisted column.
	FieldEmail Field = "email"
)

// Fields lists every accepted field name
var Fields = []Field{FieldFirstname, FieldLastname, FieldPhone, FieldDOB, FieldEmail}

// ParseField maps a name onto the closed set of fields.
func ParseField(name string) (Field, error) {
	for _, f := range Fields {
		if string(f) == name {
			return f, nil
		}
	}
	return "", apperrors.NewUnsupportedField(name)
}

// Persisted reports whether the field has a backing column.
func (f Field) Persisted() bool {
	switch f {
	case FieldFirstname, FieldLastname, FieldPhone, FieldDOB:
		return true
	}
	return false
}

// IsName reports whether the field is part of the (firstname, lastname) label.
func (f Field) IsName() bool {
	return f == FieldFirstname || f == FieldLastname
}

// NormalizeValue capitalizes label fields and leaves the rest untouched.
func (f Field) NormalizeValue(value string) string {
	if f.IsName() {
		return Capitalize(value)
	}
	return value
}

// ValidateFieldValue applies the length rule of field to value.
func ValidateFieldValue(field Field, value string) error {
	if !field.Persisted() {
		return apperrors.NewUnsupportedField(string(field))
	}
	rule := fmt.Sprintf("min=1,max=%d", constants.AttributeMaxLength)
	if field.IsName() {
		rule = fmt.Sprintf("max=%d", constants.NameMaxLength-1)
	}
	if err := validate.Var(value, rule); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return apperrors.NewInvalidValue(string(field), describeRule(verrs[0].Tag(), verrs[0].Param()))
		}
		return apperrors.NewInvalidValue(string(field), err.Error())
	}
	return nil
}

// Apply writes value into the matching attribute of p.
func (p *Profile) Apply(field Field, value string) {
	switch field {
	case FieldFirstname:
		p.Firstname = field.NormalizeValue(value)
	case FieldLastname:
		p.Lastname = field.NormalizeValue(value)
	case FieldPhone:
		p.Phone = &value
	case FieldDOB:
		p.DOB = &value
	}
}
