// Package validate checks raw client input against the field schema of each
// operation (register, login) before anything touches the store.
//
// Input arrives as map[string]any straight from the JSON decoder, so a field
// can be missing, empty, whitespace, null, a number, or an object. The
// validator turns that into either a normalized record or an ordered list of
// field errors, one per failing field. A validation failure is a normal
// outcome, never a panic.
//
// The rules themselves are struct tags evaluated by go-playground/validator:
//
//	notblank  present and not whitespace-only
//	required  present and non-empty
//	mailbox   local@domain.tld (at least one "." after the "@")
package validate

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/sakif/registration-backend/internal/apperror"
	"github.com/sakif/registration-backend/internal/model"
)

// Operation names a request schema.
type Operation string

const (
	OpRegister Operation = "register"
	OpLogin    Operation = "login"
)

// mailboxPattern is deliberately loose: anything without whitespace or a
// second "@", with a dot somewhere in the domain.
var mailboxPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type registerForm struct {
	Name     string `json:"name" validate:"notblank"`
	Email    string `json:"email" validate:"notblank,mailbox"`
	Password string `json:"password" validate:"notblank"`
	Gender   string `json:"gender" validate:"notblank"`
	DOB      string `json:"dob" validate:"notblank"`
	Weight   string `json:"weight" validate:"notblank"`
	Height   string `json:"height" validate:"notblank"`
}

type loginForm struct {
	Email    string `json:"email" validate:"required,mailbox"`
	Password string `json:"password" validate:"required"`
}

// schemas lists each operation's fields in the order errors are reported.
var schemas = map[Operation][]string{
	OpRegister: {"name", "email", "password", "gender", "dob", "weight", "height"},
	OpLogin:    {"email", "password"},
}

// Record is a validated field set keyed by the request field names.
type Record map[string]string

// Validator is safe for concurrent use; build one at startup and share it.
type Validator struct {
	v *validator.Validate
}

// New creates a Validator with the custom rules registered.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report errors by JSON name ("dob"), not Go field name ("DOB").
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	must(v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	}))
	must(v.RegisterValidation("mailbox", func(fl validator.FieldLevel) bool {
		return mailboxPattern.MatchString(fl.Field().String())
	}))

	return &Validator{v: v}
}

// must panics on a rule registration error. Rules are registered once at
// startup, so a bad tag is a programming error.
func must(err error) {
	if err != nil {
		panic(fmt.Sprintf("validate: registering rule: %v", err))
	}
}

// Validate checks raw against op's schema. On success it returns the
// normalized record and a nil slice; on failure a nil record and one
// FieldError per failing field, in schema order.
func (v *Validator) Validate(op Operation, raw map[string]any) (Record, []apperror.FieldError) {
	fields, ok := schemas[op]
	if !ok {
		return nil, []apperror.FieldError{{
			Field:   "operation",
			Message: fmt.Sprintf("unknown operation %q", op),
		}}
	}

	values := make(Record, len(fields))
	failed := make(map[string]string)
	for _, name := range fields {
		s, ok := textValue(raw[name])
		if !ok {
			failed[name] = name + " must be a text value"
			continue
		}
		values[name] = s
	}

	var form any
	switch op {
	case OpRegister:
		form = &registerForm{
			Name:     values["name"],
			Email:    values["email"],
			Password: values["password"],
			Gender:   values["gender"],
			DOB:      values["dob"],
			Weight:   values["weight"],
			Height:   values["height"],
		}
	case OpLogin:
		form = &loginForm{
			Email:    values["email"],
			Password: values["password"],
		}
	}

	if err := v.v.Struct(form); err != nil {
		var verrs validator.ValidationErrors
		errors.As(err, &verrs)
		for _, fe := range verrs {
			// A type error already explains the field; don't add a second reason.
			if _, seen := failed[fe.Field()]; seen {
				continue
			}
			failed[fe.Field()] = message(fe)
		}
	}

	if len(failed) == 0 {
		return values, nil
	}

	errs := make([]apperror.FieldError, 0, len(failed))
	for _, name := range fields {
		if msg, ok := failed[name]; ok {
			errs = append(errs, apperror.FieldError{Field: name, Message: msg})
		}
	}
	return nil, errs
}

// Registration validates a register submission and maps it onto an Account.
// The returned error, if any, is an apperror.ErrValidation carrying every
// failing field.
func (v *Validator) Registration(raw map[string]any) (model.Account, error) {
	rec, errs := v.Validate(OpRegister, raw)
	if errs != nil {
		return model.Account{}, apperror.Invalid(errs)
	}
	return model.Account{
		Name:        rec["name"],
		Gender:      rec["gender"],
		Email:       rec["email"],
		DateOfBirth: rec["dob"],
		Password:    rec["password"],
		Weight:      rec["weight"],
		Height:      rec["height"],
	}, nil
}

// Login validates a login submission.
func (v *Validator) Login(raw map[string]any) (model.Credentials, error) {
	rec, errs := v.Validate(OpLogin, raw)
	if errs != nil {
		return model.Credentials{}, apperror.Invalid(errs)
	}
	return model.Credentials{
		Email:    rec["email"],
		Password: rec["password"],
	}, nil
}

// textValue renders a decoded JSON value as text. Falsy values (absent,
// null, false, numeric zero) read as "" so the presence rules reject them.
// Other numbers and true keep their literal form; objects and arrays are
// not text.
func textValue(v any) (string, bool) {
	switch x := v.(type) {
	case nil:
		return "", true
	case string:
		return x, true
	case json.Number:
		if f, err := x.Float64(); err == nil && f == 0 {
			return "", true
		}
		return x.String(), true
	case float64:
		if x == 0 {
			return "", true
		}
		return strconv.FormatFloat(x, 'f', -1, 64), true
	case int:
		if x == 0 {
			return "", true
		}
		return strconv.Itoa(x), true
	case int64:
		if x == 0 {
			return "", true
		}
		return strconv.FormatInt(x, 10), true
	case bool:
		if !x {
			return "", true
		}
		return "true", true
	default:
		return "", false
	}
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "mailbox":
		return fe.Field() + " must be a valid email address"
	default:
		return fe.Field() + " is required"
	}
}
