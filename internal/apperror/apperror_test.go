package apperror

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestErrorsIs(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		target    error
		wantMatch bool
	}{
		{
			name:      "NotFound wraps ErrNotFound",
			err:       NotFound("account", "ann@x.com"),
			target:    ErrNotFound,
			wantMatch: true,
		},
		{
			name:      "ValidationFailed wraps ErrValidation",
			err:       ValidationFailed("name", "name is required"),
			target:    ErrValidation,
			wantMatch: true,
		},
		{
			name:      "Invalid wraps ErrValidation",
			err:       Invalid([]FieldError{{Field: "email", Message: "email is required"}}),
			target:    ErrValidation,
			wantMatch: true,
		},
		{
			name:      "Persistence wraps ErrPersistence",
			err:       Persistence("insert account", errors.New("disk full")),
			target:    ErrPersistence,
			wantMatch: true,
		},
		{
			name:      "wrapped Persistence still matches",
			err:       fmt.Errorf("registering: %w", Persistence("insert account", errors.New("boom"))),
			target:    ErrPersistence,
			wantMatch: true,
		},
		{
			name:      "Unauthorized wraps ErrUnauthorized",
			err:       Unauthorized("token required"),
			target:    ErrUnauthorized,
			wantMatch: true,
		},
		{
			name:      "NotFound does NOT match ErrValidation",
			err:       NotFound("account", "x"),
			target:    ErrValidation,
			wantMatch: false,
		},
		{
			name:      "Persistence does NOT match ErrNotFound",
			err:       Persistence("find account", errors.New("conn reset")),
			target:    ErrNotFound,
			wantMatch: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := errors.Is(tt.err, tt.target)
			if got != tt.wantMatch {
				t.Errorf("errors.Is(%v, %v) = %v, want %v", tt.err, tt.target, got, tt.wantMatch)
			}
		})
	}
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name        string
		err         *AppError
		wantMessage string
	}{
		{
			name:        "NotFound message includes resource and id",
			err:         NotFound("account", "abc123"),
			wantMessage: "account not found with id abc123",
		},
		{
			name:        "ValidationFailed uses custom message",
			err:         ValidationFailed("name", "name is required"),
			wantMessage: "name is required",
		},
		{
			name: "Invalid reports the first field",
			err: Invalid([]FieldError{
				{Field: "email", Message: "email is required"},
				{Field: "dob", Message: "dob is required"},
			}),
			wantMessage: "email is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMessage {
				t.Errorf("Error() = %q, want %q", got, tt.wantMessage)
			}
		})
	}
}

func TestUnwrap(t *testing.T) {
	err := NotFound("account", "abc123")
	unwrapped := err.Unwrap()

	if unwrapped != ErrNotFound {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, ErrNotFound)
	}
}

func TestPersistence_HidesCauseFromChain(t *testing.T) {
	driverErr := errors.New("UNIQUE constraint failed: secret_column")
	err := Persistence("insert account", driverErr)

	if errors.Is(err, driverErr) {
		t.Error("Persistence() must not expose the driver error through Unwrap")
	}
	if err.Cause() != driverErr {
		t.Errorf("Cause() = %v, want %v", err.Cause(), driverErr)
	}
	if err.Incident == "" {
		t.Error("Persistence() did not assign an incident id")
	}
	if !strings.Contains(err.Error(), err.Incident) {
		t.Errorf("Error() = %q, want it to mention incident %s", err.Error(), err.Incident)
	}
}

func TestPersistence_IncidentsAreDistinct(t *testing.T) {
	a := Persistence("list accounts", errors.New("x"))
	b := Persistence("list accounts", errors.New("x"))
	if a.Incident == b.Incident {
		t.Errorf("two failures share incident id %q", a.Incident)
	}
}

func TestFieldErrors(t *testing.T) {
	fields := []FieldError{
		{Field: "name", Message: "name is required"},
		{Field: "email", Message: "email must be a valid email address"},
	}

	got := FieldErrors(fmt.Errorf("registering: %w", Invalid(fields)))
	if len(got) != 2 || got[0] != fields[0] || got[1] != fields[1] {
		t.Errorf("FieldErrors() = %v, want %v", got, fields)
	}

	if got := FieldErrors(Persistence("x", errors.New("y"))); got != nil {
		t.Errorf("FieldErrors(persistence) = %v, want nil", got)
	}
	if got := FieldErrors(errors.New("plain")); got != nil {
		t.Errorf("FieldErrors(plain) = %v, want nil", got)
	}
}

func TestValidationFailedField(t *testing.T) {
	err := ValidationFailed("email", "invalid email format")

	if err.Field != "email" {
		t.Errorf("Field = %q, want %q", err.Field, "email")
	}
	if len(err.Fields) != 1 || err.Fields[0].Field != "email" {
		t.Errorf("Fields = %v, want one entry for email", err.Fields)
	}
}
