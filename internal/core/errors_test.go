// AngelaMos | 2026
// errors_test.go

package core

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestTranslateConstraint(t *testing.T) {
	fields := ConstraintFields{
		"users_official_email_key": "official_email",
		"sims_phone_number_key":    "phone_number",
	}

	t.Run("unique violation maps to field", func(t *testing.T) {
		pgErr := &pgconn.PgError{
			Code:           pgerrcode.UniqueViolation,
			ConstraintName: "users_official_email_key",
		}

		err := TranslateConstraint(fmt.Errorf("insert: %w", pgErr), fields)

		var ce *ConstraintError
		if !errors.As(err, &ce) {
			t.Fatalf("expected *ConstraintError, got %T", err)
		}
		if ce.Field != "official_email" {
			t.Errorf("Field = %q, want official_email", ce.Field)
		}
		if !errors.Is(err, ErrDuplicateKey) {
			t.Error("unique violation should match ErrDuplicateKey")
		}

		var raw *pgconn.PgError
		if !errors.As(err, &raw) {
			t.Error("original driver error should remain reachable")
		}
	})

	t.Run("foreign key violation is not a duplicate", func(t *testing.T) {
		pgErr := &pgconn.PgError{
			Code:           pgerrcode.ForeignKeyViolation,
			ConstraintName: "sim_assignments_user_id_fkey",
		}

		err := TranslateConstraint(pgErr, fields)

		var ce *ConstraintError
		if !errors.As(err, &ce) {
			t.Fatalf("expected *ConstraintError, got %T", err)
		}
		if ce.Field != "" {
			t.Errorf("Field = %q, want empty", ce.Field)
		}
		if errors.Is(err, ErrDuplicateKey) {
			t.Error("foreign key violation must not match ErrDuplicateKey")
		}
	})

	t.Run("sequence exhausted", func(t *testing.T) {
		pgErr := &pgconn.PgError{
			Code:    pgerrcode.SequenceGeneratorLimitExceeded,
			Message: `nextval: reached maximum value of sequence "biometric_id_seq" (9999)`,
		}

		err := TranslateConstraint(pgErr, fields)
		if !errors.Is(err, ErrSequenceLimit) {
			t.Fatalf("expected ErrSequenceLimit, got %v", err)
		}
	})

	t.Run("other errors pass through", func(t *testing.T) {
		plain := errors.New("connection reset")
		if got := TranslateConstraint(plain, fields); got != plain {
			t.Errorf("TranslateConstraint() = %v, want original", got)
		}
	})
}

func TestFormatValidationError(t *testing.T) {
	type request struct {
		PhoneNumber string `json:"phone_number" validate:"required,number"`
		Status      string `json:"status"       validate:"required,oneof=available inactive"`
	}

	v := NewValidator()

	err := v.Struct(request{PhoneNumber: "+555", Status: "lost"})
	if err == nil {
		t.Fatal("expected validation error")
	}

	msg := FormatValidationError(err)
	for _, want := range []string{
		"phone_number must contain only digits",
		"status must be one of: available inactive",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("message %q missing %q", msg, want)
		}
	}

	if got := FormatValidationError(errors.New("boom")); got != "invalid request" {
		t.Errorf("FormatValidationError(non-validator) = %q", got)
	}
}

func TestAppErrorUnwrap(t *testing.T) {
	err := fmt.Errorf("assign: %w", ConflictError("sim held", "SIM_ALREADY_ASSIGNED"))

	if !errors.Is(err, ErrConflict) {
		t.Error("conflict app error should match ErrConflict")
	}
	if !IsAppError(err) {
		t.Error("IsAppError should see through wrapping")
	}
}
