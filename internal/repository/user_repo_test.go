package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestMapUniqueViolation(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want error
	}{
		{
			name: "email unique index",
			err:  &pgconn.PgError{Code: "23505", ConstraintName: "users_email_lower_idx"},
			want: ErrDuplicateEmail,
		},
		{
			name: "email key",
			err:  &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"},
			want: ErrDuplicateEmail,
		},
		{
			name: "phone key",
			err:  &pgconn.PgError{Code: "23505", ConstraintName: "users_phone_number_key"},
			want: ErrDuplicatePhone,
		},
	}
	for _, tc := range cases {
		if got := mapUniqueViolation(tc.err); !errors.Is(got, tc.want) {
			t.Errorf("%s: got %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestMapUniqueViolationWrapped(t *testing.T) {
	// El driver suele envolver el PgError; errors.As lo tiene que encontrar.
	wrapped := fmt.Errorf("exec insert: %w", &pgconn.PgError{Code: "23505", ConstraintName: "users_email_lower_idx"})
	if got := mapUniqueViolation(wrapped); !errors.Is(got, ErrDuplicateEmail) {
		t.Fatalf("got %v, want ErrDuplicateEmail", got)
	}
}

func TestMapUniqueViolationPassthrough(t *testing.T) {
	// Un 23505 sobre otro indice (p.ej. la PK) no es un duplicado de
	// email/telefono y no debe disfrazarse de uno.
	pkErr := &pgconn.PgError{Code: "23505", ConstraintName: "users_pkey"}
	if got := mapUniqueViolation(pkErr); errors.Is(got, ErrDuplicateEmail) || errors.Is(got, ErrDuplicatePhone) {
		t.Fatalf("pk violation mapped to duplicate: %v", got)
	}
	if got := mapUniqueViolation(pkErr); !errors.As(got, new(*pgconn.PgError)) {
		t.Fatalf("pk violation lost: %v", got)
	}

	other := &pgconn.PgError{Code: "23503", ConstraintName: "tutor_profiles_user_id_fkey"}
	if got := mapUniqueViolation(other); !errors.Is(got, error(other)) {
		t.Fatalf("non-unique violation altered: %v", got)
	}

	plain := errors.New("connection reset")
	if got := mapUniqueViolation(plain); got != plain {
		t.Fatalf("plain error altered: %v", got)
	}
	if got := mapUniqueViolation(nil); got != nil {
		t.Fatalf("nil altered: %v", got)
	}
}
