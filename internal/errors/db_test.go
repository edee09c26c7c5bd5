package errors

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestMapDBError_NilError(t *testing.T) {
	if err := MapDBError(nil); err != nil {
		t.Errorf("MapDBError(nil) = %v, want nil", err)
	}
}

func TestMapDBError_ContextAndNoRows(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorCode
	}{
		{name: "deadline", err: fmt.Errorf("query: %w", context.DeadlineExceeded), want: ErrCodeTimeout},
		{name: "canceled", err: context.Canceled, want: ErrCodeCanceled},
		{name: "no rows", err: pgx.ErrNoRows, want: ErrCodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := MapDBError(tt.err)
			if GetCode(err) != tt.want {
				t.Errorf("MapDBError() code = %v, want %v", GetCode(err), tt.want)
			}
			if !errors.Is(err, tt.err) {
				t.Errorf("MapDBError() lost the cause")
			}
		})
	}
}

func TestMapDBError_UniqueViolation(t *testing.T) {
	tests := []struct {
		name      string
		pgErr     *pgconn.PgError
		wantField string
	}{
		{
			name:      "column metadata",
			pgErr:     &pgconn.PgError{Code: pgerrcode.UniqueViolation, ColumnName: "slug"},
			wantField: "slug",
		},
		{
			name: "detail message",
			pgErr: &pgconn.PgError{
				Code:   pgerrcode.UniqueViolation,
				Detail: `Key (token)=(abc) already exists.`,
			},
			wantField: "token",
		},
		{
			name: "expression index detail",
			pgErr: &pgconn.PgError{
				Code:   pgerrcode.UniqueViolation,
				Detail: `Key (lower(name))=(acme) already exists.`,
			},
			wantField: "name",
		},
		{
			name: "constraint name only",
			pgErr: &pgconn.PgError{
				Code:           pgerrcode.UniqueViolation,
				TableName:      "organization_members",
				ConstraintName: "organization_members_user_id_key",
			},
			wantField: "user_id",
		},
		{
			name: "primary key gives no field",
			pgErr: &pgconn.PgError{
				Code:           pgerrcode.UniqueViolation,
				TableName:      "organization_members",
				ConstraintName: "organization_members_pkey",
			},
			wantField: "",
		},
		{
			name: "multi-column detail falls back to constraint",
			pgErr: &pgconn.PgError{
				Code:           pgerrcode.UniqueViolation,
				Detail:         `Key (organization_id, user_id)=(a, b) already exists.`,
				TableName:      "organization_members",
				ConstraintName: "organization_members_pkey",
			},
			wantField: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := MapDBError(tt.pgErr)
			if !IsConflict(err) {
				t.Errorf("MapDBError() should be Conflict, got %v", GetCode(err))
			}
			if field := GetField(err); field != tt.wantField {
				t.Errorf("MapDBError() field = %q, want %q", field, tt.wantField)
			}
		})
	}
}

func TestMapDBError_ForeignKeyViolation(t *testing.T) {
	tests := []struct {
		name        string
		pgErr       *pgconn.PgError
		wantContain string
	}{
		{
			name: "missing parent",
			pgErr: &pgconn.PgError{
				Code:   pgerrcode.ForeignKeyViolation,
				Detail: `Key (organization_id)=(x) is not present in table "organizations".`,
			},
			wantContain: "referenced organization does not exist",
		},
		{
			name:        "table metadata",
			pgErr:       &pgconn.PgError{Code: pgerrcode.ForeignKeyViolation, TableName: "candidate_invitations"},
			wantContain: "candidate invitation",
		},
		{
			name:        "unknown table",
			pgErr:       &pgconn.PgError{Code: pgerrcode.ForeignKeyViolation, TableName: "audit_log_entries"},
			wantContain: "audit log entries",
		},
		{
			name:        "no metadata",
			pgErr:       &pgconn.PgError{Code: pgerrcode.ForeignKeyViolation},
			wantContain: "in use",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := MapDBError(tt.pgErr)
			if GetCode(err) != ErrCodeForeignKey {
				t.Fatalf("MapDBError() code = %v, want foreign_key", GetCode(err))
			}
			var appErr *AppError
			errors.As(err, &appErr)
			if !strings.Contains(appErr.Message, tt.wantContain) {
				t.Errorf("message %q does not contain %q", appErr.Message, tt.wantContain)
			}
		})
	}
}

func TestMapDBError_ValidationViolations(t *testing.T) {
	for _, code := range []string{pgerrcode.CheckViolation, pgerrcode.NotNullViolation} {
		err := MapDBError(&pgconn.PgError{Code: code, ColumnName: "status"})
		if !IsValidation(err) {
			t.Errorf("code %s: want validation, got %v", code, GetCode(err))
		}
		if GetField(err) != "status" {
			t.Errorf("code %s: field = %q", code, GetField(err))
		}
	}
}

func TestMapDBError_Other(t *testing.T) {
	if err := MapDBError(&pgconn.PgError{Code: pgerrcode.CannotConnectNow}); !IsUnavailable(err) {
		t.Errorf("CannotConnectNow should map to unavailable, got %v", GetCode(err))
	}
	if err := MapDBError(&pgconn.PgError{Code: pgerrcode.DivisionByZero}); GetCode(err) != ErrCodeInternal {
		t.Errorf("unhandled pg error should map to internal, got %v", GetCode(err))
	}
	plain := errors.New("plain")
	if err := MapDBError(plain); !errors.Is(err, plain) || GetCode(err) != "" {
		t.Errorf("plain errors must pass through unchanged")
	}
}

func TestFieldFromConstraint(t *testing.T) {
	tests := []struct {
		table, constraint, want string
	}{
		{"organizations", "organizations_slug_key", "slug"},
		{"organizations", "organizations_lower_name_key", "name"},
		{"candidate_invitations", "candidate_invitations_token_key", "token"},
		{"organizations", "organizations_pkey", ""},
		{"", "organizations_slug_key", ""},
		{"organizations", "other_slug_key", ""},
	}
	for _, tt := range tests {
		if got := fieldFromConstraint(tt.table, tt.constraint); got != tt.want {
			t.Errorf("fieldFromConstraint(%q, %q) = %q, want %q", tt.table, tt.constraint, got, tt.want)
		}
	}
}
