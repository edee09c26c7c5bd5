package data

import (
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	apperrors "github.com/equihire/equihire-core/internal/errors"
)

// ErrRequestRequired is returned when a repository write is called with a nil request.
var ErrRequestRequired = errors.New("request is required")

// Unique index names from the 0001 migration.
const (
	constraintMemberUser    = "organization_members_user_id_key"
	constraintMemberPrimary = "organization_members_pkey"
	constraintInviteToken   = "candidate_invitations_token_key"
)

// uniqueViolation returns the constraint name when err is a Postgres unique violation.
func uniqueViolation(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return pgErr.ConstraintName, true
	}
	return "", false
}

// dbError maps err to an AppError and prefixes the failed operation.
func dbError(op string, err error) error {
	return fmt.Errorf("%s: %w", op, apperrors.MapDBError(err))
}
