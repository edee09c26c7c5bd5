package errors

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// reKeyField extracts the key from "Key (field)=(value) already exists.", including
	// expression keys such as "Key (lower(name))=(acme)".
	reKeyField = regexp.MustCompile(`Key \((.+?)\)=\(`)
	// reNotPresent detects a missing parent: "... is not present in table ...".
	reNotPresent = regexp.MustCompile(`is not present in table "?([^"]+)"?`)
)

// tableDomains maps table names to the names users see.
var tableDomains = map[string]string{
	"organizations":         "organization",
	"organization_members":  "organization membership",
	"candidate_invitations": "candidate invitation",
}

// MapDBError maps database errors to AppError instances. Unrecognized errors are returned unchanged.
func MapDBError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return Wrap(err, ErrCodeTimeout, "Request timed out. Please try again.")
	case errors.Is(err, context.Canceled):
		return Wrap(err, ErrCodeCanceled, "Request was canceled.")
	case errors.Is(err, pgx.ErrNoRows):
		return Wrap(err, ErrCodeNotFound, "Resource not found")
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case pgerrcode.UniqueViolation:
		e := Wrap(pgErr, ErrCodeConflict, "This value already exists. Please choose a different one.")
		e.Field = uniqueField(pgErr)
		return e
	case pgerrcode.ForeignKeyViolation:
		return Wrap(pgErr, ErrCodeForeignKey, foreignKeyMessage(pgErr))
	case pgerrcode.CheckViolation, pgerrcode.NotNullViolation:
		e := Wrap(pgErr, ErrCodeValidation, "Invalid data. Please check your input.")
		if pgErr.ColumnName != "" {
			e.Field = pgErr.ColumnName
			e.Message = "This field has an invalid value."
		}
		return e
	case pgerrcode.ConnectionException, pgerrcode.ConnectionFailure, pgerrcode.CannotConnectNow,
		pgerrcode.TooManyConnections:
		return Wrap(pgErr, ErrCodeUnavailable, "The database is unavailable. Please try again.")
	default:
		return Wrap(pgErr, ErrCodeInternal, "A database error occurred. Please try again.")
	}
}

// uniqueField finds the offending column from metadata, the detail message, or the index name.
func uniqueField(pgErr *pgconn.PgError) string {
	if pgErr.ColumnName != "" {
		return pgErr.ColumnName
	}
	if m := reKeyField.FindStringSubmatch(pgErr.Detail); len(m) == 2 {
		field := m[1]
		// Expression indexes report "lower(name)".
		if i := strings.IndexByte(field, '('); i >= 0 && strings.HasSuffix(field, ")") {
			field = field[i+1 : len(field)-1]
		}
		if !strings.Contains(field, ",") {
			return field
		}
	}
	return fieldFromConstraint(pgErr.TableName, pgErr.ConstraintName)
}

// fieldFromConstraint strips the table prefix and key suffix: "organizations_slug_key" becomes "slug".
// Expression indexes such as "organizations_lower_name_key" resolve to "name".
func fieldFromConstraint(table, constraint string) string {
	if table == "" || !strings.HasPrefix(constraint, table+"_") {
		return ""
	}
	rest := strings.TrimPrefix(constraint, table+"_")
	for _, suffix := range []string{"_key", "_unique", "_idx"} {
		rest = strings.TrimSuffix(rest, suffix)
	}
	rest = strings.TrimPrefix(rest, "lower_")
	if rest == "" || rest == "pkey" {
		return ""
	}
	return rest
}

func foreignKeyMessage(pgErr *pgconn.PgError) string {
	if m := reNotPresent.FindStringSubmatch(pgErr.Detail); len(m) == 2 {
		return "The referenced " + domainName(m[1]) + " does not exist."
	}
	if pgErr.TableName != "" {
		return "Cannot complete operation because this " + domainName(pgErr.TableName) + " is in use."
	}
	return "Cannot complete operation because this item is in use."
}

func domainName(table string) string {
	table = strings.ToLower(strings.TrimSpace(table))
	if name, ok := tableDomains[table]; ok {
		return name
	}
	return strings.ReplaceAll(table, "_", " ")
}
