package data

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/equihire/equihire-core/internal/core"
	"github.com/equihire/equihire-core/internal/data/pgxutil"
	"github.com/equihire/equihire-core/internal/domain/model"
)

// ErrInvitationTokenCollision is returned when a freshly generated token already exists.
var ErrInvitationTokenCollision = errors.New("invitation token collision")

const invitationColumns = `id, organization_id, email, token, status, last_error, created_by, created_at, sent_at`

const (
	invitationInsertQuery = `
		INSERT INTO candidate_invitations (organization_id, email, token, status, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + invitationColumns

	invitationMarkSentQuery = `
		UPDATE candidate_invitations
		SET status = 'sent', sent_at = $2, last_error = NULL
		WHERE id = $1`

	invitationMarkFailedQuery = `
		UPDATE candidate_invitations
		SET status = 'failed', last_error = $2
		WHERE id = $1`

	invitationGetByTokenQuery = `SELECT ` + invitationColumns + ` FROM candidate_invitations WHERE token = $1`

	invitationListRecentQuery = `
		SELECT ` + invitationColumns + `
		FROM candidate_invitations
		WHERE organization_id = $1
		ORDER BY created_at DESC, id
		LIMIT $2`
)

const (
	defaultInvitationListLimit = 20
	maxInvitationListLimit     = 100
	maxInvitationErrorLen      = 500
)

// InvitationRepo provides database operations for candidate invitations.
type InvitationRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

var _ core.InvitationRepository = (*InvitationRepo)(nil)

// NewInvitationRepo creates a new InvitationRepo with the real clock.
func NewInvitationRepo(db *sql.DB) *InvitationRepo {
	return &InvitationRepo{DB: db, timeProvider: RealTimeProvider{}}
}

// NewInvitationRepoWithTimeProvider creates an InvitationRepo with a custom clock (useful for tests).
func NewInvitationRepoWithTimeProvider(db *sql.DB, tp TimeProvider) *InvitationRepo {
	return &InvitationRepo{DB: db, timeProvider: tp}
}

// Create stores a pending invitation with the given opaque token.
func (r *InvitationRepo) Create(
	ctx context.Context,
	req *model.CreateInvitationRequest,
	token string,
) (*model.Invitation, error) {
	if req == nil {
		return nil, ErrRequestRequired
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if token == "" {
		return nil, errors.New("invitation token is required")
	}

	var out model.Invitation
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, invitationInsertQuery,
			req.OrganizationID,
			req.Email,
			token,
			model.InvitationStatusPending,
			req.CreatedBy,
			r.timeProvider.Now(),
		)
		if err != nil {
			return err
		}
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Invitation])
		return err
	})
	if err != nil {
		if c, ok := uniqueViolation(err); ok && c == constraintInviteToken {
			return nil, ErrInvitationTokenCollision
		}
		return nil, dbError("create invitation", err)
	}
	return &out, nil
}

// MarkSent records a successful delivery.
func (r *InvitationRepo) MarkSent(ctx context.Context, id string, at time.Time) error {
	return r.update(ctx, invitationMarkSentQuery, id, at.UTC())
}

// MarkFailed records a delivery failure, truncating long provider messages.
func (r *InvitationRepo) MarkFailed(ctx context.Context, id, reason string) error {
	if len(reason) > maxInvitationErrorLen {
		reason = reason[:maxInvitationErrorLen]
	}
	return r.update(ctx, invitationMarkFailedQuery, id, reason)
}

func (r *InvitationRepo) update(ctx context.Context, query, id string, arg any) error {
	res, err := r.DB.ExecContext(ctx, query, id, arg)
	if err != nil {
		return dbError("update invitation", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return dbError("update invitation rows affected", err)
	}
	if n == 0 {
		return core.ErrInvitationNotFound
	}
	return nil
}

// GetByToken returns the invitation identified by its link token.
func (r *InvitationRepo) GetByToken(ctx context.Context, token string) (*model.Invitation, error) {
	if token == "" {
		return nil, core.ErrInvitationNotFound
	}
	var out model.Invitation
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, invitationGetByTokenQuery, token)
		if err != nil {
			return err
		}
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Invitation])
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, core.ErrInvitationNotFound
		}
		return nil, dbError("get invitation by token", err)
	}
	return &out, nil
}

// ListRecent returns the organization's newest invitations.
func (r *InvitationRepo) ListRecent(ctx context.Context, organizationID string, limit int) ([]*model.Invitation, error) {
	if limit <= 0 {
		limit = defaultInvitationListLimit
	}
	if limit > maxInvitationListLimit {
		limit = maxInvitationListLimit
	}
	var out []*model.Invitation
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, invitationListRecentQuery, organizationID, limit)
		if err != nil {
			return err
		}
		out, err = pgxutil.CollectPtrs[model.Invitation](rows)
		return err
	})
	if err != nil {
		return nil, dbError("list invitations", err)
	}
	return out, nil
}
