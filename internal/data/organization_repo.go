package data

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/equihire/equihire-core/internal/core"
	"github.com/equihire/equihire-core/internal/data/pgxutil"
	"github.com/equihire/equihire-core/internal/domain/model"
)

const organizationColumns = `o.id, o.name, o.slug, o.idp_org_id, o.created_by, o.created_at, o.updated_at`

const (
	orgInsertQuery = `
		INSERT INTO organizations AS o (name, slug, idp_org_id, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		RETURNING ` + organizationColumns

	orgMemberInsertQuery = `
		INSERT INTO organization_members (organization_id, user_id, email, role, created_at)
		VALUES ($1, $2, $3, $4, $5)`

	orgGetByMemberQuery = `
		SELECT ` + organizationColumns + `
		FROM organizations o
		JOIN organization_members m ON m.organization_id = o.id
		WHERE m.user_id = $1`

	orgHasMemberQuery = `SELECT EXISTS(SELECT 1 FROM organization_members WHERE user_id = $1)`

	orgListQuery = `
		SELECT ` + organizationColumns + `, count(m.user_id) AS member_count
		FROM organizations o
		LEFT JOIN organization_members m ON m.organization_id = o.id
		GROUP BY o.id
		ORDER BY o.created_at DESC, o.id
		LIMIT $1 OFFSET $2`
)

// OrganizationRepo provides database operations for organizations and memberships.
type OrganizationRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

var _ core.OrganizationRepository = (*OrganizationRepo)(nil)

// NewOrganizationRepo creates a new OrganizationRepo with the real clock.
func NewOrganizationRepo(db *sql.DB) *OrganizationRepo {
	return &OrganizationRepo{DB: db, timeProvider: RealTimeProvider{}}
}

// NewOrganizationRepoWithTimeProvider creates an OrganizationRepo with a custom clock (useful for tests).
func NewOrganizationRepoWithTimeProvider(db *sql.DB, tp TimeProvider) *OrganizationRepo {
	return &OrganizationRepo{DB: db, timeProvider: tp}
}

// Create inserts the organization and the owner's membership in one transaction.
func (r *OrganizationRepo) Create(
	ctx context.Context,
	req *model.CreateOrganizationRequest,
) (*model.Organization, error) {
	if req == nil {
		return nil, ErrRequestRequired
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := r.timeProvider.Now()
	var out model.Organization
	err := pgxutil.WithPgxTx(ctx, r.DB, pgxutil.TxConfig{
		Fn: func(tx pgx.Tx) error {
			rows, err := tx.Query(ctx, orgInsertQuery, req.Name, model.Slugify(req.Name), req.IdPOrgID, req.OwnerID, now)
			if err != nil {
				return err
			}
			out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Organization])
			if err != nil {
				return err
			}
			_, err = tx.Exec(ctx, orgMemberInsertQuery, out.ID, req.OwnerID, req.OwnerEmail, model.MembershipRoleOwner, now)
			return err
		},
	})
	if err != nil {
		return nil, mapOrganizationWriteErr(err)
	}
	return &out, nil
}

// GetByMember returns the organization userID belongs to.
func (r *OrganizationRepo) GetByMember(ctx context.Context, userID string) (*model.Organization, error) {
	if userID == "" {
		return nil, core.ErrOrganizationNotFound
	}
	var out model.Organization
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, orgGetByMemberQuery, userID)
		if err != nil {
			return err
		}
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Organization])
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, core.ErrOrganizationNotFound
		}
		return nil, dbError("get organization by member", err)
	}
	return &out, nil
}

// HasMember reports whether userID belongs to any organization.
func (r *OrganizationRepo) HasMember(ctx context.Context, userID string) (bool, error) {
	if userID == "" {
		return false, nil
	}
	var exists bool
	if err := r.DB.QueryRowContext(ctx, orgHasMemberQuery, userID).Scan(&exists); err != nil {
		return false, dbError("check organization membership", err)
	}
	return exists, nil
}

// List returns organizations with member counts, newest first.
func (r *OrganizationRepo) List(
	ctx context.Context,
	opts model.OrganizationListOptions,
) ([]*model.OrganizationSummary, error) {
	opts.Normalize()
	var out []*model.OrganizationSummary
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, orgListQuery, opts.Limit, opts.Offset)
		if err != nil {
			return err
		}
		out, err = pgxutil.CollectPtrs[model.OrganizationSummary](rows)
		return err
	})
	if err != nil {
		return nil, dbError("list organizations", err)
	}
	return out, nil
}

func mapOrganizationWriteErr(err error) error {
	constraint, ok := uniqueViolation(err)
	if !ok {
		return dbError("create organization", err)
	}
	if constraint == constraintMemberUser || constraint == constraintMemberPrimary {
		return core.ErrAlreadyMember
	}
	// organizations_lower_name_key and organizations_slug_key both mean the name is taken.
	return core.ErrOrganizationNameTaken
}
