package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/equihire/equihire-core/internal/core"
	"github.com/equihire/equihire-core/internal/domain/model"
	apperrors "github.com/equihire/equihire-core/internal/errors"
)

const (
	defaultMembershipCacheTTL      = 5 * time.Minute
	defaultMembershipLookupTimeout = 5 * time.Second
	membershipCachePrefix          = "org:member:"
)

// MembershipCacheOptions configures the Redis cache in front of membership lookups.
type MembershipCacheOptions struct {
	Cache core.CacheRepository
	TTL   time.Duration
}

// OrganizationServiceOptions groups dependencies for OrganizationService.
type OrganizationServiceOptions struct {
	Repo   core.OrganizationRepository
	Cache  MembershipCacheOptions // Optional: nil Cache disables caching
	Logger *slog.Logger
}

// OrganizationService answers "does this recruiter have an organization?" and runs onboarding.
type OrganizationService struct {
	repo     core.OrganizationRepository
	cache    core.CacheRepository
	cacheTTL time.Duration
	logger   *slog.Logger
	lookups  singleflight.Group
}

// NewOrganizationService constructs a new OrganizationService.
func NewOrganizationService(opts OrganizationServiceOptions) *OrganizationService {
	if opts.Repo == nil {
		panic("OrganizationRepository is required")
	}
	ttl := opts.Cache.TTL
	if ttl <= 0 {
		ttl = defaultMembershipCacheTTL
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &OrganizationService{
		repo:     opts.Repo,
		cache:    opts.Cache.Cache,
		cacheTTL: ttl,
		logger:   logger.With("component", "organization_service"),
	}
}

func membershipKey(userID string) string { return membershipCachePrefix + userID }

// HasOrganization reports whether userID belongs to an organization.
// Only positive answers are cached.
// Concurrent lookups for the same user share one repository call, bounded by its own timeout.
func (s *OrganizationService) HasOrganization(ctx context.Context, userID string) (bool, error) {
	if userID == "" {
		return false, nil
	}

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, membershipKey(userID))
		switch {
		case err != nil:
			s.logger.WarnContext(ctx, "membership cache read failed", "error", err)
		case cached != nil:
			return true, nil
		}
	}

	// The shared lookup outlives any single caller; each caller still honors its own ctx.
	ch := s.lookups.DoChan(userID, func() (any, error) {
		lookupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), defaultMembershipLookupTimeout)
		defer cancel()
		return s.repo.HasMember(lookupCtx, userID)
	})
	var res singleflight.Result
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("check organization membership: %w", ctx.Err())
	case res = <-ch:
	}
	if res.Err != nil {
		return false, fmt.Errorf("check organization membership: %w", res.Err)
	}
	has, _ := res.Val.(bool)
	if has {
		s.remember(ctx, userID)
	}
	return has, nil
}

func (s *OrganizationService) remember(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, membershipKey(userID), []byte("1"), s.cacheTTL); err != nil {
		s.logger.WarnContext(ctx, "membership cache write failed", "error", err)
	}
}

// CompleteOnboardingInput is the onboarding form plus the signed-in recruiter.
type CompleteOnboardingInput struct {
	UserID   string
	Email    string
	Name     string
	IdPOrgID string
}

// CompleteOnboardingResult reports the recruiter's organization and whether this call created it.
type CompleteOnboardingResult struct {
	Organization *model.Organization
	Created      bool
}

// Complete creates the recruiter's organization. Completing twice returns the existing organization.
func (s *OrganizationService) Complete(
	ctx context.Context,
	in CompleteOnboardingInput,
) (*CompleteOnboardingResult, error) {
	req := &model.CreateOrganizationRequest{
		Name:       in.Name,
		OwnerID:    in.UserID,
		OwnerEmail: in.Email,
	}
	if in.IdPOrgID != "" {
		req.IdPOrgID = &in.IdPOrgID
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		if req.OwnerID == "" {
			return nil, apperrors.Wrap(err, apperrors.ErrCodeValidation, "You must be signed in to create an organization.")
		}
		e := apperrors.ValidationField("name", capitalize(err.Error())+".")
		e.Cause = err
		return nil, e
	}

	existing, err := s.existing(ctx, req.OwnerID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return &CompleteOnboardingResult{Organization: existing}, nil
	}

	org, err := s.repo.Create(ctx, req)
	switch {
	case errors.Is(err, core.ErrAlreadyMember):
		// Another request for the same user won the race.
		existing, err = s.existing(ctx, req.OwnerID)
		if err != nil {
			return nil, err
		}
		if existing == nil {
			return nil, fmt.Errorf("create organization: %w", core.ErrAlreadyMember)
		}
		return &CompleteOnboardingResult{Organization: existing}, nil
	case errors.Is(err, core.ErrOrganizationNameTaken):
		e := apperrors.ConflictField("name", "An organization with this name already exists.")
		e.Cause = err
		return nil, e
	case err != nil:
		return nil, fmt.Errorf("create organization: %w", err)
	}

	s.remember(ctx, req.OwnerID)
	s.logger.InfoContext(ctx, "organization created", "organization_id", org.ID, "slug", org.Slug)
	return &CompleteOnboardingResult{Organization: org, Created: true}, nil
}

// existing returns the user's organization, or nil when there is none.
func (s *OrganizationService) existing(ctx context.Context, userID string) (*model.Organization, error) {
	org, err := s.repo.GetByMember(ctx, userID)
	if errors.Is(err, core.ErrOrganizationNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get organization by member: %w", err)
	}
	return org, nil
}

// GetForUser returns the organization userID belongs to.
func (s *OrganizationService) GetForUser(ctx context.Context, userID string) (*model.Organization, error) {
	org, err := s.repo.GetByMember(ctx, userID)
	if err != nil {
		if errors.Is(err, core.ErrOrganizationNotFound) {
			return nil, apperrors.Wrap(err, apperrors.ErrCodeNotFound, "Organization not found.")
		}
		return nil, fmt.Errorf("get organization by member: %w", err)
	}
	return org, nil
}

// List returns a page of organizations with member counts.
func (s *OrganizationService) List(
	ctx context.Context,
	opts model.OrganizationListOptions,
) ([]*model.OrganizationSummary, error) {
	opts.Normalize()
	orgs, err := s.repo.List(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("list organizations: %w", err)
	}
	return orgs, nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	if c := s[0]; c >= 'a' && c <= 'z' {
		return string(c-'a'+'A') + s[1:]
	}
	return s
}
