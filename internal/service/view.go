package service

import (
	"context"
	"errors"
	"fmt"

	domainauth "github.com/equihire/equihire-core/internal/domain/auth"
	"github.com/equihire/equihire-core/internal/domain/view"
	apperrors "github.com/equihire/equihire-core/internal/errors"
)

// ErrMembershipUnavailable is returned by Resolve when the organization lookup fails.
var ErrMembershipUnavailable = errors.New("organization membership unavailable")

// MembershipChecker answers whether a user has completed onboarding.
type MembershipChecker interface {
	HasOrganization(ctx context.Context, userID string) (bool, error)
}

// ViewServiceOptions groups dependencies for ViewService.
type ViewServiceOptions struct {
	Memberships MembershipChecker
	Router      *view.Router // Optional: defaults to view.DefaultRouter
}

// ViewService picks the top-level screen for a request.
type ViewService struct {
	memberships MembershipChecker
	router      view.Router
}

// NewViewService constructs a new ViewService.
func NewViewService(opts ViewServiceOptions) *ViewService {
	if opts.Memberships == nil {
		panic("MembershipChecker is required")
	}
	router := view.DefaultRouter()
	if opts.Router != nil {
		router = *opts.Router
	}
	return &ViewService{memberships: opts.Memberships, router: router}
}

// ViewInput is the request path and the caller's session, nil when signed out.
type ViewInput struct {
	Path    string
	Session *domainauth.Session
}

// ViewResult is the selected screen and the facts it was selected from.
type ViewResult struct {
	Variant         view.Variant
	Authenticated   bool
	HasOrganization bool
}

// Resolve selects the view for in. Guests count as signed out.
// The membership lookup runs only when the path is not a fixed route and the caller is signed in.
func (s *ViewService) Resolve(ctx context.Context, in ViewInput) (ViewResult, error) {
	authed := in.Session != nil && !in.Session.IsGuest()

	var hasOrg bool
	if s.router.NeedsOrganization(in.Path, authed) {
		var err error
		hasOrg, err = s.memberships.HasOrganization(ctx, in.Session.UserID)
		if err != nil {
			return ViewResult{}, apperrors.Wrap(
				fmt.Errorf("%w: %w", ErrMembershipUnavailable, err),
				apperrors.ErrCodeUnavailable,
				"We couldn't verify your organization",
			)
		}
	}

	return ViewResult{
		Variant:         s.router.Select(in.Path, authed, hasOrg),
		Authenticated:   authed,
		HasOrganization: hasOrg,
	}, nil
}

// Router exposes the route table, e.g. for the admin CLI.
func (s *ViewService) Router() view.Router { return s.router }
