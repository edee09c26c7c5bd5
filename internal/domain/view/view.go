// Package view decides which top-level screen a request renders.
//
// Selection is a pure function of three inputs: the request path, whether the
// visitor is signed in, and whether the signed-in recruiter already belongs to
// an organization. Exact-path routes are consulted first, so candidate pages
// are reachable without signing in.
package view

import (
	"fmt"
	"strings"
)

// Variant is one of the mutually exclusive top-level screens.
type Variant int

const (
	Landing Variant = iota
	CandidateWelcome
	CandidateInterview
	OrganizationSetup
	Dashboard
)

var variantNames = [...]string{
	Landing:            "landing",
	CandidateWelcome:   "candidate-welcome",
	CandidateInterview: "candidate-interview",
	OrganizationSetup:  "organization-setup",
	Dashboard:          "dashboard",
}

// Variants returns every variant in declaration order.
func Variants() []Variant {
	return []Variant{Landing, CandidateWelcome, CandidateInterview, OrganizationSetup, Dashboard}
}

func (v Variant) String() string {
	if v < 0 || int(v) >= len(variantNames) {
		return fmt.Sprintf("variant(%d)", int(v))
	}
	return variantNames[v]
}

// Template returns the page template that renders the variant.
func (v Variant) Template() string {
	return v.String() + "-page"
}

// Public reports whether the variant is served without a session.
func (v Variant) Public() bool {
	return v == Landing || v == CandidateWelcome || v == CandidateInterview
}

// ParseVariant converts a variant name back into a Variant.
func ParseVariant(s string) (Variant, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range variantNames {
		if n == name {
			return Variant(i), nil
		}
	}
	return Landing, fmt.Errorf("unknown view variant %q", s)
}

// Route binds an exact request path to a variant.
type Route struct {
	Path    string
	Variant Variant
}

// Router holds the ordered exact-path table consulted before the auth rules.
// The zero value has no routes. A Router is immutable once built and safe for concurrent use.
type Router struct {
	routes []Route
}

// NewRouter builds a router from routes in priority order. Duplicate paths keep the first entry.
func NewRouter(routes ...Route) Router {
	seen := make(map[string]struct{}, len(routes))
	out := make([]Route, 0, len(routes))
	for _, r := range routes {
		if _, dup := seen[r.Path]; dup {
			continue
		}
		seen[r.Path] = struct{}{}
		out = append(out, r)
	}
	return Router{routes: out}
}

// DefaultRouter returns the router with the two public candidate pages.
func DefaultRouter() Router {
	return NewRouter(
		Route{Path: "/candidate/welcome", Variant: CandidateWelcome},
		Route{Path: "/candidate/interview", Variant: CandidateInterview},
	)
}

// Routes returns a copy of the route table.
func (r Router) Routes() []Route {
	out := make([]Route, len(r.routes))
	copy(out, r.routes)
	return out
}

// Match returns the variant bound to path. Comparison is exact: no prefix
// matching and no trailing-slash normalization.
func (r Router) Match(path string) (Variant, bool) {
	for _, rt := range r.routes {
		if rt.Path == path {
			return rt.Variant, true
		}
	}
	return Landing, false
}

// Select picks the variant for one request. The first matching rule wins:
//
//  1. an exact route from the table
//  2. not signed in: Landing
//  3. no organization yet: OrganizationSetup
//  4. otherwise: Dashboard
//
// Unknown paths never produce a "not found" screen.
func (r Router) Select(path string, isAuthenticated, hasOrg bool) Variant {
	if v, ok := r.Match(path); ok {
		return v
	}
	if !isAuthenticated {
		return Landing
	}
	if !hasOrg {
		return OrganizationSetup
	}
	return Dashboard
}

// NeedsOrganization reports whether Select would consult hasOrg for these inputs.
// Callers use it to skip the membership lookup on public routes.
func (r Router) NeedsOrganization(path string, isAuthenticated bool) bool {
	if _, ok := r.Match(path); ok {
		return false
	}
	return isAuthenticated
}

var defaultRouter = DefaultRouter()

// Select applies the default router.
func Select(path string, isAuthenticated, hasOrg bool) Variant {
	return defaultRouter.Select(path, isAuthenticated, hasOrg)
}
