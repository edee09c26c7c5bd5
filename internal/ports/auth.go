package ports

// Package ports defines interfaces (hexagonal ports) for auth-related behavior.
// Implementations live in internal/adapters; orchestration in internal/service.

import (
	"context"

	domainauth "github.com/equihire/equihire-core/internal/domain/auth"
)

// BeginInput carries inputs for initiating an auth flow.
type BeginInput struct {
	RedirectURL string
	// SignUp asks the IdP to show its registration screen instead of sign-in.
	SignUp bool
}

// BeginResult carries the values the caller must remember until the callback.
type BeginResult struct {
	AuthURL  string
	State    string
	Nonce    string
	Verifier string // PKCE code verifier
}

// ExchangeInput groups parameters for the code/token exchange.
type ExchangeInput struct {
	Code     string
	State    string
	Nonce    string
	Verifier string
}

// AuthProvider initiates and completes an authentication flow against an IdP.
type AuthProvider interface {
	// Begin starts the login flow and returns the provider auth URL with its state, nonce and PKCE verifier.
	Begin(ctx context.Context, in BeginInput) (BeginResult, error)

	// Exchange completes the login flow, verifying the nonce, and returns the authenticated identity.
	Exchange(ctx context.Context, in ExchangeInput) (domainauth.Identity, error)

	// LogoutURL returns the IdP end-session URL for the given ID token, or "" when the IdP has none.
	LogoutURL(idTokenHint string) string
}

// SessionStore persists and retrieves user sessions.
type SessionStore interface {
	Save(ctx context.Context, sess domainauth.Session) error
	Get(ctx context.Context, id string) (domainauth.Session, error)
	Delete(ctx context.Context, id string) error
}

// RoleMapper maps provider groups to application roles.
type RoleMapper interface {
	Map(groups []string) domainauth.Role
}

// ClaimSet is the provider-neutral subset of token claims the application uses.
type ClaimSet struct {
	Username string
	OrgID    string
	Groups   []string
}

// ClaimMapper extracts a ClaimSet from raw ID token or userinfo claims.
type ClaimMapper interface {
	Map(claims map[string]any) (ClaimSet, error)
}
