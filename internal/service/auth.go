package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	domainauth "github.com/equihire/equihire-core/internal/domain/auth"
	"github.com/equihire/equihire-core/internal/ports"
)

// defaultSessionTTL applies when the IdP token carries no expiry.
const defaultSessionTTL = 8 * time.Hour

// ErrSessionExpired is returned by GetSession for sessions past their expiry.
var ErrSessionExpired = errors.New("session expired")

// AuthServiceOptions groups dependencies for AuthService.
type AuthServiceOptions struct {
	Provider ports.AuthProvider
	Sessions ports.SessionStore
	Roles    ports.RoleMapper
}

// AuthService orchestrates authentication flows by coordinating provider, role mapping, and session persistence.
type AuthService struct {
	provider ports.AuthProvider
	sessions ports.SessionStore
	roles    ports.RoleMapper
	now      func() time.Time
}

// NewAuthService constructs a new AuthService.
func NewAuthService(opts AuthServiceOptions) *AuthService {
	if opts.Provider == nil {
		panic("AuthProvider is required")
	}
	if opts.Sessions == nil {
		panic("SessionStore is required")
	}
	if opts.Roles == nil {
		panic("RoleMapper is required")
	}
	return &AuthService{
		provider: opts.Provider,
		sessions: opts.Sessions,
		roles:    opts.Roles,
		now:      time.Now,
	}
}

// BeginLoginInput groups parameters for starting a login or sign-up flow.
type BeginLoginInput struct {
	RedirectURL string
	SignUp      bool
}

// BeginLoginResult contains the values the HTTP layer must remember until the callback.
type BeginLoginResult struct {
	AuthURL  string
	State    string
	Nonce    string
	Verifier string
}

// BeginLogin initiates an authentication flow and returns the provider auth URL with state, nonce and PKCE verifier.
func (s *AuthService) BeginLogin(ctx context.Context, in BeginLoginInput) (*BeginLoginResult, error) {
	if in.RedirectURL == "" {
		return nil, errors.New("redirect URL is required")
	}

	res, err := s.provider.Begin(ctx, ports.BeginInput{RedirectURL: in.RedirectURL, SignUp: in.SignUp})
	if err != nil {
		return nil, fmt.Errorf("begin auth flow: %w", err)
	}

	return &BeginLoginResult{
		AuthURL:  res.AuthURL,
		State:    res.State,
		Nonce:    res.Nonce,
		Verifier: res.Verifier,
	}, nil
}

// CompleteLoginInput groups parameters for completing a login flow.
type CompleteLoginInput struct {
	Code     string
	State    string
	Nonce    string
	Verifier string
}

// CompleteLoginResult contains the result of completing a login flow.
type CompleteLoginResult struct {
	Session domainauth.Session
}

// CompleteLogin exchanges the authorization code for an identity, maps its role and persists a session.
func (s *AuthService) CompleteLogin(ctx context.Context, input CompleteLoginInput) (*CompleteLoginResult, error) {
	if input.Code == "" {
		return nil, errors.New("authorization code is required")
	}
	if input.State == "" {
		return nil, errors.New("state parameter is required")
	}
	if input.Nonce == "" {
		return nil, errors.New("nonce parameter is required")
	}

	identity, err := s.provider.Exchange(ctx, ports.ExchangeInput{
		Code:     input.Code,
		State:    input.State,
		Nonce:    input.Nonce,
		Verifier: input.Verifier,
	})
	if err != nil {
		return nil, fmt.Errorf("exchange authorization code: %w", err)
	}
	if identity.UserID == "" {
		return nil, errors.New("identity has no subject")
	}

	expiresAt := identity.ExpiresAt
	if expiresAt.IsZero() {
		expiresAt = s.now().Add(defaultSessionTTL)
	}

	session := domainauth.Session{
		ID:        uuid.NewString(),
		UserID:    identity.UserID,
		Username:  identity.Username,
		FirstName: identity.FirstName,
		LastName:  identity.LastName,
		Email:     identity.Email,
		OrgID:     identity.OrgID,
		Role:      s.roles.Map(identity.Groups),
		IDToken:   identity.IDToken,
		ExpiresAt: expiresAt,
	}

	if saveErr := s.sessions.Save(ctx, session); saveErr != nil {
		return nil, fmt.Errorf("save session: %w", saveErr)
	}

	return &CompleteLoginResult{Session: session}, nil
}

// GetSession retrieves a live session by ID, deleting it if it has expired.
func (s *AuthService) GetSession(ctx context.Context, sessionID string) (*domainauth.Session, error) {
	if sessionID == "" {
		return nil, errors.New("session ID is required")
	}

	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	if s.now().After(session.ExpiresAt) {
		if deleteErr := s.sessions.Delete(ctx, sessionID); deleteErr != nil {
			return nil, errors.Join(ErrSessionExpired, fmt.Errorf("delete session: %w", deleteErr))
		}
		return nil, ErrSessionExpired
	}

	return &session, nil
}

// LogoutResult tells the HTTP layer where to send the browser after the local session is gone.
type LogoutResult struct {
	// EndSessionURL is the IdP sign-out URL; empty when the IdP has none.
	EndSessionURL string
}

// Logout removes the session and builds the IdP end-session URL with the session's ID token as hint.
func (s *AuthService) Logout(ctx context.Context, sessionID string) (*LogoutResult, error) {
	if sessionID == "" {
		return &LogoutResult{EndSessionURL: s.provider.LogoutURL("")}, nil
	}

	var hint string
	if sess, err := s.sessions.Get(ctx, sessionID); err == nil {
		hint = sess.IDToken
	}

	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return nil, fmt.Errorf("delete session: %w", err)
	}

	return &LogoutResult{EndSessionURL: s.provider.LogoutURL(hint)}, nil
}
