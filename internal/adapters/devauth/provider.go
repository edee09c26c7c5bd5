package devauth

// Package devauth provides a simple, config-driven AuthProvider for local development.

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"time"

	domainauth "github.com/equihire/equihire-core/internal/domain/auth"
	"github.com/equihire/equihire-core/internal/ports"
)

// Config controls the dev auth provider behavior.
// UserID and Email are required; the rest may be empty.
type Config struct {
	UserID          string
	Username        string
	Email           string
	OrgID           string
	Groups          []string
	SessionDuration time.Duration // default 8h when zero
	// SignedOutURL is returned from LogoutURL so the sign-out redirect can be exercised locally.
	SignedOutURL string
}

// Provider implements ports.AuthProvider for local development.
// It short-circuits the OAuth flow by redirecting back to our own callback
// with locally generated state and nonce.
// Exchange ignores the code and returns the configured identity.
type Provider struct {
	identity        domainauth.Identity
	sessionDuration time.Duration
	signedOutURL    string
}

// NewProvider constructs a dev auth provider from Config.
func NewProvider(cfg Config) (*Provider, error) {
	if cfg.UserID == "" {
		return nil, errors.New("dev auth: UserID is required")
	}
	if cfg.Email == "" {
		return nil, errors.New("dev auth: Email is required")
	}
	dur := cfg.SessionDuration
	if dur == 0 {
		dur = 8 * time.Hour
	}
	return &Provider{
		identity: domainauth.Identity{
			UserID:   cfg.UserID,
			Username: cfg.Username,
			Email:    cfg.Email,
			OrgID:    cfg.OrgID,
			Groups:   append([]string(nil), cfg.Groups...),
		},
		sessionDuration: dur,
		signedOutURL:    cfg.SignedOutURL,
	}, nil
}

// Begin returns a local callback URL and cryptographically secure state, nonce and verifier.
// A sign-up request behaves like sign-in: the dev identity already exists.
func (p *Provider) Begin(_ context.Context, _ ports.BeginInput) (ports.BeginResult, error) {
	state, err := randomString(24)
	if err != nil {
		return ports.BeginResult{}, fmt.Errorf("generate state: %w", err)
	}
	nonce, err := randomString(24)
	if err != nil {
		return ports.BeginResult{}, fmt.Errorf("generate nonce: %w", err)
	}
	verifier, err := randomString(43)
	if err != nil {
		return ports.BeginResult{}, fmt.Errorf("generate verifier: %w", err)
	}
	// Our standard handler expects GET /auth/callback?code=...&state=...
	authURL := "/auth/callback?code=dev&state=" + url.QueryEscape(state)
	return ports.BeginResult{AuthURL: authURL, State: state, Nonce: nonce, Verifier: verifier}, nil
}

// Exchange ignores the provided code (state and nonce are checked by the handler) and returns the dev identity.
func (p *Provider) Exchange(_ context.Context, _ ports.ExchangeInput) (domainauth.Identity, error) {
	id := p.identity
	id.Groups = append([]string(nil), p.identity.Groups...)
	id.ExpiresAt = time.Now().Add(p.sessionDuration)
	return id, nil
}

// LogoutURL returns the configured signed-out page; there is no IdP session to end.
func (p *Provider) LogoutURL(string) string {
	return p.signedOutURL
}

func randomString(n int) (string, error) {
	if n <= 0 {
		return "", nil
	}
	// Compute number of random bytes needed to produce at least n base64 URL chars
	b := make([]byte, (n*3+3)/4+1)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b)[:n], nil
}
