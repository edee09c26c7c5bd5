package config

import (
	"errors"
	"fmt"
	"strings"
)

// AuthMode represents the authentication mode for the application.
type AuthMode string

const (
	// AuthModeOAuth uses OAuth/OIDC for authentication.
	AuthModeOAuth AuthMode = "oauth"
	// AuthModeMock uses mock/dev authentication (for development only).
	AuthModeMock AuthMode = "mock"
)

// discoverySuffix is appended to OAUTH_BASE_URL when no discovery URL is configured.
const discoverySuffix = "/oauth2/token/.well-known/openid-configuration"

// UnmarshalText implements encoding.TextUnmarshaler for AuthMode.
func (a *AuthMode) UnmarshalText(text []byte) error {
	v := strings.ToLower(string(text))
	switch v {
	case "oauth", "mock":
		*a = AuthMode(v)
		return nil
	default:
		return fmt.Errorf("invalid AuthMode: %q (valid options: oauth, mock)", v)
	}
}

// OAuthConfig contains the identity provider client configuration.
//
// BaseURL is the tenant root of the provider (for Asgardeo,
// https://api.asgardeo.io/t/<org>). ClientSecret is optional: public clients
// authenticate with PKCE only.
type OAuthConfig struct {
	ClientID           string `env:"CLIENT_ID"            envDefault:"equihire"`
	ClientSecret       string `env:"CLIENT_SECRET"`
	BaseURL            string `env:"BASE_URL"`
	RedirectURL        string `env:"REDIRECT_URL"         envDefault:"http://localhost:8080/auth/callback"`
	SignOutRedirectURL string `env:"SIGNOUT_REDIRECT_URL" envDefault:"http://localhost:8080/auth/signed-out"`
	Scope              string `env:"SCOPE"                envDefault:"openid profile email"`
	OrgID              string `env:"ORG_ID"`
	DiscoveryURL       string `env:"DISCOVERY_URL"`
	LogoutURL          string `env:"LOGOUT_URL"`
}

// ResolvedDiscoveryURL returns DiscoveryURL, or the well-known document under BaseURL.
func (o OAuthConfig) ResolvedDiscoveryURL() string {
	if o.DiscoveryURL != "" {
		return o.DiscoveryURL
	}
	if o.BaseURL == "" {
		return ""
	}
	return strings.TrimSuffix(o.BaseURL, "/") + discoverySuffix
}

// ClaimsConfig holds JMESPath expressions evaluated against ID token claims.
type ClaimsConfig struct {
	Username     string `env:"USERNAME"     envDefault:"username || preferred_username || email || sub"`
	Organization string `env:"ORGANIZATION" envDefault:"org_id || org_name"`
	Groups       string `env:"GROUPS"       envDefault:"groups"`
}

// DevAuthConfig controls mock/dev authentication identity.
// Used when AUTH_MODE=mock for development and testing.
type DevAuthConfig struct {
	UserID   string   `env:"USER_ID"  envDefault:"dev-user"`
	Username string   `env:"USERNAME" envDefault:"dev"`
	Email    string   `env:"EMAIL"    envDefault:"dev@example.com"`
	OrgID    string   `env:"ORG_ID"`
	Groups   []string `env:"GROUPS"   envDefault:"recruiters" envSeparator:";"`
}

// AuthConfig groups all authentication-related configuration.
type AuthConfig struct {
	// Mode determines which authentication provider to use.
	Mode AuthMode `env:"AUTH_MODE" envDefault:"oauth"`

	// OAuth configuration (used when Mode=oauth).
	OAuth OAuthConfig `envPrefix:"OAUTH_"`

	// Claims maps provider-specific claim shapes onto the session.
	Claims ClaimsConfig `envPrefix:"AUTH_CLAIMS_"`

	// DevAuth configuration (used when Mode=mock).
	DevAuth DevAuthConfig `envPrefix:"DEV_AUTH_"`

	// AdminGroup grants platform administration.
	AdminGroup string `env:"ADMIN_GROUP" envDefault:"equihire-admins"`

	// UserGroup restricts sign-in to members of a group. Empty admits every identity.
	UserGroup string `env:"USER_GROUP"`
}

// Sanitize trims whitespace from values that are commonly copied from consoles.
func (a *AuthConfig) Sanitize() {
	a.OAuth.ClientID = strings.TrimSpace(a.OAuth.ClientID)
	a.OAuth.BaseURL = strings.TrimSpace(a.OAuth.BaseURL)
	a.OAuth.Scope = strings.Join(strings.Fields(a.OAuth.Scope), " ")
	a.OAuth.OrgID = strings.TrimSpace(a.OAuth.OrgID)
}

// Validate ensures the identity provider can be located in oauth mode.
func (a *AuthConfig) Validate() error {
	if a.Mode != AuthModeOAuth {
		return nil
	}
	if a.OAuth.ResolvedDiscoveryURL() == "" {
		return errors.New("auth: OAUTH_BASE_URL or OAUTH_DISCOVERY_URL is required when AUTH_MODE=oauth")
	}
	return nil
}
