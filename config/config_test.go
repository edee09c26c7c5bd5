package config

import (
	"reflect"
	"testing"
	"time"

	env "github.com/caarlos0/env/v11"
)

func TestAppConfig_ParseAuthEnv(t *testing.T) {
	t.Setenv("AUTH_MODE", "oauth")
	t.Setenv("ADMIN_GROUP", "platform-admins")
	t.Setenv("USER_GROUP", "recruiters")
	t.Setenv("OAUTH_CLIENT_ID", "app-client")
	t.Setenv("OAUTH_BASE_URL", "https://api.asgardeo.io/t/equihire")
	t.Setenv("OAUTH_REDIRECT_URL", "https://app.example.com/auth/callback")
	t.Setenv("OAUTH_SIGNOUT_REDIRECT_URL", "https://app.example.com/")
	t.Setenv("OAUTH_ORG_ID", "org-123")
	t.Setenv("DEV_AUTH_USER_ID", "dev-user")
	t.Setenv("DEV_AUTH_EMAIL", "dev@example.com")
	t.Setenv("DEV_AUTH_GROUPS", "admins;devs")

	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		t.Fatalf("parse config: %v", err)
	}

	expected := AuthConfig{
		Mode: AuthModeOAuth,
		OAuth: OAuthConfig{
			ClientID:           "app-client",
			BaseURL:            "https://api.asgardeo.io/t/equihire",
			RedirectURL:        "https://app.example.com/auth/callback",
			SignOutRedirectURL: "https://app.example.com/",
			Scope:              "openid profile email",
			OrgID:              "org-123",
		},
		Claims: ClaimsConfig{
			Username:     "username || preferred_username || email || sub",
			Organization: "org_id || org_name",
			Groups:       "groups",
		},
		DevAuth: DevAuthConfig{
			UserID:   "dev-user",
			Username: "dev",
			Email:    "dev@example.com",
			Groups:   []string{"admins", "devs"},
		},
		AdminGroup: "platform-admins",
		UserGroup:  "recruiters",
	}

	if !reflect.DeepEqual(cfg.Auth, expected) {
		t.Fatalf("unexpected auth configuration:\nexpected: %#v\ngot:      %#v", expected, cfg.Auth)
	}
	if got := cfg.Auth.OAuth.ResolvedDiscoveryURL(); got != "https://api.asgardeo.io/t/equihire/oauth2/token/.well-known/openid-configuration" {
		t.Fatalf("unexpected discovery URL %q", got)
	}
}

func TestOAuthConfig_ResolvedDiscoveryURL(t *testing.T) {
	tests := []struct {
		name string
		cfg  OAuthConfig
		want string
	}{
		{name: "explicit wins", cfg: OAuthConfig{BaseURL: "https://idp", DiscoveryURL: "https://other/.well-known/openid-configuration"}, want: "https://other/.well-known/openid-configuration"},
		{name: "derived from base", cfg: OAuthConfig{BaseURL: "https://idp/t/acme/"}, want: "https://idp/t/acme/oauth2/token/.well-known/openid-configuration"},
		{name: "nothing configured", cfg: OAuthConfig{}, want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.ResolvedDiscoveryURL(); got != tt.want {
				t.Fatalf("got %q want %q", got, tt.want)
			}
		})
	}
}

func TestAuthConfig_Validate(t *testing.T) {
	cfg := AuthConfig{Mode: AuthModeOAuth}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error without base or discovery URL")
	}
	cfg.Mode = AuthModeMock
	if err := cfg.Validate(); err != nil {
		t.Fatalf("mock mode should not require discovery: %v", err)
	}
}

func TestAuthMode_UnmarshalText(t *testing.T) {
	var m AuthMode
	if err := m.UnmarshalText([]byte("MOCK")); err != nil || m != AuthModeMock {
		t.Fatalf("unexpected result %q err=%v", m, err)
	}
	if err := m.UnmarshalText([]byte("saml")); err == nil {
		t.Fatal("expected error for unknown mode")
	}
}

func TestHTTPConfig_Validate(t *testing.T) {
	tests := []struct {
		domain  string
		wantErr bool
	}{
		{domain: "", wantErr: false},
		{domain: "localhost", wantErr: false},
		{domain: "app.example.com", wantErr: false},
		{domain: ".example.com", wantErr: false},
		{domain: "co.uk", wantErr: true},
		{domain: ".com", wantErr: true},
		{domain: "github.io", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.domain, func(t *testing.T) {
			h := HTTPConfig{CookieDomain: tt.domain}
			h.Sanitize()
			err := h.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("domain %q: err=%v wantErr=%v", tt.domain, err, tt.wantErr)
			}
		})
	}
}

func TestHTTPConfig_Sanitize(t *testing.T) {
	h := HTTPConfig{CompressionLevel: 42, BaseURL: " https://app.example.com/ "}
	h.Sanitize()
	if h.CompressionLevel != 9 {
		t.Fatalf("expected clamp to 9, got %d", h.CompressionLevel)
	}
	if h.BaseURL != "https://app.example.com" {
		t.Fatalf("unexpected base URL %q", h.BaseURL)
	}
}

func TestIntegrationsConfig_Sanitize(t *testing.T) {
	c := IntegrationsConfig{ProbeTimeout: 0}
	c.Sanitize()
	if c.ProbeTimeout != 3*time.Second {
		t.Fatalf("expected default timeout, got %s", c.ProbeTimeout)
	}
	c.ProbeTimeout = time.Hour
	c.Sanitize()
	if c.ProbeTimeout != 30*time.Second {
		t.Fatalf("expected clamp, got %s", c.ProbeTimeout)
	}
}

func TestR2Config(t *testing.T) {
	c := R2Config{AccountID: "abc", AccessKeyID: "k", SecretAccessKey: "s", Bucket: "cvs"}
	if !c.Configured() {
		t.Fatal("expected configured")
	}
	if got := c.ResolvedEndpoint(); got != "https://abc.r2.cloudflarestorage.com" {
		t.Fatalf("unexpected endpoint %q", got)
	}
	c.Endpoint = "http://localhost:9000"
	if got := c.ResolvedEndpoint(); got != "http://localhost:9000" {
		t.Fatalf("unexpected endpoint override %q", got)
	}
	if (R2Config{Bucket: "cvs"}).Configured() {
		t.Fatal("bucket alone should not be configured")
	}
}

func TestCacheConfig_Sanitize(t *testing.T) {
	c := CacheConfig{OrgTTL: -1}
	c.Sanitize()
	if c.OrgTTL != 5*time.Minute {
		t.Fatalf("unexpected TTL %s", c.OrgTTL)
	}
}
