package oidc

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	mockauth "github.com/equihire/equihire-core/internal/mocks/auth"
	"github.com/equihire/equihire-core/internal/ports"
)

// fakeIdP serves discovery, token and userinfo endpoints under /oauth2/token like Asgardeo.
type fakeIdP struct {
	server       *httptest.Server
	issuer       string
	lastTokenReq url.Values
	tokenStatus  int
}

func newFakeIdP(t *testing.T) *fakeIdP {
	t.Helper()
	f := &fakeIdP{tokenStatus: http.StatusOK}
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth2/token/.well-known/openid-configuration", func(w http.ResponseWriter, _ *http.Request) {
		doc := DiscoveryDocument{
			Issuer:                f.issuer,
			AuthorizationEndpoint: f.server.URL + "/oauth2/authorize",
			TokenEndpoint:         f.server.URL + "/oauth2/token",
			UserinfoEndpoint:      f.server.URL + "/oauth2/userinfo",
			JwksURI:               f.server.URL + "/oauth2/jwks",
			EndSessionEndpoint:    f.server.URL + "/oidc/logout",
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(doc)
	})
	mux.HandleFunc("/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		f.lastTokenReq = r.PostForm
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(f.tokenStatus)
		if f.tokenStatus != http.StatusOK {
			_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		_, _ = w.Write([]byte(`{"access_token":"at-123","token_type":"Bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/oauth2/userinfo", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer at-123" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"sub":"user-42","email":"asha@example.com","given_name":"Asha","username":"asha","org_id":"org-9","groups":["recruiters"]}`))
	})
	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)
	f.issuer = f.server.URL + "/oauth2/token"
	return f
}

func (f *fakeIdP) discoveryURL() string {
	return f.issuer + "/.well-known/openid-configuration"
}

func createTestProvider(t *testing.T, mutate ...func(*ProviderConfig)) (*Provider, *fakeIdP) {
	t.Helper()
	idp := newFakeIdP(t)
	cfg := ProviderConfig{
		ClientID:              "test-client",
		RedirectURL:           "http://localhost:8080/auth/callback",
		Scope:                 "openid profile email",
		DiscoveryURL:          idp.discoveryURL(),
		PostLogoutRedirectURL: "http://localhost:8080/auth/signed-out",
	}
	for _, m := range mutate {
		m(&cfg)
	}
	provider, err := NewProvider(cfg)
	require.NoError(t, err)
	return provider, idp
}

func TestNewProvider_Success(t *testing.T) {
	provider, idp := createTestProvider(t)
	assert.Equal(t, idp.server.URL+"/oauth2/authorize", provider.config.Endpoint.AuthURL)
	assert.Equal(t, idp.server.URL+"/oauth2/token", provider.config.Endpoint.TokenURL)
	assert.Equal(t, oauth2.AuthStyleInParams, provider.config.Endpoint.AuthStyle)
	assert.Equal(t, idp.server.URL+"/oidc/logout", provider.endSessionURL)
}

func TestNewProvider_ValidationErrors(t *testing.T) {
	tests := []struct {
		name   string
		config ProviderConfig
		errMsg string
	}{
		{
			name:   "missing client ID",
			config: ProviderConfig{RedirectURL: "http://localhost/callback", DiscoveryURL: "http://example.com"},
			errMsg: "client ID is required",
		},
		{
			name:   "missing redirect URL",
			config: ProviderConfig{ClientID: "client", DiscoveryURL: "http://example.com"},
			errMsg: "redirect URL is required",
		},
		{
			name:   "missing discovery URL",
			config: ProviderConfig{ClientID: "client", RedirectURL: "http://localhost/callback"},
			errMsg: "discovery URL is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewProvider(tt.config)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestIssuerFromDiscoveryURL(t *testing.T) {
	assert.Equal(t, "https://api.asgardeo.io/t/acme/oauth2/token",
		IssuerFromDiscoveryURL("https://api.asgardeo.io/t/acme/oauth2/token/.well-known/openid-configuration"))
	assert.Equal(t, "https://idp.example.com", IssuerFromDiscoveryURL("https://idp.example.com/"))
}

func TestProvider_Begin(t *testing.T) {
	provider, _ := createTestProvider(t)

	res, err := provider.Begin(context.Background(), ports.BeginInput{RedirectURL: "/"})
	require.NoError(t, err)
	assert.Len(t, res.State, 32)
	assert.Len(t, res.Nonce, 32)
	assert.NotEmpty(t, res.Verifier)

	u, err := url.Parse(res.AuthURL)
	require.NoError(t, err)
	q := u.Query()
	assert.Equal(t, "test-client", q.Get("client_id"))
	assert.Equal(t, res.State, q.Get("state"))
	assert.Equal(t, res.Nonce, q.Get("nonce"))
	assert.Equal(t, "select_account", q.Get("prompt"))
	assert.Equal(t, "S256", q.Get("code_challenge_method"))
	assert.Equal(t, oauth2.S256ChallengeFromVerifier(res.Verifier), q.Get("code_challenge"))
}

func TestProvider_Begin_SignUp(t *testing.T) {
	provider, _ := createTestProvider(t)
	res, err := provider.Begin(context.Background(), ports.BeginInput{RedirectURL: "/", SignUp: true})
	require.NoError(t, err)
	u, err := url.Parse(res.AuthURL)
	require.NoError(t, err)
	assert.Equal(t, "create", u.Query().Get("prompt"))
}

func TestProvider_Begin_EmptyRedirectURL(t *testing.T) {
	provider, _ := createTestProvider(t)
	_, err := provider.Begin(context.Background(), ports.BeginInput{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redirect URL is required")
}

func TestProvider_Exchange_ValidationErrors(t *testing.T) {
	provider, _ := createTestProvider(t)

	tests := []struct {
		name   string
		input  ports.ExchangeInput
		errMsg string
	}{
		{name: "missing code", input: ports.ExchangeInput{State: "state", Nonce: "nonce"}, errMsg: "authorization code is required"},
		{name: "missing state", input: ports.ExchangeInput{Code: "code", Nonce: "nonce"}, errMsg: "state is required"},
		{name: "missing nonce", input: ports.ExchangeInput{Code: "code", State: "state"}, errMsg: "nonce is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := provider.Exchange(context.Background(), tt.input)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestProvider_Exchange_TokenEndpointError(t *testing.T) {
	provider, idp := createTestProvider(t)
	idp.tokenStatus = http.StatusBadRequest

	_, err := provider.Exchange(context.Background(), ports.ExchangeInput{Code: "c", State: "s", Nonce: "n", Verifier: "v"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exchange code for token")
}

func TestProvider_Exchange_UserInfoWithClaimMapper(t *testing.T) {
	mapper := mockauth.StaticClaimMapper{Claims: ports.ClaimSet{Username: "asha", OrgID: "org-9", Groups: []string{"recruiters"}}}
	provider, idp := createTestProvider(t, func(c *ProviderConfig) {
		// Without openid the ID token is not required, so the userinfo path can be exercised end to end.
		c.Scope = "profile email"
		c.Claims = mapper
	})

	id, err := provider.Exchange(context.Background(), ports.ExchangeInput{Code: "code-1", State: "s", Nonce: "n", Verifier: "verifier-1"})
	require.NoError(t, err)
	assert.Equal(t, "user-42", id.UserID)
	assert.Equal(t, "asha", id.Username)
	assert.Equal(t, "asha@example.com", id.Email)
	assert.Equal(t, "Asha", id.FirstName)
	assert.Equal(t, "org-9", id.OrgID)
	assert.Equal(t, []string{"recruiters"}, id.Groups)
	assert.False(t, id.ExpiresAt.IsZero())

	assert.Equal(t, "verifier-1", idp.lastTokenReq.Get("code_verifier"))
	assert.Equal(t, "test-client", idp.lastTokenReq.Get("client_id"))
	assert.Equal(t, "code-1", idp.lastTokenReq.Get("code"))
}

func TestProvider_Exchange_DefaultOrgID(t *testing.T) {
	provider, _ := createTestProvider(t, func(c *ProviderConfig) {
		c.Scope = "profile"
		c.OrgID = "tenant-org"
	})
	id, err := provider.Exchange(context.Background(), ports.ExchangeInput{Code: "c", State: "s", Nonce: "n"})
	require.NoError(t, err)
	assert.Equal(t, "tenant-org", id.OrgID)
	assert.Equal(t, "asha@example.com", id.Username)
}

func TestProvider_LogoutURL(t *testing.T) {
	provider, idp := createTestProvider(t)

	u, err := url.Parse(provider.LogoutURL("id.token.hint"))
	require.NoError(t, err)
	assert.Equal(t, idp.server.URL+"/oidc/logout", u.Scheme+"://"+u.Host+u.Path)
	assert.Equal(t, "test-client", u.Query().Get("client_id"))
	assert.Equal(t, "http://localhost:8080/auth/signed-out", u.Query().Get("post_logout_redirect_uri"))
	assert.Equal(t, "id.token.hint", u.Query().Get("id_token_hint"))

	overridden, _ := createTestProvider(t, func(c *ProviderConfig) { c.LogoutURL = "https://idp.example.com/logout?x=1" })
	assert.Contains(t, overridden.LogoutURL(""), "https://idp.example.com/logout?")
	assert.NotContains(t, overridden.LogoutURL(""), "id_token_hint")
}

func TestGenerateRandomString(t *testing.T) {
	str1, err := generateRandomString(16)
	require.NoError(t, err)
	assert.Len(t, str1, 16)

	str2, err := generateRandomString(32)
	require.NoError(t, err)
	assert.Len(t, str2, 32)

	str3, err := generateRandomString(16)
	require.NoError(t, err)
	assert.NotEqual(t, str1, str3)
}

func TestGetIDTokenFromToken(t *testing.T) {
	tok := (&oauth2.Token{}).WithExtra(map[string]any{"id_token": "abc.def.ghi"})
	idTok, err := getIDTokenFromToken(tok)
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", idTok)

	_, err = getIDTokenFromToken((&oauth2.Token{}).WithExtra(map[string]any{"not_id": "x"}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing id_token")

	_, err = getIDTokenFromToken(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nil token")
}

func Test_fillFromUserInfoClaims_KeepsExisting(t *testing.T) {
	ui := standardClaims{Sub: "sub-abc", Email: "mail@example.com", GivenName: "First", FamilyName: "Last"}
	var f idFields
	fillFromUserInfoClaims(&f, ui)
	assert.Equal(t, "sub-abc", f.userID)
	assert.Equal(t, "mail@example.com", f.email)

	f2 := idFields{userID: "keep", email: "keep@example.com", givenName: "Keep", familyName: "Keep"}
	fillFromUserInfoClaims(&f2, ui)
	assert.Equal(t, "keep", f2.userID)
	assert.Equal(t, "keep@example.com", f2.email)
	assert.Equal(t, "Keep", f2.givenName)
}

// Test that the provider implements the AuthProvider interface.
func TestProvider_ImplementsInterface(t *testing.T) {
	provider, _ := createTestProvider(t)
	var _ ports.AuthProvider = provider
}
