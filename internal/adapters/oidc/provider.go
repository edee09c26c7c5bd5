package oidc

// Package oidc provides the OIDC/OAuth sign-in and sign-out adapter for the identity provider.

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	domainauth "github.com/equihire/equihire-core/internal/domain/auth"
	"github.com/equihire/equihire-core/internal/ports"
)

const wellKnownSuffix = "/.well-known/openid-configuration"

// Provider implements the AuthProvider interface using OIDC/OAuth2 with PKCE.
type Provider struct {
	config     *oauth2.Config
	httpClient *http.Client

	endSessionURL         string
	postLogoutRedirectURL string
	orgID                 string
	claims                ports.ClaimMapper

	// go-oidc provider and verifier
	oidcProvider *gooidc.Provider
	verifier     *gooidc.IDTokenVerifier
}

// ProviderConfig holds configuration for the OIDC provider.
type ProviderConfig struct {
	ClientID string
	// ClientSecret is optional; public clients rely on PKCE alone.
	ClientSecret string
	RedirectURL  string
	Scope        string
	DiscoveryURL string
	// LogoutURL overrides the discovered end_session_endpoint.
	LogoutURL             string
	PostLogoutRedirectURL string
	// OrgID is the default organization when the token carries none.
	OrgID string
	// Claims maps username/org/groups; nil uses standard OIDC claims only.
	Claims     ports.ClaimMapper
	HTTPClient *http.Client // Optional, defaults to a 30s client
}

// DiscoveryDocument represents the OIDC discovery document.
type DiscoveryDocument struct {
	Issuer                string `json:"issuer"`
	AuthorizationEndpoint string `json:"authorization_endpoint"`
	TokenEndpoint         string `json:"token_endpoint"`
	UserinfoEndpoint      string `json:"userinfo_endpoint"`
	JwksURI               string `json:"jwks_uri"`
	EndSessionEndpoint    string `json:"end_session_endpoint,omitempty"`
}

// IssuerFromDiscoveryURL strips the well-known suffix from a discovery URL.
func IssuerFromDiscoveryURL(discoveryURL string) string {
	issuer := strings.TrimSuffix(discoveryURL, "/")
	return strings.TrimSuffix(issuer, wellKnownSuffix)
}

// NewProvider creates a new OIDC provider, fetching the discovery document once.
func NewProvider(config ProviderConfig) (*Provider, error) {
	if config.ClientID == "" {
		return nil, errors.New("client ID is required")
	}
	if config.RedirectURL == "" {
		return nil, errors.New("redirect URL is required")
	}
	if config.DiscoveryURL == "" {
		return nil, errors.New("discovery URL is required")
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	ctx := gooidc.ClientContext(context.Background(), httpClient)
	op, err := gooidc.NewProvider(ctx, IssuerFromDiscoveryURL(config.DiscoveryURL))
	if err != nil {
		return nil, fmt.Errorf("oidc new provider: %w", err)
	}

	var extra struct {
		EndSessionEndpoint string `json:"end_session_endpoint"`
	}
	if claimsErr := op.Claims(&extra); claimsErr != nil {
		return nil, fmt.Errorf("decode discovery document: %w", claimsErr)
	}

	p := &Provider{
		httpClient:            httpClient,
		endSessionURL:         firstNonEmpty(config.LogoutURL, extra.EndSessionEndpoint),
		postLogoutRedirectURL: config.PostLogoutRedirectURL,
		orgID:                 config.OrgID,
		claims:                config.Claims,
		oidcProvider:          op,
		verifier:              op.Verifier(&gooidc.Config{ClientID: config.ClientID}),
	}

	// Configure OAuth2 using discovered endpoints
	endpoint := op.Endpoint()
	if config.ClientSecret == "" {
		endpoint.AuthStyle = oauth2.AuthStyleInParams
	}
	p.config = &oauth2.Config{
		ClientID:     config.ClientID,
		ClientSecret: config.ClientSecret,
		RedirectURL:  config.RedirectURL,
		Scopes:       strings.Fields(config.Scope),
		Endpoint:     endpoint,
	}

	return p, nil
}

func (p *Provider) Begin(_ context.Context, in ports.BeginInput) (ports.BeginResult, error) {
	if in.RedirectURL == "" {
		return ports.BeginResult{}, errors.New("redirect URL is required")
	}

	// Generate cryptographically secure state and nonce
	state, err := generateRandomString(32)
	if err != nil {
		return ports.BeginResult{}, fmt.Errorf("generate state: %w", err)
	}
	nonce, err := generateRandomString(32)
	if err != nil {
		return ports.BeginResult{}, fmt.Errorf("generate nonce: %w", err)
	}
	verifier := oauth2.GenerateVerifier()

	prompt := "select_account"
	if in.SignUp {
		prompt = "create"
	}

	// redirect_uri is not overridden: it must match the registered RedirectURL exactly.
	authURL := p.config.AuthCodeURL(state,
		oauth2.SetAuthURLParam("nonce", nonce),
		oauth2.SetAuthURLParam("response_type", "code"),
		oauth2.SetAuthURLParam("prompt", prompt),
		oauth2.S256ChallengeOption(verifier),
	)

	return ports.BeginResult{AuthURL: authURL, State: state, Nonce: nonce, Verifier: verifier}, nil
}

func (p *Provider) Exchange(ctx context.Context, in ports.ExchangeInput) (domainauth.Identity, error) {
	if in.Code == "" {
		return domainauth.Identity{}, errors.New("authorization code is required")
	}
	if in.State == "" {
		return domainauth.Identity{}, errors.New("state is required")
	}
	if in.Nonce == "" {
		return domainauth.Identity{}, errors.New("nonce is required")
	}

	ctx = gooidc.ClientContext(ctx, p.httpClient)
	var opts []oauth2.AuthCodeOption
	if in.Verifier != "" {
		opts = append(opts, oauth2.VerifierOption(in.Verifier))
	}
	token, err := p.config.Exchange(ctx, in.Code, opts...)
	if err != nil {
		return domainauth.Identity{}, fmt.Errorf("exchange code for token: %w", err)
	}

	fields, err := p.extractFromIDToken(ctx, token, in.Nonce)
	if err != nil {
		return domainauth.Identity{}, fmt.Errorf("extract id_token: %w", err)
	}

	// Fill missing fields from UserInfo
	if fields.email == "" || fields.userID == "" {
		if fillErr := p.fillFromUserInfo(ctx, token, &fields); fillErr != nil {
			return domainauth.Identity{}, fmt.Errorf("get user info: %w", fillErr)
		}
	}
	if fields.userID == "" {
		return domainauth.Identity{}, errors.New("identity has no subject")
	}

	expiresAt := time.Now().Add(time.Hour)
	if !token.Expiry.IsZero() {
		expiresAt = token.Expiry
	}

	return domainauth.Identity{
		UserID:    fields.userID,
		Username:  firstNonEmpty(fields.username, fields.email),
		FirstName: fields.givenName,
		LastName:  fields.familyName,
		Email:     fields.email,
		OrgID:     firstNonEmpty(fields.orgID, p.orgID),
		Groups:    fields.groups,
		IDToken:   fields.rawIDToken,
		ExpiresAt: expiresAt,
	}, nil
}

// LogoutURL builds the RP-initiated logout URL, or "" when the IdP advertises none.
func (p *Provider) LogoutURL(idTokenHint string) string {
	if p.endSessionURL == "" {
		return ""
	}
	u, err := url.Parse(p.endSessionURL)
	if err != nil {
		return ""
	}
	q := u.Query()
	q.Set("client_id", p.config.ClientID)
	if p.postLogoutRedirectURL != "" {
		q.Set("post_logout_redirect_uri", p.postLogoutRedirectURL)
	}
	if idTokenHint != "" {
		q.Set("id_token_hint", idTokenHint)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// internal helper types and functions to keep Exchange small

type idFields struct {
	userID     string
	username   string
	email      string
	givenName  string
	familyName string
	orgID      string
	groups     []string
	rawIDToken string
}

// standardClaims is the subset of OIDC standard claims read directly.
type standardClaims struct {
	Sub        string `json:"sub"`
	Email      string `json:"email"`
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
	Nonce      string `json:"nonce"`
}

func (p *Provider) extractFromIDToken(ctx context.Context, tok *oauth2.Token, expectedNonce string) (idFields, error) {
	var f idFields
	if !p.hasOpenIDScope() {
		return f, nil
	}
	rawID, err := getIDTokenFromToken(tok)
	if err != nil {
		return f, err
	}
	idTok, err := p.verifier.Verify(ctx, rawID)
	if err != nil {
		return f, fmt.Errorf("verify id_token: %w", err)
	}
	var std standardClaims
	if claimsErr := idTok.Claims(&std); claimsErr != nil {
		return f, fmt.Errorf("parse id_token claims: %w", claimsErr)
	}
	if expectedNonce != "" && std.Nonce != expectedNonce {
		return f, errors.New("invalid nonce")
	}
	var raw map[string]any
	if claimsErr := idTok.Claims(&raw); claimsErr != nil {
		return f, fmt.Errorf("parse id_token claims: %w", claimsErr)
	}
	f = mapStandardClaims(std)
	f.rawIDToken = rawID
	if mapErr := p.applyClaimMapper(&f, raw); mapErr != nil {
		return f, mapErr
	}
	return f, nil
}

func (p *Provider) fillFromUserInfo(ctx context.Context, tok *oauth2.Token, f *idFields) error {
	ui, err := p.oidcProvider.UserInfo(ctx, oauth2.StaticTokenSource(tok))
	if err != nil {
		return fmt.Errorf("fetch user info: %w", err)
	}
	var std standardClaims
	if claimsErr := ui.Claims(&std); claimsErr != nil {
		return fmt.Errorf("decode user info: %w", claimsErr)
	}
	var raw map[string]any
	if claimsErr := ui.Claims(&raw); claimsErr != nil {
		return fmt.Errorf("decode user info: %w", claimsErr)
	}
	fillFromUserInfoClaims(f, std)

	var fromInfo idFields
	if mapErr := p.applyClaimMapper(&fromInfo, raw); mapErr != nil {
		return mapErr
	}
	f.username = firstNonEmpty(f.username, fromInfo.username)
	f.orgID = firstNonEmpty(f.orgID, fromInfo.orgID)
	if len(f.groups) == 0 {
		f.groups = fromInfo.groups
	}
	return nil
}

func (p *Provider) applyClaimMapper(f *idFields, raw map[string]any) error {
	if p.claims == nil {
		return nil
	}
	set, err := p.claims.Map(raw)
	if err != nil {
		return fmt.Errorf("map claims: %w", err)
	}
	f.username = set.Username
	f.orgID = set.OrgID
	f.groups = set.Groups
	return nil
}

// mapStandardClaims maps standard OIDC claims into idFields.
func mapStandardClaims(c standardClaims) idFields {
	return idFields{
		userID:     c.Sub,
		email:      c.Email,
		givenName:  c.GivenName,
		familyName: c.FamilyName,
	}
}

// fillFromUserInfoClaims fills missing fields from a UserInfo payload without overwriting.
func fillFromUserInfoClaims(f *idFields, ui standardClaims) {
	f.userID = firstNonEmpty(f.userID, ui.Sub)
	f.email = firstNonEmpty(f.email, ui.Email)
	f.givenName = firstNonEmpty(f.givenName, ui.GivenName)
	f.familyName = firstNonEmpty(f.familyName, ui.FamilyName)
}

// firstNonEmpty returns the first non-empty string from vals, or empty string if none.
func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// generateRandomString generates a cryptographically secure URL-safe random string of exact length.
func generateRandomString(length int) (string, error) {
	if length <= 0 {
		return "", nil
	}
	b := make([]byte, (length*3+3)/4+1)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b)[:length], nil
}

// hasOpenIDScope reports whether the configured scopes include "openid".
func (p *Provider) hasOpenIDScope() bool {
	for _, sc := range p.config.Scopes {
		if sc == "openid" {
			return true
		}
	}
	return false
}

// getIDTokenFromToken extracts the id_token from oauth2.Token.
func getIDTokenFromToken(tok *oauth2.Token) (string, error) {
	if tok == nil {
		return "", errors.New("nil token")
	}
	raw := tok.Extra("id_token")
	s, ok := raw.(string)
	if !ok || s == "" {
		return "", errors.New("missing id_token in token response")
	}
	return s, nil
}
