package httpx

// Cookie names shared by the auth handlers and middleware.
const (
	cookieSession           = "session_id"
	cookieOAuthState        = "oauth_state"
	cookieOAuthNonce        = "oauth_nonce"
	cookieOAuthVerifier     = "oauth_verifier"
	cookiePostLoginRedirect = "post_login_redirect"

	// oauthCookieMaxAge bounds how long a sign-in attempt may take at the IdP.
	oauthCookieMaxAge = 600
)

// Page identifiers for templates that are not view variants.
const (
	PageIntegrations = "integrations"
	PageSignedOut    = "signed-out"
)

// Template paths used for loading templates in tests and dev mode.
const (
	TemplatePathFromRoot = "frontend/templates"       // From project root
	TemplatePathFromTest = "../../frontend/templates" // From internal/http test files
	StaticPathFromRoot   = "frontend/static"
)

const (
	// recentInvitationsLimit is how many invitations the dashboard lists.
	recentInvitationsLimit = 10
)
