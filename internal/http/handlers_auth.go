package httpx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	domainauth "github.com/equihire/equihire-core/internal/domain/auth"
	"github.com/equihire/equihire-core/internal/service"
)

// AuthServiceInterface defines the interface for auth service operations.
type AuthServiceInterface interface {
	BeginLogin(ctx context.Context, in service.BeginLoginInput) (*service.BeginLoginResult, error)
	CompleteLogin(ctx context.Context, input service.CompleteLoginInput) (*service.CompleteLoginResult, error)
	GetSession(ctx context.Context, sessionID string) (*domainauth.Session, error)
	Logout(ctx context.Context, sessionID string) (*service.LogoutResult, error)
}

// AuthHandlers provides HTTP handlers for authentication operations.
type AuthHandlers struct {
	Svc          AuthServiceInterface
	CookieDomain string
	// Renderer renders the signed-out and sign-in error pages; JSON is used when nil.
	Renderer *TemplateRenderer
	Logger   *slog.Logger
}

func (h *AuthHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// Login starts sign-in, or sign-up when signup=1.
// GET /auth/login?redirect_uri=<optional_redirect>&signup=1.
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	redirectURI := safeRedirectPath(q.Get("redirect_uri"))
	signUp := q.Get("signup") == "1" || strings.EqualFold(q.Get("signup"), "true")

	result, err := h.Svc.BeginLogin(r.Context(), service.BeginLoginInput{RedirectURL: redirectURI, SignUp: signUp})
	if err != nil {
		h.logger().ErrorContext(r.Context(), "begin login failed", "error", err)
		h.fail(w, r, authFailure{
			Status:  http.StatusBadGateway,
			ErrCode: "login_failed",
			Message: "We couldn't reach the sign-in service. Please try again.",
			Err:     err,
		})
		return
	}

	h.setOAuthCookies(w, r, oauthCookieParams{
		State:       result.State,
		Nonce:       result.Nonce,
		Verifier:    result.Verifier,
		RedirectURI: redirectURI,
	})
	http.Redirect(w, r, result.AuthURL, http.StatusFound)
}

// Callback completes sign-in.
// GET /auth/callback?code=<code>&state=<state>.
func (h *AuthHandlers) Callback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if idpErr := q.Get("error"); idpErr != "" {
		h.clearOAuthCookies(w, r)
		msg := "Sign-in did not complete."
		if idpErr == "access_denied" || idpErr == "login_required" {
			msg = "Sign-in was cancelled."
		}
		h.fail(w, r, authFailure{
			Status:  http.StatusUnauthorized,
			ErrCode: "idp_error",
			Message: msg,
			Err:     errors.New(idpErr + ": " + q.Get("error_description")),
		})
		return
	}

	code := q.Get("code")
	state := q.Get("state")
	if code == "" || state == "" {
		h.fail(w, r, authFailure{
			Status:  http.StatusBadRequest,
			ErrCode: "missing_code",
			Message: "The sign-in response was incomplete.",
			Err:     errors.New("authorization code and state are required"),
		})
		return
	}

	stateCookie, err := r.Cookie(cookieOAuthState)
	if err != nil || stateCookie.Value != state {
		h.fail(w, r, authFailure{
			Status:  http.StatusBadRequest,
			ErrCode: "invalid_state",
			Message: "Your sign-in attempt expired. Please sign in again.",
			Err:     errors.New("invalid or missing state parameter"),
		})
		return
	}
	nonceCookie, err := r.Cookie(cookieOAuthNonce)
	if err != nil || nonceCookie.Value == "" {
		h.fail(w, r, authFailure{
			Status:  http.StatusBadRequest,
			ErrCode: "missing_nonce",
			Message: "Your sign-in attempt expired. Please sign in again.",
			Err:     errors.New("missing nonce parameter"),
		})
		return
	}
	var verifier string
	if c, cookieErr := r.Cookie(cookieOAuthVerifier); cookieErr == nil {
		verifier = c.Value
	}

	result, err := h.Svc.CompleteLogin(r.Context(), service.CompleteLoginInput{
		Code:     code,
		State:    state,
		Nonce:    nonceCookie.Value,
		Verifier: verifier,
	})
	if err != nil {
		h.logger().WarnContext(r.Context(), "login completion failed", "error", err)
		h.clearOAuthCookies(w, r)
		h.fail(w, r, authFailure{
			Status:  http.StatusUnauthorized,
			ErrCode: "login_completion_failed",
			Message: "We couldn't verify your identity. Please sign in again.",
			Err:     err,
		})
		return
	}

	h.setSessionCookie(w, r, result.Session)
	h.clearCookie(w, r, cookieOAuthState)
	h.clearCookie(w, r, cookieOAuthNonce)
	h.clearCookie(w, r, cookieOAuthVerifier)

	http.Redirect(w, r, h.getPostLoginRedirect(w, r), http.StatusFound)
}

// Logout ends the local session and sends the browser to the IdP end-session endpoint when it has one.
// POST /auth/logout.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	var endSessionURL string
	if sessionCookie, err := r.Cookie(cookieSession); err == nil {
		res, logoutErr := h.Svc.Logout(r.Context(), sessionCookie.Value)
		if logoutErr != nil {
			h.logger().WarnContext(r.Context(), "logout failed", "error", logoutErr)
		} else {
			endSessionURL = res.EndSessionURL
		}
	}
	h.clearCookie(w, r, cookieSession)

	redirectURI := r.FormValue("redirect_uri")
	if redirectURI == "" {
		redirectURI = "/"
	}
	u := url.URL{Path: "/auth/signed-out"}
	u.RawQuery = url.Values{"redirect_uri": {safeRedirectPath(redirectURI)}}.Encode()
	target := u.String()
	if endSessionURL != "" {
		target = endSessionURL
	}

	isAJAX := strings.Contains(r.Header.Get("Accept"), "application/json") ||
		strings.EqualFold(r.Header.Get("X-Requested-With"), "XMLHttpRequest")
	if isAJAX {
		WriteJSON(w, http.StatusOK, map[string]string{
			"status":      "success",
			"redirect_to": target,
		})
		return
	}
	http.Redirect(w, r, target, http.StatusFound)
}

// Status returns the current authentication status.
// GET /auth/status.
func (h *AuthHandlers) Status(w http.ResponseWriter, r *http.Request) {
	sessionCookie, err := r.Cookie(cookieSession)
	if err != nil {
		WriteJSON(w, http.StatusOK, map[string]any{"authenticated": false})
		return
	}

	session, err := h.Svc.GetSession(r.Context(), sessionCookie.Value)
	if err != nil {
		h.clearCookie(w, r, cookieSession)
		WriteJSON(w, http.StatusOK, map[string]any{"authenticated": false})
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"authenticated": !session.IsGuest(),
		"username":      session.DisplayName(),
		"user": map[string]any{
			"id":         session.UserID,
			"username":   session.Username,
			"first_name": session.FirstName,
			"last_name":  session.LastName,
			"email":      session.Email,
			"org_id":     session.OrgID,
			"role":       session.Role,
		},
		"expires_at": session.ExpiresAt,
	})
}

// SignedOut renders the page the IdP returns to after sign-out.
// GET /auth/signed-out?redirect_uri=<where to go after signing back in>.
func (h *AuthHandlers) SignedOut(w http.ResponseWriter, r *http.Request) {
	if h.Renderer == nil {
		WriteJSON(w, http.StatusOK, map[string]string{"status": "signed_out"})
		return
	}
	data := newPageData(r, "Signed out", PageSignedOut+"-page")
	data.Session = nil
	data.Path = safeRedirectPath(r.URL.Query().Get("redirect_uri"))
	if err := h.Renderer.Render(w, http.StatusOK, data); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// authFailure describes a sign-in error for both the JSON and HTML responses.
type authFailure struct {
	Status  int
	ErrCode string
	Message string
	Err     error
}

// fail renders an error page for browsers and JSON otherwise. It never creates a session.
func (h *AuthHandlers) fail(w http.ResponseWriter, r *http.Request, f authFailure) {
	if h.Renderer != nil && isBrowserRequest(r) {
		err := h.Renderer.RenderError(w, f.Status, ErrorPageData{
			Title:    "Sign-in failed",
			Message:  f.Message,
			RetryURL: "/auth/login",
		})
		if err == nil {
			return
		}
	}
	WriteError(w, ErrorParams{Code: f.Status, ErrCode: f.ErrCode, Err: f.Err})
}

// clearCookie expires a cookie, mirroring the attributes it was set with.
func (h *AuthHandlers) clearCookie(w http.ResponseWriter, r *http.Request, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Domain:   h.CookieDomain,
		HttpOnly: true,
		Secure:   isSecureRequest(r),
		MaxAge:   -1,
		Expires:  time.Unix(0, 0).UTC(),
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandlers) clearOAuthCookies(w http.ResponseWriter, r *http.Request) {
	for _, name := range []string{cookieOAuthState, cookieOAuthNonce, cookieOAuthVerifier, cookiePostLoginRedirect} {
		h.clearCookie(w, r, name)
	}
}

// oauthCookieParams groups the values remembered between Login and Callback.
type oauthCookieParams struct {
	State       string
	Nonce       string
	Verifier    string
	RedirectURI string
}

// setOAuthCookies stores state, nonce, PKCE verifier and the post-login redirect in short-lived cookies.
func (h *AuthHandlers) setOAuthCookies(w http.ResponseWriter, r *http.Request, p oauthCookieParams) {
	secure := isSecureRequest(r)
	set := func(name, value string) {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    value,
			Path:     "/",
			Domain:   h.CookieDomain,
			HttpOnly: true,
			Secure:   secure,
			SameSite: http.SameSiteLaxMode,
			MaxAge:   oauthCookieMaxAge,
		})
	}
	set(cookieOAuthState, p.State)
	set(cookieOAuthNonce, p.Nonce)
	if p.Verifier != "" {
		set(cookieOAuthVerifier, p.Verifier)
	}
	set(cookiePostLoginRedirect, p.RedirectURI)
}

// setSessionCookie writes the session cookie based on the session's expiry.
func (h *AuthHandlers) setSessionCookie(w http.ResponseWriter, r *http.Request, s domainauth.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     cookieSession,
		Value:    s.ID,
		Path:     "/",
		Domain:   h.CookieDomain,
		HttpOnly: true,
		Secure:   isSecureRequest(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(time.Until(s.ExpiresAt).Seconds()),
	})
}

// getPostLoginRedirect returns the post-login redirect URL and clears the cookie.
func (h *AuthHandlers) getPostLoginRedirect(w http.ResponseWriter, r *http.Request) string {
	redirectCookie, err := r.Cookie(cookiePostLoginRedirect)
	if err != nil {
		return "/"
	}
	h.clearCookie(w, r, cookiePostLoginRedirect)
	return safeRedirectPath(redirectCookie.Value)
}
