package httpx

import (
	"net/http"
	"net/url"

	domainauth "github.com/equihire/equihire-core/internal/domain/auth"
	"github.com/equihire/equihire-core/internal/domain/model"
	"github.com/equihire/equihire-core/internal/domain/view"
)

// PageData is the model every layout-rendered page receives.
type PageData struct {
	Title     string
	Page      string // content template executed inside the layout
	Path      string
	Variant   view.Variant
	Session   *domainauth.Session
	CSRFToken string

	Organization *model.Organization
	Integrations *model.IntegrationSnapshot
	Invitations  []*model.Invitation
	// Invitation is the invite a candidate followed, when the link carried a valid token.
	Invitation *model.Invitation

	Form        map[string]string
	FieldErrors map[string]string
	Error       string
	Notice      string
}

// newPageData seeds PageData with the request-scoped values every page needs.
func newPageData(r *http.Request, title, page string) *PageData {
	s, _ := GetUserSessionFromContext(r.Context())
	return &PageData{
		Title:     title,
		Page:      page,
		Path:      r.URL.Path,
		Session:   s,
		CSRFToken: GetCSRFToken(r),
		Form:      map[string]string{},
	}
}

// SignedIn reports whether the header shows the signed-in controls.
func (d *PageData) SignedIn() bool {
	return d.Session != nil && !d.Session.IsGuest()
}

// DisplayName is the name in the "Hello, ..." greeting.
func (d *PageData) DisplayName() string {
	if d.Session == nil {
		return ""
	}
	return d.Session.DisplayName()
}

// SignInURL starts sign-in and returns to the current page.
func (d *PageData) SignInURL() string {
	return "/auth/login?redirect_uri=" + url.QueryEscape(safeRedirectPath(d.Path))
}

// SignUpURL starts sign-in on the IdP's registration screen.
func (d *PageData) SignUpURL() string {
	return d.SignInURL() + "&signup=1"
}

// ErrorPageData is the model of the standalone error page.
type ErrorPageData struct {
	Status  int
	Title   string
	Message string
	// RetryURL, when set, renders a "Try again" link.
	RetryURL string
}
