package httpx

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/equihire/equihire-core/internal/domain/model"
	"github.com/equihire/equihire-core/internal/domain/view"
	apperrors "github.com/equihire/equihire-core/internal/errors"
	"github.com/equihire/equihire-core/internal/service"
)

// ViewResolver picks the top-level screen for a request.
type ViewResolver interface {
	Resolve(ctx context.Context, in service.ViewInput) (service.ViewResult, error)
}

// OrganizationOnboarding creates and loads the recruiter's organization.
type OrganizationOnboarding interface {
	Complete(ctx context.Context, in service.CompleteOnboardingInput) (*service.CompleteOnboardingResult, error)
	GetForUser(ctx context.Context, userID string) (*model.Organization, error)
}

// IntegrationReporter produces the dashboard's integration health snapshot.
type IntegrationReporter interface {
	Snapshot(ctx context.Context) model.IntegrationSnapshot
}

// CandidateInviter issues and looks up candidate invitations.
type CandidateInviter interface {
	Invite(ctx context.Context, in service.InviteInput) (*model.Invitation, error)
	ListRecent(ctx context.Context, organizationID string, limit int) ([]*model.Invitation, error)
	GetByToken(ctx context.Context, token string) (*model.Invitation, error)
}

// ViewHandlers serves the top-level screens and the forms posted from them.
type ViewHandlers struct {
	Views         ViewResolver
	Organizations OrganizationOnboarding
	Integrations  IntegrationReporter
	Invitations   CandidateInviter // Optional: the dashboard hides the invite form when nil
	Renderer      *TemplateRenderer
	Logger        *slog.Logger
}

// notices maps the ?notice= values set by form redirects to the banner text.
var notices = map[string]string{
	"organization-created": "Your organization is ready.",
	"invitation-sent":      "Invitation sent.",
	"invitation-failed":    "The invitation was saved but the email could not be delivered.",
}

var variantTitles = map[view.Variant]string{
	view.Landing:            "Fair, blind technical interviews",
	view.CandidateWelcome:   "Welcome",
	view.CandidateInterview: "Interview",
	view.OrganizationSetup:  "Set up your organization",
	view.Dashboard:          "Dashboard",
}

func (h *ViewHandlers) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// Index renders whichever screen the view selector picks for the path.
// GET / (and any unmatched GET), GET /candidate/welcome, GET /candidate/interview.
func (h *ViewHandlers) Index(w http.ResponseWriter, r *http.Request) {
	session, _ := GetUserSessionFromContext(r.Context())
	res, err := h.Views.Resolve(r.Context(), service.ViewInput{Path: r.URL.Path, Session: session})
	if err != nil {
		h.logger().ErrorContext(r.Context(), "view selection failed", "path", r.URL.Path, "error", err)
		h.renderError(w, r, err)
		return
	}

	data := newPageData(r, variantTitles[res.Variant], res.Variant.Template())
	data.Variant = res.Variant
	data.Notice = notices[r.URL.Query().Get("notice")]

	switch res.Variant {
	case view.Dashboard:
		org, orgErr := h.Organizations.GetForUser(r.Context(), session.UserID)
		switch {
		case apperrors.IsNotFound(orgErr):
			// stale membership cache entry
			data.Variant = view.OrganizationSetup
			data.Title = variantTitles[view.OrganizationSetup]
			data.Page = view.OrganizationSetup.Template()
		case orgErr != nil:
			h.logger().ErrorContext(r.Context(), "organization lookup failed", "user_id", session.UserID, "error", orgErr)
			h.renderError(w, r, apperrors.Wrap(orgErr, apperrors.ErrCodeUnavailable, "We couldn't verify your organization"))
			return
		default:
			h.loadDashboard(r.Context(), data, org)
		}
	case view.CandidateWelcome:
		h.loadInvitation(r, data)
	case view.Landing, view.CandidateInterview, view.OrganizationSetup:
	}

	h.render(w, r, http.StatusOK, data)
}

func (h *ViewHandlers) loadDashboard(ctx context.Context, data *PageData, org *model.Organization) {
	data.Organization = org
	if h.Integrations != nil {
		snap := h.Integrations.Snapshot(ctx)
		data.Integrations = &snap
	}
	if h.Invitations == nil {
		return
	}
	invs, err := h.Invitations.ListRecent(ctx, org.ID, recentInvitationsLimit)
	if err != nil {
		h.logger().WarnContext(ctx, "list invitations failed", "organization_id", org.ID, "error", err)
		data.Error = "Recent invitations are unavailable right now."
		return
	}
	data.Invitations = invs
}

// loadInvitation attaches the invite a candidate followed. An unknown token is shown, not fatal.
func (h *ViewHandlers) loadInvitation(r *http.Request, data *PageData) {
	token := strings.TrimSpace(r.URL.Query().Get("invite"))
	if token == "" || h.Invitations == nil {
		return
	}
	inv, err := h.Invitations.GetByToken(r.Context(), token)
	if err != nil {
		if !apperrors.IsNotFound(err) {
			h.logger().WarnContext(r.Context(), "invitation lookup failed", "error", err)
		}
		data.Error = apperrors.PublicMessage(err, "We couldn't load your invitation.")
		return
	}
	data.Invitation = inv
}

// CompleteOnboarding creates the signed-in recruiter's organization.
// POST /onboarding/complete (form: name, csrf_token).
func (h *ViewHandlers) CompleteOnboarding(w http.ResponseWriter, r *http.Request) {
	session, ok := GetUserSessionFromContext(r.Context())
	if !ok || session == nil || session.IsGuest() {
		redirectToLogin(w, r)
		return
	}

	name := r.PostFormValue("name")
	res, err := h.Organizations.Complete(r.Context(), service.CompleteOnboardingInput{
		UserID:   session.UserID,
		Email:    session.Email,
		Name:     name,
		IdPOrgID: session.OrgID,
	})
	if err != nil {
		if apperrors.IsValidation(err) || apperrors.IsConflict(err) {
			data := newPageData(r, variantTitles[view.OrganizationSetup], view.OrganizationSetup.Template())
			data.Variant = view.OrganizationSetup
			data.Form["name"] = name
			data.FieldErrors = fieldErrors(err)
			h.render(w, r, apperrors.HTTPStatus(err), data)
			return
		}
		h.logger().ErrorContext(r.Context(), "onboarding failed", "user_id", session.UserID, "error", err)
		h.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		status := http.StatusOK
		if res.Created {
			status = http.StatusCreated
		}
		WriteJSON(w, status, res.Organization)
		return
	}
	target := "/"
	if res.Created {
		target = "/?notice=organization-created"
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// IntegrationsPage renders the integration health page.
// GET /dashboard/integrations.
func (h *ViewHandlers) IntegrationsPage(w http.ResponseWriter, r *http.Request) {
	org, ok := h.requireOrganization(w, r)
	if !ok {
		return
	}
	data := newPageData(r, "System Integrations", PageIntegrations+"-page")
	data.Variant = view.Dashboard
	data.Organization = org
	snap := h.Integrations.Snapshot(r.Context())
	data.Integrations = &snap
	h.render(w, r, http.StatusOK, data)
}

// IntegrationsJSON returns the integration health snapshot.
// GET /api/integrations.
func (h *ViewHandlers) IntegrationsJSON(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-store")
	WriteJSON(w, http.StatusOK, h.Integrations.Snapshot(r.Context()))
}

// CreateInvitation invites a candidate and returns to the dashboard.
// POST /dashboard/invitations (form: email, csrf_token).
func (h *ViewHandlers) CreateInvitation(w http.ResponseWriter, r *http.Request) {
	org, ok := h.requireOrganization(w, r)
	if !ok {
		return
	}
	if h.Invitations == nil {
		h.renderError(w, r, apperrors.Unavailable("Invitations are not configured."))
		return
	}
	session, _ := GetUserSessionFromContext(r.Context())

	email := r.PostFormValue("email")
	inv, err := h.Invitations.Invite(r.Context(), service.InviteInput{
		OrganizationID:   org.ID,
		OrganizationName: org.Name,
		Email:            email,
		CreatedBy:        session.UserID,
	})
	if err != nil {
		if apperrors.IsValidation(err) {
			data := newPageData(r, variantTitles[view.Dashboard], view.Dashboard.Template())
			data.Variant = view.Dashboard
			data.Form["email"] = email
			data.FieldErrors = fieldErrors(err)
			h.loadDashboard(r.Context(), data, org)
			h.render(w, r, http.StatusBadRequest, data)
			return
		}
		h.logger().ErrorContext(r.Context(), "invite candidate failed", "organization_id", org.ID, "error", err)
		h.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		WriteJSON(w, http.StatusCreated, inv)
		return
	}
	notice := "invitation-sent"
	if inv.Status == model.InvitationStatusFailed {
		notice = "invitation-failed"
	}
	http.Redirect(w, r, "/?"+url.Values{"notice": {notice}}.Encode(), http.StatusSeeOther)
}

// requireOrganization loads the signed-in recruiter's organization. Recruiters without one are
// sent back to "/" where the setup screen is shown.
func (h *ViewHandlers) requireOrganization(w http.ResponseWriter, r *http.Request) (*model.Organization, bool) {
	session, ok := GetUserSessionFromContext(r.Context())
	if !ok || session == nil || session.IsGuest() {
		redirectToLogin(w, r)
		return nil, false
	}
	org, err := h.Organizations.GetForUser(r.Context(), session.UserID)
	switch {
	case apperrors.IsNotFound(err):
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return nil, false
	case err != nil:
		h.logger().ErrorContext(r.Context(), "organization lookup failed", "user_id", session.UserID, "error", err)
		h.renderError(w, r, apperrors.Wrap(err, apperrors.ErrCodeUnavailable, "We couldn't verify your organization"))
		return nil, false
	}
	return org, true
}

func (h *ViewHandlers) render(w http.ResponseWriter, r *http.Request, status int, data *PageData) {
	if h.Renderer == nil {
		WriteJSON(w, status, map[string]any{"view": data.Variant.String(), "page": data.Page})
		return
	}
	if err := h.Renderer.Render(w, status, data); err != nil {
		h.logger().ErrorContext(r.Context(), "render page failed", "page", data.Page, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// renderError writes err as the standalone error page for browsers and as JSON otherwise.
func (h *ViewHandlers) renderError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperrors.HTTPStatus(err)
	if h.Renderer == nil || !isBrowserRequest(r) {
		WriteAppError(w, err)
		return
	}
	msg := apperrors.PublicMessage(err, "Something went wrong. Please try again.")
	if status >= http.StatusInternalServerError && status != http.StatusServiceUnavailable {
		msg = "Something went wrong. Please try again."
	}
	retry := "/"
	if r.Method == http.MethodGet {
		retry = r.URL.RequestURI()
	}
	if renderErr := h.Renderer.RenderError(w, status, ErrorPageData{Message: msg, RetryURL: retry}); renderErr != nil {
		http.Error(w, http.StatusText(status), status)
	}
}

func fieldErrors(err error) map[string]string {
	field := apperrors.GetField(err)
	if field == "" {
		field = "form"
	}
	return map[string]string{field: apperrors.PublicMessage(err, "Please check this field.")}
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}
