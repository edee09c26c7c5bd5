package httpx

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/equihire/equihire-core/internal/domain/auth"
	"github.com/equihire/equihire-core/internal/domain/model"
	"github.com/equihire/equihire-core/internal/domain/view"
)

func newTestRenderer(t *testing.T) *TemplateRenderer {
	t.Helper()
	tr, err := NewTemplateRenderer(TemplateRendererConfig{TemplateFS: os.DirFS(TemplatePathFromTest), Logger: testLogger()})
	require.NoError(t, err)
	return tr
}

func TestTemplateRenderer_EveryVariantHasAPage(t *testing.T) {
	tr := newTestRenderer(t)

	for _, v := range view.Variants() {
		assert.True(t, tr.HasTemplate(v.Template()), v.String())
	}
	assert.True(t, tr.HasTemplate(PageIntegrations+"-page"))
	assert.True(t, tr.HasTemplate(PageSignedOut+"-page"))
	assert.True(t, tr.HasTemplate("layout"))
	assert.True(t, tr.HasTemplate("error-layout"))
}

func TestTemplateRenderer_RenderDashboard(t *testing.T) {
	tr := newTestRenderer(t)
	sentAt := time.Date(2024, 1, 2, 3, 4, 0, 0, time.UTC)
	data := &PageData{
		Title:        "Dashboard",
		Page:         view.Dashboard.Template(),
		Path:         "/",
		Variant:      view.Dashboard,
		Session:      &domainauth.Session{Username: "rita", Role: domainauth.RoleRecruiter},
		CSRFToken:    "tok<>",
		Organization: &model.Organization{Name: "acme <script>"},
		Integrations: &model.IntegrationSnapshot{Items: []model.IntegrationStatus{
			{Name: "Redis", State: model.IntegrationDegraded, Metrics: []model.IntegrationMetric{{Label: "Keys", Value: "42"}}},
		}},
		Invitations: []*model.Invitation{{Email: "c@example.com", Status: model.InvitationStatusSent, SentAt: &sentAt}},
		Form:        map[string]string{},
	}

	rr := httptest.NewRecorder()
	require.NoError(t, tr.Render(rr, http.StatusOK, data))

	b := rr.Body.String()
	assert.Equal(t, "text/html; charset=utf-8", rr.Header().Get("Content-Type"))
	assert.Contains(t, b, "Hello, rita")
	assert.Contains(t, b, "acme &lt;script&gt;")
	assert.NotContains(t, b, "<script>")
	assert.Contains(t, b, `value="tok&lt;&gt;"`)
	assert.Contains(t, b, "status-degraded")
	assert.Contains(t, b, "Degraded")
	assert.Contains(t, b, "<dd>42</dd>")
	assert.Contains(t, b, "2024-01-02 03:04 UTC")
	assert.Contains(t, b, `<span class="avatar">A</span>`)
}

func TestTemplateRenderer_UnknownPageFails(t *testing.T) {
	tr := newTestRenderer(t)

	rr := httptest.NewRecorder()
	err := tr.Render(rr, http.StatusOK, &PageData{Page: "missing-page"})

	require.Error(t, err)
	assert.Zero(t, rr.Body.Len())
}

func TestTemplateRenderer_RenderError(t *testing.T) {
	tr := newTestRenderer(t)

	rr := httptest.NewRecorder()
	require.NoError(t, tr.RenderError(rr, http.StatusServiceUnavailable, ErrorPageData{Message: "try later", RetryURL: "/"}))

	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	b := rr.Body.String()
	assert.Contains(t, b, "Service Unavailable")
	assert.Contains(t, b, "try later")
	assert.Contains(t, b, "Try again")
}

func TestNewTemplateRenderer_Errors(t *testing.T) {
	_, err := NewTemplateRenderer(TemplateRendererConfig{})
	require.Error(t, err)

	_, err = NewTemplateRenderer(TemplateRendererConfig{TemplateFS: fstest.MapFS{
		"layout.tmpl":     {Data: []byte(`{{define "layout"}}{{end`)},
		"pages/x.tmpl":    {Data: []byte(`x`)},
		"partials/y.tmpl": {Data: []byte(`y`)},
	}})
	require.Error(t, err)
}

func TestPageData_SignInURLs(t *testing.T) {
	d := &PageData{Path: "/candidate/welcome"}
	assert.Equal(t, "/auth/login?redirect_uri=%2Fcandidate%2Fwelcome", d.SignInURL())
	assert.Equal(t, "/auth/login?redirect_uri=%2Fcandidate%2Fwelcome&signup=1", d.SignUpURL())

	d.Path = "//evil.example"
	assert.Equal(t, "/auth/login?redirect_uri=%2F", d.SignInURL())

	assert.False(t, d.SignedIn())
	d.Session = &domainauth.Session{Role: domainauth.RoleGuest, Username: "g"}
	assert.False(t, d.SignedIn())
	d.Session.Role = domainauth.RoleRecruiter
	assert.True(t, d.SignedIn())
	assert.Equal(t, "g", d.DisplayName())
}

func TestStateLabel(t *testing.T) {
	assert.Equal(t, "Active", stateLabel(model.IntegrationConnected))
	assert.Equal(t, "Degraded", stateLabel(model.IntegrationDegraded))
	assert.Equal(t, "Inactive", stateLabel(model.IntegrationDisconnected))
	assert.Equal(t, "Inactive", stateLabel(""))
}
