package httpx

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/equihire/equihire-core/internal/core"
	domainauth "github.com/equihire/equihire-core/internal/domain/auth"
	"github.com/equihire/equihire-core/internal/domain/model"
	authmocks "github.com/equihire/equihire-core/internal/mocks/auth"
	"github.com/equihire/equihire-core/internal/service"
	"github.com/equihire/equihire-core/internal/testutil"
)

const (
	testSessionID = "sess-recruiter"
	testCSRFToken = "csrf-test-token"
)

type staticProbe struct {
	name   string
	result core.ProbeResult
}

func (p staticProbe) Info() core.ProbeInfo {
	return core.ProbeInfo{Name: p.name, Description: p.name + " integration", Category: "Test"}
}

func (p staticProbe) Check(context.Context) core.ProbeResult { return p.result }

// testApp wires the real services over in-memory repositories.
type testApp struct {
	handler  http.Handler
	provider *authmocks.MockAuthProvider
	sessions *authmocks.MemorySessionStore
	orgs     *testutil.MemoryOrganizationRepo
	invites  *testutil.MemoryInvitationRepo
	mailer   *testutil.MemoryMailer
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	app := &testApp{
		provider: authmocks.NewMockAuthProvider(),
		sessions: authmocks.NewMemorySessionStore(),
		orgs:     testutil.NewMemoryOrganizationRepo(),
		invites:  testutil.NewMemoryInvitationRepo(),
		mailer:   &testutil.MemoryMailer{},
	}

	authSvc := service.NewAuthService(service.AuthServiceOptions{
		Provider: app.provider,
		Sessions: app.sessions,
		Roles:    authmocks.StaticRoleMapper{UserGroup: "recruiters"},
	})
	orgSvc := service.NewOrganizationService(service.OrganizationServiceOptions{Repo: app.orgs})
	integrations := service.NewIntegrationService(service.IntegrationServiceOptions{
		Probes: []core.IntegrationProbe{
			staticProbe{name: "Database", result: core.ProbeResult{State: model.IntegrationConnected}},
			staticProbe{name: "Gemini", result: core.ProbeResult{State: model.IntegrationDisconnected, Detail: "not configured"}},
		},
	})
	invitations := service.NewInvitationService(service.InvitationServiceOptions{
		Repo:   app.invites,
		Mailer: app.mailer,
		Config: service.InvitationConfig{BaseURL: "https://app.example.com"},
	})

	app.handler = NewRouter(RouterServices{
		Auth:          authSvc,
		Views:         service.NewViewService(service.ViewServiceOptions{Memberships: orgSvc}),
		Organizations: orgSvc,
		Integrations:  integrations,
		Invitations:   invitations,
		TemplateFS:    os.DirFS(TemplatePathFromTest),
		StaticFS:      os.DirFS("../../" + StaticPathFromRoot),
		Logger:        testLogger(),
	})
	return app
}

// signIn stores a recruiter session the requests below can present.
func (a *testApp) signIn(t *testing.T) {
	t.Helper()
	require.NoError(t, a.sessions.Save(context.Background(), domainauth.Session{
		ID:        testSessionID,
		UserID:    "recruiter-1",
		Username:  "rita",
		Email:     "rita@example.com",
		Role:      domainauth.RoleRecruiter,
		ExpiresAt: time.Now().Add(time.Hour),
	}))
}

func (a *testApp) onboard(t *testing.T, name string) {
	t.Helper()
	_, err := a.orgs.Create(context.Background(), testutil.NewOrganizationRequest().
		WithName(name).WithOwner("recruiter-1", "rita@example.com").Build())
	require.NoError(t, err)
}

func (a *testApp) do(req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	a.handler.ServeHTTP(rr, req)
	return rr
}

// get issues a browser GET, with the session cookie when signedIn.
func (a *testApp) get(path string, signedIn bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("Accept", "text/html")
	if signedIn {
		req.AddCookie(&http.Cookie{Name: cookieSession, Value: testSessionID})
	}
	return a.do(req)
}

// postForm issues a browser form POST carrying a matching CSRF cookie and field.
func (a *testApp) postForm(path string, form url.Values, signedIn bool) *httptest.ResponseRecorder {
	form.Set("csrf_token", testCSRFToken)
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "text/html")
	req.AddCookie(&http.Cookie{Name: DefaultCSRFCookieName, Value: testCSRFToken})
	if signedIn {
		req.AddCookie(&http.Cookie{Name: cookieSession, Value: testSessionID})
	}
	return a.do(req)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func body(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	b, err := io.ReadAll(rr.Result().Body)
	require.NoError(t, err)
	return string(b)
}

func findCookie(rr *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rr.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}
