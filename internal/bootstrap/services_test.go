package bootstrap

import (
	"database/sql"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/equihire/equihire-core/config"
	"github.com/equihire/equihire-core/internal/adapters/probes"
	"github.com/equihire/equihire-core/internal/domain/model"
	"github.com/equihire/equihire-core/internal/service"
	"github.com/equihire/equihire-core/internal/testutil"
)

func TestNewServices_RequiresDeps(t *testing.T) {
	_, err := NewServices(t.Context(), nil)
	require.Error(t, err)

	_, err = NewServices(t.Context(), &ServiceDeps{Config: &config.AppConfig{}})
	require.Error(t, err)
}

func TestNewServices_WithoutRedisDisablesAuth(t *testing.T) {
	// sql.Open does not dial, so no database is needed here.
	db, err := sql.Open("pgx", PostgresDSN(config.DBConfig{Host: "127.0.0.1", Port: 1, Name: "equihire", SSLMode: "disable"}))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	svcs, err := NewServices(t.Context(), &ServiceDeps{
		Config: &config.AppConfig{Auth: config.AuthConfig{Mode: config.AuthModeMock}},
		DB:     db,
		Logger: discardLogger(),
		Mailer: &testutil.MemoryMailer{},
	})
	require.NoError(t, err)

	assert.Nil(t, svcs.Auth)
	assert.Nil(t, svcs.Sessions)
	assert.NotNil(t, svcs.Organizations)
	assert.NotNil(t, svcs.Views)
	assert.NotNil(t, svcs.Integrations)
	assert.NotNil(t, svcs.Invitations)
}

func TestBuildProbes_UnconfiguredIntegrations(t *testing.T) {
	cfg := &config.AppConfig{Auth: config.AuthConfig{Mode: config.AuthModeOAuth}}
	deps := &ServiceDeps{Config: cfg}

	got := buildProbes(t.Context(), deps, buildRepositories(nil, nil), discardLogger())

	require.Len(t, got, 6)
	wantOrder := []string{
		probes.IdentityInfo.Name,
		probes.AIInfo.Name,
		probes.DatabaseInfo.Name,
		probes.SessionCacheInfo.Name,
		probes.StorageInfo.Name,
		probes.EmailInfo.Name,
	}
	for i, p := range got {
		assert.Equal(t, wantOrder[i], p.Info().Name)
		res := p.Check(t.Context())
		assert.Equal(t, model.IntegrationDisconnected, res.State, p.Info().Name)
		assert.Equal(t, probes.NotConfiguredDetail, res.Detail, p.Info().Name)
	}
}

func TestBuildProbes_DevAuthIsDegraded(t *testing.T) {
	cfg := &config.AppConfig{Auth: config.AuthConfig{Mode: config.AuthModeMock}}

	got := buildProbes(t.Context(), &ServiceDeps{Config: cfg}, buildRepositories(nil, nil), discardLogger())

	assert.Equal(t, model.IntegrationDegraded, got[0].Check(t.Context()).State)
}

func newInMemoryContainer() ServiceContainer {
	orgs := service.NewOrganizationService(service.OrganizationServiceOptions{Repo: testutil.NewMemoryOrganizationRepo()})
	return ServiceContainer{
		Organizations: orgs,
		Views:         service.NewViewService(service.ViewServiceOptions{Memberships: orgs}),
		Integrations:  service.NewIntegrationService(service.IntegrationServiceOptions{}),
		Invitations: service.NewInvitationService(service.InvitationServiceOptions{
			Repo:   testutil.NewMemoryInvitationRepo(),
			Mailer: &testutil.MemoryMailer{},
		}),
	}
}

func TestBuildHTTPHandler_WithoutAuth(t *testing.T) {
	h := BuildHTTPHandler(&config.AppConfig{}, newInMemoryContainer(), discardLogger())

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rr.Code)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept", "text/html")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "view-landing")

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/auth/login", nil))
	assert.NotEqual(t, http.StatusFound, rr.Code)
}

func TestWaitForShutdown(t *testing.T) {
	t.Run("signal stops the server", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		t.Cleanup(srv.Close)
		quit := make(chan os.Signal, 1)
		quit <- syscall.SIGTERM

		err := waitForShutdown(shutdownConfig{
			quit:       quit,
			errCh:      make(chan error),
			httpServer: srv.Config,
			logger:     discardLogger(),
		})
		require.NoError(t, err)
	})

	t.Run("server error is returned", func(t *testing.T) {
		errCh := make(chan error, 1)
		boom := errors.New("listen tcp: address in use")
		errCh <- boom

		err := waitForShutdown(shutdownConfig{
			quit:   make(chan os.Signal),
			errCh:  errCh,
			logger: discardLogger(),
		})
		require.ErrorIs(t, err, boom)
	})
}

func TestRunServicesWithShutdown_RequiresConfig(t *testing.T) {
	require.Error(t, RunServicesWithShutdown(nil))
	require.Error(t, RunServicesWithShutdown(&ServiceOrchestrationConfig{}))
}
