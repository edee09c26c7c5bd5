package probes

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/resend/resend-go/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	redisadapter "github.com/equihire/equihire-core/internal/adapters/redis"
	"github.com/equihire/equihire-core/internal/core"
	"github.com/equihire/equihire-core/internal/domain/model"
	"github.com/equihire/equihire-core/internal/testutil"
)

func metricValue(res core.ProbeResult, label string) string {
	for _, m := range res.Metrics {
		if m.Label == label {
			return m.Value
		}
	}
	return ""
}

func TestUnconfiguredProbesReportNotConfigured(t *testing.T) {
	storage, err := NewStorageProbe(context.Background(), StorageConfig{Bucket: "cvs"})
	require.NoError(t, err)
	gemini, err := NewGeminiProbe(context.Background(), "", "gemini-1.5-flash-001")
	require.NoError(t, err)

	probes := []core.IntegrationProbe{
		&IdentityProbe{},
		&DatabaseProbe{},
		&CacheProbe{},
		storage,
		NewEmailProbe(""),
		gemini,
	}
	for _, p := range probes {
		t.Run(p.Info().Name, func(t *testing.T) {
			res := p.Check(context.Background())
			assert.Equal(t, model.IntegrationDisconnected, res.State)
			assert.Equal(t, NotConfiguredDetail, res.Detail)
		})
	}
}

func TestIdentityProbe(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/oauth2/token/.well-known/openid-configuration" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"issuer":                 srv.URL + "/oauth2/token",
			"authorization_endpoint": srv.URL + "/oauth2/authorize",
			"token_endpoint":         srv.URL + "/oauth2/token",
			"jwks_uri":               srv.URL + "/oauth2/jwks",
			"end_session_endpoint":   srv.URL + "/oidc/logout",
		})
	}))
	defer srv.Close()

	t.Run("connected", func(t *testing.T) {
		p := &IdentityProbe{DiscoveryURL: srv.URL + "/oauth2/token/.well-known/openid-configuration"}
		res := p.Check(context.Background())
		assert.Equal(t, model.IntegrationConnected, res.State, res.Detail)
		assert.Equal(t, srv.URL+"/oauth2/token", metricValue(res, "Issuer"))
		assert.Equal(t, "supported", metricValue(res, "Single logout"))
	})

	t.Run("unreachable discovery", func(t *testing.T) {
		p := &IdentityProbe{DiscoveryURL: srv.URL + "/missing/.well-known/openid-configuration"}
		res := p.Check(context.Background())
		assert.Equal(t, model.IntegrationDisconnected, res.State)
		assert.Contains(t, res.Detail, "discovery")
	})

	t.Run("dev auth", func(t *testing.T) {
		res := (&IdentityProbe{Mock: true}).Check(context.Background())
		assert.Equal(t, model.IntegrationDegraded, res.State)
	})
}

type fakeBucket struct {
	out *s3.HeadBucketOutput
	err error
	got string
}

func (f *fakeBucket) HeadBucket(_ context.Context, in *s3.HeadBucketInput, _ ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	f.got = aws.ToString(in.Bucket)
	return f.out, f.err
}

func TestStorageProbe(t *testing.T) {
	t.Run("connected", func(t *testing.T) {
		fb := &fakeBucket{out: &s3.HeadBucketOutput{BucketRegion: aws.String("weur")}}
		res := NewStorageProbeWithClient(fb, "cvs").Check(context.Background())
		assert.Equal(t, model.IntegrationConnected, res.State)
		assert.Equal(t, "cvs", fb.got)
		assert.Equal(t, "weur", metricValue(res, "Region"))
	})

	t.Run("error", func(t *testing.T) {
		fb := &fakeBucket{err: errors.New("403 Forbidden")}
		res := NewStorageProbeWithClient(fb, "cvs").Check(context.Background())
		assert.Equal(t, model.IntegrationDisconnected, res.State)
		assert.Equal(t, "head bucket: 403 Forbidden", res.Detail)
	})

	t.Run("timeout", func(t *testing.T) {
		fb := &fakeBucket{err: context.DeadlineExceeded}
		res := NewStorageProbeWithClient(fb, "cvs").Check(context.Background())
		assert.Equal(t, "head bucket: timed out", res.Detail)
	})

	t.Run("full config builds a client", func(t *testing.T) {
		p, err := NewStorageProbe(context.Background(), StorageConfig{
			Endpoint:        "http://127.0.0.1:1",
			Bucket:          "cvs",
			AccessKeyID:     "key",
			SecretAccessKey: "secret",
		})
		require.NoError(t, err)
		assert.NotNil(t, p.client)
	})
}

type fakeDomains struct {
	resp resend.ListDomainsResponse
	err  error
}

func (f fakeDomains) ListWithContext(context.Context) (resend.ListDomainsResponse, error) {
	return f.resp, f.err
}

func TestEmailProbe(t *testing.T) {
	tests := []struct {
		name      string
		lister    fakeDomains
		wantState model.IntegrationState
		verified  string
	}{
		{
			name: "verified domain",
			lister: fakeDomains{resp: resend.ListDomainsResponse{Data: []resend.Domain{
				{Name: "equihire.dev", Status: "verified"},
				{Name: "staging.equihire.dev", Status: "pending"},
			}}},
			wantState: model.IntegrationConnected,
			verified:  "1",
		},
		{
			name:      "no verified domain",
			lister:    fakeDomains{resp: resend.ListDomainsResponse{Data: []resend.Domain{{Name: "x.dev", Status: "pending"}}}},
			wantState: model.IntegrationDegraded,
			verified:  "0",
		},
		{
			name:      "api error",
			lister:    fakeDomains{err: errors.New("invalid api key")},
			wantState: model.IntegrationDisconnected,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := NewEmailProbeWithLister(tt.lister).Check(context.Background())
			assert.Equal(t, tt.wantState, res.State)
			assert.Equal(t, tt.verified, metricValue(res, "Verified"))
		})
	}
}

type fakeModels struct {
	model *genai.Model
	err   error
	asked string
}

func (f *fakeModels) Get(_ context.Context, name string, _ *genai.GetModelConfig) (*genai.Model, error) {
	f.asked = name
	return f.model, f.err
}

func TestGeminiProbe(t *testing.T) {
	fm := &fakeModels{model: &genai.Model{DisplayName: "Gemini 1.5 Flash", InputTokenLimit: 1048576, OutputTokenLimit: 8192}}
	res := NewGeminiProbeWithModels(fm, "gemini-1.5-flash-001").Check(context.Background())
	assert.Equal(t, model.IntegrationConnected, res.State)
	assert.Equal(t, "Gemini 1.5 Flash", res.Detail)
	assert.Equal(t, "gemini-1.5-flash-001", fm.asked)
	assert.Equal(t, "1048576", metricValue(res, "Input tokens"))

	fm = &fakeModels{err: errors.New("permission denied")}
	res = NewGeminiProbeWithModels(fm, "gemini-1.5-flash-001").Check(context.Background())
	assert.Equal(t, model.IntegrationDisconnected, res.State)
	assert.Contains(t, res.Detail, "permission denied")
}

func TestDatabaseProbe(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	db := testutil.SetupTestDB(t)
	res := (&DatabaseProbe{DB: db}).Check(context.Background())
	assert.Equal(t, model.IntegrationConnected, res.State, res.Detail)
	assert.Contains(t, res.Detail, "PostgreSQL")
	assert.NotEmpty(t, metricValue(res, "Open connections"))
}

func TestCacheProbe(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	client := testutil.SetupTestRedis(t)
	defer client.Close()

	ctx := context.Background()
	store := redisadapter.NewSessionStoreWithPrefix(client, "test:probe:sessions:")
	require.NoError(t, client.Set(ctx, "test:probe:sessions:abc", "{}", time.Minute).Err())

	res := (&CacheProbe{Client: client, Sessions: store}).Check(ctx)
	assert.Equal(t, model.IntegrationConnected, res.State, res.Detail)
	assert.Equal(t, "1", metricValue(res, "Active sessions"))
	assert.Equal(t, "1", metricValue(res, "Keys"))
}
