package probes

import (
	"context"
	"net/http"

	gooidc "github.com/coreos/go-oidc/v3/oidc"

	"github.com/equihire/equihire-core/internal/adapters/oidc"
	"github.com/equihire/equihire-core/internal/core"
	"github.com/equihire/equihire-core/internal/domain/model"
)

// IdentityProbe fetches the IdP discovery document.
type IdentityProbe struct {
	DiscoveryURL string
	// HTTPClient defaults to http.DefaultClient; the caller's context bounds each request.
	HTTPClient *http.Client
	// Mock is set when the app runs with dev auth, which needs no IdP.
	Mock bool
}

var _ core.IntegrationProbe = (*IdentityProbe)(nil)

func (p *IdentityProbe) Info() core.ProbeInfo { return IdentityInfo }

func (p *IdentityProbe) Check(ctx context.Context) core.ProbeResult {
	if p.Mock {
		return core.ProbeResult{State: model.IntegrationDegraded, Detail: "dev auth mode; identity provider bypassed"}
	}
	if p.DiscoveryURL == "" {
		return notConfigured()
	}
	client := p.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	op, err := gooidc.NewProvider(gooidc.ClientContext(ctx, client), oidc.IssuerFromDiscoveryURL(p.DiscoveryURL))
	if err != nil {
		return failure("discovery", err)
	}

	var doc struct {
		Issuer             string   `json:"issuer"`
		EndSessionEndpoint string   `json:"end_session_endpoint"`
		ScopesSupported    []string `json:"scopes_supported"`
	}
	if err := op.Claims(&doc); err != nil {
		return failure("decode discovery", err)
	}

	logout := "unsupported"
	if doc.EndSessionEndpoint != "" {
		logout = "supported"
	}
	return connected("discovery document fetched",
		metric("Issuer", doc.Issuer),
		metric("Single logout", logout),
	)
}
