package probes

import (
	"context"
	"strconv"

	"github.com/resend/resend-go/v2"

	"github.com/equihire/equihire-core/internal/core"
	"github.com/equihire/equihire-core/internal/domain/model"
)

// DomainLister is the subset of the Resend domains API the email probe uses.
type DomainLister interface {
	ListWithContext(ctx context.Context) (resend.ListDomainsResponse, error)
}

// EmailProbe lists sending domains and reports how many are verified.
type EmailProbe struct {
	domains DomainLister
}

var _ core.IntegrationProbe = (*EmailProbe)(nil)

// NewEmailProbe creates a probe for apiKey. An empty key yields a probe that reports "not configured".
func NewEmailProbe(apiKey string) *EmailProbe {
	if apiKey == "" {
		return &EmailProbe{}
	}
	return NewEmailProbeWithLister(resend.NewClient(apiKey).Domains)
}

// NewEmailProbeWithLister wraps an existing domains client (useful for tests).
func NewEmailProbeWithLister(l DomainLister) *EmailProbe {
	return &EmailProbe{domains: l}
}

func (p *EmailProbe) Info() core.ProbeInfo { return EmailInfo }

func (p *EmailProbe) Check(ctx context.Context) core.ProbeResult {
	if p.domains == nil {
		return notConfigured()
	}
	resp, err := p.domains.ListWithContext(ctx)
	if err != nil {
		return failure("list domains", err)
	}

	verified := 0
	for _, d := range resp.Data {
		if d.Status == "verified" {
			verified++
		}
	}
	total := len(resp.Data)
	metrics := []model.IntegrationMetric{
		metric("Domains", strconv.Itoa(total)),
		metric("Verified", strconv.Itoa(verified)),
	}
	if verified == 0 {
		return core.ProbeResult{
			State:   model.IntegrationDegraded,
			Detail:  "no verified sending domain",
			Metrics: metrics,
		}
	}
	return connected("sending domain verified", metrics...)
}
