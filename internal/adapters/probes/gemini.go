package probes

import (
	"context"
	"fmt"
	"strconv"

	"google.golang.org/genai"

	"github.com/equihire/equihire-core/internal/core"
)

// ModelGetter is the subset of genai.Models the AI probe uses.
type ModelGetter interface {
	Get(ctx context.Context, model string, config *genai.GetModelConfig) (*genai.Model, error)
}

// GeminiProbe fetches the configured model's metadata.
type GeminiProbe struct {
	models ModelGetter
	model  string
}

var _ core.IntegrationProbe = (*GeminiProbe)(nil)

// NewGeminiProbe creates a Gemini API client. An empty key yields a probe that reports "not configured".
func NewGeminiProbe(ctx context.Context, apiKey, model string) (*GeminiProbe, error) {
	if apiKey == "" {
		return &GeminiProbe{model: model}, nil
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return NewGeminiProbeWithModels(client.Models, model), nil
}

// NewGeminiProbeWithModels wraps an existing models client (useful for tests).
func NewGeminiProbeWithModels(m ModelGetter, model string) *GeminiProbe {
	return &GeminiProbe{models: m, model: model}
}

func (p *GeminiProbe) Info() core.ProbeInfo { return AIInfo }

func (p *GeminiProbe) Check(ctx context.Context) core.ProbeResult {
	if p.models == nil || p.model == "" {
		return notConfigured()
	}
	m, err := p.models.Get(ctx, p.model, nil)
	if err != nil {
		return failure("get model", err)
	}

	name := m.DisplayName
	if name == "" {
		name = p.model
	}
	return connected(name,
		metric("Model", p.model),
		metric("Input tokens", strconv.Itoa(int(m.InputTokenLimit))),
		metric("Output tokens", strconv.Itoa(int(m.OutputTokenLimit))),
	)
}
