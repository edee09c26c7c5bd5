package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/equihire/equihire-core/internal/core"
	"github.com/equihire/equihire-core/internal/domain/model"
)

const (
	defaultProbeTimeout = 3 * time.Second
	maxProbeTimeout     = 30 * time.Second
)

// IntegrationServiceOptions groups dependencies for IntegrationService.
type IntegrationServiceOptions struct {
	Probes  []core.IntegrationProbe
	Timeout time.Duration // Per-probe deadline; defaults to 3s
	Logger  *slog.Logger
}

// IntegrationService checks every external integration for the dashboard.
type IntegrationService struct {
	probes  []core.IntegrationProbe
	timeout time.Duration
	logger  *slog.Logger
	now     func() time.Time
}

// NewIntegrationService constructs a new IntegrationService.
func NewIntegrationService(opts IntegrationServiceOptions) *IntegrationService {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultProbeTimeout
	}
	if timeout > maxProbeTimeout {
		timeout = maxProbeTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	probes := make([]core.IntegrationProbe, 0, len(opts.Probes))
	for _, p := range opts.Probes {
		if p != nil {
			probes = append(probes, p)
		}
	}
	return &IntegrationService{
		probes:  probes,
		timeout: timeout,
		logger:  logger.With("component", "integration_service"),
		now:     time.Now,
	}
}

// Snapshot runs every probe concurrently and returns their statuses in registration order.
// Each probe runs under its own deadline.
func (s *IntegrationService) Snapshot(ctx context.Context) model.IntegrationSnapshot {
	items := make([]model.IntegrationStatus, len(s.probes))

	var g errgroup.Group
	for i, p := range s.probes {
		g.Go(func() error {
			items[i] = s.check(ctx, p)
			return nil
		})
	}
	_ = g.Wait()

	return model.IntegrationSnapshot{Items: items, CheckedAt: s.now().UTC()}
}

func (s *IntegrationService) check(ctx context.Context, p core.IntegrationProbe) model.IntegrationStatus {
	info := p.Info()
	pctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := s.now()
	res := runProbe(pctx, p)
	latency := s.now().Sub(start)

	if res.State == "" {
		res.State = model.IntegrationDisconnected
	}
	if res.State != model.IntegrationConnected && pctx.Err() != nil && res.Detail == "" {
		res.Detail = "timed out"
	}
	if res.State != model.IntegrationConnected {
		s.logger.WarnContext(ctx, "integration unhealthy",
			"integration", info.Name,
			"state", res.State,
			"detail", res.Detail,
			"latency_ms", latency.Milliseconds(),
		)
	}

	return model.IntegrationStatus{
		Name:        info.Name,
		Description: info.Description,
		Category:    info.Category,
		State:       res.State,
		LatencyMS:   latency.Milliseconds(),
		Detail:      res.Detail,
		Metrics:     res.Metrics,
		CheckedAt:   start.UTC(),
	}
}

// runProbe converts a probe panic into a disconnected result.
func runProbe(ctx context.Context, p core.IntegrationProbe) (res core.ProbeResult) {
	defer func() {
		if r := recover(); r != nil {
			res = core.ProbeResult{
				State:  model.IntegrationDisconnected,
				Detail: fmt.Sprintf("probe panicked: %v", r),
			}
		}
	}()
	return p.Check(ctx)
}
