// Package probes implements core.IntegrationProbe health checks for the dashboard integration cards.
package probes

import (
	"context"
	"errors"
	"fmt"

	"github.com/equihire/equihire-core/internal/core"
	"github.com/equihire/equihire-core/internal/domain/model"
)

// NotConfiguredDetail is reported by probes whose client has no credentials.
const NotConfiguredDetail = "not configured"

// Card descriptions shown on the integrations page.
var (
	IdentityInfo = core.ProbeInfo{
		Name:        "WSO2 Asgardeo",
		Description: "Customer Identity & Access Management (CIAM)",
		Category:    "Identity",
	}
	AIInfo = core.ProbeInfo{
		Name:        "Google Gemini 1.5",
		Description: "Context extraction & PII redaction engine",
		Category:    "AI Model",
	}
	DatabaseInfo = core.ProbeInfo{
		Name:        "Supabase",
		Description: "PostgreSQL database & realtime subscriptions",
		Category:    "Database",
	}
	SessionCacheInfo = core.ProbeInfo{
		Name:        "Redis",
		Description: "Session storage & organization membership cache",
		Category:    "Cache",
	}
	StorageInfo = core.ProbeInfo{
		Name:        "Cloudflare R2",
		Description: "Object storage for CVs and session artifacts",
		Category:    "Storage",
	}
	EmailInfo = core.ProbeInfo{
		Name:        "SMTP / Resend",
		Description: "Transactional email delivery for invitations",
		Category:    "Communication",
	}
)

func notConfigured() core.ProbeResult {
	return core.ProbeResult{State: model.IntegrationDisconnected, Detail: NotConfiguredDetail}
}

func connected(detail string, metrics ...model.IntegrationMetric) core.ProbeResult {
	return core.ProbeResult{State: model.IntegrationConnected, Detail: detail, Metrics: metrics}
}

// failure reports a disconnected integration. Deadline errors get a stable message.
func failure(action string, err error) core.ProbeResult {
	detail := fmt.Sprintf("%s: %v", action, err)
	if errors.Is(err, context.DeadlineExceeded) {
		detail = action + ": timed out"
	}
	return core.ProbeResult{State: model.IntegrationDisconnected, Detail: detail}
}

func metric(label, value string) model.IntegrationMetric {
	return model.IntegrationMetric{Label: label, Value: value}
}
