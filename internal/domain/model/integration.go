//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import "time"

// IntegrationState is the health of one external integration.
type IntegrationState string

const (
	IntegrationConnected    IntegrationState = "connected"
	IntegrationDisconnected IntegrationState = "disconnected"
	IntegrationDegraded     IntegrationState = "degraded"
)

// Active reports whether the dashboard should badge the integration as active.
func (s IntegrationState) Active() bool { return s == IntegrationConnected }

// IntegrationMetric is a small label/value pair shown on an integration card.
type IntegrationMetric struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// IntegrationStatus is the outcome of probing one integration.
type IntegrationStatus struct {
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Category    string              `json:"category"`
	State       IntegrationState    `json:"state"`
	LatencyMS   int64               `json:"latency_ms"`
	Detail      string              `json:"detail,omitempty"`
	Metrics     []IntegrationMetric `json:"metrics,omitempty"`
	CheckedAt   time.Time           `json:"checked_at"`
}

// IntegrationSnapshot is the ordered set of integration statuses for one dashboard view.
type IntegrationSnapshot struct {
	Items     []IntegrationStatus `json:"items"`
	CheckedAt time.Time           `json:"checked_at"`
}

// Count returns how many integrations are in state s.
func (s IntegrationSnapshot) Count(state IntegrationState) int {
	n := 0
	for _, it := range s.Items {
		if it.State == state {
			n++
		}
	}
	return n
}
