package config

import (
	"fmt"
	"strings"
	"time"
)

const (
	defaultProbeTimeout = 3 * time.Second
	maxProbeTimeout     = 30 * time.Second
)

// IntegrationsConfig groups the external services reported on the dashboard.
type IntegrationsConfig struct {
	// ProbeTimeout bounds each individual integration health check.
	ProbeTimeout time.Duration `env:"INTEGRATIONS_PROBE_TIMEOUT" envDefault:"3s"`

	Storage R2Config     `envPrefix:"R2_"`
	Email   ResendConfig `envPrefix:"RESEND_"`
	AI      GeminiConfig `envPrefix:"GEMINI_"`
}

// Sanitize clamps the probe timeout.
func (c *IntegrationsConfig) Sanitize() {
	if c.ProbeTimeout <= 0 {
		c.ProbeTimeout = defaultProbeTimeout
	}
	if c.ProbeTimeout > maxProbeTimeout {
		c.ProbeTimeout = maxProbeTimeout
	}
	c.Storage.Bucket = strings.TrimSpace(c.Storage.Bucket)
	c.Email.APIKey = strings.TrimSpace(c.Email.APIKey)
	c.AI.APIKey = strings.TrimSpace(c.AI.APIKey)
}

// R2Config holds Cloudflare R2 (S3-compatible) credentials for CV and session artifacts.
type R2Config struct {
	AccountID       string `env:"ACCOUNT_ID"`
	AccessKeyID     string `env:"ACCESS_KEY_ID"`
	SecretAccessKey string `env:"SECRET_ACCESS_KEY"`
	Bucket          string `env:"BUCKET"`
	Region          string `env:"REGION"   envDefault:"auto"`
	// Endpoint overrides the account-derived endpoint (useful for MinIO in tests).
	Endpoint string `env:"ENDPOINT"`
}

// Configured reports whether enough is set to reach a bucket.
func (c R2Config) Configured() bool {
	return c.Bucket != "" && c.AccessKeyID != "" && c.SecretAccessKey != "" &&
		(c.AccountID != "" || c.Endpoint != "")
}

// ResolvedEndpoint returns the S3 API endpoint for the account.
func (c R2Config) ResolvedEndpoint() string {
	if c.Endpoint != "" {
		return c.Endpoint
	}
	return fmt.Sprintf("https://%s.r2.cloudflarestorage.com", c.AccountID)
}

// ResendConfig configures transactional email delivery.
type ResendConfig struct {
	APIKey string `env:"API_KEY"`
	From   string `env:"FROM"    envDefault:"EquiHire <noreply@equihire.dev>"`
}

// Configured reports whether an API key is present.
func (c ResendConfig) Configured() bool { return c.APIKey != "" }

// GeminiConfig configures the Gemini model used for context extraction and PII redaction.
type GeminiConfig struct {
	APIKey string `env:"API_KEY"`
	Model  string `env:"MODEL"   envDefault:"gemini-1.5-flash-001"`
}

// Configured reports whether an API key is present.
func (c GeminiConfig) Configured() bool { return c.APIKey != "" }
