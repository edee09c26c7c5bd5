// Package email delivers transactional mail through Resend.
package email

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/google/uuid"
	"github.com/resend/resend-go/v2"

	"github.com/equihire/equihire-core/internal/core"
)

// ErrNotConfigured is returned by Send when no API key was provided.
var ErrNotConfigured = errors.New("email delivery not configured")

// Sender is the subset of the Resend emails API the mailer uses.
type Sender interface {
	SendWithContext(ctx context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

// ResendMailer implements core.Mailer.
type ResendMailer struct {
	emails Sender
	from   string
	logger *slog.Logger
}

var _ core.Mailer = (*ResendMailer)(nil)

// ResendMailerOptions configures a ResendMailer.
type ResendMailerOptions struct {
	APIKey string
	From   string
	Logger *slog.Logger
	// Sender overrides the Resend client (useful for tests).
	Sender Sender
}

// NewResendMailer creates a mailer. Without an API key or Sender every Send fails with ErrNotConfigured.
func NewResendMailer(opts ResendMailerOptions) *ResendMailer {
	m := &ResendMailer{emails: opts.Sender, from: opts.From, logger: opts.Logger}
	if m.logger == nil {
		m.logger = slog.Default()
	}
	if m.emails == nil && opts.APIKey != "" {
		m.emails = resend.NewClient(opts.APIKey).Emails
	}
	return m
}

// Send delivers msg and returns the Resend message ID.
func (m *ResendMailer) Send(ctx context.Context, msg core.Email) (string, error) {
	if m.emails == nil {
		return "", ErrNotConfigured
	}
	if msg.To == "" {
		return "", errors.New("recipient is required")
	}

	req := &resend.SendEmailRequest{
		From:    m.from,
		To:      []string{msg.To},
		Subject: msg.Subject,
		Html:    msg.HTML,
		Text:    msg.Text,
		Headers: map[string]string{"X-Entity-Ref-ID": uuid.NewString()},
		Tags:    toTags(msg.Tags),
	}
	sent, err := m.emails.SendWithContext(ctx, req)
	if err != nil {
		m.logger.ErrorContext(ctx, "failed to send email", "error", err, "subject", msg.Subject)
		return "", fmt.Errorf("send email: %w", err)
	}
	m.logger.InfoContext(ctx, "email sent", "email_id", sent.Id, "subject", msg.Subject)
	return sent.Id, nil
}

// toTags converts a tag map into Resend tags in key order.
func toTags(tags map[string]string) []resend.Tag {
	if len(tags) == 0 {
		return nil
	}
	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]resend.Tag, 0, len(keys))
	for _, k := range keys {
		out = append(out, resend.Tag{Name: k, Value: tags[k]})
	}
	return out
}
