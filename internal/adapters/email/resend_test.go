package email

import (
	"context"
	"errors"
	"testing"

	"github.com/resend/resend-go/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/equihire/equihire-core/internal/core"
)

type fakeSender struct {
	got *resend.SendEmailRequest
	err error
}

func (f *fakeSender) SendWithContext(_ context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error) {
	f.got = params
	if f.err != nil {
		return nil, f.err
	}
	return &resend.SendEmailResponse{Id: "msg-1"}, nil
}

func TestResendMailer_Send(t *testing.T) {
	fs := &fakeSender{}
	m := NewResendMailer(ResendMailerOptions{From: "EquiHire <noreply@equihire.dev>", Sender: fs})

	id, err := m.Send(context.Background(), core.Email{
		To:      "candidate@example.com",
		Subject: "You're invited",
		HTML:    "<p>hi</p>",
		Text:    "hi",
		Tags:    map[string]string{"type": "invitation", "org": "acme"},
	})
	require.NoError(t, err)
	assert.Equal(t, "msg-1", id)

	require.NotNil(t, fs.got)
	assert.Equal(t, "EquiHire <noreply@equihire.dev>", fs.got.From)
	assert.Equal(t, []string{"candidate@example.com"}, fs.got.To)
	assert.Equal(t, "<p>hi</p>", fs.got.Html)
	assert.Equal(t, []resend.Tag{{Name: "org", Value: "acme"}, {Name: "type", Value: "invitation"}}, fs.got.Tags)
	assert.NotEmpty(t, fs.got.Headers["X-Entity-Ref-ID"])
}

func TestResendMailer_Errors(t *testing.T) {
	ctx := context.Background()

	_, err := NewResendMailer(ResendMailerOptions{}).Send(ctx, core.Email{To: "a@example.com"})
	require.ErrorIs(t, err, ErrNotConfigured)

	m := NewResendMailer(ResendMailerOptions{Sender: &fakeSender{}})
	_, err = m.Send(ctx, core.Email{})
	require.Error(t, err)

	cause := errors.New("rate limited")
	m = NewResendMailer(ResendMailerOptions{Sender: &fakeSender{err: cause}})
	_, err = m.Send(ctx, core.Email{To: "a@example.com"})
	require.ErrorIs(t, err, cause)
}

func TestNewResendMailer_WithAPIKey(t *testing.T) {
	m := NewResendMailer(ResendMailerOptions{APIKey: "re_test"})
	assert.NotNil(t, m.emails)
}
