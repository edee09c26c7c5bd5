package service

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/equihire/equihire-core/internal/core"
	"github.com/equihire/equihire-core/internal/domain/model"
	apperrors "github.com/equihire/equihire-core/internal/errors"
)

const invitationTokenBytes = 32

var invitationHTML = template.Must(template.New("invitation").Parse(`<!doctype html>
<html><body style="font-family:sans-serif">
<p>Hello,</p>
<p>{{.Organization}} has invited you to a blind interview on EquiHire.</p>
<p><a href="{{.Link}}">Start your interview</a></p>
<p>If the button does not work, paste this link into your browser:<br>{{.Link}}</p>
</body></html>`))

// InvitationConfig holds settings for building invitation emails.
type InvitationConfig struct {
	// BaseURL is the public origin candidates use, e.g. https://app.equihire.dev.
	BaseURL string
	Logger  *slog.Logger
}

// InvitationServiceOptions groups dependencies for InvitationService.
type InvitationServiceOptions struct {
	Repo   core.InvitationRepository
	Mailer core.Mailer
	Config InvitationConfig
}

// InvitationService issues candidate invitations and emails the interview link.
type InvitationService struct {
	repo    core.InvitationRepository
	mailer  core.Mailer
	baseURL string
	logger  *slog.Logger
	now     func() time.Time
	token   func() (string, error)
}

// NewInvitationService constructs a new InvitationService.
func NewInvitationService(opts InvitationServiceOptions) *InvitationService {
	if opts.Repo == nil {
		panic("InvitationRepository is required")
	}
	if opts.Mailer == nil {
		panic("Mailer is required")
	}
	logger := opts.Config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &InvitationService{
		repo:    opts.Repo,
		mailer:  opts.Mailer,
		baseURL: strings.TrimRight(opts.Config.BaseURL, "/"),
		logger:  logger.With("component", "invitation_service"),
		now:     time.Now,
		token:   newInvitationToken,
	}
}

// InviteInput identifies the candidate and the inviting recruiter.
type InviteInput struct {
	OrganizationID   string
	OrganizationName string
	Email            string
	CreatedBy        string
}

// Invite stores the invitation and emails the candidate. A delivery failure is recorded on the
// returned invitation (status failed) rather than returned as an error.
func (s *InvitationService) Invite(ctx context.Context, in InviteInput) (*model.Invitation, error) {
	req := &model.CreateInvitationRequest{
		OrganizationID: in.OrganizationID,
		Email:          in.Email,
		CreatedBy:      in.CreatedBy,
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		e := apperrors.ValidationField("email", capitalize(err.Error())+".")
		e.Cause = err
		return nil, e
	}

	token, err := s.token()
	if err != nil {
		return nil, fmt.Errorf("generate invitation token: %w", err)
	}
	inv, err := s.repo.Create(ctx, req, token)
	if err != nil {
		return nil, fmt.Errorf("create invitation: %w", err)
	}

	msg, err := s.buildEmail(in.OrganizationName, inv)
	if err != nil {
		return nil, err
	}

	if _, sendErr := s.mailer.Send(ctx, msg); sendErr != nil {
		s.logger.WarnContext(ctx, "invitation delivery failed", "invitation_id", inv.ID, "error", sendErr)
		reason := sendErr.Error()
		if markErr := s.repo.MarkFailed(ctx, inv.ID, reason); markErr != nil {
			return nil, errors.Join(fmt.Errorf("send invitation: %w", sendErr), fmt.Errorf("mark failed: %w", markErr))
		}
		inv.Status = model.InvitationStatusFailed
		inv.LastError = &reason
		return inv, nil
	}

	sentAt := s.now().UTC()
	if err := s.repo.MarkSent(ctx, inv.ID, sentAt); err != nil {
		return nil, fmt.Errorf("mark invitation sent: %w", err)
	}
	inv.Status = model.InvitationStatusSent
	inv.SentAt = &sentAt
	inv.LastError = nil
	return inv, nil
}

// InviteLink is the candidate welcome URL for token.
func (s *InvitationService) InviteLink(token string) string {
	return s.baseURL + "/candidate/welcome?invite=" + url.QueryEscape(token)
}

func (s *InvitationService) buildEmail(orgName string, inv *model.Invitation) (core.Email, error) {
	if orgName == "" {
		orgName = "A hiring team"
	}
	link := s.InviteLink(inv.Token)

	var html bytes.Buffer
	if err := invitationHTML.Execute(&html, struct{ Organization, Link string }{orgName, link}); err != nil {
		return core.Email{}, fmt.Errorf("render invitation email: %w", err)
	}
	text := fmt.Sprintf("%s has invited you to a blind interview on EquiHire.\n\nStart your interview: %s\n", orgName, link)

	return core.Email{
		To:      inv.Email,
		Subject: "You're invited to interview with " + orgName,
		HTML:    html.String(),
		Text:    text,
		Tags:    map[string]string{"category": "invitation", "organization_id": inv.OrganizationID},
	}, nil
}

// ListRecent returns the organization's newest invitations.
func (s *InvitationService) ListRecent(ctx context.Context, organizationID string, limit int) ([]*model.Invitation, error) {
	if organizationID == "" {
		return nil, nil
	}
	invs, err := s.repo.ListRecent(ctx, organizationID, limit)
	if err != nil {
		return nil, fmt.Errorf("list invitations: %w", err)
	}
	return invs, nil
}

// GetByToken resolves an invitation link token.
func (s *InvitationService) GetByToken(ctx context.Context, token string) (*model.Invitation, error) {
	inv, err := s.repo.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, core.ErrInvitationNotFound) {
			return nil, apperrors.Wrap(err, apperrors.ErrCodeNotFound, "This invitation link is not valid.")
		}
		return nil, fmt.Errorf("get invitation: %w", err)
	}
	return inv, nil
}

func newInvitationToken() (string, error) {
	b := make([]byte, invitationTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
