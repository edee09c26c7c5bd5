package core

import (
	"context"
	"errors"
	"time"

	"github.com/equihire/equihire-core/internal/domain/model"
)

var (
	// ErrOrganizationNotFound is returned when no organization matches the lookup.
	ErrOrganizationNotFound = errors.New("organization not found")
	// ErrOrganizationNameTaken is returned when another organization already uses the name or slug.
	ErrOrganizationNameTaken = errors.New("organization name already taken")
	// ErrAlreadyMember is returned when the user already belongs to an organization.
	ErrAlreadyMember = errors.New("user already belongs to an organization")
	// ErrInvitationNotFound is returned when no invitation matches the lookup.
	ErrInvitationNotFound = errors.New("invitation not found")
)

// OrganizationRepository persists organizations and their recruiter memberships.
type OrganizationRepository interface {
	// Create inserts the organization and its owner membership atomically.
	Create(ctx context.Context, req *model.CreateOrganizationRequest) (*model.Organization, error)
	// GetByMember returns the organization the user belongs to.
	GetByMember(ctx context.Context, userID string) (*model.Organization, error)
	// HasMember reports whether the user belongs to any organization.
	HasMember(ctx context.Context, userID string) (bool, error)
	List(ctx context.Context, opts model.OrganizationListOptions) ([]*model.OrganizationSummary, error)
}

// InvitationRepository persists candidate invitations.
type InvitationRepository interface {
	Create(ctx context.Context, req *model.CreateInvitationRequest, token string) (*model.Invitation, error)
	MarkSent(ctx context.Context, id string, at time.Time) error
	MarkFailed(ctx context.Context, id, reason string) error
	GetByToken(ctx context.Context, token string) (*model.Invitation, error)
	ListRecent(ctx context.Context, organizationID string, limit int) ([]*model.Invitation, error)
}

// Email is a single transactional message.
type Email struct {
	To      string
	Subject string
	HTML    string
	Text    string
	Tags    map[string]string
}

// Mailer delivers transactional email and returns the provider message ID.
type Mailer interface {
	Send(ctx context.Context, msg Email) (string, error)
}

// ProbeInfo describes an integration card.
type ProbeInfo struct {
	Name        string
	Description string
	Category    string
}

// ProbeResult is what a single health check observed. Latency is measured by the caller.
type ProbeResult struct {
	State   model.IntegrationState
	Detail  string
	Metrics []model.IntegrationMetric
}

// IntegrationProbe checks one external integration.
// Check must honor ctx cancellation and must not panic on unconfigured clients.
type IntegrationProbe interface {
	Info() ProbeInfo
	Check(ctx context.Context) ProbeResult
}
