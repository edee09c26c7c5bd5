package testutil

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/equihire/equihire-core/internal/core"
	"github.com/equihire/equihire-core/internal/domain/model"
)

// MemoryOrganizationRepo is an in-memory core.OrganizationRepository for service and handler tests.
// Set Err to make every call fail.
type MemoryOrganizationRepo struct {
	mu      sync.Mutex
	orgs    map[string]*model.Organization
	members map[string]string // user ID -> organization ID
	seq     int
	Err     error
}

var _ core.OrganizationRepository = (*MemoryOrganizationRepo)(nil)

// NewMemoryOrganizationRepo creates an empty repository.
func NewMemoryOrganizationRepo() *MemoryOrganizationRepo {
	return &MemoryOrganizationRepo{
		orgs:    make(map[string]*model.Organization),
		members: make(map[string]string),
	}
}

func (r *MemoryOrganizationRepo) Create(
	_ context.Context,
	req *model.CreateOrganizationRequest,
) (*model.Organization, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if _, ok := r.members[req.OwnerID]; ok {
		return nil, core.ErrAlreadyMember
	}
	slug := model.Slugify(req.Name)
	for _, o := range r.orgs {
		if strings.EqualFold(o.Name, req.Name) || o.Slug == slug {
			return nil, core.ErrOrganizationNameTaken
		}
	}

	r.seq++
	now := TestTime().Add(time.Duration(r.seq) * time.Second)
	org := &model.Organization{
		ID:        fmt.Sprintf("org-%d", r.seq),
		Name:      req.Name,
		Slug:      slug,
		IdPOrgID:  req.IdPOrgID,
		CreatedBy: req.OwnerID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.orgs[org.ID] = org
	r.members[req.OwnerID] = org.ID
	out := *org
	return &out, nil
}

func (r *MemoryOrganizationRepo) GetByMember(_ context.Context, userID string) (*model.Organization, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	id, ok := r.members[userID]
	if !ok {
		return nil, core.ErrOrganizationNotFound
	}
	out := *r.orgs[id]
	return &out, nil
}

func (r *MemoryOrganizationRepo) HasMember(_ context.Context, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return false, r.Err
	}
	_, ok := r.members[userID]
	return ok, nil
}

func (r *MemoryOrganizationRepo) List(
	_ context.Context,
	opts model.OrganizationListOptions,
) ([]*model.OrganizationSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	opts.Normalize()

	counts := make(map[string]int)
	for _, orgID := range r.members {
		counts[orgID]++
	}
	all := make([]*model.OrganizationSummary, 0, len(r.orgs))
	for _, o := range r.orgs {
		all = append(all, &model.OrganizationSummary{Organization: *o, MemberCount: counts[o.ID]})
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

	if opts.Offset >= len(all) {
		return []*model.OrganizationSummary{}, nil
	}
	end := min(opts.Offset+opts.Limit, len(all))
	return all[opts.Offset:end], nil
}

// MemoryInvitationRepo is an in-memory core.InvitationRepository.
type MemoryInvitationRepo struct {
	mu   sync.Mutex
	byID map[string]*model.Invitation
	seq  int
	Err  error
}

var _ core.InvitationRepository = (*MemoryInvitationRepo)(nil)

// NewMemoryInvitationRepo creates an empty repository.
func NewMemoryInvitationRepo() *MemoryInvitationRepo {
	return &MemoryInvitationRepo{byID: make(map[string]*model.Invitation)}
}

func (r *MemoryInvitationRepo) Create(
	_ context.Context,
	req *model.CreateInvitationRequest,
	token string,
) (*model.Invitation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	r.seq++
	inv := &model.Invitation{
		ID:             fmt.Sprintf("inv-%d", r.seq),
		OrganizationID: req.OrganizationID,
		Email:          req.Email,
		Token:          token,
		Status:         model.InvitationStatusPending,
		CreatedBy:      req.CreatedBy,
		CreatedAt:      TestTime().Add(time.Duration(r.seq) * time.Second),
	}
	r.byID[inv.ID] = inv
	out := *inv
	return &out, nil
}

func (r *MemoryInvitationRepo) MarkSent(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.byID[id]
	if !ok {
		return core.ErrInvitationNotFound
	}
	inv.Status = model.InvitationStatusSent
	inv.SentAt = &at
	inv.LastError = nil
	return nil
}

func (r *MemoryInvitationRepo) MarkFailed(_ context.Context, id, reason string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.byID[id]
	if !ok {
		return core.ErrInvitationNotFound
	}
	inv.Status = model.InvitationStatusFailed
	inv.LastError = &reason
	return nil
}

func (r *MemoryInvitationRepo) GetByToken(_ context.Context, token string) (*model.Invitation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, inv := range r.byID {
		if token != "" && inv.Token == token {
			out := *inv
			return &out, nil
		}
	}
	return nil, core.ErrInvitationNotFound
}

func (r *MemoryInvitationRepo) ListRecent(_ context.Context, organizationID string, limit int) ([]*model.Invitation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	var out []*model.Invitation
	for _, inv := range r.byID {
		if inv.OrganizationID == organizationID {
			c := *inv
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// MemoryMailer records sent mail. Set Err to simulate delivery failures.
type MemoryMailer struct {
	mu   sync.Mutex
	Sent []core.Email
	Err  error
}

var _ core.Mailer = (*MemoryMailer)(nil)

func (m *MemoryMailer) Send(_ context.Context, msg core.Email) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return "", m.Err
	}
	m.Sent = append(m.Sent, msg)
	return fmt.Sprintf("email-%d", len(m.Sent)), nil
}

// Messages returns a copy of the sent mail.
func (m *MemoryMailer) Messages() []core.Email {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]core.Email(nil), m.Sent...)
}
