package testutil

import (
	"fmt"
	"sync/atomic"

	"github.com/equihire/equihire-core/internal/domain/model"
)

var seq atomic.Int64

// OrganizationRequestBuilder builds CreateOrganizationRequest values with unique defaults.
type OrganizationRequestBuilder struct {
	req model.CreateOrganizationRequest
}

// NewOrganizationRequest returns a builder whose name and owner are unique per call.
func NewOrganizationRequest() *OrganizationRequestBuilder {
	n := seq.Add(1)
	return &OrganizationRequestBuilder{req: model.CreateOrganizationRequest{
		Name:       fmt.Sprintf("Test Org %d", n),
		OwnerID:    fmt.Sprintf("user-%d", n),
		OwnerEmail: fmt.Sprintf("owner%d@example.com", n),
	}}
}

// WithName sets the organization name.
func (b *OrganizationRequestBuilder) WithName(name string) *OrganizationRequestBuilder {
	b.req.Name = name
	return b
}

// WithOwner sets the owner subject and email.
func (b *OrganizationRequestBuilder) WithOwner(id, email string) *OrganizationRequestBuilder {
	b.req.OwnerID = id
	b.req.OwnerEmail = email
	return b
}

// WithIdPOrgID sets the identity provider organization.
func (b *OrganizationRequestBuilder) WithIdPOrgID(id string) *OrganizationRequestBuilder {
	b.req.IdPOrgID = &id
	return b
}

// Build returns a copy of the request.
func (b *OrganizationRequestBuilder) Build() *model.CreateOrganizationRequest {
	out := b.req
	return &out
}
