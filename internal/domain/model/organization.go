//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"errors"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

const (
	minOrganizationNameLen = 2
	maxOrganizationNameLen = 120
	maxSlugLen             = 63
)

// MembershipRole is a recruiter's role inside an organization.
type MembershipRole string

const (
	MembershipRoleOwner     MembershipRole = "owner"
	MembershipRoleRecruiter MembershipRole = "recruiter"
)

// Valid reports whether the membership role is supported.
func (r MembershipRole) Valid() bool {
	switch r {
	case MembershipRoleOwner, MembershipRoleRecruiter:
		return true
	default:
		return false
	}
}

// Organization is a hiring organization created during onboarding.
type Organization struct {
	ID        string    `json:"id"                   db:"id"`
	Name      string    `json:"name"                 db:"name"`
	Slug      string    `json:"slug"                 db:"slug"`
	IdPOrgID  *string   `json:"idp_org_id,omitempty" db:"idp_org_id"`
	CreatedBy string    `json:"created_by"           db:"created_by"`
	CreatedAt time.Time `json:"created_at"           db:"created_at"`
	UpdatedAt time.Time `json:"updated_at"           db:"updated_at"`
}

// Membership links a recruiter (IdP subject) to exactly one organization.
type Membership struct {
	OrganizationID string         `json:"organization_id" db:"organization_id"`
	UserID         string         `json:"user_id"         db:"user_id"`
	Email          string         `json:"email"           db:"email"`
	Role           MembershipRole `json:"role"            db:"role"`
	CreatedAt      time.Time      `json:"created_at"      db:"created_at"`
}

// OrganizationSummary is an organization with its member count, used by admin listings.
type OrganizationSummary struct {
	Organization
	MemberCount int `json:"member_count" db:"member_count"`
}

// OrganizationListOptions controls paging for listing organizations.
type OrganizationListOptions struct {
	Limit  int
	Offset int
}

// Normalize applies default and maximum page sizes.
func (o *OrganizationListOptions) Normalize() {
	if o.Limit <= 0 {
		o.Limit = 50
	}
	if o.Limit > 500 {
		o.Limit = 500
	}
	if o.Offset < 0 {
		o.Offset = 0
	}
}

// CreateOrganizationRequest represents the onboarding form plus the signed-in owner.
type CreateOrganizationRequest struct {
	Name       string  `json:"name"`
	OwnerID    string  `json:"owner_id"`
	OwnerEmail string  `json:"owner_email"`
	IdPOrgID   *string `json:"idp_org_id,omitempty"`
}

// Normalize trims inputs and collapses internal whitespace in the name.
func (r *CreateOrganizationRequest) Normalize() {
	r.Name = strings.Join(strings.Fields(r.Name), " ")
	r.OwnerID = strings.TrimSpace(r.OwnerID)
	r.OwnerEmail = strings.ToLower(strings.TrimSpace(r.OwnerEmail))
	if r.IdPOrgID != nil {
		v := strings.TrimSpace(*r.IdPOrgID)
		if v == "" {
			r.IdPOrgID = nil
		} else {
			r.IdPOrgID = &v
		}
	}
}

// Validate validates CreateOrganizationRequest. Call Normalize first.
func (r *CreateOrganizationRequest) Validate() error {
	if r.Name == "" {
		return errors.New("organization name is required")
	}
	n := utf8.RuneCountInString(r.Name)
	if n < minOrganizationNameLen {
		return errors.New("organization name must be at least 2 characters")
	}
	if n > maxOrganizationNameLen {
		return errors.New("organization name cannot exceed 120 characters")
	}
	if Slugify(r.Name) == "" {
		return errors.New("organization name must contain a letter or digit")
	}
	if r.OwnerID == "" {
		return errors.New("owner_id is required")
	}
	return nil
}

// Slugify derives a URL-safe identifier from an organization name.
// Letters and digits are kept (lowercased), every other run becomes a single hyphen.
func Slugify(name string) string {
	var b strings.Builder
	pendingHyphen := false
	for _, r := range strings.ToLower(name) {
		if r < utf8.RuneSelf && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
			continue
		}
		pendingHyphen = true
	}
	s := b.String()
	if len(s) > maxSlugLen {
		s = strings.TrimRight(s[:maxSlugLen], "-")
	}
	return s
}
