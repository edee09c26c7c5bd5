//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"errors"
	"net/mail"
	"strings"
	"time"
)

const maxEmailLen = 254

// InvitationStatus tracks delivery of a candidate invitation email.
type InvitationStatus string

const (
	InvitationStatusPending InvitationStatus = "pending"
	InvitationStatusSent    InvitationStatus = "sent"
	InvitationStatusFailed  InvitationStatus = "failed"
)

// Valid reports whether the invitation status is supported.
func (s InvitationStatus) Valid() bool {
	switch s {
	case InvitationStatusPending, InvitationStatusSent, InvitationStatusFailed:
		return true
	default:
		return false
	}
}

// Invitation is a candidate invitation issued by a recruiter.
type Invitation struct {
	ID             string           `json:"id"                   db:"id"`
	OrganizationID string           `json:"organization_id"      db:"organization_id"`
	Email          string           `json:"email"                db:"email"`
	Token          string           `json:"-"                    db:"token"`
	Status         InvitationStatus `json:"status"               db:"status"`
	LastError      *string          `json:"last_error,omitempty" db:"last_error"`
	CreatedBy      string           `json:"created_by"           db:"created_by"`
	CreatedAt      time.Time        `json:"created_at"           db:"created_at"`
	SentAt         *time.Time       `json:"sent_at,omitempty"    db:"sent_at"`
}

// CreateInvitationRequest represents parameters to invite a candidate.
type CreateInvitationRequest struct {
	OrganizationID string `json:"organization_id"`
	Email          string `json:"email"`
	CreatedBy      string `json:"created_by"`
}

// Normalize trims and lowercases the candidate email.
func (r *CreateInvitationRequest) Normalize() {
	r.OrganizationID = strings.TrimSpace(r.OrganizationID)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.CreatedBy = strings.TrimSpace(r.CreatedBy)
}

// Validate validates CreateInvitationRequest. Call Normalize first.
func (r *CreateInvitationRequest) Validate() error {
	if r.OrganizationID == "" {
		return errors.New("organization_id is required")
	}
	if err := ValidateEmail(r.Email); err != nil {
		return err
	}
	if r.CreatedBy == "" {
		return errors.New("created_by is required")
	}
	return nil
}

// ValidateEmail accepts a bare address ("a@b.c"), rejecting display-name forms.
func ValidateEmail(email string) error {
	if email == "" {
		return errors.New("email is required")
	}
	if len(email) > maxEmailLen {
		return errors.New("email cannot exceed 254 characters")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || addr.Name != "" {
		return errors.New("email must be a valid address")
	}
	at := strings.LastIndexByte(email, '@')
	if !strings.Contains(email[at+1:], ".") {
		return errors.New("email domain must be fully qualified")
	}
	return nil
}
