package auth

// Package auth contains domain-level types for authentication and sessions.
// It is pure and free of framework/adapter concerns.

import "time"

// Role represents an application's authorization role.
// Keep string form for easy persistence and cookies.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleRecruiter Role = "recruiter"
	RoleGuest     Role = "guest"
)

// Identity represents the authenticated principal returned by an IdP.
// Adapters map provider-specific claims into this shape.
type Identity struct {
	UserID    string // stable subject identifier
	Username  string
	FirstName string
	LastName  string
	Email     string
	OrgID     string // IdP organization the user signed into, if any
	Groups    []string
	IDToken   string    // raw ID token, kept as id_token_hint for sign-out
	ExpiresAt time.Time // absolute expiry from IdP token
}

// Session is the server-side record we persist for an authenticated user.
// ID is an opaque session identifier (e.g., random URL-safe string).
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	OrgID     string    `json:"org_id,omitempty"`
	Role      Role      `json:"role"`
	IDToken   string    `json:"id_token,omitempty"`
	ExpiresAt time.Time `json:"expires_at"`
}

// IsGuest returns true if the session role is guest.
func (s Session) IsGuest() bool { return s.Role == RoleGuest }

// DisplayName is the name shown in the page header ("Hello, <name>").
func (s Session) DisplayName() string {
	switch {
	case s.Username != "":
		return s.Username
	case s.FirstName != "":
		return s.FirstName
	default:
		return s.Email
	}
}
