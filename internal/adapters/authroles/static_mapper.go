package authroles

import (
	domainauth "github.com/equihire/equihire-core/internal/domain/auth"
)

// StaticRoleMapper maps IdP groups onto application roles.
//
// AdminGroup members become admins. When UserGroup is empty every other
// identity is a recruiter; otherwise only UserGroup members are, and the rest
// are guests (treated as signed out by the view layer).
type StaticRoleMapper struct {
	AdminGroup string
	UserGroup  string
}

func (m StaticRoleMapper) Map(groups []string) domainauth.Role {
	if m.AdminGroup != "" && contains(groups, m.AdminGroup) {
		return domainauth.RoleAdmin
	}
	if m.UserGroup == "" || contains(groups, m.UserGroup) {
		return domainauth.RoleRecruiter
	}
	return domainauth.RoleGuest
}

func contains(groups []string, want string) bool {
	for _, g := range groups {
		if g == want {
			return true
		}
	}
	return false
}
