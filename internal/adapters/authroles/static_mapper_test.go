package authroles

import (
	"testing"

	"github.com/stretchr/testify/assert"

	domainauth "github.com/equihire/equihire-core/internal/domain/auth"
)

func TestStaticRoleMapper_Map(t *testing.T) {
	tests := []struct {
		name   string
		mapper StaticRoleMapper
		groups []string
		want   domainauth.Role
	}{
		{name: "admin wins", mapper: StaticRoleMapper{AdminGroup: "admins", UserGroup: "recruiters"}, groups: []string{"recruiters", "admins"}, want: domainauth.RoleAdmin},
		{name: "open sign-in", mapper: StaticRoleMapper{AdminGroup: "admins"}, groups: nil, want: domainauth.RoleRecruiter},
		{name: "restricted member", mapper: StaticRoleMapper{UserGroup: "recruiters"}, groups: []string{"recruiters"}, want: domainauth.RoleRecruiter},
		{name: "restricted outsider", mapper: StaticRoleMapper{UserGroup: "recruiters"}, groups: []string{"candidates"}, want: domainauth.RoleGuest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.mapper.Map(tt.groups))
		})
	}
}
