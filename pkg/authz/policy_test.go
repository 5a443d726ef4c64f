package authz

import (
	"testing"

	"github.com/arkenlabs/identity-api/pkg/token"
)

func TestRolePolicy(t *testing.T) {
	tests := []struct {
		name   string
		policy RolePolicy
		cs     *token.ClaimSet
		want   bool
	}{
		{"exact match", RequireAdminOnly, &token.ClaimSet{Roles: []string{"Admin"}}, true},
		{"case-insensitive match", RequireAdminOnly, &token.ClaimSet{Roles: []string{"admin"}}, true},
		{"superadmin allowed for admin policy", RequireAdminOnly, &token.ClaimSet{Roles: []string{"SuperAdmin"}}, true},
		{"visitor denied", RequireAdminOnly, &token.ClaimSet{Roles: []string{"Visitor"}}, false},
		{"missing role claim denied", RequireAdminOnly, &token.ClaimSet{}, false},
		{"nil claim set denied", RequireAdminOnly, nil, false},
		{"admin denied for superadmin policy", RequireSuperAdminOnly, &token.ClaimSet{Roles: []string{"Admin"}}, false},
		{"superadmin case-insensitive", RequireSuperAdminOnly, &token.ClaimSet{Roles: []string{"superadmin"}}, true},
		{"any of several roles", RequireAdminOnly, &token.ClaimSet{Roles: []string{"Visitor", "admin"}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.policy.Allows(tt.cs); got != tt.want {
				t.Errorf("%s.Allows() = %v, want %v", tt.policy.Name(), got, tt.want)
			}
		})
	}
}

func TestStatusPolicy(t *testing.T) {
	tests := []struct {
		name   string
		policy StatusPolicy
		cs     *token.ClaimSet
		want   bool
	}{
		{"verified true", RequireVerifiedUser, &token.ClaimSet{IsVerified: true}, true},
		{"verified false", RequireVerifiedUser, &token.ClaimSet{IsVerified: false}, false},
		{"active true", RequireActiveUser, &token.ClaimSet{IsActive: true}, true},
		{"active false", RequireActiveUser, &token.ClaimSet{}, false},
		{"logged in true", RequireLoggedInUser, &token.ClaimSet{IsLoggedIn: true}, true},
		{"nil claim set", RequireVerifiedUser, nil, false},
		{
			"unknown claim is silent deny",
			StatusPolicy{PolicyName: "x", Claim: "no_such_claim", Expected: "true"},
			&token.ClaimSet{IsVerified: true},
			false,
		},
		{
			"expected value compared case-insensitively",
			StatusPolicy{PolicyName: "x", Claim: token.ClaimVerified, Expected: "TRUE"},
			&token.ClaimSet{IsVerified: true},
			true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.policy.Allows(tt.cs); got != tt.want {
				t.Errorf("%s.Allows() = %v, want %v", tt.policy.Name(), got, tt.want)
			}
		})
	}
}
