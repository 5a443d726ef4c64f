// Package authz evaluates access policies against a decoded claim set.
package authz

import (
	"strconv"
	"strings"

	"github.com/arkenlabs/identity-api/pkg/token"
)

// Policy is a named, declarative predicate over an inbound claim set.
// Evaluation is pure and never errors: an absent or malformed claim is a
// silent deny, not an exception.
type Policy interface {
	Name() string
	Allows(cs *token.ClaimSet) bool
}

// StatusPolicy succeeds when the named status claim is present and its value
// case-insensitively equals Expected.
type StatusPolicy struct {
	PolicyName string
	Claim      string
	Expected   string
}

func (p StatusPolicy) Name() string { return p.PolicyName }

func (p StatusPolicy) Allows(cs *token.ClaimSet) bool {
	if cs == nil {
		return false
	}
	v, ok := cs.StatusClaim(p.Claim)
	if !ok {
		return false
	}
	return strings.EqualFold(strconv.FormatBool(v), p.Expected)
}

// RolePolicy succeeds when the claim set's role claim case-insensitively
// matches any of the allowed roles.
type RolePolicy struct {
	PolicyName string
	Allowed    []string
}

func (p RolePolicy) Name() string { return p.PolicyName }

func (p RolePolicy) Allows(cs *token.ClaimSet) bool {
	if cs == nil || len(cs.Roles) == 0 {
		return false
	}
	for _, allowed := range p.Allowed {
		if cs.HasRole(allowed) {
			return true
		}
	}
	return false
}

// Built-in policies registered on protected endpoints.
var (
	RequireVerifiedUser = StatusPolicy{PolicyName: "RequireVerifiedUser", Claim: token.ClaimVerified, Expected: "true"}
	RequireActiveUser   = StatusPolicy{PolicyName: "RequireActiveUser", Claim: token.ClaimActive, Expected: "true"}
	RequireLoggedInUser = StatusPolicy{PolicyName: "RequireLoggedInUser", Claim: token.ClaimLoggedIn, Expected: "true"}

	RequireAdminOnly      = RolePolicy{PolicyName: "RequireAdminOnly", Allowed: []string{"Admin", "SuperAdmin"}}
	RequireSuperAdminOnly = RolePolicy{PolicyName: "RequireSuperAdminOnly", Allowed: []string{"SuperAdmin"}}
)
