package token

import "strings"

// ClaimSet is the decoded, typed snapshot of an access token. It is what the
// policy evaluator consumes; it reflects the user's state at issuance time and
// does not track later role or status changes until a new token is issued.
type ClaimSet struct {
	Subject     string
	Email       string
	Username    string
	Provider    string
	TokenID     string
	Roles       []string
	Permissions []string
	IsVerified  bool
	IsActive    bool
	IsLoggedIn  bool
}

// HasRole reports whether the claim set carries the role, case-insensitively.
func (c *ClaimSet) HasRole(name string) bool {
	for _, r := range c.Roles {
		if strings.EqualFold(r, name) {
			return true
		}
	}
	return false
}

// HasPermission reports whether the claim set carries the "resource:action"
// permission key, case-insensitively.
func (c *ClaimSet) HasPermission(key string) bool {
	for _, p := range c.Permissions {
		if strings.EqualFold(p, key) {
			return true
		}
	}
	return false
}

// StatusClaim returns the named boolean status claim. Unknown names report
// ok=false so policy evaluation can fail silently instead of erroring.
func (c *ClaimSet) StatusClaim(name string) (value bool, ok bool) {
	switch name {
	case ClaimVerified:
		return c.IsVerified, true
	case ClaimActive:
		return c.IsActive, true
	case ClaimLoggedIn:
		return c.IsLoggedIn, true
	}
	return false, false
}

// Status claim names embedded in issued tokens.
const (
	ClaimVerified = "is_verified"
	ClaimActive   = "is_active"
	ClaimLoggedIn = "is_logged_in"
)
