package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/arkenlabs/identity-api/pkg/apperr"
)

// AuthProvider identifies how an account authenticates.
type AuthProvider string

const (
	ProviderLocal    AuthProvider = "local"
	ProviderGoogle   AuthProvider = "google"
	ProviderFacebook AuthProvider = "facebook"
)

const maxUsernameLength = 50

// User is the aggregate root for identity. Accounts are never hard-deleted;
// status flags flip instead.
type User struct {
	ID           string
	Email        string
	Username     string
	PasswordHash string
	AuthProvider AuthProvider
	IsVerified   bool
	IsActive     bool
	IsLoggedIn   bool
	LastLoginAt  *time.Time
	Roles        []Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewLocalUser creates an unverified local account. Email and password hash
// are required for the local provider; uniqueness is the repository's concern.
func NewLocalUser(email, username, passwordHash string) (*User, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return nil, apperr.BadRequest("email is required for local accounts")
	}
	if err := validateUsername(username); err != nil {
		return nil, err
	}
	if passwordHash == "" {
		return nil, apperr.BadRequest("password is required for local accounts")
	}
	return &User{
		ID:           uuid.NewString(),
		Email:        email,
		Username:     username,
		PasswordHash: passwordHash,
		AuthProvider: ProviderLocal,
		IsActive:     true,
	}, nil
}

// NewExternalUser creates an account backed by an external identity provider.
// It starts pre-verified and carries no password hash.
func NewExternalUser(provider AuthProvider, email, username string) (*User, error) {
	if provider == ProviderLocal {
		return nil, apperr.BadRequest("external account cannot use the local provider")
	}
	if err := validateUsername(username); err != nil {
		return nil, err
	}
	return &User{
		ID:           uuid.NewString(),
		Email:        NormalizeEmail(email),
		Username:     username,
		AuthProvider: provider,
		IsVerified:   true,
		IsActive:     true,
	}, nil
}

func validateUsername(username string) error {
	if username == "" {
		return apperr.BadRequest("username is required")
	}
	if len(username) > maxUsernameLength {
		return apperr.BadRequest("username must be at most %d characters", maxUsernameLength)
	}
	return nil
}

// NormalizeEmail lower-cases and trims an email for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// AssignRole attaches a role; assigning a role the user already holds is a
// conflict.
func (u *User) AssignRole(role Role) error {
	if u.HasRole(role.ID) {
		return apperr.Conflict("role %q already assigned", role.Name)
	}
	u.Roles = append(u.Roles, role)
	return nil
}

// RemoveRole detaches a role by id, reporting whether it was present.
func (u *User) RemoveRole(roleID string) bool {
	for i, r := range u.Roles {
		if r.ID == roleID {
			u.Roles = append(u.Roles[:i], u.Roles[i+1:]...)
			return true
		}
	}
	return false
}

// HasRole reports membership by role id.
func (u *User) HasRole(roleID string) bool {
	for _, r := range u.Roles {
		if r.ID == roleID {
			return true
		}
	}
	return false
}

// HasAdminRole reports whether the user holds Admin or SuperAdmin.
func (u *User) HasAdminRole() bool {
	for _, r := range u.Roles {
		if strings.EqualFold(r.Name, RoleAdmin) || strings.EqualFold(r.Name, RoleSuperAdmin) {
			return true
		}
	}
	return false
}

// RoleNames returns the user's role names in assignment order.
func (u *User) RoleNames() []string {
	names := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		names = append(names, r.Name)
	}
	return names
}

// RecordLogin flips login state. Inactive accounts cannot log in, nor can
// unverified local accounts.
func (u *User) RecordLogin(now time.Time) error {
	if !u.IsActive {
		return apperr.Forbidden("account is inactive")
	}
	if u.AuthProvider == ProviderLocal && !u.IsVerified {
		return apperr.Forbidden("account is not verified")
	}
	u.IsLoggedIn = true
	u.LastLoginAt = &now
	return nil
}

// RecordLogout clears login state.
func (u *User) RecordLogout() {
	u.IsLoggedIn = false
}

// MarkVerified transitions the account to verified; doing so twice is a
// conflict.
func (u *User) MarkVerified() error {
	if u.IsVerified {
		return apperr.Conflict("account is already verified")
	}
	u.IsVerified = true
	return nil
}

func (u *User) Activate()   { u.IsActive = true }
func (u *User) Deactivate() { u.IsActive = false }
