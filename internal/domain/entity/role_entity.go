package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/arkenlabs/identity-api/pkg/apperr"
)

// Built-in roles. Admin and SuperAdmin are system-reserved and immutable;
// Visitor is the default role assigned at signup.
const (
	RoleAdmin      = "Admin"
	RoleSuperAdmin = "SuperAdmin"
	RoleVisitor    = "Visitor"
)

const maxRoleNameLength = 50

// Role groups permissions. Many-to-many with User via user_roles and with
// Permission via role_permissions.
type Role struct {
	ID          string
	Name        string
	Description string
	Permissions []Permission
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewRole validates and creates a role. Name uniqueness is enforced by the
// repository.
func NewRole(name, description string) (*Role, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.BadRequest("role name is required")
	}
	if len(name) > maxRoleNameLength {
		return nil, apperr.BadRequest("role name must be at most %d characters", maxRoleNameLength)
	}
	return &Role{ID: uuid.NewString(), Name: name, Description: description}, nil
}

// IsSystem reports whether the role is one of the reserved built-ins that
// cannot be renamed or deleted.
func (r *Role) IsSystem() bool {
	return strings.EqualFold(r.Name, RoleAdmin) || strings.EqualFold(r.Name, RoleSuperAdmin)
}

// GrantPermission attaches a permission; granting an already-held permission
// is a conflict.
func (r *Role) GrantPermission(p Permission) error {
	for _, held := range r.Permissions {
		if held.ID == p.ID {
			return apperr.Conflict("permission %q already granted to role %q", p.Key(), r.Name)
		}
	}
	r.Permissions = append(r.Permissions, p)
	return nil
}

// Permission names a single allowed action on a resource. Identity is the
// (resource, action) pair.
type Permission struct {
	ID          string
	Resource    string
	Action      string
	Description string
	CreatedAt   time.Time
}

// NewPermission validates and creates a permission.
func NewPermission(resource, action, description string) (*Permission, error) {
	resource = strings.TrimSpace(strings.ToLower(resource))
	action = strings.TrimSpace(strings.ToLower(action))
	if resource == "" || action == "" {
		return nil, apperr.BadRequest("permission resource and action are required")
	}
	return &Permission{ID: uuid.NewString(), Resource: resource, Action: action, Description: description}, nil
}

// Key returns the "resource:action" claim string.
func (p Permission) Key() string {
	return p.Resource + ":" + p.Action
}

// FlattenPermissions unions permissions across roles, de-duplicated by
// permission identity. Used for token claim-building.
func FlattenPermissions(roles []Role) []Permission {
	seen := make(map[string]struct{})
	var out []Permission
	for _, r := range roles {
		for _, p := range r.Permissions {
			key := p.Key()
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, p)
		}
	}
	return out
}

// PermissionKeys flattens roles into de-duplicated "resource:action" strings.
func PermissionKeys(roles []Role) []string {
	perms := FlattenPermissions(roles)
	keys := make([]string, 0, len(perms))
	for _, p := range perms {
		keys = append(keys, p.Key())
	}
	return keys
}
