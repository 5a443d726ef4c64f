package repository

import (
	"context"

	"github.com/arkenlabs/identity-api/internal/domain/entity"
)

// RoleRepository is the persistence contract for roles and permissions.
type RoleRepository interface {
	CreateRole(ctx context.Context, r *entity.Role) error
	GetRoleByName(ctx context.Context, name string) (*entity.Role, error)
	ListRoles(ctx context.Context) ([]entity.Role, error)
	CreatePermission(ctx context.Context, p *entity.Permission) error
	GetPermissionByResourceAction(ctx context.Context, resource, action string) (*entity.Permission, error)
	// GrantPermission inserts a (role, permission) association; duplicates are
	// a conflict.
	GrantPermission(ctx context.Context, roleID, permissionID string) error
}
