package application

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/arkenlabs/identity-api/internal/domain/entity"
	repo "github.com/arkenlabs/identity-api/internal/domain/repository"
	"github.com/arkenlabs/identity-api/pkg/apperr"
)

// AdminService covers SuperAdmin-gated role and permission management.
type AdminService struct {
	Users  repo.UserRepository
	Roles  repo.RoleRepository
	Audit  *AuditRecorder
	Logger *logrus.Logger
}

func NewAdminService(users repo.UserRepository, roles repo.RoleRepository, audit *AuditRecorder, logger *logrus.Logger) *AdminService {
	return &AdminService{Users: users, Roles: roles, Audit: audit, Logger: logger}
}

// CreateRole adds a non-system role; the built-in names are reserved.
func (s *AdminService) CreateRole(ctx context.Context, name, description string) (*entity.Role, error) {
	role, err := entity.NewRole(name, description)
	if err != nil {
		return nil, err
	}
	if role.IsSystem() {
		return nil, apperr.Conflict("role name %q is reserved", role.Name)
	}
	if err := s.Roles.CreateRole(ctx, role); err != nil {
		return nil, err
	}
	s.Audit.Record(ctx, AuditEvent{Action: "create_role", Outcome: "ok", Detail: map[string]any{"role": role.Name}})
	return role, nil
}

// CreatePermission adds a permission identified by (resource, action).
func (s *AdminService) CreatePermission(ctx context.Context, resource, action, description string) (*entity.Permission, error) {
	perm, err := entity.NewPermission(resource, action, description)
	if err != nil {
		return nil, err
	}
	if err := s.Roles.CreatePermission(ctx, perm); err != nil {
		return nil, err
	}
	s.Audit.Record(ctx, AuditEvent{Action: "create_permission", Outcome: "ok", Detail: map[string]any{"permission": perm.Key()}})
	return perm, nil
}

// GrantPermission attaches a permission to a role by names; duplicate grants
// conflict.
func (s *AdminService) GrantPermission(ctx context.Context, roleName, resource, action string) error {
	role, err := s.Roles.GetRoleByName(ctx, roleName)
	if err != nil {
		return err
	}
	perm, err := s.Roles.GetPermissionByResourceAction(ctx, resource, action)
	if err != nil {
		return err
	}
	if err := role.GrantPermission(*perm); err != nil {
		return err
	}
	return s.Roles.GrantPermission(ctx, role.ID, perm.ID)
}

// AssignRole attaches a role to a user; duplicate assignment conflicts.
func (s *AdminService) AssignRole(ctx context.Context, userID, roleName string) error {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	role, err := s.Roles.GetRoleByName(ctx, roleName)
	if err != nil {
		return err
	}
	if err := u.AssignRole(*role); err != nil {
		return err
	}
	if err := s.Users.AssignRole(ctx, u.ID, role.ID); err != nil {
		return err
	}
	s.Audit.Record(ctx, AuditEvent{UserID: u.ID, Action: "assign_role", Outcome: "ok", Detail: map[string]any{"role": role.Name}})
	return nil
}

// RemoveRole detaches a role from a user; absent assignments are NotFound.
func (s *AdminService) RemoveRole(ctx context.Context, userID, roleID string) error {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !u.RemoveRole(roleID) {
		return apperr.NotFound("role not assigned to user")
	}
	if err := s.Users.RemoveRole(ctx, u.ID, roleID); err != nil {
		return err
	}
	s.Audit.Record(ctx, AuditEvent{UserID: u.ID, Action: "remove_role", Outcome: "ok", Detail: map[string]any{"role_id": roleID}})
	return nil
}

// ListRoles returns all roles with their permissions.
func (s *AdminService) ListRoles(ctx context.Context) ([]entity.Role, error) {
	return s.Roles.ListRoles(ctx)
}
