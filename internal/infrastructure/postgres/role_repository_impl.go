package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/arkenlabs/identity-api/internal/domain/entity"
	"github.com/arkenlabs/identity-api/internal/domain/repository"
	"github.com/arkenlabs/identity-api/pkg/apperr"
)

type RoleRepository struct {
	pool *pgxpool.Pool
}

func NewRoleRepository(pool *pgxpool.Pool) *RoleRepository {
	return &RoleRepository{pool: pool}
}

func (r *RoleRepository) CreateRole(ctx context.Context, role *entity.Role) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO roles (id, name, description) VALUES ($1, $2, $3)
		RETURNING created_at, updated_at
	`, role.ID, role.Name, role.Description).Scan(&role.CreatedAt, &role.UpdatedAt)
	if isUniqueViolation(err) {
		return apperr.Conflict("role %q already exists", role.Name)
	}
	return err
}

func (r *RoleRepository) GetRoleByName(ctx context.Context, name string) (*entity.Role, error) {
	role := &entity.Role{}
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, description, created_at, updated_at FROM roles WHERE lower(name) = lower($1)
	`, name).Scan(&role.ID, &role.Name, &role.Description, &role.CreatedAt, &role.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("role %q not found", name)
		}
		return nil, err
	}
	perms, err := loadRolePermissions(ctx, r.pool, role.ID)
	if err != nil {
		return nil, err
	}
	role.Permissions = perms
	return role, nil
}

func (r *RoleRepository) ListRoles(ctx context.Context) ([]entity.Role, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, description, created_at, updated_at FROM roles ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []entity.Role
	for rows.Next() {
		var role entity.Role
		if err := rows.Scan(&role.ID, &role.Name, &role.Description, &role.CreatedAt, &role.UpdatedAt); err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range roles {
		perms, err := loadRolePermissions(ctx, r.pool, roles[i].ID)
		if err != nil {
			return nil, err
		}
		roles[i].Permissions = perms
	}
	return roles, nil
}

func (r *RoleRepository) CreatePermission(ctx context.Context, p *entity.Permission) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO permissions (id, resource, action, description) VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`, p.ID, p.Resource, p.Action, p.Description).Scan(&p.CreatedAt)
	if isUniqueViolation(err) {
		return apperr.Conflict("permission %q already exists", p.Key())
	}
	return err
}

func (r *RoleRepository) GetPermissionByResourceAction(ctx context.Context, resource, action string) (*entity.Permission, error) {
	p := &entity.Permission{}
	err := r.pool.QueryRow(ctx, `
		SELECT id, resource, action, description, created_at
		FROM permissions WHERE resource = $1 AND action = $2
	`, resource, action).Scan(&p.ID, &p.Resource, &p.Action, &p.Description, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("permission %s:%s not found", resource, action)
		}
		return nil, err
	}
	return p, nil
}

func (r *RoleRepository) GrantPermission(ctx context.Context, roleID, permissionID string) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO role_permissions (role_id, permission_id) VALUES ($1, $2)
	`, roleID, permissionID)
	if isUniqueViolation(err) {
		return apperr.Conflict("permission already granted to role")
	}
	return err
}

var _ repository.RoleRepository = (*RoleRepository)(nil)
