package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/arkenlabs/identity-api/internal/domain/entity"
	"github.com/arkenlabs/identity-api/internal/domain/repository"
	"github.com/arkenlabs/identity-api/pkg/apperr"
)

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

const userColumns = `id, email, username, password_hash, auth_provider,
	is_verified, is_active, is_logged_in, last_login_at, created_at, updated_at`

func scanUser(row pgx.Row) (*entity.User, error) {
	u := &entity.User{}
	err := row.Scan(&u.ID, &u.Email, &u.Username, &u.PasswordHash, &u.AuthProvider,
		&u.IsVerified, &u.IsActive, &u.IsLoggedIn, &u.LastLoginAt, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, err
	}
	return u, nil
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO users (id, email, username, password_hash, auth_provider, is_verified, is_active, is_logged_in)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, u.ID, u.Email, u.Username, u.PasswordHash, u.AuthProvider, u.IsVerified, u.IsActive, u.IsLoggedIn)
	if isUniqueViolation(err) {
		return apperr.Conflict("email or username already in use")
	}
	return err
}

func (r *UserRepository) Update(ctx context.Context, u *entity.User) error {
	u.UpdatedAt = time.Now()
	res, err := r.pool.Exec(ctx, `
		UPDATE users
		SET email = $1, username = $2, password_hash = $3, is_verified = $4,
		    is_active = $5, is_logged_in = $6, last_login_at = $7, updated_at = $8
		WHERE id = $9
	`, u.Email, u.Username, u.PasswordHash, u.IsVerified, u.IsActive, u.IsLoggedIn, u.LastLoginAt, u.UpdatedAt, u.ID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return apperr.NotFound("user not found")
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}
	if err := r.loadRoles(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (r *UserRepository) GetByEmailWithRoles(ctx context.Context, email string) (*entity.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
	if err != nil {
		return nil, err
	}
	if err := r.loadRoles(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (r *UserRepository) GetByCredentials(ctx context.Context, emailOrUsername string) (*entity.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx, `
		SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1) OR username = $1
	`, emailOrUsername))
	if err != nil {
		return nil, err
	}
	if err := r.loadRoles(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`, email).Scan(&exists)
	return exists, err
}

func (r *UserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)`, username).Scan(&exists)
	return exists, err
}

func (r *UserRepository) AssignRole(ctx context.Context, userID, roleID string) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO user_roles (user_id, role_id) VALUES ($1, $2)
	`, userID, roleID)
	if isUniqueViolation(err) {
		return apperr.Conflict("role already assigned")
	}
	return err
}

func (r *UserRepository) RemoveRole(ctx context.Context, userID, roleID string) error {
	res, err := r.pool.Exec(ctx, `
		DELETE FROM user_roles WHERE user_id = $1 AND role_id = $2
	`, userID, roleID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return apperr.NotFound("role not assigned to user")
	}
	return nil
}

// loadRoles hydrates the role graph (roles with their permissions) so token
// issuance can flatten permissions without further queries.
func (r *UserRepository) loadRoles(ctx context.Context, u *entity.User) error {
	rows, err := r.pool.Query(ctx, `
		SELECT r.id, r.name, r.description, r.created_at, r.updated_at
		FROM roles r
		JOIN user_roles ur ON ur.role_id = r.id
		WHERE ur.user_id = $1
		ORDER BY r.name
	`, u.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	u.Roles = nil
	for rows.Next() {
		var role entity.Role
		if err := rows.Scan(&role.ID, &role.Name, &role.Description, &role.CreatedAt, &role.UpdatedAt); err != nil {
			return err
		}
		u.Roles = append(u.Roles, role)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for i := range u.Roles {
		perms, err := loadRolePermissions(ctx, r.pool, u.Roles[i].ID)
		if err != nil {
			return err
		}
		u.Roles[i].Permissions = perms
	}
	return nil
}

func loadRolePermissions(ctx context.Context, pool *pgxpool.Pool, roleID string) ([]entity.Permission, error) {
	rows, err := pool.Query(ctx, `
		SELECT p.id, p.resource, p.action, p.description, p.created_at
		FROM permissions p
		JOIN role_permissions rp ON rp.permission_id = p.id
		WHERE rp.role_id = $1
		ORDER BY p.resource, p.action
	`, roleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var perms []entity.Permission
	for rows.Next() {
		var p entity.Permission
		if err := rows.Scan(&p.ID, &p.Resource, &p.Action, &p.Description, &p.CreatedAt); err != nil {
			return nil, err
		}
		perms = append(perms, p)
	}
	return perms, rows.Err()
}

var _ repository.UserRepository = (*UserRepository)(nil)
