package application

import (
	"context"
	"errors"
	"time"

	"github.com/arkenlabs/identity-api/internal/domain/entity"
	"github.com/arkenlabs/identity-api/pkg/apperr"
)

type mockUserRepository struct {
	createFunc              func(ctx context.Context, u *entity.User) error
	updateFunc              func(ctx context.Context, u *entity.User) error
	getByIDFunc             func(ctx context.Context, id string) (*entity.User, error)
	getByEmailWithRolesFunc func(ctx context.Context, email string) (*entity.User, error)
	getByCredentialsFunc    func(ctx context.Context, id string) (*entity.User, error)
	existsByEmailFunc       func(ctx context.Context, email string) (bool, error)
	existsByUsernameFunc    func(ctx context.Context, username string) (bool, error)
	assignRoleFunc          func(ctx context.Context, userID, roleID string) error
	removeRoleFunc          func(ctx context.Context, userID, roleID string) error
}

func (m *mockUserRepository) Create(ctx context.Context, u *entity.User) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, u)
	}
	return nil
}

func (m *mockUserRepository) Update(ctx context.Context, u *entity.User) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, u)
	}
	return nil
}

func (m *mockUserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, errors.New("not implemented")
}

func (m *mockUserRepository) GetByEmailWithRoles(ctx context.Context, email string) (*entity.User, error) {
	if m.getByEmailWithRolesFunc != nil {
		return m.getByEmailWithRolesFunc(ctx, email)
	}
	return nil, errors.New("not implemented")
}

func (m *mockUserRepository) GetByCredentials(ctx context.Context, id string) (*entity.User, error) {
	if m.getByCredentialsFunc != nil {
		return m.getByCredentialsFunc(ctx, id)
	}
	return nil, errors.New("not implemented")
}

func (m *mockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	if m.existsByEmailFunc != nil {
		return m.existsByEmailFunc(ctx, email)
	}
	return false, nil
}

func (m *mockUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	if m.existsByUsernameFunc != nil {
		return m.existsByUsernameFunc(ctx, username)
	}
	return false, nil
}

func (m *mockUserRepository) AssignRole(ctx context.Context, userID, roleID string) error {
	if m.assignRoleFunc != nil {
		return m.assignRoleFunc(ctx, userID, roleID)
	}
	return nil
}

func (m *mockUserRepository) RemoveRole(ctx context.Context, userID, roleID string) error {
	if m.removeRoleFunc != nil {
		return m.removeRoleFunc(ctx, userID, roleID)
	}
	return nil
}

type mockRoleRepository struct {
	createRoleFunc       func(ctx context.Context, r *entity.Role) error
	getRoleByNameFunc    func(ctx context.Context, name string) (*entity.Role, error)
	listRolesFunc        func(ctx context.Context) ([]entity.Role, error)
	createPermissionFunc func(ctx context.Context, p *entity.Permission) error
	getPermissionFunc    func(ctx context.Context, resource, action string) (*entity.Permission, error)
	grantPermissionFunc  func(ctx context.Context, roleID, permissionID string) error
}

func (m *mockRoleRepository) CreateRole(ctx context.Context, r *entity.Role) error {
	if m.createRoleFunc != nil {
		return m.createRoleFunc(ctx, r)
	}
	return nil
}

func (m *mockRoleRepository) GetRoleByName(ctx context.Context, name string) (*entity.Role, error) {
	if m.getRoleByNameFunc != nil {
		return m.getRoleByNameFunc(ctx, name)
	}
	return nil, apperr.NotFound("role %q not found", name)
}

func (m *mockRoleRepository) ListRoles(ctx context.Context) ([]entity.Role, error) {
	if m.listRolesFunc != nil {
		return m.listRolesFunc(ctx)
	}
	return nil, nil
}

func (m *mockRoleRepository) CreatePermission(ctx context.Context, p *entity.Permission) error {
	if m.createPermissionFunc != nil {
		return m.createPermissionFunc(ctx, p)
	}
	return nil
}

func (m *mockRoleRepository) GetPermissionByResourceAction(ctx context.Context, resource, action string) (*entity.Permission, error) {
	if m.getPermissionFunc != nil {
		return m.getPermissionFunc(ctx, resource, action)
	}
	return nil, apperr.NotFound("permission not found")
}

func (m *mockRoleRepository) GrantPermission(ctx context.Context, roleID, permissionID string) error {
	if m.grantPermissionFunc != nil {
		return m.grantPermissionFunc(ctx, roleID, permissionID)
	}
	return nil
}

// mockOtpRepository keeps codes in memory per (user, purpose).
type mockOtpRepository struct {
	otps    []*entity.Otp
	failAll bool
}

func (m *mockOtpRepository) Create(ctx context.Context, o *entity.Otp) error {
	if m.failAll {
		return errors.New("store down")
	}
	cp := *o
	m.otps = append(m.otps, &cp)
	return nil
}

func (m *mockOtpRepository) Update(ctx context.Context, o *entity.Otp) error {
	if m.failAll {
		return errors.New("store down")
	}
	for i, stored := range m.otps {
		if stored.ID == o.ID {
			cp := *o
			m.otps[i] = &cp
			return nil
		}
	}
	return apperr.NotFound("otp not found")
}

func (m *mockOtpRepository) GetLatest(ctx context.Context, userID string, purpose entity.OtpPurpose) (*entity.Otp, error) {
	if m.failAll {
		return nil, errors.New("store down")
	}
	var latest *entity.Otp
	for _, o := range m.otps {
		if o.UserID != userID || o.Purpose != purpose {
			continue
		}
		if latest == nil || o.CreatedAt.After(latest.CreatedAt) {
			latest = o
		}
	}
	if latest == nil {
		return nil, apperr.NotFound("no otp found")
	}
	cp := *latest
	return &cp, nil
}

func (m *mockOtpRepository) InvalidateAll(ctx context.Context, userID string, purpose entity.OtpPurpose) error {
	if m.failAll {
		return errors.New("store down")
	}
	for _, o := range m.otps {
		if o.UserID == userID && o.Purpose == purpose && !o.IsUsed {
			o.IsUsed = true
		}
	}
	return nil
}

func (m *mockOtpRepository) CleanupExpired(ctx context.Context) (int64, error) {
	if m.failAll {
		return 0, errors.New("store down")
	}
	var kept []*entity.Otp
	var deleted int64
	now := time.Now()
	for _, o := range m.otps {
		if o.IsExpired(now) {
			deleted++
			continue
		}
		kept = append(kept, o)
	}
	m.otps = kept
	return deleted, nil
}

type mockPublisher struct {
	published []any
	err       error
}

func (m *mockPublisher) PublishJSON(ctx context.Context, body any) error {
	if m.err != nil {
		return m.err
	}
	m.published = append(m.published, body)
	return nil
}
