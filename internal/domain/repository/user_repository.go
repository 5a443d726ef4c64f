package repository

import (
	"context"

	"github.com/arkenlabs/identity-api/internal/domain/entity"
)

// UserRepository is the persistence contract for the User aggregate. Lookups
// that feed token issuance load the role graph (roles with their permissions)
// alongside the user. Implementations return apperr.NotFound when no row
// matches.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	Update(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	// GetByEmailWithRoles loads a user and its role/permission graph by
	// normalized email.
	GetByEmailWithRoles(ctx context.Context, email string) (*entity.User, error)
	// GetByCredentials looks a user up by email or username, without any
	// status pre-filtering. The email comparison is case-insensitive; the
	// username one is exact.
	GetByCredentials(ctx context.Context, emailOrUsername string) (*entity.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	// AssignRole inserts a (user, role) association; the unique constraint on
	// the pair backs the duplicate-assignment invariant under concurrency.
	AssignRole(ctx context.Context, userID, roleID string) error
	RemoveRole(ctx context.Context, userID, roleID string) error
}
