package repository

import (
	"context"

	"github.com/arkenlabs/identity-api/internal/domain/entity"
)

// OtpRepository is the persistence contract for one-time codes.
type OtpRepository interface {
	Create(ctx context.Context, o *entity.Otp) error
	Update(ctx context.Context, o *entity.Otp) error
	// GetLatest returns the most recently issued code for (user, purpose)
	// regardless of validity, or apperr.NotFound.
	GetLatest(ctx context.Context, userID string, purpose entity.OtpPurpose) (*entity.Otp, error)
	// InvalidateAll marks every unused code for (user, purpose) as used.
	InvalidateAll(ctx context.Context, userID string, purpose entity.OtpPurpose) error
	// CleanupExpired deletes codes past their expiry; driven by an external
	// periodic job.
	CleanupExpired(ctx context.Context) (int64, error)
}
