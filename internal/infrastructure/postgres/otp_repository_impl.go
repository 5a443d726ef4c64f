package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/arkenlabs/identity-api/internal/domain/entity"
	"github.com/arkenlabs/identity-api/internal/domain/repository"
	"github.com/arkenlabs/identity-api/pkg/apperr"
)

type OtpRepository struct {
	pool *pgxpool.Pool
}

func NewOtpRepository(pool *pgxpool.Pool) *OtpRepository {
	return &OtpRepository{pool: pool}
}

func (r *OtpRepository) Create(ctx context.Context, o *entity.Otp) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO otps (id, user_id, code, purpose, expires_at, attempt_count, is_used, used_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, o.ID, o.UserID, o.Code, o.Purpose, o.ExpiresAt, o.AttemptCount, o.IsUsed, o.UsedAt, o.CreatedAt)
	return err
}

func (r *OtpRepository) Update(ctx context.Context, o *entity.Otp) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE otps SET attempt_count = $1, is_used = $2, used_at = $3 WHERE id = $4
	`, o.AttemptCount, o.IsUsed, o.UsedAt, o.ID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return apperr.NotFound("otp not found")
	}
	return nil
}

func (r *OtpRepository) GetLatest(ctx context.Context, userID string, purpose entity.OtpPurpose) (*entity.Otp, error) {
	o := &entity.Otp{}
	err := r.pool.QueryRow(ctx, `
		SELECT id, user_id, code, purpose, expires_at, attempt_count, is_used, used_at, created_at
		FROM otps
		WHERE user_id = $1 AND purpose = $2
		ORDER BY created_at DESC
		LIMIT 1
	`, userID, purpose).Scan(&o.ID, &o.UserID, &o.Code, &o.Purpose, &o.ExpiresAt,
		&o.AttemptCount, &o.IsUsed, &o.UsedAt, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("no otp found")
		}
		return nil, err
	}
	return o, nil
}

func (r *OtpRepository) InvalidateAll(ctx context.Context, userID string, purpose entity.OtpPurpose) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE otps SET is_used = TRUE, used_at = $1
		WHERE user_id = $2 AND purpose = $3 AND is_used = FALSE
	`, time.Now(), userID, purpose)
	return err
}

func (r *OtpRepository) CleanupExpired(ctx context.Context) (int64, error) {
	res, err := r.pool.Exec(ctx, `DELETE FROM otps WHERE expires_at < $1`, time.Now())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected(), nil
}

var _ repository.OtpRepository = (*OtpRepository)(nil)
