package application

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/arkenlabs/identity-api/internal/domain/entity"
	repo "github.com/arkenlabs/identity-api/internal/domain/repository"
	"github.com/arkenlabs/identity-api/pkg/apperr"
)

const otpCodeLength = 6

// OtpEngine issues and validates one-time codes against the otp store.
type OtpEngine struct {
	Otps   repo.OtpRepository
	Logger *logrus.Logger
}

func NewOtpEngine(otps repo.OtpRepository, logger *logrus.Logger) *OtpEngine {
	return &OtpEngine{Otps: otps, Logger: logger}
}

// GenerateCode draws a uniform random number over [0, 10^6) and zero-pads it
// to six digits. Codes are delivered out-of-band over a separately verified
// channel, so non-cryptographic randomness is an accepted tradeoff here;
// switch to crypto/rand if the delivery channel assumption ever weakens.
func (e *OtpEngine) GenerateCode() string {
	return fmt.Sprintf("%0*d", otpCodeLength, rand.IntN(1_000_000))
}

// Issue invalidates any outstanding codes for (user, purpose) and persists a
// fresh one with a 60 minute window.
func (e *OtpEngine) Issue(ctx context.Context, userID string, purpose entity.OtpPurpose) (*entity.Otp, error) {
	if err := e.Otps.InvalidateAll(ctx, userID, purpose); err != nil {
		return nil, apperr.Internal("invalidate previous otps", err)
	}
	otp := entity.NewOtp(userID, e.GenerateCode(), purpose, time.Now())
	if err := e.Otps.Create(ctx, otp); err != nil {
		return nil, apperr.Internal("store otp", err)
	}
	if e.Logger != nil {
		e.Logger.WithFields(logrus.Fields{"user_id": userID, "purpose": purpose}).Debug("otp issued")
	}
	return otp, nil
}

// Validate checks the presented code against the latest one issued for
// (user, purpose). The rejection ladder is deliberate and ordered:
// no code on file -> NotFound; attempts exhausted -> AuthorizationDenied
// (even when the presented code is correct); expired -> AuthenticationFailed;
// wrong code -> attempt recorded, BadRequest. The returned Otp is not yet
// consumed; callers mark it used.
func (e *OtpEngine) Validate(ctx context.Context, userID, code string, purpose entity.OtpPurpose) (*entity.Otp, error) {
	otp, err := e.Otps.GetLatest(ctx, userID, purpose)
	if err != nil {
		return nil, err
	}
	if otp.IsUsed {
		return nil, apperr.NotFound("no valid otp found")
	}
	if otp.AttemptsExhausted() {
		return nil, apperr.Forbidden("maximum otp attempts reached")
	}
	if otp.IsExpired(time.Now()) {
		return nil, apperr.Unauthenticated("otp has expired")
	}
	if otp.Code != code {
		otp.RegisterFailedAttempt()
		if uerr := e.Otps.Update(ctx, otp); uerr != nil {
			return nil, apperr.Internal("record otp attempt", uerr)
		}
		return nil, apperr.BadRequest("incorrect otp code")
	}
	return otp, nil
}

// MarkUsed consumes a validated code.
func (e *OtpEngine) MarkUsed(ctx context.Context, otp *entity.Otp) error {
	if err := otp.MarkUsed(time.Now()); err != nil {
		return err
	}
	if err := e.Otps.Update(ctx, otp); err != nil {
		return apperr.Internal("consume otp", err)
	}
	return nil
}

// InvalidateAll marks every unused code for (user, purpose) as used.
func (e *OtpEngine) InvalidateAll(ctx context.Context, userID string, purpose entity.OtpPurpose) error {
	if err := e.Otps.InvalidateAll(ctx, userID, purpose); err != nil {
		return apperr.Internal("invalidate otps", err)
	}
	return nil
}

// CleanupExpired deletes codes past their expiry and reports how many were
// removed. Meant to run from a periodic job, not the request path.
func (e *OtpEngine) CleanupExpired(ctx context.Context) (int64, error) {
	n, err := e.Otps.CleanupExpired(ctx)
	if err != nil {
		return 0, apperr.Internal("cleanup expired otps", err)
	}
	if e.Logger != nil && n > 0 {
		e.Logger.WithField("deleted", n).Info("expired otps removed")
	}
	return n, nil
}
