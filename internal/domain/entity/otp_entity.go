package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/arkenlabs/identity-api/pkg/apperr"
)

// OtpPurpose binds a code to the flow it was issued for.
type OtpPurpose string

const (
	PurposeEmailVerification OtpPurpose = "email_verification"
	PurposePasswordReset     OtpPurpose = "password_reset"
	PurposeTwoFactor         OtpPurpose = "two_factor"
	PurposeAccountRecovery   OtpPurpose = "account_recovery"
)

const (
	// OtpTTL is the validity window of a freshly issued code.
	OtpTTL = 60 * time.Minute
	// OtpMaxAttempts caps failed verification attempts per code.
	OtpMaxAttempts = 3
)

// Otp is a single-use numeric code bound to a user and purpose.
type Otp struct {
	ID           string
	UserID       string
	Code         string
	Purpose      OtpPurpose
	ExpiresAt    time.Time
	AttemptCount int
	IsUsed       bool
	UsedAt       *time.Time
	CreatedAt    time.Time
}

// NewOtp creates a code valid for OtpTTL from now.
func NewOtp(userID, code string, purpose OtpPurpose, now time.Time) *Otp {
	return &Otp{
		ID:        uuid.NewString(),
		UserID:    userID,
		Code:      code,
		Purpose:   purpose,
		ExpiresAt: now.Add(OtpTTL),
		CreatedAt: now,
	}
}

// IsExpired reports whether the validity window has closed.
func (o *Otp) IsExpired(now time.Time) bool {
	return now.After(o.ExpiresAt)
}

// AttemptsExhausted reports whether the failed-attempt cap is reached.
func (o *Otp) AttemptsExhausted() bool {
	return o.AttemptCount >= OtpMaxAttempts
}

// IsValid holds iff the code is unused, unexpired and under the attempt cap.
func (o *Otp) IsValid(now time.Time) bool {
	return !o.IsUsed && !o.IsExpired(now) && !o.AttemptsExhausted()
}

// RegisterFailedAttempt increments the attempt counter.
func (o *Otp) RegisterFailedAttempt() {
	o.AttemptCount++
}

// MarkUsed consumes the code exactly once.
func (o *Otp) MarkUsed(now time.Time) error {
	if o.IsUsed {
		return apperr.Conflict("otp already used")
	}
	o.IsUsed = true
	o.UsedAt = &now
	return nil
}
