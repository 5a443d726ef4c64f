package application

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/arkenlabs/identity-api/internal/domain/entity"
	repo "github.com/arkenlabs/identity-api/internal/domain/repository"
	"github.com/arkenlabs/identity-api/pkg/apperr"
	"github.com/arkenlabs/identity-api/pkg/credentials"
	"github.com/arkenlabs/identity-api/pkg/mailer"
	"github.com/arkenlabs/identity-api/pkg/token"
)

// EmailPublisher enqueues email jobs for the worker; satisfied by
// helpers.RabbitPublisher.
type EmailPublisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// AuthService orchestrates login, signup and verification flows. Every step
// is fail-fast: the first violated invariant aborts the use-case with a typed
// error and no partial state is applied.
type AuthService struct {
	Users       repo.UserRepository
	Roles       repo.RoleRepository
	Otp         *OtpEngine
	Hasher      *credentials.Hasher
	Tokens      *token.Issuer
	Pub         EmailPublisher
	MailEnabled bool
	Audit       *AuditRecorder
	Logger      *logrus.Logger
}

func NewAuthService(users repo.UserRepository, roles repo.RoleRepository, otp *OtpEngine, hasher *credentials.Hasher, tokens *token.Issuer, pub EmailPublisher, mailEnabled bool, audit *AuditRecorder, logger *logrus.Logger) *AuthService {
	return &AuthService{
		Users:       users,
		Roles:       roles,
		Otp:         otp,
		Hasher:      hasher,
		Tokens:      tokens,
		Pub:         pub,
		MailEnabled: mailEnabled,
		Audit:       audit,
		Logger:      logger,
	}
}

// AuthResult is returned by the login and signup flows.
type AuthResult struct {
	User                 *entity.User
	Token                string
	ExpiresAt            time.Time
	VerificationRequired bool
}

func (s *AuthService) issueFor(u *entity.User) (string, time.Time, error) {
	return s.Tokens.Issue(token.Subject{
		UserID:      u.ID,
		Email:       u.Email,
		Username:    u.Username,
		Provider:    string(u.AuthProvider),
		Roles:       u.RoleNames(),
		Permissions: entity.PermissionKeys(u.Roles),
		IsVerified:  u.IsVerified,
		IsActive:    u.IsActive,
		IsLoggedIn:  u.IsLoggedIn,
	})
}

func (s *AuthService) audit(ctx context.Context, ev AuditEvent, err error) {
	if err != nil {
		ev.Outcome = apperr.KindOf(err).String()
	} else {
		ev.Outcome = "ok"
	}
	s.Audit.Record(ctx, ev)
}

// AdminLogin authenticates an administrator. Valid credentials without an
// Admin or SuperAdmin role are an authentication failure (401), not an
// authorization one.
func (s *AuthService) AdminLogin(ctx context.Context, email, password string) (res *AuthResult, err error) {
	email = entity.NormalizeEmail(email)
	defer func() { s.audit(ctx, AuditEvent{Email: email, Action: "admin_login"}, err) }()

	u, err := s.Users.GetByEmailWithRoles(ctx, email)
	if err != nil {
		return nil, err
	}
	if !s.Hasher.Verify(password, u.PasswordHash) {
		return nil, apperr.BadRequest("incorrect password")
	}
	if !u.HasAdminRole() {
		return nil, apperr.Unauthenticated("admin privileges required")
	}
	if err = u.RecordLogin(time.Now()); err != nil {
		return nil, err
	}
	signed, exp, err := s.issueFor(u)
	if err != nil {
		return nil, apperr.Internal("issue token", err)
	}
	if err = s.Users.Update(ctx, u); err != nil {
		return nil, apperr.Internal("persist login state", err)
	}
	return &AuthResult{User: u, Token: signed, ExpiresAt: exp}, nil
}

// PublicLogin authenticates by email or username. The password is verified
// before any account-status checks so that a wrong password and an inactive
// account are not distinguishable by evaluation order; the response kinds
// still differ, which is a documented tradeoff of this flow.
func (s *AuthService) PublicLogin(ctx context.Context, identifier, password string) (res *AuthResult, err error) {
	defer func() { s.audit(ctx, AuditEvent{Email: identifier, Action: "public_login"}, err) }()

	u, err := s.Users.GetByCredentials(ctx, identifier)
	if err != nil {
		return nil, err
	}
	if !s.Hasher.Verify(password, u.PasswordHash) {
		return nil, apperr.BadRequest("incorrect password")
	}
	if !u.IsActive {
		return nil, apperr.Forbidden("account is inactive")
	}
	if !u.IsVerified {
		return nil, apperr.Forbidden("account is not verified")
	}
	if err = u.RecordLogin(time.Now()); err != nil {
		return nil, err
	}
	signed, exp, err := s.issueFor(u)
	if err != nil {
		return nil, apperr.Internal("issue token", err)
	}
	if err = s.Users.Update(ctx, u); err != nil {
		return nil, apperr.Internal("persist login state", err)
	}
	return &AuthResult{User: u, Token: signed, ExpiresAt: exp}, nil
}

// PublicSignUp registers a local account. The new user gets the default
// Visitor role and a usable token straight away; email verification is
// deferred and flagged via VerificationRequired.
func (s *AuthService) PublicSignUp(ctx context.Context, email, username, password string) (res *AuthResult, err error) {
	email = entity.NormalizeEmail(email)
	defer func() { s.audit(ctx, AuditEvent{Email: email, Action: "signup"}, err) }()

	emailTaken, err := s.Users.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, apperr.Internal("check email uniqueness", err)
	}
	usernameTaken, err := s.Users.ExistsByUsername(ctx, username)
	if err != nil {
		return nil, apperr.Internal("check username uniqueness", err)
	}
	if emailTaken || usernameTaken {
		return nil, apperr.Conflict("email or username already in use")
	}

	hash, err := s.Hasher.Hash(password)
	if err != nil {
		return nil, apperr.Internal("hash password", err)
	}
	u, err := entity.NewLocalUser(email, username, hash)
	if err != nil {
		return nil, err
	}
	if err = s.Users.Create(ctx, u); err != nil {
		return nil, apperr.Internal("create user", err)
	}

	visitor, err := s.Roles.GetRoleByName(ctx, entity.RoleVisitor)
	if err != nil {
		return nil, err
	}
	if err = s.Users.AssignRole(ctx, u.ID, visitor.ID); err != nil {
		return nil, err
	}

	// Reload with the role graph so the token reflects the Visitor grant.
	u, err = s.Users.GetByEmailWithRoles(ctx, email)
	if err != nil {
		return nil, err
	}
	signed, exp, err := s.issueFor(u)
	if err != nil {
		return nil, apperr.Internal("issue token", err)
	}

	if err = s.sendVerificationOtp(ctx, u); err != nil {
		return nil, err
	}
	return &AuthResult{User: u, Token: signed, ExpiresAt: exp, VerificationRequired: true}, nil
}

// VerifyEmailOtp consumes a verification code and marks the account verified.
// Already-verified accounts are rejected before the otp store is consulted.
func (s *AuthService) VerifyEmailOtp(ctx context.Context, email, code string) (err error) {
	email = entity.NormalizeEmail(email)
	defer func() { s.audit(ctx, AuditEvent{Email: email, Action: "verify_otp"}, err) }()

	u, err := s.Users.GetByEmailWithRoles(ctx, email)
	if err != nil {
		return err
	}
	if u.IsVerified {
		return apperr.Conflict("account is already verified")
	}
	otp, err := s.Otp.Validate(ctx, u.ID, code, entity.PurposeEmailVerification)
	if err != nil {
		return err
	}
	if err = s.Otp.MarkUsed(ctx, otp); err != nil {
		return err
	}
	if err = u.MarkVerified(); err != nil {
		return err
	}
	if err = s.Otp.InvalidateAll(ctx, u.ID, entity.PurposeEmailVerification); err != nil {
		return err
	}
	if err = s.Users.Update(ctx, u); err != nil {
		return apperr.Internal("persist verification", err)
	}
	return nil
}

// ResendVerificationOtp re-issues the email verification code, superseding
// any outstanding ones.
func (s *AuthService) ResendVerificationOtp(ctx context.Context, email string) (err error) {
	email = entity.NormalizeEmail(email)
	defer func() { s.audit(ctx, AuditEvent{Email: email, Action: "resend_otp"}, err) }()

	u, err := s.Users.GetByEmailWithRoles(ctx, email)
	if err != nil {
		return err
	}
	if u.IsVerified {
		return apperr.Conflict("account is already verified")
	}
	return s.sendVerificationOtp(ctx, u)
}

func (s *AuthService) sendVerificationOtp(ctx context.Context, u *entity.User) error {
	otp, err := s.Otp.Issue(ctx, u.ID, entity.PurposeEmailVerification)
	if err != nil {
		return err
	}
	if s.Pub == nil || !s.MailEnabled {
		return nil
	}
	job := mailer.EmailJob{
		To:       u.Email,
		Subject:  "Verify your email",
		Text:     fmt.Sprintf("Your verification code is %s. It expires in %d minutes.", otp.Code, int(entity.OtpTTL.Minutes())),
		Template: "otp_verification",
		Data: map[string]any{
			"Username":       u.Username,
			"Code":           otp.Code,
			"ExpiresMinutes": int(entity.OtpTTL.Minutes()),
		},
	}
	if perr := s.Pub.PublishJSON(ctx, job); perr != nil && s.Logger != nil {
		// Delivery is best-effort; the resend endpoint covers lost emails.
		s.Logger.WithError(perr).WithField("user_id", u.ID).Warn("enqueue verification email failed")
	}
	return nil
}

// Logout clears login state for the token subject.
func (s *AuthService) Logout(ctx context.Context, userID string) error {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	u.RecordLogout()
	if err := s.Users.Update(ctx, u); err != nil {
		return apperr.Internal("persist logout", err)
	}
	return nil
}

// GetProfile loads the token subject's account.
func (s *AuthService) GetProfile(ctx context.Context, userID string) (*entity.User, error) {
	return s.Users.GetByID(ctx, userID)
}
