// Package token issues and validates signed access tokens.
package token

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/arkenlabs/identity-api/pkg/apperr"
)

// Subject is the snapshot of a user handed to Issue. Permissions are
// "resource:action" keys already flattened across the user's roles.
type Subject struct {
	UserID      string
	Email       string
	Username    string
	Provider    string
	Roles       []string
	Permissions []string
	IsVerified  bool
	IsActive    bool
	IsLoggedIn  bool
}

// accessClaims is the wire shape of an issued token. Permissions travel as a
// single claim holding a JSON-array string, so claim count stays constant no
// matter how many permissions a user accumulates.
type accessClaims struct {
	Username     string   `json:"username"`
	Email        string   `json:"email,omitempty"`
	AuthProvider string   `json:"auth_provider"`
	Roles        []string `json:"roles"`
	Permissions  string   `json:"permissions"`
	IsVerified   bool     `json:"is_verified"`
	IsActive     bool     `json:"is_active"`
	IsLoggedIn   bool     `json:"is_logged_in"`
	jwt.RegisteredClaims
}

// Issuer signs and validates HS256 access tokens. Secret, issuer and audience
// are process-wide and read-only after construction.
type Issuer struct {
	secret   []byte
	issuer   string
	audience string
	ttl      time.Duration
}

// NewIssuer fails when the secret is empty; callers treat that as a fatal
// startup error rather than deferring to first use.
func NewIssuer(secret, issuer, audience string, ttl time.Duration) (*Issuer, error) {
	if secret == "" {
		return nil, errors.New("token: signing secret is required")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Issuer{secret: []byte(secret), issuer: issuer, audience: audience, ttl: ttl}, nil
}

// DefaultTTL applies when no token TTL is configured.
const DefaultTTL = 24 * time.Hour

// Issue mints a signed token embedding the subject's roles, flattened
// permissions and status flags.
func (i *Issuer) Issue(sub Subject) (string, time.Time, error) {
	perms, err := json.Marshal(sub.Permissions)
	if err != nil {
		return "", time.Time{}, err
	}
	now := time.Now()
	exp := now.Add(i.ttl)
	claims := &accessClaims{
		Username:     sub.Username,
		Email:        sub.Email,
		AuthProvider: sub.Provider,
		Roles:        sub.Roles,
		Permissions:  string(perms),
		IsVerified:   sub.IsVerified,
		IsActive:     sub.IsActive,
		IsLoggedIn:   sub.IsLoggedIn,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub.UserID,
			ID:        uuid.NewString(),
			Issuer:    i.issuer,
			Audience:  jwt.ClaimStrings{i.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(i.secret)
	return signed, exp, err
}

// Parse validates signature, issuer, audience and lifetime (zero clock-skew
// leeway) and materializes the typed claim set. All failures surface as
// AuthenticationFailed so the boundary maps them to 401.
func (i *Issuer) Parse(tokenStr string) (*ClaimSet, error) {
	claims := &accessClaims{}
	tkn, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return i.secret, nil
	}, jwt.WithIssuer(i.issuer), jwt.WithAudience(i.audience), jwt.WithExpirationRequired())
	if err != nil {
		return nil, apperr.Unauthenticated("invalid token")
	}
	if !tkn.Valid {
		return nil, apperr.Unauthenticated("invalid token")
	}

	var perms []string
	if claims.Permissions != "" {
		if err := json.Unmarshal([]byte(claims.Permissions), &perms); err != nil {
			return nil, apperr.Unauthenticated("invalid token")
		}
	}
	return &ClaimSet{
		Subject:     claims.Subject,
		Email:       claims.Email,
		Username:    claims.Username,
		Provider:    claims.AuthProvider,
		TokenID:     claims.ID,
		Roles:       claims.Roles,
		Permissions: perms,
		IsVerified:  claims.IsVerified,
		IsActive:    claims.IsActive,
		IsLoggedIn:  claims.IsLoggedIn,
	}, nil
}

// TTL exposes the configured token lifetime.
func (i *Issuer) TTL() time.Duration { return i.ttl }
