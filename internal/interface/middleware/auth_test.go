package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/arkenlabs/identity-api/pkg/authz"
	"github.com/arkenlabs/identity-api/pkg/token"
)

func newTestIssuer(t *testing.T) *token.Issuer {
	t.Helper()
	iss, err := token.NewIssuer("test-secret-key-at-least-32-chars-long", "identity-api", "identity-api-clients", time.Hour)
	if err != nil {
		t.Fatalf("NewIssuer: %v", err)
	}
	return iss
}

func newTestRouter(iss *token.Issuer, policies ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	grp := r.Group("/")
	grp.Use(Auth(iss))
	grp.Use(policies...)
	grp.GET("/protected", func(c *gin.Context) {
		claims, _ := ClaimsFrom(c)
		c.JSON(http.StatusOK, gin.H{"sub": claims.Subject})
	})
	return r
}

func issueToken(t *testing.T, iss *token.Issuer, sub token.Subject) string {
	t.Helper()
	signed, _, err := iss.Issue(sub)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	return signed
}

func TestAuthMissingToken(t *testing.T) {
	r := newTestRouter(newTestIssuer(t))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestAuthBearerHeader(t *testing.T) {
	iss := newTestIssuer(t)
	r := newTestRouter(iss)
	signed := issueToken(t, iss, token.Subject{UserID: "u1", Username: "alice", IsActive: true})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", w.Code, w.Body.String())
	}
}

func TestAuthCookieFallback(t *testing.T) {
	iss := newTestIssuer(t)
	r := newTestRouter(iss)
	signed := issueToken(t, iss, token.Subject{UserID: "u1", Username: "alice"})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: "access_token", Value: signed})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
}

func TestAuthGarbageToken(t *testing.T) {
	r := newTestRouter(newTestIssuer(t))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestRequirePolicy(t *testing.T) {
	iss := newTestIssuer(t)

	tests := []struct {
		name   string
		sub    token.Subject
		policy authz.Policy
		want   int
	}{
		{"admin allowed", token.Subject{UserID: "u1", Roles: []string{"Admin"}}, authz.RequireAdminOnly, http.StatusOK},
		{"super admin allowed on admin gate", token.Subject{UserID: "u1", Roles: []string{"SuperAdmin"}}, authz.RequireAdminOnly, http.StatusOK},
		{"visitor denied", token.Subject{UserID: "u1", Roles: []string{"Visitor"}}, authz.RequireAdminOnly, http.StatusForbidden},
		{"admin denied on super gate", token.Subject{UserID: "u1", Roles: []string{"Admin"}}, authz.RequireSuperAdminOnly, http.StatusForbidden},
		{"verified allowed", token.Subject{UserID: "u1", IsVerified: true}, authz.RequireVerifiedUser, http.StatusOK},
		{"unverified denied", token.Subject{UserID: "u1"}, authz.RequireVerifiedUser, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRouter(iss, RequirePolicy(tt.policy))
			signed := issueToken(t, iss, tt.sub)

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			req.Header.Set("Authorization", "Bearer "+signed)
			r.ServeHTTP(w, req)

			if w.Code != tt.want {
				t.Fatalf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}
}
