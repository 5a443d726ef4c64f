package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/arkenlabs/identity-api/pkg/response"
	"github.com/arkenlabs/identity-api/pkg/token"
)

const claimsContextKey = "auth_claims"

// Auth validates the bearer token and stores the decoded claim set in the
// Gin context. The Authorization header wins; the access_token cookie is a
// fallback for browser clients.
func Auth(issuer *token.Issuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c)
		if raw == "" {
			resp := response.Error[any](c, http.StatusUnauthorized, "missing access token", nil)
			c.AbortWithStatusJSON(resp.Status, resp)
			return
		}
		claims, err := issuer.Parse(raw)
		if err != nil {
			resp := response.Error[any](c, http.StatusUnauthorized, "invalid access token", nil)
			c.AbortWithStatusJSON(resp.Status, resp)
			return
		}

		c.Set(claimsContextKey, claims)
		c.Set("userID", claims.Subject)
		c.Set("userEmail", claims.Email)
		c.Next()
	}
}

// ClaimsFrom returns the claim set stored by Auth, if any.
func ClaimsFrom(c *gin.Context) (*token.ClaimSet, bool) {
	v, ok := c.Get(claimsContextKey)
	if !ok {
		return nil, false
	}
	cs, ok := v.(*token.ClaimSet)
	return cs, ok
}

func bearerToken(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); h != "" {
		if parts := strings.SplitN(h, " ", 2); len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	if cookie, err := c.Cookie("access_token"); err == nil && cookie != "" {
		return cookie
	}
	return ""
}
