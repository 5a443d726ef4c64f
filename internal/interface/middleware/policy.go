package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arkenlabs/identity-api/pkg/authz"
	"github.com/arkenlabs/identity-api/pkg/response"
)

// RequirePolicy gates a route on an authorization policy. It must run after
// Auth; a request with no claim set in context is rejected outright.
func RequirePolicy(p authz.Policy) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := ClaimsFrom(c)
		if !ok {
			resp := response.Error[any](c, http.StatusUnauthorized, "missing access token", nil)
			c.AbortWithStatusJSON(resp.Status, resp)
			return
		}
		if !p.Allows(claims) {
			resp := response.Error[any](c, http.StatusForbidden, "insufficient privileges", nil)
			c.AbortWithStatusJSON(resp.Status, resp)
			return
		}
		c.Next()
	}
}
