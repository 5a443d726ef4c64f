package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/arkenlabs/identity-api/internal/container"
	handlers "github.com/arkenlabs/identity-api/internal/interface/http"
	"github.com/arkenlabs/identity-api/internal/interface/middleware"
	"github.com/arkenlabs/identity-api/pkg/authz"
	"github.com/arkenlabs/identity-api/pkg/token"
)

type AdminModule struct {
	Handler *handlers.AdminHandler
	Issuer  *token.Issuer
}

func NewAdminModule(h *handlers.AdminHandler, issuer *token.Issuer) *AdminModule {
	return &AdminModule{Handler: h, Issuer: issuer}
}

func (m *AdminModule) Register(rg *gin.RouterGroup) {
	admin := rg.Group("/admin")
	admin.Use(middleware.Auth(m.Issuer))
	admin.Use(middleware.RequirePolicy(authz.RequireAdminOnly))
	admin.Use(middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByUserID(), middleware.AllowPrivateIP()))
	{
		admin.GET("/roles", m.Handler.ListRoles)
	}

	// Role and permission management is reserved for super admins.
	super := admin.Group("/")
	super.Use(middleware.RequirePolicy(authz.RequireSuperAdminOnly))
	{
		super.POST("/roles", m.Handler.CreateRole)
		super.POST("/roles/grant", m.Handler.GrantPermission)
		super.POST("/permissions", m.Handler.CreatePermission)
		super.POST("/users/:id/roles", m.Handler.AssignRole)
		super.DELETE("/users/:id/roles/:roleID", m.Handler.RemoveRole)
	}
}
