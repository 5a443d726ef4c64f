package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/arkenlabs/identity-api/internal/application"
	"github.com/arkenlabs/identity-api/internal/domain/entity"
	"github.com/arkenlabs/identity-api/pkg/response"
)

type AdminHandler struct {
	Service *application.AdminService
	Logger  *logrus.Logger
}

func NewAdminHandler(service *application.AdminService, logger *logrus.Logger) *AdminHandler {
	return &AdminHandler{Service: service, Logger: logger}
}

type createRoleRequest struct {
	Name        string `json:"name" binding:"required,min=2,max=50"`
	Description string `json:"description" binding:"max=255"`
}

type createPermissionRequest struct {
	Resource    string `json:"resource" binding:"required,min=2,max=50"`
	Action      string `json:"action" binding:"required,min=2,max=50"`
	Description string `json:"description" binding:"max=255"`
}

type grantPermissionRequest struct {
	Role     string `json:"role" binding:"required"`
	Resource string `json:"resource" binding:"required"`
	Action   string `json:"action" binding:"required"`
}

type assignRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

type permissionView struct {
	ID          string `json:"id"`
	Resource    string `json:"resource"`
	Action      string `json:"action"`
	Description string `json:"description,omitempty"`
}

type roleView struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	Permissions []permissionView `json:"permissions"`
	CreatedAt   time.Time        `json:"created_at"`
}

func toPermissionView(p *entity.Permission) permissionView {
	return permissionView{ID: p.ID, Resource: p.Resource, Action: p.Action, Description: p.Description}
}

func toRoleView(r *entity.Role) roleView {
	perms := make([]permissionView, 0, len(r.Permissions))
	for i := range r.Permissions {
		perms = append(perms, toPermissionView(&r.Permissions[i]))
	}
	return roleView{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Permissions: perms,
		CreatedAt:   r.CreatedAt,
	}
}

// ListRoles GET /api/admin/roles
func (h *AdminHandler) ListRoles(c *gin.Context) {
	roles, err := h.Service.ListRoles(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	views := make([]roleView, 0, len(roles))
	for i := range roles {
		views = append(views, toRoleView(&roles[i]))
	}
	resp := response.Success(c, http.StatusOK, views, "roles", nil)
	c.JSON(resp.Status, resp)
}

// CreateRole POST /api/admin/roles
func (h *AdminHandler) CreateRole(c *gin.Context) {
	var req createRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	role, err := h.Service.CreateRole(c.Request.Context(), req.Name, req.Description)
	if err != nil {
		fail(c, err)
		return
	}
	resp := response.Success(c, http.StatusCreated, toRoleView(role), "role created", nil)
	c.JSON(resp.Status, resp)
}

// CreatePermission POST /api/admin/permissions
func (h *AdminHandler) CreatePermission(c *gin.Context) {
	var req createPermissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	perm, err := h.Service.CreatePermission(c.Request.Context(), req.Resource, req.Action, req.Description)
	if err != nil {
		fail(c, err)
		return
	}
	resp := response.Success(c, http.StatusCreated, toPermissionView(perm), "permission created", nil)
	c.JSON(resp.Status, resp)
}

// GrantPermission POST /api/admin/roles/grant
func (h *AdminHandler) GrantPermission(c *gin.Context) {
	var req grantPermissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.Service.GrantPermission(c.Request.Context(), req.Role, req.Resource, req.Action); err != nil {
		fail(c, err)
		return
	}
	resp := response.Success[any](c, http.StatusOK, gin.H{"granted": true}, "permission granted", nil)
	c.JSON(resp.Status, resp)
}

// AssignRole POST /api/admin/users/:id/roles
func (h *AdminHandler) AssignRole(c *gin.Context) {
	userID := c.Param("id")
	var req assignRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.Service.AssignRole(c.Request.Context(), userID, req.Role); err != nil {
		fail(c, err)
		return
	}
	resp := response.Success[any](c, http.StatusOK, gin.H{"assigned": true}, "role assigned", nil)
	c.JSON(resp.Status, resp)
}

// RemoveRole DELETE /api/admin/users/:id/roles/:roleID
func (h *AdminHandler) RemoveRole(c *gin.Context) {
	userID := c.Param("id")
	roleID := c.Param("roleID")
	if err := h.Service.RemoveRole(c.Request.Context(), userID, roleID); err != nil {
		fail(c, err)
		return
	}
	resp := response.Success[any](c, http.StatusOK, gin.H{"removed": true}, "role removed", nil)
	c.JSON(resp.Status, resp)
}
