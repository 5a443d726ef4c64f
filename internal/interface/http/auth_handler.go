package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/arkenlabs/identity-api/internal/application"
	"github.com/arkenlabs/identity-api/internal/domain/entity"
	"github.com/arkenlabs/identity-api/internal/interface/middleware"
	"github.com/arkenlabs/identity-api/pkg/apperr"
	"github.com/arkenlabs/identity-api/pkg/response"
	"github.com/arkenlabs/identity-api/pkg/validation"
)

type AuthHandler struct {
	Service *application.AuthService
	Logger  *logrus.Logger
}

func NewAuthHandler(service *application.AuthService, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{Service: service, Logger: logger}
}

type signUpRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Username string `json:"username" binding:"required,min=3,max=50"`
	Password string `json:"password" binding:"required,pwd"`
}

type loginRequest struct {
	// Identifier accepts email or username.
	Identifier string `json:"identifier" binding:"required"`
	Password   string `json:"password" binding:"required"`
}

type adminLoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type verifyOtpRequest struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code" binding:"required,len=6,numeric"`
}

type resendOtpRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type userView struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	Username    string     `json:"username"`
	Provider    string     `json:"auth_provider"`
	IsVerified  bool       `json:"is_verified"`
	IsActive    bool       `json:"is_active"`
	IsLoggedIn  bool       `json:"is_logged_in"`
	Roles       []string   `json:"roles"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

type authView struct {
	User                 userView   `json:"user"`
	AccessToken          string     `json:"access_token,omitempty"`
	ExpiresAt            *time.Time `json:"expires_at,omitempty"`
	VerificationRequired bool       `json:"verification_required,omitempty"`
}

func toUserView(u *entity.User) userView {
	return userView{
		ID:          u.ID,
		Email:       u.Email,
		Username:    u.Username,
		Provider:    string(u.AuthProvider),
		IsVerified:  u.IsVerified,
		IsActive:    u.IsActive,
		IsLoggedIn:  u.IsLoggedIn,
		Roles:       u.RoleNames(),
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
	}
}

func toAuthView(res *application.AuthResult) authView {
	v := authView{
		User:                 toUserView(res.User),
		AccessToken:          res.Token,
		VerificationRequired: res.VerificationRequired,
	}
	if !res.ExpiresAt.IsZero() {
		exp := res.ExpiresAt
		v.ExpiresAt = &exp
	}
	return v
}

// fail maps a service error onto the response envelope. The message comes
// from the error itself so the boundary never invents wording.
func fail(c *gin.Context, err error) {
	status := apperr.Status(err)
	msg := "internal server error"
	var ae *apperr.Error
	if errors.As(err, &ae) && status != http.StatusInternalServerError {
		msg = ae.Message
	}
	resp := response.Error[any](c, status, msg, nil)
	c.JSON(resp.Status, resp)
}

func badRequest(c *gin.Context, err error) {
	resp := response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
	c.JSON(resp.Status, resp)
}

// SignUp POST /api/auth/signup
func (h *AuthHandler) SignUp(c *gin.Context) {
	var req signUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	res, err := h.Service.PublicSignUp(c.Request.Context(), req.Email, req.Username, req.Password)
	if err != nil {
		fail(c, err)
		return
	}
	resp := response.Success(c, http.StatusCreated, toAuthView(res), "account created, verification code sent", nil)
	c.JSON(resp.Status, resp)
}

// Login POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	res, err := h.Service.PublicLogin(c.Request.Context(), req.Identifier, req.Password)
	if err != nil {
		fail(c, err)
		return
	}
	resp := response.Success(c, http.StatusOK, toAuthView(res), "login successful", nil)
	c.JSON(resp.Status, resp)
}

// AdminLogin POST /api/auth/admin/login
func (h *AuthHandler) AdminLogin(c *gin.Context) {
	var req adminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	res, err := h.Service.AdminLogin(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		fail(c, err)
		return
	}
	resp := response.Success(c, http.StatusOK, toAuthView(res), "login successful", nil)
	c.JSON(resp.Status, resp)
}

// VerifyOtp POST /api/auth/verify-otp
func (h *AuthHandler) VerifyOtp(c *gin.Context) {
	var req verifyOtpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.Service.VerifyEmailOtp(c.Request.Context(), req.Email, req.Code); err != nil {
		fail(c, err)
		return
	}
	resp := response.Success[any](c, http.StatusOK, gin.H{"verified": true}, "email verified", nil)
	c.JSON(resp.Status, resp)
}

// ResendOtp POST /api/auth/resend-otp
func (h *AuthHandler) ResendOtp(c *gin.Context) {
	var req resendOtpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.Service.ResendVerificationOtp(c.Request.Context(), req.Email); err != nil {
		fail(c, err)
		return
	}
	resp := response.Success[any](c, http.StatusOK, gin.H{"sent": true}, "verification code sent", nil)
	c.JSON(resp.Status, resp)
}

// Logout POST /api/auth/logout (auth required)
func (h *AuthHandler) Logout(c *gin.Context) {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		resp := response.Error[any](c, http.StatusUnauthorized, "unauthorized", nil)
		c.JSON(resp.Status, resp)
		return
	}
	if err := h.Service.Logout(c.Request.Context(), claims.Subject); err != nil {
		fail(c, err)
		return
	}
	resp := response.Success[any](c, http.StatusOK, gin.H{"logged_out": true}, "logout successful", nil)
	c.JSON(resp.Status, resp)
}

// Profile GET /api/auth/me (auth required)
func (h *AuthHandler) Profile(c *gin.Context) {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		resp := response.Error[any](c, http.StatusUnauthorized, "unauthorized", nil)
		c.JSON(resp.Status, resp)
		return
	}
	u, err := h.Service.GetProfile(c.Request.Context(), claims.Subject)
	if err != nil {
		fail(c, err)
		return
	}
	resp := response.Success(c, http.StatusOK, toUserView(u), "profile", nil)
	c.JSON(resp.Status, resp)
}
