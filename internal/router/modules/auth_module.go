package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/arkenlabs/identity-api/internal/container"
	handlers "github.com/arkenlabs/identity-api/internal/interface/http"
	"github.com/arkenlabs/identity-api/internal/interface/middleware"
	"github.com/arkenlabs/identity-api/pkg/token"
)

type AuthModule struct {
	Handler *handlers.AuthHandler
	Issuer  *token.Issuer
}

func NewAuthModule(h *handlers.AuthHandler, issuer *token.Issuer) *AuthModule {
	return &AuthModule{Handler: h, Issuer: issuer}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	// Public endpoints with IP-based rate limits
	signUpLimiter := middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyByIPAndPath(), nil)
	loginLimiter := middleware.RateLimit(container.GetRedis(), 20, time.Minute, middleware.KeyByIPAndPath(), nil)
	otpLimiter := middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyByIPAndPath(), nil)
	resendLimiter := middleware.RateLimit(container.GetRedis(), 3, time.Minute, middleware.KeyByIPAndPath(), nil)

	rg.POST("/auth/signup", signUpLimiter, m.Handler.SignUp)
	rg.POST("/auth/login", loginLimiter, m.Handler.Login)
	rg.POST("/auth/admin/login", loginLimiter, m.Handler.AdminLogin)
	rg.POST("/auth/verify-otp", otpLimiter, m.Handler.VerifyOtp)
	rg.POST("/auth/verify/resend", resendLimiter, m.Handler.ResendOtp)

	// Protected endpoints with user-based rate limit
	auth := rg.Group("/")
	auth.Use(middleware.Auth(m.Issuer))
	auth.Use(middleware.RateLimit(container.GetRedis(), 60, time.Minute, middleware.KeyByUserID(), nil))
	{
		auth.GET("/profile", m.Handler.Profile)
		auth.POST("/auth/logout", m.Handler.Logout)
	}
}
