package router

import (
	"github.com/arkenlabs/identity-api/internal/application"
	"github.com/arkenlabs/identity-api/internal/container"
	pginfra "github.com/arkenlabs/identity-api/internal/infrastructure/postgres"
	handlers "github.com/arkenlabs/identity-api/internal/interface/http"
	"github.com/arkenlabs/identity-api/internal/router/modules"
	"github.com/arkenlabs/identity-api/pkg/credentials"
)

type AuthModuleDeps struct {
	AuthService  *application.AuthService
	AdminService *application.AdminService
	AuthHandler  *handlers.AuthHandler
	AdminHandler *handlers.AdminHandler
}

func buildAuthDeps() AuthModuleDeps {
	pool := container.GetPGPool()
	logger := container.GetLogger()
	cfg := container.GetConfig()

	users := pginfra.NewUserRepository(pool)
	roles := pginfra.NewRoleRepository(pool)
	otps := pginfra.NewOtpRepository(pool)

	otpEngine := application.NewOtpEngine(otps, logger)
	audit := application.NewAuditRecorder(pool, container.GetES(), cfg.ESAuditIndex, logger)

	// Guard against a typed-nil publisher leaking into the interface.
	var pub application.EmailPublisher
	if rp := container.GetRabbitPub(); rp != nil {
		pub = rp
	}

	authService := application.NewAuthService(
		users,
		roles,
		otpEngine,
		credentials.NewHasher(),
		container.GetIssuer(),
		pub,
		cfg.MailSendEnabled,
		audit,
		logger,
	)
	adminService := application.NewAdminService(users, roles, audit, logger)

	return AuthModuleDeps{
		AuthService:  authService,
		AdminService: adminService,
		AuthHandler:  handlers.NewAuthHandler(authService, logger),
		AdminHandler: handlers.NewAdminHandler(adminService, logger),
	}
}

// InitModules initializes all application modules and registers them with the router registry
// This function should be called once during application startup to wire up all modules
func InitModules(r *Registry) {
	deps := buildAuthDeps()
	issuer := container.GetIssuer()

	r.Add(modules.NewAuthModule(deps.AuthHandler, issuer))
	r.Add(modules.NewAdminModule(deps.AdminHandler, issuer))
	r.Add(modules.NewHealthModule())
}
