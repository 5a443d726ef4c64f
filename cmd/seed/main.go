package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/arkenlabs/identity-api/config"
	"github.com/arkenlabs/identity-api/internal/domain/entity"
	pginfra "github.com/arkenlabs/identity-api/internal/infrastructure/postgres"
	"github.com/arkenlabs/identity-api/pkg/credentials"
)

// Seeds the base roles, permissions and the initial super admin account.
// Everything runs in one transaction so a partial seed never persists.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	if cfg.SuperAdminPassword == "" {
		log.Fatal("SUPERADMIN_PASSWORD is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	tx, err := pool.Begin(ctx)
	if err != nil {
		log.Fatalf("begin tx: %v", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// Base roles
	roleIDs := map[string]string{}
	for _, r := range []struct{ name, desc string }{
		{entity.RoleSuperAdmin, "Full control over the system"},
		{entity.RoleAdmin, "Operational administration"},
		{entity.RoleVisitor, "Default role for new accounts"},
	} {
		var id string
		err := tx.QueryRow(ctx, `
			INSERT INTO roles (name, description) VALUES ($1, $2)
			ON CONFLICT (name) DO UPDATE SET updated_at = now()
			RETURNING id
		`, r.name, r.desc).Scan(&id)
		if err != nil {
			log.Fatalf("upsert role %s: %v", r.name, err)
		}
		roleIDs[r.name] = id
	}

	// Base permissions
	permIDs := map[string]string{}
	for _, p := range []struct{ resource, action string }{
		{"users", "read"}, {"users", "write"},
		{"roles", "read"}, {"roles", "write"},
		{"audit", "read"},
	} {
		var id string
		err := tx.QueryRow(ctx, `
			INSERT INTO permissions (resource, action) VALUES ($1, $2)
			ON CONFLICT (resource, action) DO UPDATE SET resource = EXCLUDED.resource
			RETURNING id
		`, p.resource, p.action).Scan(&id)
		if err != nil {
			log.Fatalf("upsert permission %s:%s: %v", p.resource, p.action, err)
		}
		permIDs[p.resource+":"+p.action] = id
	}

	grants := map[string][]string{
		entity.RoleSuperAdmin: {"users:read", "users:write", "roles:read", "roles:write", "audit:read"},
		entity.RoleAdmin:      {"users:read", "users:write", "roles:read"},
	}
	for role, keys := range grants {
		for _, key := range keys {
			if _, err := tx.Exec(ctx, `
				INSERT INTO role_permissions (role_id, permission_id) VALUES ($1, $2)
				ON CONFLICT (role_id, permission_id) DO NOTHING
			`, roleIDs[role], permIDs[key]); err != nil {
				log.Fatalf("grant %s to %s: %v", key, role, err)
			}
		}
	}

	// Super admin account
	hash, err := credentials.NewHasher().Hash(cfg.SuperAdminPassword)
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}
	var userID string
	err = tx.QueryRow(ctx, `
		INSERT INTO users (email, username, password_hash, auth_provider, is_verified, is_active)
		VALUES ($1, $2, $3, 'local', TRUE, TRUE)
		ON CONFLICT (email) DO UPDATE SET updated_at = now()
		RETURNING id
	`, entity.NormalizeEmail(cfg.SuperAdminEmail), cfg.SuperAdminUsername, hash).Scan(&userID)
	if err != nil {
		log.Fatalf("upsert super admin: %v", err)
	}
	if _, err := tx.Exec(ctx, `
		INSERT INTO user_roles (user_id, role_id) VALUES ($1, $2)
		ON CONFLICT (user_id, role_id) DO NOTHING
	`, userID, roleIDs[entity.RoleSuperAdmin]); err != nil {
		log.Fatalf("assign super admin role: %v", err)
	}

	if err := tx.Commit(ctx); err != nil {
		log.Fatalf("commit: %v", err)
	}
	fmt.Printf("seeded super admin: id=%s email=%s\n", userID, cfg.SuperAdminEmail)
}
