// seed creates the base roles, their permission grants, and an initial admin
// user for local development. Idempotent: role and grant inserts upsert, and
// the admin user is skipped when it already exists.
package main

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	authzrepo "finboard/internal/authz/repository"
	"finboard/internal/config"
	"finboard/internal/db"
	"finboard/internal/security"
	"finboard/internal/server"
	userdomain "finboard/internal/user/domain"
	userrepo "finboard/internal/user/repository"
)

const (
	adminUsername = "admin"
	adminEmail    = "admin@example.com"
	adminPassword = "password123"
)

// roleGrants maps each base role to the permissions it carries. super_admin
// carries none: permission checks bypass it by role name.
var roleGrants = map[string][]string{
	"super_admin": nil,
	"manager":     {server.PermExpensesView, server.PermExpensesManage, server.PermReportsView},
	"viewer":      {server.PermExpensesView, server.PermReportsView},
}

var roleLabels = map[string]string{
	"super_admin": "Administrator",
	"manager":     "Finance Manager",
	"viewer":      "Viewer",
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set; create a .env from .env.example or set DATABASE_URL")
	}

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer conn.Close()

	ctx := context.Background()
	roles := authzrepo.NewPostgresRepository(conn)
	users := userrepo.NewPostgresRepository(conn)

	roleIDs := make(map[string]string, len(roleGrants))
	for name, grants := range roleGrants {
		id, err := roles.EnsureRole(ctx, uuid.NewString(), name, roleLabels[name])
		if err != nil {
			log.Fatalf("ensure role %s: %v", name, err)
		}
		roleIDs[name] = id
		for _, permission := range grants {
			if err := roles.GrantPermission(ctx, id, permission); err != nil {
				log.Fatalf("grant %s to %s: %v", permission, name, err)
			}
		}
	}
	log.Printf("roles ready: %d", len(roleIDs))

	existing, err := users.GetByIdentifier(ctx, adminUsername)
	if err != nil {
		log.Fatalf("admin lookup: %v", err)
	}
	if existing != nil {
		log.Println("seed already applied (admin exists); roles refreshed")
		return
	}

	hasher := security.NewHasher(cfg.BcryptCost)
	passwordHash, err := hasher.Hash([]byte(adminPassword))
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}

	now := time.Now().UTC()
	admin := &userdomain.User{
		ID:           uuid.NewString(),
		Username:     adminUsername,
		Email:        adminEmail,
		PasswordHash: passwordHash,
		FirstName:    "System",
		LastName:     "Administrator",
		Status:       userdomain.UserStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := users.Create(ctx, admin); err != nil {
		log.Fatalf("create admin: %v", err)
	}
	if err := roles.AssignRole(ctx, admin.ID, roleIDs["super_admin"]); err != nil {
		log.Fatalf("assign super_admin: %v", err)
	}
	log.Printf("admin user created (username %q)", adminUsername)
}
