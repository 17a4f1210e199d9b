package cmd

import (
	"errors"
	"fmt"
	"log"

	"github.com/wiratama/access-management/internal/auth"
	authpg "github.com/wiratama/access-management/internal/auth/postgres"
	"github.com/wiratama/access-management/internal/rbac"
	rbacpg "github.com/wiratama/access-management/internal/rbac/postgres"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with an initial admin account and grants",
	Long:  `Seed roles, the permission catalog and an initial admin user. Safe to re-run; existing rows are kept.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		db, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}

		gormDB, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: db.DB}), &gorm.Config{})
		if err != nil {
			log.Fatalf("failed to init orm: %v", err)
		}

		if clearData {
			for _, table := range []string{"user_roles", "role_permissions", "audit_logs"} {
				if err := gormDB.Exec("DELETE FROM " + table).Error; err != nil {
					log.Fatalf("failed to clear %s: %v", table, err)
				}
			}
			fmt.Println("Cleared assignment tables")
		}

		rbacRepo := rbacpg.NewRepository(gormDB)
		userRepo := authpg.NewRepository(gormDB)

		roles := []*rbac.Role{
			{RoleName: "Administrator", RoleCode: "admin", Description: "full access to every resource"},
			{RoleName: "Regular User", RoleCode: "user", Description: "default role for registered accounts"},
		}
		for _, role := range roles {
			existing, err := rbacRepo.RoleByCode(role.RoleCode)
			if err != nil && !errors.Is(err, rbac.ErrRoleNotFound) {
				log.Fatalf("failed to look up role %s: %v", role.RoleCode, err)
			}
			if existing != nil {
				role.ID = existing.ID
				continue
			}
			if err := rbacRepo.CreateRole(role); err != nil {
				log.Fatalf("failed to seed role %s: %v", role.RoleCode, err)
			}
			fmt.Println("Seeded role:", role.RoleCode)
		}

		permissions := []*rbac.Permission{
			{PermissionName: "View users", PermissionCode: "user:view", ResourceType: "user", ResourceURL: "/api/v1/users"},
			{PermissionName: "Update users", PermissionCode: "user:update", ResourceType: "user", ResourceURL: "/api/v1/users"},
			{PermissionName: "Delete users", PermissionCode: "user:delete", ResourceType: "user", ResourceURL: "/api/v1/users"},
			{PermissionName: "View roles", PermissionCode: "role:view", ResourceType: "role", ResourceURL: "/api/v1/roles"},
			{PermissionName: "Create roles", PermissionCode: "role:create", ResourceType: "role", ResourceURL: "/api/v1/roles"},
			{PermissionName: "Update roles", PermissionCode: "role:update", ResourceType: "role", ResourceURL: "/api/v1/roles"},
			{PermissionName: "Delete roles", PermissionCode: "role:delete", ResourceType: "role", ResourceURL: "/api/v1/roles"},
			{PermissionName: "View permissions", PermissionCode: "permission:view", ResourceType: "permission", ResourceURL: "/api/v1/permissions"},
			{PermissionName: "Create permissions", PermissionCode: "permission:create", ResourceType: "permission", ResourceURL: "/api/v1/permissions"},
			{PermissionName: "Update permissions", PermissionCode: "permission:update", ResourceType: "permission", ResourceURL: "/api/v1/permissions"},
			{PermissionName: "Delete permissions", PermissionCode: "permission:delete", ResourceType: "permission", ResourceURL: "/api/v1/permissions"},
			{PermissionName: "View audit trail", PermissionCode: "audit:view", ResourceType: "audit", ResourceURL: "/api/v1/audit/logs"},
		}
		for _, perm := range permissions {
			existing, err := rbacRepo.PermissionByCode(perm.PermissionCode)
			if err != nil && !errors.Is(err, rbac.ErrPermissionNotFound) {
				log.Fatalf("failed to look up permission %s: %v", perm.PermissionCode, err)
			}
			if existing != nil {
				perm.ID = existing.ID
				continue
			}
			if err := rbacRepo.CreatePermission(perm); err != nil {
				log.Fatalf("failed to seed permission %s: %v", perm.PermissionCode, err)
			}
			fmt.Println("Seeded permission:", perm.PermissionCode)
		}

		// admin role carries the full catalog; user role only sees users.
		adminRole, userRole := roles[0], roles[1]
		for _, perm := range permissions {
			if err := rbacRepo.CreateRolePermission(adminRole.ID, perm.ID); err != nil {
				log.Fatalf("failed to grant %s to admin: %v", perm.PermissionCode, err)
			}
		}
		for _, perm := range permissions {
			if perm.PermissionCode != "user:view" {
				continue
			}
			if err := rbacRepo.CreateRolePermission(userRole.ID, perm.ID); err != nil {
				log.Fatalf("failed to grant %s to user: %v", perm.PermissionCode, err)
			}
		}

		adminUsername := "admin"
		adminUser, err := userRepo.GetByUsername(adminUsername)
		if err != nil && !errors.Is(err, auth.ErrUserNotFound) {
			log.Fatalf("failed to look up admin account: %v", err)
		}
		if adminUser == nil {
			hash, err := bcrypt.GenerateFromPassword([]byte("admin123"), cfg.Security.BcryptCost)
			if err != nil {
				log.Fatalf("failed to hash admin password: %v", err)
			}
			adminUser = &auth.User{
				Username:     adminUsername,
				PasswordHash: string(hash),
				Nickname:     "Administrator",
				Role:         "ADMIN",
			}
			if err := userRepo.Create(adminUser); err != nil {
				log.Fatalf("failed to seed admin account: %v", err)
			}
			fmt.Println("Seeded admin account:", adminUsername)
		}

		exists, err := rbacRepo.UserRoleExists(adminUser.ID, adminRole.ID)
		if err != nil {
			log.Fatalf("failed to check admin assignment: %v", err)
		}
		if !exists {
			if err := rbacRepo.CreateUserRole(adminUser.ID, adminRole.ID); err != nil {
				log.Fatalf("failed to assign admin role: %v", err)
			}
			fmt.Println("Assigned admin role to:", adminUsername)
		}

		fmt.Println("Seeding complete")
	},
}
