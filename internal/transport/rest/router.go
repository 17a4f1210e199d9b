package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
	"github.com/wiratama/access-management/internal/audit"
	"github.com/wiratama/access-management/internal/auth"
	"github.com/wiratama/access-management/internal/rbac"
	"github.com/wiratama/access-management/internal/transport/middleware"
	"github.com/wiratama/access-management/internal/transport/swagger"
	"github.com/wiratama/access-management/internal/user"
)

// RegisterAllRoutes wires the full route table. Each protected operation
// declares its Requirement here, at registration time; the gate consults
// nothing else at runtime.
func RegisterAllRoutes(
	router *chi.Mux,
	db *sql.DB,
	authHandler *auth.Handler,
	userHandler *user.Handler,
	rbacHandler *rbac.Handler,
	auditHandler *audit.Handler,
	auditService *audit.Service,
	gate *rbac.Gate,
	logger *slog.Logger,
) {
	healthHandler := NewHealthHandler(db)

	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.RecoveryMiddleware(logger, auditService))

	// OpenAPI spec and UI live outside the API prefix.
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		// Public auth routes: no token is ever inspected here.
		r.Route("/auth", func(sr chi.Router) {
			sr.Post("/login", authHandler.Login)
			sr.Post("/register", authHandler.Register)

			// Identity only; any valid token passes.
			sr.Group(func(pr chi.Router) {
				pr.Use(gate.Guard(rbac.Requirement{}))
				pr.Get("/info", authHandler.Info)
			})
		})

		// User management.
		r.Route("/users", func(ur chi.Router) {
			ur.Group(func(g chi.Router) {
				g.Use(gate.Guard(rbac.Requirement{Permissions: []string{"user:view"}, Mode: rbac.ModeAny}))
				g.Get("/", userHandler.List)
				g.Get("/{id}", userHandler.Get)
				g.Get("/{id}/roles", rbacHandler.GetUserRoles)
			})
			ur.Group(func(g chi.Router) {
				g.Use(gate.Guard(rbac.Requirement{Permissions: []string{"user:update"}, Mode: rbac.ModeAny}))
				g.Put("/{id}", userHandler.Update)
			})
			ur.Group(func(g chi.Router) {
				g.Use(gate.Guard(rbac.Requirement{Permissions: []string{"user:view", "user:delete"}, Mode: rbac.ModeAll}))
				g.Delete("/{id}", userHandler.Delete)
			})
		})

		// Role management.
		r.Route("/roles", func(rr chi.Router) {
			rr.Group(func(g chi.Router) {
				g.Use(gate.Guard(rbac.Requirement{Permissions: []string{"role:view"}, Mode: rbac.ModeAny}))
				g.Get("/", rbacHandler.ListRoles)
				g.Get("/{id}", rbacHandler.GetRole)
				g.Get("/{id}/permissions", rbacHandler.GetRolePermissions)
			})
			rr.Group(func(g chi.Router) {
				g.Use(gate.Guard(rbac.Requirement{Permissions: []string{"role:create"}, Mode: rbac.ModeAny}))
				g.Post("/", rbacHandler.CreateRole)
			})
			rr.Group(func(g chi.Router) {
				g.Use(gate.Guard(rbac.Requirement{Permissions: []string{"role:update"}, Mode: rbac.ModeAny}))
				g.Put("/{id}", rbacHandler.UpdateRole)
			})
			rr.Group(func(g chi.Router) {
				g.Use(gate.Guard(rbac.Requirement{Permissions: []string{"role:delete"}, Mode: rbac.ModeAny}))
				g.Delete("/{id}", rbacHandler.DeleteRole)
			})
		})

		// Permission catalog.
		r.Route("/permissions", func(pr chi.Router) {
			pr.Group(func(g chi.Router) {
				g.Use(gate.Guard(rbac.Requirement{Permissions: []string{"permission:view"}, Mode: rbac.ModeAny}))
				g.Get("/", rbacHandler.ListPermissions)
				g.Get("/{id}", rbacHandler.GetPermission)
			})
			pr.Group(func(g chi.Router) {
				g.Use(gate.Guard(rbac.Requirement{Permissions: []string{"permission:create"}, Mode: rbac.ModeAny}))
				g.Post("/", rbacHandler.CreatePermission)
			})
			pr.Group(func(g chi.Router) {
				g.Use(gate.Guard(rbac.Requirement{Permissions: []string{"permission:update"}, Mode: rbac.ModeAny}))
				g.Put("/{id}", rbacHandler.UpdatePermission)
			})
			pr.Group(func(g chi.Router) {
				g.Use(gate.Guard(rbac.Requirement{Permissions: []string{"permission:delete"}, Mode: rbac.ModeAny}))
				g.Delete("/{id}", rbacHandler.DeletePermission)
			})
		})

		// Role assignment is reserved for the admin role regardless of
		// individual permission grants.
		r.Route("/user-roles", func(ar chi.Router) {
			ar.Use(gate.Guard(rbac.Requirement{Roles: []string{"admin"}}))
			ar.Post("/", rbacHandler.AssignRole)
			ar.Delete("/", rbacHandler.RemoveRole)
		})

		// Audit trail: admin role AND the audit permission.
		r.Route("/audit", func(ar chi.Router) {
			ar.Use(gate.Guard(rbac.Requirement{
				Roles:       []string{"admin"},
				Permissions: []string{"audit:view"},
				Mode:        rbac.ModeAny,
			}))
			ar.Get("/logs", auditHandler.Recent)
		})
	})
}
