package api

import (
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/go-chi/chi/v5"

	"github.com/gatehouse/gatehouse/internal/access"
	"github.com/gatehouse/gatehouse/internal/api/handler"
	"github.com/gatehouse/gatehouse/internal/api/middleware"
	"github.com/gatehouse/gatehouse/internal/auth"
	"github.com/gatehouse/gatehouse/internal/session"
)

// RouterDeps holds all dependencies needed by the router.
type RouterDeps struct {
	AuthService *auth.Service
	UserRepo    auth.UserRepository
	Store       access.Store
	Resolver    *access.Resolver
	Gate        *access.Gate
	Binding     session.Binding
	DBPinger    handler.DBPinger
	Version     string
}

// NewRouter creates and configures a Chi router with all middleware and routes.
func NewRouter(deps RouterDeps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery)
	r.Use(chimiddleware.Logger)

	healthHandler := handler.NewHealthHandler(deps.DBPinger, deps.Version)
	r.Get("/health", healthHandler.ServeHTTP)

	authHandler := handler.NewAuthHandler(deps.AuthService, deps.Binding, deps.Resolver)
	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", authHandler.Login)
		r.Group(func(r chi.Router) {
			r.Use(middleware.Session(deps.Binding))
			r.Post("/logout", authHandler.Logout)
			r.Get("/me", authHandler.Me)
		})
	})

	menuHandler := handler.NewMenuHandler(deps.Gate, handler.DefaultMenu)
	r.Group(func(r chi.Router) {
		r.Use(middleware.OptionalSession(deps.Binding))
		r.Get("/menu", menuHandler.ServeHTTP)
	})

	userHandler := handler.NewUserHandler(deps.AuthService, deps.UserRepo, deps.Store)
	r.Route("/users", func(r chi.Router) {
		r.Use(middleware.Session(deps.Binding))

		r.With(middleware.RequireSuperuser()).Post("/", userHandler.Create)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequirePermission(deps.Gate, access.Permission{Resource: "users", Action: "view"}))
			r.Get("/", userHandler.List)
			r.Get("/{id}", userHandler.GetByID)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequirePermission(deps.Gate, access.Permission{Resource: "users", Action: "manage"}))
			r.Patch("/{id}", userHandler.Update)
			r.Post("/{id}/permissions/{permissionId}", userHandler.Grant)
			r.Delete("/{id}/permissions/{permissionId}", userHandler.Revoke)
		})
	})

	groupHandler := handler.NewGroupHandler(deps.Store, deps.UserRepo)
	r.Route("/groups", func(r chi.Router) {
		r.Use(middleware.Session(deps.Binding))

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequirePermission(deps.Gate, access.Permission{Resource: "groups", Action: "view"}))
			r.Get("/", groupHandler.List)
			r.Get("/{id}", groupHandler.GetByID)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequirePermission(deps.Gate, access.Permission{Resource: "groups", Action: "manage"}))
			r.Post("/", groupHandler.Create)
			r.Delete("/{id}", groupHandler.Delete)
			r.Post("/{id}/permissions/{permissionId}", groupHandler.AttachPermission)
			r.Delete("/{id}/permissions/{permissionId}", groupHandler.DetachPermission)
			r.Post("/{id}/members/{userId}", groupHandler.AddMember)
			r.Delete("/{id}/members/{userId}", groupHandler.RemoveMember)
		})
	})

	permissionHandler := handler.NewPermissionHandler(deps.Store)
	r.Route("/permissions", func(r chi.Router) {
		r.Use(middleware.Session(deps.Binding))

		r.With(middleware.RequirePermission(deps.Gate, access.Permission{Resource: "permissions", Action: "view"})).
			Get("/", permissionHandler.List)
		r.With(middleware.RequireSuperuser()).Post("/", permissionHandler.Create)
	})

	return r
}
