package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/transit-auth-service/internal/api/http/handlers"
	"github.com/spec-kit/transit-auth-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Admins         *handlers.AdminsHandler
	Sessions       *handlers.SessionsHandler
	Password       *handlers.PasswordHandler
	AuthMiddleware *auth.Middleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/users/register", cfg.Users.Register)
	authGroup.Post("/users/login", cfg.Users.Login)
	authGroup.Post("/users/refresh", cfg.Users.Refresh)

	authGroup.Post("/admins/login", cfg.Admins.Login)
	authGroup.Post("/admins/refresh", cfg.Admins.Refresh)

	authGroup.Post("/password/reset/request", cfg.Password.RequestReset)
	authGroup.Post("/password/reset/confirm", cfg.Password.ConfirmReset)

	// Logout verifies the bearer itself so it can report precise
	// token/session failure kinds even for already-dead sessions.
	authGroup.Post("/logout", cfg.Sessions.Logout)

	protected := authGroup.Group("", cfg.AuthMiddleware.RequireAny(auth.ModeDefault))
	protected.Get("/sessions", cfg.Sessions.List)
	protected.Delete("/sessions/:id", cfg.Sessions.Revoke)
}
