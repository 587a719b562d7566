package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/navidmash/support-ticket-api/internal/api/http/handlers"
	"github.com/navidmash/support-ticket-api/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Tickets        *handlers.TicketsHandler
	Comments       *handlers.CommentsHandler
	Users          *handlers.UsersHandler
	AuthMiddleware *auth.Middleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/auth/login", cfg.Auth.Login)

	protected := app.Group("", cfg.AuthMiddleware.Handle)

	protected.Post("/tickets", cfg.Tickets.Create)
	protected.Get("/tickets", cfg.Tickets.List)
	protected.Get("/tickets/:id", cfg.Tickets.Get)
	protected.Patch("/tickets/:id/assign", cfg.Tickets.Assign)
	protected.Patch("/tickets/:id/status", cfg.Tickets.UpdateStatus)
	protected.Delete("/tickets/:id", cfg.Tickets.Delete)

	protected.Post("/tickets/:id/comments", cfg.Comments.Add)
	protected.Get("/tickets/:id/comments", cfg.Comments.List)
	protected.Patch("/comments/:id", cfg.Comments.Edit)
	protected.Delete("/comments/:id", cfg.Comments.Delete)

	protected.Post("/users", cfg.Users.Create)
	protected.Get("/users", cfg.Users.List)
}
