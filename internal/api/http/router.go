package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Users          *handlers.UsersHandler
	Tickets        *handlers.TicketsHandler
	AuthMiddleware *auth.Middleware
	AuthLimiter    fiber.Handler
}

// RegisterRoutes wires HTTP routes against the central policy table. The
// public surface is exactly login, registration and the health probes;
// everything else passes through the auth middleware plus its policy.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	login := app.Group("/auth")
	if cfg.AuthLimiter != nil {
		login = login.Group("", cfg.AuthLimiter)
	}
	login.Post("/login", cfg.Auth.Login)

	api := app.Group("/api")

	// Registration is the single public user endpoint.
	if cfg.AuthLimiter != nil {
		api.Post("/users", cfg.AuthLimiter, cfg.Users.Register)
	} else {
		api.Post("/users", cfg.Users.Register)
	}

	protected := api.Group("", cfg.AuthMiddleware.Handle)

	protected.Get("/users", auth.Require("users.list"), cfg.Users.List)
	protected.Get("/users/me", auth.Require("users.me"), cfg.Users.Me)
	protected.Put("/users/me", auth.Require("users.update"), cfg.Users.UpdateMe)
	protected.Delete("/users/:id", auth.Require("users.delete"), cfg.Users.Delete)

	protected.Get("/tickets", auth.Require("tickets.list"), cfg.Tickets.List)
	protected.Get("/tickets/:id", auth.Require("tickets.get"), cfg.Tickets.Get)
	protected.Post("/tickets", auth.Require("tickets.create"), cfg.Tickets.Create)
	protected.Put("/tickets/:id", auth.Require("tickets.update"), cfg.Tickets.Update)
	protected.Delete("/tickets/:id", auth.Require("tickets.delete"), cfg.Tickets.Delete)
}
