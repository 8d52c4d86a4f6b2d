package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/cffrank/jobmatchAI-sub016/internal/api/http/handlers"
	"github.com/cffrank/jobmatchAI-sub016/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Applications   *handlers.ApplicationsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/users/register", cfg.Users.Register)
	authGroup.Post("/users/login", cfg.Users.Login)

	applications := app.Group("/applications", cfg.AuthMiddleware.Handle, auth.RequireUser())
	applications.Post("", cfg.Applications.Create)
	applications.Get("", cfg.Applications.List)
	applications.Get("/:id", cfg.Applications.Get)
	applications.Patch("/:id/status", cfg.Applications.UpdateStatus)
	applications.Patch("/:id/notes", cfg.Applications.UpdateDetails)
	applications.Delete("/:id", cfg.Applications.Delete)
}
