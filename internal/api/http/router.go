package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/SAGARSINGH-1/HostelCMS/internal/api/http/handlers"
	"github.com/SAGARSINGH-1/HostelCMS/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Queries        *handlers.QueriesHandler
	Notifications  *handlers.NotificationsHandler
	Usernames      *handlers.UsernamesHandler
	Files          *handlers.FilesHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	api := app.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Post("/student/signup", cfg.Auth.StudentSignup)
	authGroup.Post("/student/login", cfg.Auth.StudentLogin)
	authGroup.Post("/faculty/signup", cfg.Auth.FacultySignup)
	authGroup.Post("/faculty/login", cfg.Auth.FacultyLogin)

	queries := api.Group("/query", cfg.AuthMiddleware.Handle)
	queries.Post("/", auth.RequireStudent(), cfg.Queries.CreateQuery)
	queries.Get("/latest", auth.RequireAnyRole(), cfg.Queries.LatestQueries)
	queries.Get("/stats", auth.RequireFaculty(), cfg.Queries.Stats)
	queries.Get("/student/:studentId", auth.RequireAnyRole(), cfg.Queries.ListStudentQueries)
	queries.Get("/:id", auth.RequireAnyRole(), cfg.Queries.GetQuery)
	queries.Patch("/:id", auth.RequireStudent(), cfg.Queries.UpdateQuery)
	queries.Patch("/:id/status", auth.RequireFaculty(), cfg.Queries.UpdateStatus)
	queries.Delete("/:id", auth.RequireFaculty(), cfg.Queries.DeleteQuery)

	notifications := api.Group("/notifications", cfg.AuthMiddleware.Handle, auth.RequireAnyRole())
	notifications.Get("/", cfg.Notifications.ListMine)
	notifications.Patch("/read-all", cfg.Notifications.MarkAllRead)
	notifications.Patch("/:id/read", cfg.Notifications.MarkRead)

	usernames := api.Group("/usernames", cfg.AuthMiddleware.Handle, auth.RequireAnyRole())
	usernames.Get("/search", cfg.Usernames.Search)
	usernames.Post("/batch", cfg.Usernames.BatchByIDs)
	usernames.Get("/:id", cfg.Usernames.GetByID)

	files := api.Group("/files", cfg.AuthMiddleware.Handle, auth.RequireAnyRole())
	files.Get("/:id", cfg.Files.Download)
}
