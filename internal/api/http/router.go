package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/recruiting-service/internal/api/http/handlers"
	"github.com/spec-kit/recruiting-service/internal/auth"
	"github.com/spec-kit/recruiting-service/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health          *handlers.HealthHandler
	Candidates      *handlers.CandidatesHandler
	Admin           *handlers.AdminHandler
	AdminMiddleware *auth.AdminMiddleware
	PublicLimiter   fiber.Handler
	Metrics         *observability.Metrics
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/healthz/live", cfg.Health.Live)
	app.Get("/healthz/ready", cfg.Health.Ready)
	app.Get("/healthz/metrics", metricsReport(cfg.Metrics))

	api := app.Group("/api")
	api.Get("/", apiIndex)

	public := api.Group("/candidates")
	if cfg.PublicLimiter != nil {
		public.Use(cfg.PublicLimiter)
	}
	public.Post("/register", cfg.Candidates.Register)
	public.Get("/:id/status", cfg.Candidates.Status)

	admin := api.Group("/admin", cfg.AdminMiddleware.Handle)
	admin.Get("/candidates", cfg.Admin.List)
	admin.Get("/candidates/:id", cfg.Admin.Detail)
	admin.Patch("/candidates/:id/status", cfg.Admin.UpdateStatus)
	admin.Get("/candidates/:id/resume", cfg.Admin.DownloadResume)
}

func metricsReport(metrics *observability.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		requests, errors := metrics.Snapshot()
		return c.JSON(fiber.Map{
			"requests_total": requests,
			"errors_total":   errors,
		})
	}
}

func apiIndex(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "success",
		"message": "API is working properly",
		"endpoints": fiber.Map{
			"candidates_register": "/api/candidates/register",
			"candidate_status":    "/api/candidates/{candidate_id}/status",
			"admin_candidates":    "/api/admin/candidates",
		},
	})
}
