package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/caseflow/triage-service/internal/api/http/handlers"
	"github.com/caseflow/triage-service/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health  *handlers.HealthHandler
	Cases   *handlers.CasesHandler
	Metrics *observability.Metrics
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if reg := cfg.Metrics.Registry(); reg != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	}

	app.Post("/classify-case", cfg.Cases.Classify)

	cases := app.Group("/cases")
	cases.Get("/", cfg.Cases.List)
	// Static segments must be registered before /:id.
	cases.Get("/stats", cfg.Cases.Stats)
	cases.Get("/insights", cfg.Cases.Insights)
	cases.Get("/filter", cfg.Cases.Filter)
	cases.Get("/:id", cfg.Cases.Get)
	cases.Patch("/:id/resolve", cfg.Cases.Resolve)
	cases.Patch("/:id/escalate", cfg.Cases.Escalate)
	cases.Post("/:id/verify", cfg.Cases.Verify)
}
