package router

import (
	"github.com/gofiber/fiber/v3"
	recoverer "github.com/gofiber/fiber/v3/middleware/recover"

	"github.com/cmpocmkp/kptube-go/internal/handler"
	"github.com/cmpocmkp/kptube-go/internal/middleware"
)

// Handlers holds all handler instances needed by the router.
type Handlers struct {
	Channel *handler.ChannelHandler
	Video   *handler.VideoHandler
	Run     *handler.RunHandler
	Stats   *handler.StatsHandler
	Export  *handler.ExportHandler
	Health  *handler.HealthHandler
}

// Setup configures the middleware stack and all API routes on the given Fiber app.
func Setup(app *fiber.App, h *Handlers, corsOrigins string) {
	// Middleware stack (order matters)
	app.Use(recoverer.New())
	app.Use(middleware.NewRequestLogger())
	app.Use(handler.MetricsMiddleware())
	app.Use(middleware.NewCORS(corsOrigins))

	// Health checks and metrics (before API group)
	app.Get("/health/live", h.Health.Live)
	app.Get("/health/ready", h.Health.Ready)
	app.Get("/metrics", handler.MetricsHandler())

	queryLimit := middleware.NewQueryRateLimiter().Handler()

	// API routes
	api := app.Group("/api")

	// Channel routes
	api.Get("/channels", h.Channel.List, queryLimit)
	api.Get("/channels/:channelId", h.Channel.GetByChannelID, queryLimit)

	// Video routes
	api.Get("/youtubers/:channelId/videos", h.Video.ListByChannel, queryLimit)
	api.Get("/videos/:id", h.Video.GetByID, queryLimit)
	api.Patch("/videos/:id/reanalyze", h.Video.Reanalyze, middleware.NewReanalyzeRateLimiter().Handler())

	// Run routes
	api.Get("/runs", h.Run.List, queryLimit)
	api.Get("/runs/:id", h.Run.GetByID, queryLimit)
	api.Post("/runs", h.Run.Trigger, middleware.NewTriggerRateLimiter().Handler())

	// Stats routes
	api.Get("/stats", h.Stats.GetStats, middleware.NewStatsRateLimiter().Handler())

	// Export routes
	api.Get("/database/export", h.Export.Export, middleware.NewExportRateLimiter().Handler())
}
