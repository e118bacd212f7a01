package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/examforge/examforge-api/internal/config"
	"github.com/examforge/examforge-api/internal/handler"
	"github.com/examforge/examforge-api/internal/middleware"
	"github.com/examforge/examforge-api/internal/observability"
)

// Dependencies groups primary API router dependencies for registration.
type Dependencies struct {
	AttemptHandler         *handler.AttemptHandler
	CredentialHandler      *handler.CredentialHandler
	AIAssignmentHandler    *handler.AIAssignmentHandler
	PromptHandler          *handler.PromptHandler
	InternalGradingHandler *handler.InternalGradingHandler
	JWTMiddleware          fiber.Handler
}

// Register wires the primary API routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))
	app.Get("/metrics", observability.MetricsHandler())

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.AttemptHandler != nil {
		attempts := app.Group("/api/v1/attempts", jwtMiddleware)
		deps.AttemptHandler.Register(attempts)
	}

	// Teacher/admin configuration surface
	admin := app.Group("/api/admin", jwtMiddleware, middleware.RequireRole("teacher", "admin"), middleware.RateLimit("admin", cfg))
	if deps.CredentialHandler != nil {
		deps.CredentialHandler.Register(admin.Group("/credentials"))
	}
	if deps.AIAssignmentHandler != nil {
		deps.AIAssignmentHandler.Register(admin.Group("/ai-assignments"))
	}
	if deps.PromptHandler != nil {
		deps.PromptHandler.Register(admin.Group("/prompts"))
	}

	// Service-to-service callback, shared-secret guarded
	if deps.InternalGradingHandler != nil {
		internal := app.Group("/internal", middleware.InternalKey(cfg.InternalAPIKey))
		deps.InternalGradingHandler.Register(internal)
	}
}

// GraderDependencies groups grading service router dependencies.
type GraderDependencies struct {
	GradeHandler *handler.GradeHandler
}

// RegisterGrader wires the grading service routes into the fiber application.
func RegisterGrader(app *fiber.App, cfg config.Config, deps GraderDependencies) {
	app.Get("/health", handler.HealthCheck(cfg))
	app.Get("/metrics", observability.MetricsHandler())

	if deps.GradeHandler != nil {
		ai := app.Group("/ai", middleware.InternalKey(cfg.InternalAPIKey))
		deps.GradeHandler.Register(ai)
	}
}
