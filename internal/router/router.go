package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/kodigo-go-api/internal/config"
	"github.com/noah-isme/kodigo-go-api/internal/handler"
	"github.com/noah-isme/kodigo-go-api/internal/middleware"
	"github.com/noah-isme/kodigo-go-api/internal/models"
	"github.com/noah-isme/kodigo-go-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	SubmissionHandler  *handler.SubmissionHandler
	ChallengeHandler   *handler.ChallengeHandler
	UserHandler        *handler.UserHandler
	TransactionHandler *handler.TransactionHandler
	JWTMiddleware      fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler())

	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.ChallengeHandler != nil {
		challenges := api.Group("/challenges", jwtMiddleware)
		deps.ChallengeHandler.Register(challenges)
	}

	if deps.SubmissionHandler != nil {
		submissions := api.Group("/submissions", jwtMiddleware,
			middleware.RateLimit("submissions", 30, time.Minute))
		deps.SubmissionHandler.Register(submissions)

		admin := api.Group("/admin/submissions", jwtMiddleware,
			middleware.RequireRole(models.RoleAdmin))
		deps.SubmissionHandler.RegisterAdmin(admin)
	}

	if deps.UserHandler != nil {
		users := api.Group("/users", jwtMiddleware)
		deps.UserHandler.Register(users)
	}

	if deps.TransactionHandler != nil {
		transactions := api.Group("/transactions", jwtMiddleware)
		deps.TransactionHandler.Register(transactions)
	}
}
