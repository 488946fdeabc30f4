package restapi

import (
	"net/http"

	"github.com/andreyxaxa/Image-Moderation/config"
	_ "github.com/andreyxaxa/Image-Moderation/docs" // Swagger docs.
	v1 "github.com/andreyxaxa/Image-Moderation/internal/controller/restapi/v1"
	"github.com/andreyxaxa/Image-Moderation/internal/infrastructure/push"
	"github.com/andreyxaxa/Image-Moderation/internal/metrics"
	"github.com/andreyxaxa/Image-Moderation/internal/usecase"
	"github.com/andreyxaxa/Image-Moderation/pkg/logger"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
)

// NewRouter -.
// Swagger spec:
// @title       Image moderation
// @description Submit images, moderate them and push approved ones to viewers
// @version     1.0.0
// @host        localhost:8080
// @BasePath    /
func NewRouter(
	app *fiber.App,
	cfg *config.Config,
	mod usecase.ModerationUseCase,
	hub *push.Hub,
	m *metrics.Metrics,
	l logger.Interface,
) {
	app.Use(recover.New())

	// Health
	app.Get("/healthz", func(ctx *fiber.Ctx) error { return ctx.SendStatus(http.StatusOK) })

	// Prometheus metrics
	if cfg.Metrics.Enabled && m != nil {
		app.Get("/metrics", adaptor.HTTPHandler(m.Handler()))
	}

	// Swagger
	if cfg.Swagger.Enabled {
		app.Get("/swagger/*", swagger.HandlerDefault)
	}

	// Push channel
	app.Use("/ws", func(ctx *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(ctx) {
			return ctx.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(func(conn *websocket.Conn) {
		err := hub.Serve(conn)
		if err != nil {
			l.Debug("restapi - ws - viewer disconnected: %v", err)
		}
	}))

	// Routers
	apiGroup := app.Group("/api")
	{
		v1.NewImageRoutes(apiGroup, mod, l)
	}

	// Views
	v1.NewWebRoutes(app, l)
}
