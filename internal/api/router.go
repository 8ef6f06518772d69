package api

import (
	"github.com/gofiber/contrib/otelfiber/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"registration-service/internal/web"
)

func NewApp(serviceName string, userHandler *UserHandler) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName: serviceName,
		Views:   web.NewEngine(),
	})
	app.Use(otelfiber.Middleware())
	app.Use(PrometheusMiddleware())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": serviceName})
	})

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	app.Get("/", userHandler.RegistrationPage)

	usersRoutes := app.Group("/api/users")
	usersRoutes.Get("/", userHandler.ListUsers)
	usersRoutes.Post("/", userHandler.CreateUser)

	return app
}
