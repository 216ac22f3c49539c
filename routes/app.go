package routes

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/rs/zerolog"

	"github.com/meinhoongagan/doctor-appointment/controllers"
	"github.com/meinhoongagan/doctor-appointment/middleware"
)

// NewApp builds the Fiber app with the shared middleware and /health.
func NewApp(corsOrigins []string, log zerolog.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "doctor-appointment",
		DisableStartupMessage: true,
	})

	app.Use(requestid.New())
	app.Use(middleware.RequestLogger(log))
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(corsOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	app.Get("/health", controllers.Health)
	return app
}
