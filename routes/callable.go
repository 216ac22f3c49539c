package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/meinhoongagan/doctor-appointment/callable"
	"github.com/meinhoongagan/doctor-appointment/middleware"
)

// SetupCallableRoutes mounts POST /callable/{name} for every callable.
func SetupCallableRoutes(app *fiber.App, jwtSecret string, funcs map[string]callable.Func, log zerolog.Logger) {
	group := app.Group("/callable", middleware.Protected(jwtSecret))

	for name, fn := range funcs {
		group.Post("/"+name, callable.Handler(name, fn, log))
	}
}
