package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/meinhoongagan/doctor-appointment/controllers"
)

// SetupAuthRoutes configures the identity provider's sign-in endpoint
func SetupAuthRoutes(app *fiber.App, h *controllers.Auth) {
	auth := app.Group("/auth")

	auth.Post("/signIn", h.SignIn)
}
