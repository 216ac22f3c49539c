package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/meinhoongagan/doctor-appointment/controllers"
)

// SetupTriggerRoutes configures the document-change webhooks
func SetupTriggerRoutes(app *fiber.App, h *controllers.Triggers) {
	triggers := app.Group("/triggers")

	triggers.Post("/appointments/:appointmentId", h.AppointmentUpdated)
}
