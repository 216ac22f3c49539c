package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/meinhoongagan/doctor-appointment/controllers"
	"github.com/meinhoongagan/doctor-appointment/middleware"
	"github.com/meinhoongagan/doctor-appointment/models"
	"github.com/meinhoongagan/doctor-appointment/store"
)

// SetupAdminRoutes configures admin-only REST routes
func SetupAdminRoutes(app *fiber.App, jwtSecret string, st store.Store, media *controllers.Media) {
	admin := app.Group("/admin", middleware.Protected(jwtSecret), middleware.RequireRole(st, models.RoleAdmin))

	admin.Post("/doctors/photo", media.UploadDoctorPhoto)
}
