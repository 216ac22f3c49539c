package db

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/meinhoongagan/doctor-appointment/identity"
	"github.com/meinhoongagan/doctor-appointment/models"
)

// Migrate creates or updates every table this service reads or writes.
// Appointments are owned by the booking clients but the reminder query needs
// the table to exist in a fresh database.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Doctor{},
		&models.Appointment{},
		&models.Notification{},
		&identity.Account{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}
