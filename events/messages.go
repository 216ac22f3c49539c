package events

import (
	"fmt"
	"time"

	"github.com/meinhoongagan/doctor-appointment/models"
)

const (
	TitleApproved  = "Appointment approved"
	TitleCancelled = "Appointment cancelled"
	TitleReminder  = "Appointment reminder"
)

func approvedBody(a *models.Appointment) string {
	return fmt.Sprintf("Your appointment with Dr. %s on %s at %s has been approved.", a.DoctorName, a.Date, a.Time)
}

func cancelledBody(a *models.Appointment) string {
	return fmt.Sprintf("Your appointment with Dr. %s on %s has been cancelled.", a.DoctorName, a.Date)
}

func reminderBody(a *models.Appointment) string {
	return fmt.Sprintf("Your appointment with Dr. %s on %s at %s is starting now.", a.DoctorName, a.Date, a.Time)
}

// ReminderNotification builds the in-app reminder for a due appointment.
func ReminderNotification(a *models.Appointment, now time.Time) *models.Notification {
	return &models.Notification{
		UserID:        a.UserID,
		Title:         TitleReminder,
		Body:          reminderBody(a),
		Read:          false,
		Type:          models.NotificationAppointmentReminder,
		AppointmentID: a.ID,
		CreatedAt:     now,
	}
}
