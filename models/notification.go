package models

import "time"

type NotificationType string

const (
	NotificationAppointmentStatus   NotificationType = "appointment_status"
	NotificationAppointmentReminder NotificationType = "appointment_reminder"
)

// Notification is an in-app message. Clients flip Read; this service only appends.
type Notification struct {
	ID            string           `json:"id" gorm:"primaryKey" bson:"_id"`
	UserID        string           `json:"userId" gorm:"index" bson:"userId"`
	Title         string           `json:"title" bson:"title"`
	Body          string           `json:"body" bson:"body"`
	Read          bool             `json:"read" bson:"read"`
	Type          NotificationType `json:"type" bson:"type"`
	AppointmentID string           `json:"appointmentId" bson:"appointmentId"`
	CreatedAt     time.Time        `json:"createdAt" gorm:"autoCreateTime:false" bson:"createdAt"`
}
