package models

import (
	"time"
)

type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "pending"
	StatusApproved  AppointmentStatus = "approved"
	StatusCancelled AppointmentStatus = "cancelled"
	StatusCompleted AppointmentStatus = "completed"
)

// Appointment is written by the booking clients. This service only reacts to
// status changes and flips ReminderSent.
type Appointment struct {
	ID            string            `json:"id" gorm:"primaryKey" bson:"_id"`
	UserID        string            `json:"userId" gorm:"index" bson:"userId"`
	DoctorID      string            `json:"doctorId" bson:"doctorId"`
	DoctorName    string            `json:"doctorName" bson:"doctorName"`
	Date          string            `json:"date" bson:"date"`
	Time          string            `json:"time" bson:"time"`
	AppointmentAt time.Time         `json:"appointmentAt" gorm:"index" bson:"appointmentAt"`
	Status        AppointmentStatus `json:"status" gorm:"index" bson:"status"`
	ReminderSent  bool              `json:"reminderSent" bson:"reminderSent"`
}
