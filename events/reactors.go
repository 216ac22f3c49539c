// Package events reacts to appointment document updates. Reactors are pure
// functions from a change to commands; the Dispatcher executes the commands.
package events

import (
	"time"

	"github.com/meinhoongagan/doctor-appointment/models"
)

// AppointmentChange is one update of appointments/{AppointmentID}. Before or
// After is nil when the document did not exist on that side of the write.
type AppointmentChange struct {
	AppointmentID string              `json:"appointmentId"`
	Before        *models.Appointment `json:"before"`
	After         *models.Appointment `json:"after"`
}

// statusTransition returns the new status when the change moved the
// appointment into a different status.
func (c AppointmentChange) statusTransition() (models.AppointmentStatus, bool) {
	if c.Before == nil || c.After == nil {
		return "", false
	}
	if c.Before.Status == c.After.Status {
		return "", false
	}
	return c.After.Status, true
}

type Command interface {
	isCommand()
}

// InsertNotification appends a document to notifications.
type InsertNotification struct {
	Notification *models.Notification
}

// SendPush delivers a push message to the user's registered device.
type SendPush struct {
	UserID string
	Title  string
	Body   string
	Data   map[string]string
}

func (InsertNotification) isCommand() {}
func (SendPush) isCommand()           {}

type Reactor struct {
	Name  string
	React func(change AppointmentChange, now time.Time) []Command
}

// DefaultReactors are registered for every appointment update.
func DefaultReactors() []Reactor {
	return []Reactor{
		{Name: "statusChangeNotifier", React: StatusChangeNotifier},
		{Name: "pushNotifier", React: PushNotifier},
	}
}

// StatusChangeNotifier records an in-app notification when an appointment is
// approved or cancelled.
func StatusChangeNotifier(change AppointmentChange, now time.Time) []Command {
	status, ok := change.statusTransition()
	if !ok {
		return nil
	}

	after := change.After
	var title, body string
	switch status {
	case models.StatusApproved:
		title, body = TitleApproved, approvedBody(after)
	case models.StatusCancelled:
		title, body = TitleCancelled, cancelledBody(after)
	default:
		return nil
	}

	return []Command{InsertNotification{Notification: &models.Notification{
		UserID:        after.UserID,
		Title:         title,
		Body:          body,
		Read:          false,
		Type:          models.NotificationAppointmentStatus,
		AppointmentID: change.AppointmentID,
		CreatedAt:     now,
	}}}
}

// PushNotifier sends a device push when an appointment is approved.
func PushNotifier(change AppointmentChange, _ time.Time) []Command {
	status, ok := change.statusTransition()
	if !ok || status != models.StatusApproved {
		return nil
	}
	after := change.After
	return []Command{SendPush{
		UserID: after.UserID,
		Title:  TitleApproved,
		Body:   approvedBody(after),
		Data: map[string]string{
			"type":          string(models.NotificationAppointmentStatus),
			"appointmentId": change.AppointmentID,
		},
	}}
}
