// Package store is the document store behind the admin callables, the
// appointment triggers and the reminder scheduler. Collections are users,
// doctors, appointments and notifications.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/meinhoongagan/doctor-appointment/models"
)

// ErrNotFound is returned by reads of a missing document and by updates that
// address one.
var ErrNotFound = errors.New("document not found")

type Store interface {
	GetUser(ctx context.Context, uid string) (*models.User, error)
	// SetUser creates or overwrites the profile keyed by user.ID.
	SetUser(ctx context.Context, user *models.User) error
	UpdateUserRole(ctx context.Context, uid string, role models.Role, at time.Time) error
	UpdateUserDisabled(ctx context.Context, uid string, disabled bool, at time.Time) error
	UpdateUserPushToken(ctx context.Context, uid, token string, at time.Time) error
	// DeleteUser succeeds when the profile is already gone.
	DeleteUser(ctx context.Context, uid string) error

	AddDoctor(ctx context.Context, doctor *models.Doctor) (string, error)
	AddNotification(ctx context.Context, n *models.Notification) (string, error)

	// DueReminders returns approved appointments with no reminder sent whose
	// appointmentAt is at or before threshold, oldest first.
	DueReminders(ctx context.Context, threshold time.Time, limit int) ([]models.Appointment, error)

	// Commit applies every write in b atomically.
	Commit(ctx context.Context, b *Batch) error

	Close(ctx context.Context) error
}

// Batch buffers writes for a single atomic Commit.
type Batch struct {
	Notifications []*models.Notification
	ReminderSent  []string
}

func NewBatch() *Batch {
	return &Batch{}
}

// AddNotification queues an insert and returns the id the document will get.
func (b *Batch) AddNotification(n *models.Notification) string {
	if n.ID == "" {
		n.ID = NewID()
	}
	b.Notifications = append(b.Notifications, n)
	return n.ID
}

// MarkReminderSent queues reminderSent=true on the appointment. The commit
// fails if the appointment no longer exists.
func (b *Batch) MarkReminderSent(appointmentID string) {
	b.ReminderSent = append(b.ReminderSent, appointmentID)
}

// Len is the number of queued writes.
func (b *Batch) Len() int {
	return len(b.Notifications) + len(b.ReminderSent)
}

func NewID() string {
	return uuid.NewString()
}
