// Package storetest provides an in-memory store.Store for tests.
package storetest

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/meinhoongagan/doctor-appointment/models"
	"github.com/meinhoongagan/doctor-appointment/store"
)

// Memory is a mutex-guarded map-backed store. The Err* fields inject failures.
type Memory struct {
	mu            sync.Mutex
	users         map[string]models.User
	doctors       map[string]models.Doctor
	appointments  map[string]models.Appointment
	notifications []models.Notification

	ErrGetUser         error
	ErrSetUser         error
	ErrUpdateUser      error
	ErrDeleteUser      error
	ErrAddNotification error
	ErrCommit          error

	Commits int
}

var _ store.Store = (*Memory)(nil)

func New() *Memory {
	return &Memory{
		users:        make(map[string]models.User),
		doctors:      make(map[string]models.Doctor),
		appointments: make(map[string]models.Appointment),
	}
}

// PutUser seeds a profile without going through SetUser's failure hook.
func (m *Memory) PutUser(u models.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID] = u
}

func (m *Memory) PutAppointment(a models.Appointment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.appointments[a.ID] = a
}

func (m *Memory) Appointment(id string) (models.Appointment, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.appointments[id]
	return a, ok
}

func (m *Memory) DeleteAppointment(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.appointments, id)
}

func (m *Memory) User(uid string) (models.User, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[uid]
	return u, ok
}

func (m *Memory) Doctors() []models.Doctor {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Doctor, 0, len(m.doctors))
	for _, d := range m.doctors {
		out = append(out, d)
	}
	return out
}

func (m *Memory) Notifications() []models.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Notification, len(m.notifications))
	copy(out, m.notifications)
	return out
}

func (m *Memory) GetUser(_ context.Context, uid string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ErrGetUser != nil {
		return nil, m.ErrGetUser
	}
	u, ok := m.users[uid]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &u, nil
}

func (m *Memory) SetUser(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ErrSetUser != nil {
		return m.ErrSetUser
	}
	m.users[user.ID] = *user
	return nil
}

func (m *Memory) update(uid string, fn func(u *models.User)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ErrUpdateUser != nil {
		return m.ErrUpdateUser
	}
	u, ok := m.users[uid]
	if !ok {
		return store.ErrNotFound
	}
	fn(&u)
	m.users[uid] = u
	return nil
}

func (m *Memory) UpdateUserRole(_ context.Context, uid string, role models.Role, at time.Time) error {
	return m.update(uid, func(u *models.User) {
		u.Role = role
		u.UpdatedAt = &at
	})
}

func (m *Memory) UpdateUserDisabled(_ context.Context, uid string, disabled bool, at time.Time) error {
	return m.update(uid, func(u *models.User) {
		u.Disabled = disabled
		u.UpdatedAt = &at
	})
}

func (m *Memory) UpdateUserPushToken(_ context.Context, uid, token string, at time.Time) error {
	return m.update(uid, func(u *models.User) {
		u.FCMToken = &token
		u.UpdatedAt = &at
	})
}

func (m *Memory) DeleteUser(_ context.Context, uid string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ErrDeleteUser != nil {
		return m.ErrDeleteUser
	}
	delete(m.users, uid)
	return nil
}

func (m *Memory) AddDoctor(_ context.Context, doctor *models.Doctor) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if doctor.ID == "" {
		doctor.ID = store.NewID()
	}
	m.doctors[doctor.ID] = *doctor
	return doctor.ID, nil
}

func (m *Memory) AddNotification(_ context.Context, n *models.Notification) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ErrAddNotification != nil {
		return "", m.ErrAddNotification
	}
	if n.ID == "" {
		n.ID = store.NewID()
	}
	m.notifications = append(m.notifications, *n)
	return n.ID, nil
}

func (m *Memory) DueReminders(_ context.Context, threshold time.Time, limit int) ([]models.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var due []models.Appointment
	for _, a := range m.appointments {
		if a.Status == models.StatusApproved && !a.ReminderSent && !a.AppointmentAt.After(threshold) {
			due = append(due, a)
		}
	}
	sort.Slice(due, func(i, j int) bool { return due[i].AppointmentAt.Before(due[j].AppointmentAt) })
	if limit > 0 && len(due) > limit {
		due = due[:limit]
	}
	return due, nil
}

// Commit validates every write before applying any of them.
func (m *Memory) Commit(_ context.Context, b *store.Batch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Commits++
	if m.ErrCommit != nil {
		return m.ErrCommit
	}
	for _, id := range b.ReminderSent {
		if _, ok := m.appointments[id]; !ok {
			return fmt.Errorf("mark reminder sent %s: %w", id, store.ErrNotFound)
		}
	}
	for _, n := range b.Notifications {
		m.notifications = append(m.notifications, *n)
	}
	for _, id := range b.ReminderSent {
		a := m.appointments[id]
		a.ReminderSent = true
		m.appointments[id] = a
	}
	return nil
}

func (m *Memory) Close(context.Context) error {
	return nil
}
