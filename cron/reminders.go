package cron

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/meinhoongagan/doctor-appointment/events"
	"github.com/meinhoongagan/doctor-appointment/models"
	"github.com/meinhoongagan/doctor-appointment/store"
)

// Mailer sends an HTML email.
type Mailer interface {
	Send(to, subject, body string) error
}

// mailQueueSize bounds how many committed batches may wait for email.
const mailQueueSize = 8

// Reminders writes a reminder notification for every approved appointment
// that started at least Delay ago and has not been reminded yet.
type Reminders struct {
	store  store.Store
	delay  time.Duration
	limit  int
	mailer Mailer
	log    zerolog.Logger

	mail      chan []models.Appointment
	mailDone  sync.WaitGroup
	closeOnce sync.Once
}

func NewReminders(st store.Store, delay time.Duration, limit int, log zerolog.Logger) *Reminders {
	return &Reminders{
		store: st,
		delay: delay,
		limit: limit,
		log:   log.With().Str("component", "reminders").Logger(),
	}
}

// WithMailer also emails each reminded patient after the batch commits.
// Emails go out on a background goroutine so a slow SMTP server never holds
// up a tick. Close drains it.
func (r *Reminders) WithMailer(m Mailer) *Reminders {
	r.mailer = m
	r.mail = make(chan []models.Appointment, mailQueueSize)
	r.mailDone.Add(1)
	go r.mailLoop()
	return r
}

// Close waits for queued emails to be sent. RunOnce must not be called after.
func (r *Reminders) Close() {
	r.closeOnce.Do(func() {
		if r.mail != nil {
			close(r.mail)
			r.mailDone.Wait()
		}
	})
}

func (r *Reminders) mailLoop() {
	defer r.mailDone.Done()
	for due := range r.mail {
		r.emailAll(context.Background(), due)
	}
}

// RunOnce processes one tick and returns how many appointments were reminded.
// The notifications and reminderSent flags are committed together, so a
// failed commit leaves every appointment eligible for the next tick.
func (r *Reminders) RunOnce(ctx context.Context, now time.Time) (int, error) {
	threshold := now.Add(-r.delay)

	due, err := r.store.DueReminders(ctx, threshold, r.limit)
	if err != nil {
		return 0, fmt.Errorf("query due reminders: %w", err)
	}
	if len(due) == 0 {
		return 0, nil
	}

	batch := store.NewBatch()
	for i := range due {
		batch.AddNotification(events.ReminderNotification(&due[i], now))
		batch.MarkReminderSent(due[i].ID)
	}
	if err := r.store.Commit(ctx, batch); err != nil {
		return 0, fmt.Errorf("commit reminder batch of %d: %w", len(due), err)
	}

	r.log.Info().Int("count", len(due)).Time("threshold", threshold).Msg("reminders sent")

	if r.mail != nil {
		select {
		case r.mail <- due:
		default:
			r.log.Warn().Int("count", len(due)).Msg("reminder email queue full, skipping email copies")
		}
	}
	return len(due), nil
}

func (r *Reminders) emailAll(ctx context.Context, due []models.Appointment) {
	for i := range due {
		a := &due[i]
		user, err := r.store.GetUser(ctx, a.UserID)
		if errors.Is(err, store.ErrNotFound) || (err == nil && user.Email == "") {
			continue
		}
		if err != nil {
			r.log.Warn().Err(err).Str("appointment_id", a.ID).Msg("load user for reminder email")
			continue
		}
		if err := r.mailer.Send(user.Email, reminderSubject(a), reminderEmailBody(user, a)); err != nil {
			r.log.Warn().Err(err).Str("appointment_id", a.ID).Msg("reminder email failed")
			continue
		}
		r.log.Debug().Str("appointment_id", a.ID).Str("to", user.Email).Msg("reminder email sent")
	}
}

func reminderSubject(a *models.Appointment) string {
	return fmt.Sprintf("Reminder: Appointment with Dr. %s", a.DoctorName)
}

func reminderEmailBody(u *models.User, a *models.Appointment) string {
	return fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Your appointment is starting now.</p>
		<p><strong>Details:</strong></p>
		<ul>
			<li><strong>Doctor:</strong> Dr. %s</li>
			<li><strong>Date:</strong> %s</li>
			<li><strong>Time:</strong> %s</li>
		</ul>
		<p>If you can no longer attend, please cancel from the app.</p>
		<p>Best regards,</p>
		<p>Your Appointment Team</p>
	`, u.FullName, a.DoctorName, a.Date, a.Time)
}
