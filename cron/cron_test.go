package cron

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/meinhoongagan/doctor-appointment/models"
	"github.com/meinhoongagan/doctor-appointment/store"
	"github.com/meinhoongagan/doctor-appointment/store/storetest"
)

var now = time.Date(2026, 6, 2, 15, 0, 0, 0, time.UTC)

func approved(id string, at time.Time) models.Appointment {
	return models.Appointment{
		ID:            id,
		UserID:        "patient-" + id,
		DoctorName:    "Okafor",
		Date:          "2026-06-02",
		Time:          "14:57",
		AppointmentAt: at,
		Status:        models.StatusApproved,
	}
}

func newReminders(st *storetest.Memory) *Reminders {
	return NewReminders(st, 2*time.Minute, 250, zerolog.Nop())
}

func TestRunOnce_DueAppointment(t *testing.T) {
	st := storetest.New()
	st.PutAppointment(approved("a1", now.Add(-3*time.Minute)))

	n, err := newReminders(st).RunOnce(context.Background(), now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 1 {
		t.Errorf("reminded = %d, want 1", n)
	}

	notes := st.Notifications()
	if len(notes) != 1 {
		t.Fatalf("notifications = %d, want 1", len(notes))
	}
	got := notes[0]
	if got.Type != models.NotificationAppointmentReminder || got.AppointmentID != "a1" || got.UserID != "patient-a1" {
		t.Errorf("notification = %+v", got)
	}
	if got.Body != "Your appointment with Dr. Okafor on 2026-06-02 at 14:57 is starting now." {
		t.Errorf("body = %q", got.Body)
	}
	if a, _ := st.Appointment("a1"); !a.ReminderSent {
		t.Error("reminderSent not set")
	}
}

func TestRunOnce_NotYetDue(t *testing.T) {
	st := storetest.New()
	st.PutAppointment(approved("a1", now.Add(-1*time.Minute)))

	n, err := newReminders(st).RunOnce(context.Background(), now)
	if err != nil || n != 0 {
		t.Fatalf("n=%d err=%v", n, err)
	}
	if len(st.Notifications()) != 0 || st.Commits != 0 {
		t.Error("nothing should be written")
	}
}

func TestRunOnce_SkipsAlreadyRemindedAndUnapproved(t *testing.T) {
	st := storetest.New()
	sent := approved("a1", now.Add(-10*time.Minute))
	sent.ReminderSent = true
	st.PutAppointment(sent)
	pending := approved("a2", now.Add(-10*time.Minute))
	pending.Status = models.StatusPending
	st.PutAppointment(pending)

	n, err := newReminders(st).RunOnce(context.Background(), now)
	if err != nil || n != 0 {
		t.Fatalf("n=%d err=%v", n, err)
	}
	if len(st.Notifications()) != 0 {
		t.Error("no reminders expected")
	}
}

func TestRunOnce_ExactThresholdIsDue(t *testing.T) {
	st := storetest.New()
	st.PutAppointment(approved("a1", now.Add(-2*time.Minute)))

	if n, err := newReminders(st).RunOnce(context.Background(), now); err != nil || n != 1 {
		t.Fatalf("n=%d err=%v", n, err)
	}
}

func TestRunOnce_CommitFailureWritesNothing(t *testing.T) {
	st := storetest.New()
	st.PutAppointment(approved("a1", now.Add(-5*time.Minute)))
	st.PutAppointment(approved("a2", now.Add(-4*time.Minute)))
	st.ErrCommit = errors.New("transaction aborted")

	if _, err := newReminders(st).RunOnce(context.Background(), now); err == nil {
		t.Fatal("expected commit error")
	}
	if len(st.Notifications()) != 0 {
		t.Error("notifications written despite failed commit")
	}
	for _, id := range []string{"a1", "a2"} {
		if a, _ := st.Appointment(id); a.ReminderSent {
			t.Errorf("%s marked reminded despite failed commit", id)
		}
	}

	// Next tick retries.
	st.ErrCommit = nil
	if n, err := newReminders(st).RunOnce(context.Background(), now); err != nil || n != 2 {
		t.Fatalf("retry: n=%d err=%v", n, err)
	}
}

// vanishingStore deletes one appointment between the due query and the
// commit, as a concurrent cancel-and-delete would.
type vanishingStore struct {
	*storetest.Memory
	vanish string
}

func (s *vanishingStore) DueReminders(ctx context.Context, threshold time.Time, limit int) ([]models.Appointment, error) {
	due, err := s.Memory.DueReminders(ctx, threshold, limit)
	s.Memory.DeleteAppointment(s.vanish)
	return due, err
}

func TestRunOnce_AppointmentDeletedBeforeCommit(t *testing.T) {
	mem := storetest.New()
	mem.PutAppointment(approved("a1", now.Add(-5*time.Minute)))
	mem.PutAppointment(approved("a2", now.Add(-4*time.Minute)))
	st := &vanishingStore{Memory: mem, vanish: "a2"}

	n, err := NewReminders(st, 2*time.Minute, 250, zerolog.Nop()).RunOnce(context.Background(), now)
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if n != 0 {
		t.Errorf("reminded = %d, want 0", n)
	}
	if len(mem.Notifications()) != 0 {
		t.Error("notifications written for a partially failed batch")
	}
	if a, _ := mem.Appointment("a1"); a.ReminderSent {
		t.Error("a1 marked reminded although the batch failed")
	}

	// The survivor is picked up on the next tick.
	st.vanish = ""
	if n, err := NewReminders(st, 2*time.Minute, 250, zerolog.Nop()).RunOnce(context.Background(), now); err != nil || n != 1 {
		t.Fatalf("retry: n=%d err=%v", n, err)
	}
}

func TestRunOnce_RespectsBatchLimit(t *testing.T) {
	st := storetest.New()
	for i, id := range []string{"a1", "a2", "a3"} {
		st.PutAppointment(approved(id, now.Add(-time.Duration(10-i)*time.Minute)))
	}

	r := NewReminders(st, 2*time.Minute, 2, zerolog.Nop())
	if n, _ := r.RunOnce(context.Background(), now); n != 2 {
		t.Fatalf("first tick reminded %d, want 2", n)
	}
	if a, _ := st.Appointment("a3"); a.ReminderSent {
		t.Error("newest appointment should wait for the next tick")
	}
	if n, _ := r.RunOnce(context.Background(), now); n != 1 {
		t.Fatalf("second tick reminded %d, want 1", n)
	}
}

type fakeMailer struct {
	mu      sync.Mutex
	sent    []string
	err     error
	release chan struct{}
}

func (m *fakeMailer) Send(to, subject, body string) error {
	if m.release != nil {
		<-m.release
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, to)
	return nil
}

func (m *fakeMailer) Sent() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.sent...)
}

func TestRunOnce_EmailsAfterCommit(t *testing.T) {
	st := storetest.New()
	st.PutAppointment(approved("a1", now.Add(-3*time.Minute)))
	st.PutAppointment(approved("a2", now.Add(-3*time.Minute)))
	st.PutUser(models.User{ID: "patient-a1", FullName: "Sam", Email: "sam@example.test"})
	mailer := &fakeMailer{}

	r := newReminders(st).WithMailer(mailer)
	if _, err := r.RunOnce(context.Background(), now); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r.Close()
	if sent := mailer.Sent(); len(sent) != 1 || sent[0] != "sam@example.test" {
		t.Errorf("sent = %v", sent)
	}
}

func TestRunOnce_EmailFailureDoesNotFailTick(t *testing.T) {
	st := storetest.New()
	st.PutAppointment(approved("a1", now.Add(-3*time.Minute)))
	st.PutUser(models.User{ID: "patient-a1", Email: "sam@example.test"})

	r := newReminders(st).WithMailer(&fakeMailer{err: errors.New("smtp down")})
	_, err := r.RunOnce(context.Background(), now)
	r.Close()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a, _ := st.Appointment("a1"); !a.ReminderSent {
		t.Error("reminderSent not set")
	}
}

type fakeLocker struct {
	held     bool
	released int
}

func (l *fakeLocker) TryLock(context.Context, string, time.Duration) (func(context.Context) error, bool, error) {
	if l.held {
		return nil, false, nil
	}
	return func(context.Context) error {
		l.released++
		return nil
	}, true, nil
}

func TestScheduler_Tick(t *testing.T) {
	st := storetest.New()
	st.PutAppointment(approved("a1", now.Add(-3*time.Minute)))
	locker := &fakeLocker{}

	s, err := NewScheduler("@every 1m", newReminders(st), locker, zerolog.Nop())
	if err != nil {
		t.Fatalf("new scheduler: %v", err)
	}
	s.now = func() time.Time { return now }

	if err := s.Tick(context.Background()); err != nil {
		t.Fatalf("tick: %v", err)
	}
	if len(st.Notifications()) != 1 || locker.released != 1 {
		t.Errorf("notifications=%d released=%d", len(st.Notifications()), locker.released)
	}
}

func TestScheduler_SlowMailerDoesNotDelayTick(t *testing.T) {
	st := storetest.New()
	st.PutAppointment(approved("a1", now.Add(-3*time.Minute)))
	st.PutUser(models.User{ID: "patient-a1", Email: "a1@example.test"})
	st.PutUser(models.User{ID: "patient-a2", Email: "a2@example.test"})
	mailer := &fakeMailer{release: make(chan struct{})}
	r := newReminders(st).WithMailer(mailer)

	s, err := NewScheduler("@every 1m", r, nil, zerolog.Nop())
	if err != nil {
		t.Fatalf("new scheduler: %v", err)
	}
	s.now = func() time.Time { return now }

	tick := func() {
		t.Helper()
		done := make(chan error, 1)
		go func() { done <- s.Tick(context.Background()) }()
		select {
		case err := <-done:
			if err != nil {
				t.Fatalf("tick: %v", err)
			}
		case <-time.After(time.Second):
			t.Fatal("tick blocked on the mailer")
		}
	}

	tick()
	st.PutAppointment(approved("a2", now.Add(-3*time.Minute)))
	tick()

	if a, _ := st.Appointment("a2"); !a.ReminderSent {
		t.Error("second tick did not remind a2")
	}
	if sent := mailer.Sent(); len(sent) != 0 {
		t.Errorf("emails sent before the mailer was released: %v", sent)
	}

	close(mailer.release)
	s.Stop()
	if sent := mailer.Sent(); len(sent) != 2 {
		t.Errorf("sent = %v, want both patients emailed after Stop", sent)
	}
}

func TestScheduler_TickSkipsWhenLeaseHeld(t *testing.T) {
	st := storetest.New()
	st.PutAppointment(approved("a1", now.Add(-3*time.Minute)))

	s, err := NewScheduler("@every 1m", newReminders(st), &fakeLocker{held: true}, zerolog.Nop())
	if err != nil {
		t.Fatalf("new scheduler: %v", err)
	}
	s.now = func() time.Time { return now }

	if err := s.Tick(context.Background()); err != nil {
		t.Fatalf("tick: %v", err)
	}
	if len(st.Notifications()) != 0 {
		t.Error("tick should not run without the lease")
	}
}

func TestNewScheduler_BadSpec(t *testing.T) {
	if _, err := NewScheduler("every minute", newReminders(storetest.New()), nil, zerolog.Nop()); err == nil {
		t.Fatal("expected spec parse error")
	}
}
