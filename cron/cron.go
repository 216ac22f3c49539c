package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

const lockKey = "scheduler:reminders"

// Locker is a cross-instance lease. Nil disables it.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, bool, error)
}

// Scheduler runs the reminder job on a cron spec. A tick that is still
// running when the next one fires causes that one to be skipped.
type Scheduler struct {
	cron      *cron.Cron
	reminders *Reminders
	locker    Locker
	timeout   time.Duration
	log       zerolog.Logger
	now       func() time.Time
}

func NewScheduler(spec string, reminders *Reminders, locker Locker, log zerolog.Logger) (*Scheduler, error) {
	log = log.With().Str("component", "scheduler").Logger()
	cl := cronLogger{log: log}
	s := &Scheduler{
		cron:      cron.New(cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl))),
		reminders: reminders,
		locker:    locker,
		timeout:   55 * time.Second,
		log:       log,
		now:       time.Now,
	}
	if _, err := s.cron.AddFunc(spec, s.tick); err != nil {
		return nil, fmt.Errorf("add reminder job %q: %w", spec, err)
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info().Msg("scheduler started for appointment reminders")
}

// Stop waits for a running tick to finish, then for queued emails.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.reminders.Close()
}

func (s *Scheduler) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	if err := s.Tick(ctx); err != nil {
		s.log.Error().Err(err).Msg("reminder tick failed")
	}
}

// Tick runs one reminder pass, holding the lease when a Locker is set.
func (s *Scheduler) Tick(ctx context.Context) error {
	if s.locker != nil {
		release, ok, err := s.locker.TryLock(ctx, lockKey, s.timeout)
		if err != nil {
			return err
		}
		if !ok {
			s.log.Debug().Msg("another instance holds the reminder lease")
			return nil
		}
		defer func() {
			if err := release(context.Background()); err != nil {
				s.log.Warn().Err(err).Msg("release reminder lease")
			}
		}()
	}
	_, err := s.reminders.RunOnce(ctx, s.now())
	return err
}

// cronLogger adapts zerolog to cron.Logger.
type cronLogger struct {
	log zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
