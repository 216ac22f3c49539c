package events

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/meinhoongagan/doctor-appointment/push"
	"github.com/meinhoongagan/doctor-appointment/store"
)

// Dispatcher runs every reactor for a change and executes the commands they
// return. One reactor failing does not stop the others.
type Dispatcher struct {
	store    store.Store
	sender   push.Sender
	reactors []Reactor
	log      zerolog.Logger
	now      func() time.Time
}

func NewDispatcher(st store.Store, sender push.Sender, log zerolog.Logger, reactors ...Reactor) *Dispatcher {
	if len(reactors) == 0 {
		reactors = DefaultReactors()
	}
	return &Dispatcher{
		store:    st,
		sender:   sender,
		reactors: reactors,
		log:      log.With().Str("component", "dispatcher").Logger(),
		now:      time.Now,
	}
}

// Handle returns the joined errors of every failed reactor.
func (d *Dispatcher) Handle(ctx context.Context, change AppointmentChange) error {
	now := d.now()
	var errs []error
	for _, r := range d.reactors {
		for _, cmd := range r.React(change, now) {
			if err := d.execute(ctx, cmd); err != nil {
				d.log.Error().Err(err).
					Str("reactor", r.Name).
					Str("appointment_id", change.AppointmentID).
					Msg("reactor failed")
				errs = append(errs, fmt.Errorf("%s: %w", r.Name, err))
			}
		}
	}
	return errors.Join(errs...)
}

func (d *Dispatcher) execute(ctx context.Context, cmd Command) error {
	switch c := cmd.(type) {
	case InsertNotification:
		id, err := d.store.AddNotification(ctx, c.Notification)
		if err != nil {
			return fmt.Errorf("insert notification: %w", err)
		}
		d.log.Debug().Str("notification_id", id).Str("user_id", c.Notification.UserID).Msg("notification created")
		return nil
	case SendPush:
		return d.sendPush(ctx, c)
	default:
		return fmt.Errorf("unknown command %T", cmd)
	}
}

func (d *Dispatcher) sendPush(ctx context.Context, c SendPush) error {
	user, err := d.store.GetUser(ctx, c.UserID)
	if errors.Is(err, store.ErrNotFound) {
		d.log.Warn().Str("user_id", c.UserID).Msg("user profile not found, skipping push")
		return nil
	}
	if err != nil {
		return fmt.Errorf("load user: %w", err)
	}
	token := user.PushToken()
	if token == "" {
		d.log.Info().Str("user_id", c.UserID).Msg("no push token registered, skipping push")
		return nil
	}

	id, err := d.sender.Send(ctx, &push.Message{
		Token:        token,
		Notification: push.Notification{Title: c.Title, Body: c.Body},
		Data:         c.Data,
	})
	if err != nil {
		return fmt.Errorf("send push: %w", err)
	}
	d.log.Info().Str("user_id", c.UserID).Str("message_id", id).Msg("push sent")
	return nil
}
