package controllers

import (
	"context"
	"crypto/subtle"
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/meinhoongagan/doctor-appointment/events"
)

// TriggerSecretHeader carries the shared secret of the document-change source.
const TriggerSecretHeader = "X-Trigger-Secret"

type ChangeHandler interface {
	Handle(ctx context.Context, change events.AppointmentChange) error
}

type Triggers struct {
	handler ChangeHandler
	secret  string
	log     zerolog.Logger
}

func NewTriggers(handler ChangeHandler, secret string, log zerolog.Logger) *Triggers {
	return &Triggers{handler: handler, secret: secret, log: log}
}

// AppointmentUpdated receives one appointments/{appointmentId} update. A 500
// tells the sender to retry; reactors already applied will run again.
func (h *Triggers) AppointmentUpdated(c *fiber.Ctx) error {
	if subtle.ConstantTimeCompare([]byte(c.Get(TriggerSecretHeader)), []byte(h.secret)) != 1 {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "invalid trigger secret",
		})
	}

	var change events.AppointmentChange
	if err := c.BodyParser(&change); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}
	change.AppointmentID = c.Params("appointmentId")

	if err := h.handler.Handle(c.UserContext(), change); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleMessage is the Redis subscriber entry point. The payload is the same
// change document with appointmentId set.
func (h *Triggers) HandleMessage(ctx context.Context, payload []byte) error {
	var change events.AppointmentChange
	if err := json.Unmarshal(payload, &change); err != nil {
		return err
	}
	if change.AppointmentID == "" {
		h.log.Warn().Msg("appointment change without appointmentId ignored")
		return nil
	}
	return h.handler.Handle(ctx, change)
}
