// Package push delivers token-addressed push messages.
package push

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

type Notification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type Message struct {
	Token        string            `json:"token"`
	Notification Notification      `json:"notification"`
	Data         map[string]string `json:"data,omitempty"`
}

// Sender sends one message and returns the provider's message id.
type Sender interface {
	Send(ctx context.Context, msg *Message) (string, error)
}

// LogSender only logs. Used when no push provider is configured.
type LogSender struct {
	log zerolog.Logger
}

func NewLogSender(log zerolog.Logger) *LogSender {
	return &LogSender{log: log}
}

func (s *LogSender) Send(_ context.Context, msg *Message) (string, error) {
	s.log.Info().
		Str("title", msg.Notification.Title).
		Interface("data", msg.Data).
		Msg("push message (log driver)")
	return "log", nil
}

// Recorder is a test double that keeps every message it is given.
type Recorder struct {
	mu       sync.Mutex
	messages []Message
	Err      error
}

func (r *Recorder) Send(_ context.Context, msg *Message) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return "", r.Err
	}
	r.messages = append(r.messages, *msg)
	return "recorded", nil
}

// Messages returns a copy of the recorded messages.
func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Message, len(r.messages))
	copy(out, r.messages)
	return out
}
