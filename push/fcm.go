package push

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// FCMSender delivers through the Firebase Cloud Messaging HTTP v1 API.
type FCMSender struct {
	client *messaging.Client
}

// NewFCMSender builds a messaging client. projectID may be empty when the
// credentials carry one.
func NewFCMSender(ctx context.Context, projectID string, opts ...option.ClientOption) (*FCMSender, error) {
	var conf *firebase.Config
	if projectID != "" {
		conf = &firebase.Config{ProjectID: projectID}
	}
	app, err := firebase.NewApp(ctx, conf, opts...)
	if err != nil {
		return nil, fmt.Errorf("fcm: init app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("fcm: init messaging: %w", err)
	}
	return &FCMSender{client: client}, nil
}

func (s *FCMSender) Send(ctx context.Context, msg *Message) (string, error) {
	id, err := s.client.Send(ctx, &messaging.Message{
		Token: msg.Token,
		Notification: &messaging.Notification{
			Title: msg.Notification.Title,
			Body:  msg.Notification.Body,
		},
		Data: msg.Data,
	})
	if err != nil {
		return "", fmt.Errorf("fcm: send: %w", err)
	}
	return id, nil
}
