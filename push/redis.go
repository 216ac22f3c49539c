package push

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// DefaultChannel is where RedisSender publishes for an external push gateway.
const DefaultChannel = "push:outbound"

// RedisSender hands messages to a gateway process subscribed to Channel.
type RedisSender struct {
	client  *redis.Client
	Channel string
}

type relayEnvelope struct {
	ID string `json:"id"`
	Message
}

func NewRedisSender(client *redis.Client) *RedisSender {
	return &RedisSender{client: client, Channel: DefaultChannel}
}

// Send fails when no gateway is subscribed, since the message would be dropped.
func (s *RedisSender) Send(ctx context.Context, msg *Message) (string, error) {
	env := relayEnvelope{ID: uuid.NewString(), Message: *msg}
	payload, err := json.Marshal(env)
	if err != nil {
		return "", fmt.Errorf("redis push: marshal: %w", err)
	}
	receivers, err := s.client.Publish(ctx, s.Channel, payload).Result()
	if err != nil {
		return "", fmt.Errorf("redis push: publish: %w", err)
	}
	if receivers == 0 {
		return "", fmt.Errorf("redis push: no gateway subscribed to %s", s.Channel)
	}
	return env.ID, nil
}
