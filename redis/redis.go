package redis

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

var (
	Client  *redis.Client
	once    sync.Once
	initErr error
)

// Init connects once per process. Later calls return the first result.
func Init(ctx context.Context, addr string) (*redis.Client, error) {
	once.Do(func() {
		c := redis.NewClient(&redis.Options{
			Addr: addr,
			DB:   0,
		})
		if err := c.Ping(ctx).Err(); err != nil {
			c.Close()
			initErr = fmt.Errorf("connect to redis at %s: %w", addr, err)
			return
		}
		Client = c
	})
	return Client, initErr
}

// releaseScript deletes the key only while it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Locker hands out short leases so only one instance runs a job at a time.
type Locker struct {
	client *redis.Client
}

func NewLocker(client *redis.Client) *Locker {
	return &Locker{client: client}
}

// TryLock takes key for ttl. ok is false when another holder has it.
func (l *Locker) TryLock(ctx context.Context, key string, ttl time.Duration) (release func(context.Context) error, ok bool, err error) {
	token := uuid.NewString()
	ok, err = l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("acquire lock %s: %w", key, err)
	}
	if !ok {
		return nil, false, nil
	}
	release = func(ctx context.Context) error {
		if err := releaseScript.Run(ctx, l.client, []string{key}, token).Err(); err != nil && !errors.Is(err, redis.Nil) {
			return fmt.Errorf("release lock %s: %w", key, err)
		}
		return nil
	}
	return release, true, nil
}

// Subscribe delivers every message on channel to handle until ctx is done.
// Handler errors are logged and do not stop the loop.
func Subscribe(ctx context.Context, client *redis.Client, channel string, handle func(context.Context, []byte) error, log zerolog.Logger) error {
	sub := client.Subscribe(ctx, channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", channel, err)
	}
	log.Info().Str("channel", channel).Msg("subscribed")

	msgs := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return nil
			}
			if err := handle(ctx, []byte(msg.Payload)); err != nil {
				log.Error().Err(err).Str("channel", channel).Msg("message handler failed")
			}
		}
	}
}
