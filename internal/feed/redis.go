package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/redis/go-redis/v9"

	"github.com/desertthunder/roster/internal/models"
	"github.com/desertthunder/roster/internal/shared"
)

// DefaultChannel is the pub/sub channel change events travel on.
const DefaultChannel = "roster:changes"

// NewRedisClient connects to the Redis server described by cfg.
// It pings with a short timeout and returns an error when the server is unreachable.
func NewRedisClient(ctx context.Context, cfg shared.FeedConfig) (*redis.Client, error) {
	addr := cfg.RedisAddr
	if addr == "" {
		addr = "localhost:6379"
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: redis at %s: %v", shared.ErrServiceUnavailable, addr, err)
	}
	return client, nil
}

// RedisBroker shares change events between processes over Redis pub/sub, so a
// reconcile daemon sees writes made by the CLI or the HTTP server.
type RedisBroker struct {
	client  *redis.Client
	channel string
	logger  *log.Logger
}

// NewRedisBroker wraps an existing client. An empty channel means [DefaultChannel].
func NewRedisBroker(client *redis.Client, channel string, logger *log.Logger) *RedisBroker {
	if channel == "" {
		channel = DefaultChannel
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &RedisBroker{client: client, channel: channel, logger: logger}
}

func (b *RedisBroker) Publish(ctx context.Context, e Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to encode change event: %w", err)
	}
	if err := b.client.Publish(ctx, b.channel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish change event: %w", err)
	}
	return nil
}

func (b *RedisBroker) Listen(ctx context.Context) (<-chan Event, func(), error) {
	pubsub := b.client.Subscribe(ctx, b.channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, nil, fmt.Errorf("failed to subscribe to %s: %w", b.channel, err)
	}

	out := make(chan Event, listenerBuffer)
	done := make(chan struct{})
	var once sync.Once
	stop := func() {
		once.Do(func() {
			close(done)
			pubsub.Close()
		})
	}

	go func() {
		defer close(out)
		msgs := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				stop()
				return
			case <-done:
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				e, err := decodeEvent(msg.Payload)
				if err != nil {
					b.logger.Warn("dropping malformed change event", "channel", b.channel, "error", err)
					continue
				}
				select {
				case out <- e:
				default:
				}
			}
		}
	}()

	return out, stop, nil
}

func (b *RedisBroker) Close() error {
	return b.client.Close()
}

func decodeEvent(payload string) (Event, error) {
	var e Event
	if err := json.Unmarshal([]byte(payload), &e); err != nil {
		return Event{}, err
	}
	if !e.Collection.Valid() {
		return Event{}, fmt.Errorf("%w: %q", models.ErrUnknownCollection, e.Collection)
	}
	return e, nil
}

// New builds the broker selected by cfg.Backend: "local" (default) or "redis".
func New(ctx context.Context, cfg shared.FeedConfig, logger *log.Logger) (Broker, error) {
	switch cfg.Backend {
	case "", "local":
		return NewLocalBroker(), nil
	case "redis":
		client, err := NewRedisClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return NewRedisBroker(client, cfg.Channel, logger), nil
	default:
		return nil, fmt.Errorf("%w: unknown feed backend %q", shared.ErrInvalidConfig, cfg.Backend)
	}
}
