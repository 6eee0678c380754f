package services

import (
	"context"
	"fmt"

	"github.com/calegria/shotwork/internal/shared"
	"github.com/charmbracelet/log"
	"github.com/redis/go-redis/v9"
)

// RedisNotifier publishes task events as JSON to a Redis channel.
//
// The chat bot subscribes to the channel and posts task cards to group
// chats. Publishing happens after the aggregate is persisted, so a dropped
// event can never corrupt task state.
type RedisNotifier struct {
	client  *redis.Client
	channel string
}

var _ Notifier = (*RedisNotifier)(nil)

// NewRedisNotifier connects to Redis and verifies the connection.
func NewRedisNotifier(cfg shared.RedisConfig) (*RedisNotifier, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("%w: redis address not configured", shared.ErrServiceUnavailable)
	}

	channel := cfg.Channel
	if channel == "" {
		channel = "shotwork:events"
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: redis connect: %v", shared.ErrServiceUnavailable, err)
	}

	return &RedisNotifier{client: client, channel: channel}, nil
}

// Publish marshals the event and publishes it to the configured channel.
func (n *RedisNotifier) Publish(ctx context.Context, event TaskEvent) error {
	payload, err := shared.MarshalJSON(event, false)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	if err := n.client.Publish(ctx, n.channel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}

// Name implements [Notifier].
func (n *RedisNotifier) Name() string { return "redis" }

// Close releases the underlying Redis connection.
func (n *RedisNotifier) Close() error {
	return n.client.Close()
}

// LogNotifier writes events to the application log.
//
// Used when no Redis address is configured, so event flow stays observable
// in development and tests.
type LogNotifier struct {
	logger *log.Logger
}

var _ Notifier = (*LogNotifier)(nil)

// NewLogNotifier creates a notifier backed by the given logger.
func NewLogNotifier(logger *log.Logger) *LogNotifier {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &LogNotifier{logger: logger}
}

// Publish logs the event at info level.
func (n *LogNotifier) Publish(ctx context.Context, event TaskEvent) error {
	n.logger.Info("task event",
		"type", event.Type,
		"task_id", event.TaskID,
		"status", event.Status,
		"actor", event.ActorID,
		"completed_sets", event.CompletedSets,
	)
	return nil
}

// Name implements [Notifier].
func (n *LogNotifier) Name() string { return "log" }
