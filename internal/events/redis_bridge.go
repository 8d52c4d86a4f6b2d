package events

import (
	"context"
	"encoding/json"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Channel is the Redis Pub/Sub channel downstream notification consumers
// subscribe to.
const Channel = "jobtracker:events"

// RedisBridge republishes dispatched events to Redis Pub/Sub so consumers
// outside this process (mailers, sync agents) can react to lifecycle
// changes. Publish failures are logged and swallowed; delivery semantics
// are the consumer's concern.
type RedisBridge struct {
	client *goredis.Client
	logger *zap.Logger
}

// NewRedisBridge constructs the bridge.
func NewRedisBridge(client *goredis.Client, logger *zap.Logger) *RedisBridge {
	return &RedisBridge{client: client, logger: logger}
}

// Register subscribes the bridge to every forwarded event type.
func (b *RedisBridge) Register(dispatcher Dispatcher) {
	if b == nil || dispatcher == nil {
		return
	}
	for _, eventType := range []EventType{
		EventApplicationCreated,
		EventApplicationStatusChanged,
		EventApplicationDeleted,
	} {
		dispatcher.Subscribe(eventType, b.forward)
	}
}

func (b *RedisBridge) forward(ctx context.Context, event Event) error {
	if b.client == nil {
		return nil
	}
	data, err := json.Marshal(event)
	if err != nil {
		b.logger.Error("marshal event for redis", zap.Error(err), zap.String("event_id", event.ID))
		return nil
	}
	if err := b.client.Publish(ctx, Channel, data).Err(); err != nil {
		b.logger.Warn("publish event to redis",
			zap.Error(err),
			zap.String("event_type", string(event.Type)),
			zap.String("application_id", event.ApplicationID))
	}
	return nil
}
