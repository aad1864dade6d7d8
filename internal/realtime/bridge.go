package realtime

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/madrasati-app/madrasati-api/internal/models"
)

// relayEnvelope carries an event across instances. Origin lets an instance
// skip events it already fanned out locally.
type relayEnvelope struct {
	Origin string       `json:"origin"`
	Event  models.Event `json:"event"`
}

// Bridge relays events between API instances over a Redis channel so a
// session connected to one instance still sees writes made through another.
type Bridge struct {
	id      string
	client  *redis.Client
	channel string
	hub     *Hub
	logger  *zap.Logger
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewBridge constructs a Bridge. The client may be nil, in which case Publish
// degrades to local-only fan-out.
func NewBridge(client *redis.Client, channel string, hub *Hub, logger *zap.Logger) *Bridge {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bridge{id: uuid.NewString(), client: client, channel: channel, hub: hub, logger: logger}
}

// Publish pushes an event to the local hub and, when Redis is attached, to
// the shared channel for other instances.
func (b *Bridge) Publish(event models.Event) {
	b.hub.Publish(event)
	if b.client == nil {
		return
	}
	raw, err := json.Marshal(relayEnvelope{Origin: b.id, Event: event})
	if err != nil {
		b.logger.Warn("failed to encode realtime event", zap.Error(err))
		return
	}
	if err := b.client.Publish(context.Background(), b.channel, raw).Err(); err != nil {
		b.logger.Warn("failed to relay realtime event", zap.Error(err))
	}
}

// NotifyMessage replays a queued delivery notice onto the recipient's
// message topic.
func (b *Bridge) NotifyMessage(ctx context.Context, messageID, recipientID string) error {
	b.hub.Publish(models.Event{
		Topic:   models.MessageTopic(recipientID),
		Table:   "messages",
		Type:    models.EventUpdate,
		Payload: map[string]string{"message_id": messageID, "kind": "delivery"},
	})
	return nil
}

// Start subscribes to the shared channel and replays remote events into the
// local hub. No-op without a Redis client.
func (b *Bridge) Start(ctx context.Context) {
	if b.client == nil {
		return
	}
	ctx, b.cancel = context.WithCancel(ctx)
	b.done = make(chan struct{})
	sub := b.client.Subscribe(ctx, b.channel)

	go func() {
		defer close(b.done)
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var envelope relayEnvelope
				if err := json.Unmarshal([]byte(msg.Payload), &envelope); err != nil {
					b.logger.Warn("discarding malformed realtime event", zap.Error(err))
					continue
				}
				if envelope.Origin == b.id {
					continue
				}
				b.hub.Publish(envelope.Event)
			}
		}
	}()
}

// Stop halts the relay goroutine.
func (b *Bridge) Stop() {
	if b.cancel == nil {
		return
	}
	b.cancel()
	<-b.done
}
