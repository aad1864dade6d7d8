package realtime

import (
	"sync"

	"go.uber.org/zap"

	"github.com/madrasati-app/madrasati-api/internal/models"
)

// subscriptionKey identifies one live channel. At most one subscription
// exists per key; resubscribing replaces and closes the previous channel.
type subscriptionKey struct {
	userID string
	topic  string
}

// Subscription is a live event feed for one (user, topic) pair.
type Subscription struct {
	UserID string
	Topic  string
	C      <-chan models.Event

	hub *Hub
	key subscriptionKey
	ch  chan models.Event
}

// Close detaches the subscription from the hub and closes its channel. Safe
// to call after the hub already replaced it.
func (s *Subscription) Close() {
	s.hub.unsubscribe(s.key, s.ch)
}

// Hub fans events out to subscribed sessions. Each (user, topic) pair owns
// exactly one channel at any moment.
type Hub struct {
	mu         sync.Mutex
	subs       map[subscriptionKey]chan models.Event
	bufferSize int
	closed     bool
	logger     *zap.Logger
}

// NewHub constructs a Hub.
func NewHub(bufferSize int, logger *zap.Logger) *Hub {
	if bufferSize <= 0 {
		bufferSize = 16
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		subs:       make(map[subscriptionKey]chan models.Event),
		bufferSize: bufferSize,
		logger:     logger,
	}
}

// Subscribe registers interest in a topic. A second subscribe for the same
// (user, topic) closes the earlier channel so stale readers drain and exit.
func (h *Hub) Subscribe(userID, topic string) *Subscription {
	key := subscriptionKey{userID: userID, topic: topic}
	ch := make(chan models.Event, h.bufferSize)

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		close(ch)
		return &Subscription{UserID: userID, Topic: topic, C: ch, hub: h, key: key, ch: ch}
	}
	if prev, ok := h.subs[key]; ok {
		close(prev)
	}
	h.subs[key] = ch
	h.mu.Unlock()

	return &Subscription{UserID: userID, Topic: topic, C: ch, hub: h, key: key, ch: ch}
}

// Publish delivers the event to every subscription on its topic. Slow
// consumers with a full buffer drop the event rather than block the caller.
func (h *Hub) Publish(event models.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	for key, ch := range h.subs {
		if key.topic != event.Topic {
			continue
		}
		select {
		case ch <- event:
		default:
			h.logger.Warn("realtime buffer full, dropping event",
				zap.String("user_id", key.userID),
				zap.String("topic", key.topic))
		}
	}
}

// SubscriptionCount returns the number of live subscriptions.
func (h *Hub) SubscriptionCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Close tears down every subscription. Subsequent Subscribe calls return
// already-closed channels.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for key, ch := range h.subs {
		close(ch)
		delete(h.subs, key)
	}
}

// unsubscribe removes the pair only if ch is still the registered channel,
// so closing a replaced subscription cannot tear down its successor.
func (h *Hub) unsubscribe(key subscriptionKey, ch chan models.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	current, ok := h.subs[key]
	if !ok || current != ch {
		return
	}
	delete(h.subs, key)
	close(ch)
}
