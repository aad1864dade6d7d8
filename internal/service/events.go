package service

import "github.com/madrasati-app/madrasati-api/internal/models"

// EventPublisher pushes change feed events to subscribed sessions. The
// realtime hub satisfies this; a nil-safe no-op is used in tests.
type EventPublisher interface {
	Publish(event models.Event)
}

// NotificationEnqueuer hands off post-insert notification work. The jobs
// queue adapter satisfies this.
type NotificationEnqueuer interface {
	EnqueueMessageNotification(messageID, recipientID string) error
}

type nopPublisher struct{}

func (nopPublisher) Publish(models.Event) {}

type nopEnqueuer struct{}

func (nopEnqueuer) EnqueueMessageNotification(string, string) error { return nil }
