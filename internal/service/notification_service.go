package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/madrasati-app/madrasati-api/pkg/config"
	"github.com/madrasati-app/madrasati-api/pkg/jobs"
)

const jobTypeMessageNotification = "message_notification"

// messageNotificationPayload is carried on the queue for each inserted
// message.
type messageNotificationPayload struct {
	MessageID   string
	RecipientID string
}

// NotificationSink receives delivery notices off the queue. The realtime hub
// satisfies this; a push gateway could be wired behind the same interface.
type NotificationSink interface {
	NotifyMessage(ctx context.Context, messageID, recipientID string) error
}

// NotificationService dispatches post-insert notices through a background
// worker queue so message writes never wait on delivery.
type NotificationService struct {
	queue  *jobs.Queue
	logger *zap.Logger
}

// NewNotificationService builds the dispatch queue around the sink.
func NewNotificationService(cfg config.NotificationsConfig, sink NotificationSink, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	handler := func(ctx context.Context, job jobs.Job) error {
		payload, ok := job.Payload.(messageNotificationPayload)
		if !ok {
			return fmt.Errorf("unexpected payload type for job %s", job.ID)
		}
		return sink.NotifyMessage(ctx, payload.MessageID, payload.RecipientID)
	}
	queue := jobs.NewQueue("notifications", handler, jobs.QueueConfig{
		Workers:    cfg.Workers,
		BufferSize: cfg.BufferSize,
		MaxRetries: cfg.MaxRetries,
		RetryDelay: cfg.RetryDelay,
		Logger:     logger,
	})
	return &NotificationService{queue: queue, logger: logger}
}

// Start launches the workers.
func (s *NotificationService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the workers.
func (s *NotificationService) Stop() {
	s.queue.Stop()
}

// EnqueueMessageNotification queues a delivery notice for one recipient.
func (s *NotificationService) EnqueueMessageNotification(messageID, recipientID string) error {
	return s.queue.Enqueue(jobs.Job{
		ID:   uuid.NewString(),
		Type: jobTypeMessageNotification,
		Payload: messageNotificationPayload{
			MessageID:   messageID,
			RecipientID: recipientID,
		},
	})
}
