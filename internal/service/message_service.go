package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/madrasati-app/madrasati-api/internal/models"
	appErrors "github.com/madrasati-app/madrasati-api/pkg/errors"
)

type messageRepository interface {
	Create(ctx context.Context, message *models.Message) error
	CreateBatch(ctx context.Context, messages []models.Message) error
	ListForRecipient(ctx context.Context, recipientID string, page, pageSize int) ([]models.MessageDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.Message, error)
	MarkRead(ctx context.Context, id string) error
	UnreadCount(ctx context.Context, recipientID string) (int, error)
}

type audienceRepository interface {
	ParentIDsByStudent(ctx context.Context, studentID string) ([]string, error)
	ParentIDsByGradeLevel(ctx context.Context, gradeLevel string) ([]string, error)
	TeacherIDs(ctx context.Context) ([]string, error)
}

// SendMessageRequest is a single point-to-point send.
type SendMessageRequest struct {
	RecipientID string `json:"recipient_id" validate:"required"`
	Subject     string `json:"subject" validate:"required,max=200"`
	Content     string `json:"content" validate:"required,max=5000"`
	StudentID   string `json:"student_id"`
}

// SendGroupRequest fans a message out to an explicit recipient list or to a
// resolved audience.
type SendGroupRequest struct {
	RecipientIDs []string `json:"recipient_ids"`
	GradeLevel   string   `json:"grade_level"`
	StudentID    string   `json:"student_id"`
	AllTeachers  bool     `json:"all_teachers"`
	Subject      string   `json:"subject" validate:"required,max=200"`
	Content      string   `json:"content" validate:"required,max=5000"`
}

// MessageService handles point-to-point messaging and group fan-out.
type MessageService struct {
	repo      messageRepository
	audience  audienceRepository
	publisher EventPublisher
	notifier  NotificationEnqueuer
	validator *validator.Validate
	logger    *zap.Logger
}

// NewMessageService constructs a MessageService.
func NewMessageService(repo messageRepository, audience audienceRepository, publisher EventPublisher, notifier NotificationEnqueuer, validate *validator.Validate, logger *zap.Logger) *MessageService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if publisher == nil {
		publisher = nopPublisher{}
	}
	if notifier == nil {
		notifier = nopEnqueuer{}
	}
	return &MessageService{repo: repo, audience: audience, publisher: publisher, notifier: notifier, validator: validate, logger: logger}
}

// Send creates one message and raises the recipient's realtime event.
func (s *MessageService) Send(ctx context.Context, senderID string, req SendMessageRequest) (*models.Message, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid message payload")
	}
	message := &models.Message{
		SenderID:    senderID,
		RecipientID: req.RecipientID,
		Subject:     req.Subject,
		Content:     req.Content,
	}
	if req.StudentID != "" {
		sid := req.StudentID
		message.StudentID = &sid
	}
	if err := s.repo.Create(ctx, message); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to send message")
	}

	s.publishInsert(message)
	if err := s.notifier.EnqueueMessageNotification(message.ID, message.RecipientID); err != nil {
		s.logger.Warn("failed to enqueue message notification", zap.Error(err))
	}
	return message, nil
}

// SendGroup expands the audience into N individual rows written as one
// batch. An empty audience is rejected before any insert is attempted.
func (s *MessageService) SendGroup(ctx context.Context, senderID string, req SendGroupRequest) (*models.GroupSendResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid group message payload")
	}

	recipients, err := s.resolveAudience(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(recipients) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNoRecipients, "")
	}

	var studentID *string
	if req.StudentID != "" {
		sid := req.StudentID
		studentID = &sid
	}

	batchID := uuid.NewString()
	messages := make([]models.Message, 0, len(recipients))
	for _, recipientID := range recipients {
		messages = append(messages, models.Message{
			SenderID:    senderID,
			RecipientID: recipientID,
			Subject:     req.Subject,
			Content:     req.Content,
			StudentID:   studentID,
		})
	}

	if err := s.repo.CreateBatch(ctx, messages); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to send group message")
	}

	for i := range messages {
		s.publishInsert(&messages[i])
		if err := s.notifier.EnqueueMessageNotification(messages[i].ID, messages[i].RecipientID); err != nil {
			s.logger.Warn("failed to enqueue group notification", zap.Error(err))
		}
	}

	return &models.GroupSendResult{Sent: len(messages), Recipients: len(recipients), BatchID: batchID}, nil
}

// ListForRecipient returns the inbox with its unread count.
func (s *MessageService) ListForRecipient(ctx context.Context, recipientID string, page, pageSize int) (*models.Inbox, *models.Pagination, error) {
	messages, total, err := s.repo.ListForRecipient(ctx, recipientID, page, pageSize)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list messages")
	}
	unread, err := s.repo.UnreadCount(ctx, recipientID)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count unread messages")
	}
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	if messages == nil {
		messages = []models.MessageDetail{}
	}
	pagination := &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}
	return &models.Inbox{Messages: messages, UnreadCount: unread}, pagination, nil
}

// MarkRead flags a message read. Only the recipient may do so.
func (s *MessageService) MarkRead(ctx context.Context, userID, messageID string) error {
	message, err := s.repo.FindByID(ctx, messageID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "message not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load message")
	}
	if message.RecipientID != userID {
		return appErrors.Clone(appErrors.ErrForbidden, "message does not belong to user")
	}
	if err := s.repo.MarkRead(ctx, messageID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to mark message read")
	}
	return nil
}

func (s *MessageService) resolveAudience(ctx context.Context, req SendGroupRequest) ([]string, error) {
	switch {
	case len(req.RecipientIDs) > 0:
		return dedupe(req.RecipientIDs), nil
	case req.GradeLevel != "":
		ids, err := s.audience.ParentIDsByGradeLevel(ctx, req.GradeLevel)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve grade audience")
		}
		return ids, nil
	case req.StudentID != "":
		ids, err := s.audience.ParentIDsByStudent(ctx, req.StudentID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve student audience")
		}
		return ids, nil
	case req.AllTeachers:
		ids, err := s.audience.TeacherIDs(ctx)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve teacher audience")
		}
		return ids, nil
	}
	return nil, nil
}

func (s *MessageService) publishInsert(message *models.Message) {
	s.publisher.Publish(models.Event{
		Topic:     models.MessageTopic(message.RecipientID),
		Table:     "messages",
		Type:      models.EventInsert,
		Payload:   message,
		CreatedAt: time.Now().UTC(),
	})
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
