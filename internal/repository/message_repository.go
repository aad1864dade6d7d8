package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/madrasati-app/madrasati-api/internal/models"
)

// MessageRepository manages persistence for point-to-point messages.
type MessageRepository struct {
	db *sqlx.DB
}

// NewMessageRepository constructs a MessageRepository.
func NewMessageRepository(db *sqlx.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// Create inserts a single message.
func (r *MessageRepository) Create(ctx context.Context, message *models.Message) error {
	if message.ID == "" {
		message.ID = uuid.NewString()
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO messages (id, sender_id, recipient_id, subject, content, student_id, is_read, created_at)
VALUES (:id, :sender_id, :recipient_id, :subject, :content, :student_id, :is_read, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, message); err != nil {
		return fmt.Errorf("create message: %w", err)
	}
	return nil
}

// CreateBatch inserts all messages as one multi-row statement inside a
// transaction, so a group send either fully persists or not at all.
func (r *MessageRepository) CreateBatch(ctx context.Context, messages []models.Message) error {
	if len(messages) == 0 {
		return nil
	}
	now := time.Now().UTC()
	values := make([]string, 0, len(messages))
	args := make([]interface{}, 0, len(messages)*8)
	for i := range messages {
		m := &messages[i]
		if m.ID == "" {
			m.ID = uuid.NewString()
		}
		if m.CreatedAt.IsZero() {
			m.CreatedAt = now
		}
		base := len(args)
		values = append(values, fmt.Sprintf("($%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8))
		args = append(args, m.ID, m.SenderID, m.RecipientID, m.Subject, m.Content, m.StudentID, m.IsRead, m.CreatedAt)
	}

	query := `INSERT INTO messages (id, sender_id, recipient_id, subject, content, student_id, is_read, created_at) VALUES ` +
		strings.Join(values, ", ")

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin message batch: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert message batch: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit message batch: %w", err)
	}
	return nil
}

// ListForRecipient returns the recipient's messages, newest first, joined
// with the sender's display name.
func (r *MessageRepository) ListForRecipient(ctx context.Context, recipientID string, page, pageSize int) ([]models.MessageDetail, int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	query := fmt.Sprintf(`SELECT m.id, m.sender_id, m.recipient_id, m.subject, m.content, m.student_id, m.is_read, m.created_at, u.full_name AS sender_name
FROM messages m
JOIN users u ON u.id = m.sender_id
WHERE m.recipient_id = $1
ORDER BY m.created_at DESC
LIMIT %d OFFSET %d`, pageSize, offset)
	var messages []models.MessageDetail
	if err := r.db.SelectContext(ctx, &messages, query, recipientID); err != nil {
		return nil, 0, fmt.Errorf("list messages: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM messages WHERE recipient_id = $1`, recipientID); err != nil {
		return nil, 0, fmt.Errorf("count messages: %w", err)
	}
	return messages, total, nil
}

// FindByID loads a message by identifier.
func (r *MessageRepository) FindByID(ctx context.Context, id string) (*models.Message, error) {
	const query = `SELECT id, sender_id, recipient_id, subject, content, student_id, is_read, created_at FROM messages WHERE id = $1`
	var message models.Message
	if err := r.db.GetContext(ctx, &message, query, id); err != nil {
		return nil, err
	}
	return &message, nil
}

// MarkRead flags a message as read.
func (r *MessageRepository) MarkRead(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE messages SET is_read = true WHERE id = $1`, id); err != nil {
		return fmt.Errorf("mark message read: %w", err)
	}
	return nil
}

// UnreadCount returns the number of unread messages for the recipient.
func (r *MessageRepository) UnreadCount(ctx context.Context, recipientID string) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM messages WHERE recipient_id = $1 AND is_read = false`, recipientID); err != nil {
		return 0, fmt.Errorf("count unread: %w", err)
	}
	return count, nil
}
