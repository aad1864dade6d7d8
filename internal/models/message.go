package models

import "time"

// Message is a point-to-point message row. Group sends are expanded into N
// individual rows, one per recipient.
type Message struct {
	ID          string    `db:"id" json:"id"`
	SenderID    string    `db:"sender_id" json:"sender_id"`
	RecipientID string    `db:"recipient_id" json:"recipient_id"`
	Subject     string    `db:"subject" json:"subject"`
	Content     string    `db:"content" json:"content"`
	StudentID   *string   `db:"student_id" json:"student_id,omitempty"`
	IsRead      bool      `db:"is_read" json:"is_read"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// MessageDetail joins the sender name for inbox rendering.
type MessageDetail struct {
	Message
	SenderName string `db:"sender_name" json:"sender_name"`
}

// Inbox bundles messages with the unread count.
type Inbox struct {
	Messages    []MessageDetail `json:"messages"`
	UnreadCount int             `json:"unread_count"`
}

// GroupSendResult reports a completed group fan-out.
type GroupSendResult struct {
	Sent       int    `json:"sent"`
	Recipients int    `json:"recipients"`
	BatchID    string `json:"batch_id"`
}
