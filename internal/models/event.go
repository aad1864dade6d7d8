package models

import "time"

// EventType identifies the change feed event kind.
type EventType string

const (
	EventInsert EventType = "INSERT"
	EventUpdate EventType = "UPDATE"
)

// Event is a realtime change feed entry pushed to subscribed sessions.
// Topic is either "messages:<user_id>" or "announcements".
type Event struct {
	Topic     string      `json:"topic"`
	Table     string      `json:"table"`
	Type      EventType   `json:"type"`
	Payload   interface{} `json:"payload"`
	CreatedAt time.Time   `json:"created_at"`
}

// MessageTopic builds the per-recipient message topic.
func MessageTopic(userID string) string {
	return "messages:" + userID
}

// AnnouncementsTopic is the shared announcements topic.
const AnnouncementsTopic = "announcements"
