package models

import "time"

// EventType enumerates the activity events that may fan out to an inbox.
type EventType string

const (
	EventReaction        EventType = "reaction"
	EventCommentReaction EventType = "commentReaction"
	EventMention         EventType = "mention"
	EventReply           EventType = "reply"
	EventComment         EventType = "comment"
)

// KnownEventType reports whether t is on the fan-out allow-list
func KnownEventType(t EventType) bool {
	switch t {
	case EventReaction, EventCommentReaction, EventMention, EventReply, EventComment:
		return true
	}
	return false
}

// InboxEntry is a durable per-recipient notification record (PostgreSQL).
// ActorName and DreamTitle are snapshots taken at event time and are never
// retroactively updated.
type InboxEntry struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Type         EventType `json:"type" gorm:"size:30;index"`
	ActorUID     string    `json:"actor_uid" gorm:"size:128;index"`
	ActorName    string    `json:"actor_name" gorm:"size:100"`
	RecipientUID string    `json:"recipient_uid" gorm:"size:128;index"`
	DreamID      string    `json:"dream_id,omitempty"`
	DreamTitle   string    `json:"dream_title,omitempty"`
	Symbol       string    `json:"symbol,omitempty" gorm:"size:16"`
	CommentID    uint      `json:"comment_id,omitempty"`
	DedupeKey    string    `json:"-" gorm:"size:64;uniqueIndex"`
	IsRead       bool      `json:"is_read" gorm:"default:false;index"`
	CreatedAt    time.Time `json:"created_at" gorm:"index"`
}
