package models

import "time"

// Message kinds accepted for chat and department messages.
const (
	KindText  = "text"
	KindImage = "image"
	KindFile  = "file"
)

// ValidMessageKind reports whether k is an accepted message kind.
func ValidMessageKind(k string) bool {
	switch k {
	case KindText, KindImage, KindFile:
		return true
	}
	return false
}

// ChatMessage is a persisted direct message. Content is immutable; only
// ReadAt is ever updated after creation.
type ChatMessage struct {
	ID             string     `db:"id" json:"id"`
	ConversationID string     `db:"conversation_id" json:"conversation_id"`
	SenderID       string     `db:"sender_id" json:"sender_id"`
	RecipientID    string     `db:"recipient_id" json:"recipient_id"`
	Content        string     `db:"content" json:"content"`
	Kind           string     `db:"kind" json:"kind"`
	ReadAt         *time.Time `db:"read_at" json:"read_at"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
}
