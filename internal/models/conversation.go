package models

import "time"

// Conversation is a private conversation between exactly two users. The
// participant columns are stored in canonical (sorted) order so that any
// unordered pair maps to at most one row.
type Conversation struct {
	ID            string    `db:"id" json:"id"`
	Participant1  string    `db:"participant1" json:"participant1"`
	Participant2  string    `db:"participant2" json:"participant2"`
	LastMessageAt time.Time `db:"last_message_at" json:"last_message_at"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// HasParticipant reports whether the user belongs to the conversation.
func (c Conversation) HasParticipant(userID string) bool {
	return c.Participant1 == userID || c.Participant2 == userID
}
