package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"hr-realtime/internal/models"
)

// MessageRepository defines interactions for direct chat messages.
type MessageRepository interface {
	Create(ctx context.Context, conversationID, senderID, recipientID, content, kind string) (models.ChatMessage, error)
	MarkConversationRead(ctx context.Context, conversationID, readerID string) (int64, error)
	ListByConversation(ctx context.Context, conversationID string) ([]models.ChatMessage, error)
}

// MessageRepo is a sqlx-backed repository.
type MessageRepo struct {
	db *sqlx.DB
}

// NewMessageRepo constructs MessageRepo.
func NewMessageRepo(db *sqlx.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

// Create stores a direct message with read_at unset.
func (r *MessageRepo) Create(ctx context.Context, conversationID, senderID, recipientID, content, kind string) (models.ChatMessage, error) {
	var msg models.ChatMessage
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO chat_messages (id, conversation_id, sender_id, recipient_id, content, kind)
            VALUES ($1, $2, $3, $4, $5, $6)
            RETURNING id, conversation_id, sender_id, recipient_id, content, kind, read_at, created_at`,
		uuid.NewString(), conversationID, senderID, recipientID, content, kind).StructScan(&msg)
	return msg, err
}

// MarkConversationRead sets read_at on every unread message in the
// conversation addressed to the reader. Re-invoking once everything is read
// affects zero rows.
func (r *MessageRepo) MarkConversationRead(ctx context.Context, conversationID, readerID string) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE chat_messages SET read_at=NOW()
            WHERE conversation_id=$1 AND recipient_id=$2 AND read_at IS NULL`,
		conversationID, readerID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ListByConversation returns the conversation's messages in creation order.
func (r *MessageRepo) ListByConversation(ctx context.Context, conversationID string) ([]models.ChatMessage, error) {
	var msgs []models.ChatMessage
	err := r.db.SelectContext(ctx, &msgs,
		`SELECT id, conversation_id, sender_id, recipient_id, content, kind, read_at, created_at
            FROM chat_messages WHERE conversation_id=$1 ORDER BY created_at ASC`,
		conversationID)
	return msgs, err
}
