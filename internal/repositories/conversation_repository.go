package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"hr-realtime/internal/models"
)

var ErrConversationNotFound = errors.New("conversation not found")

const uniqueViolation = "23505"

// ConversationRepository abstracts conversation persistence.
type ConversationRepository interface {
	FindOrCreate(ctx context.Context, userA, userB string) (models.Conversation, error)
	Get(ctx context.Context, conversationID string) (models.Conversation, error)
	Touch(ctx context.Context, conversationID string, at time.Time) error
	Delete(ctx context.Context, conversationID string) error
}

// ConversationRepo is a sqlx implementation of ConversationRepository.
type ConversationRepo struct {
	db *sqlx.DB
}

// NewConversationRepo constructs a ConversationRepo.
func NewConversationRepo(db *sqlx.DB) *ConversationRepo {
	return &ConversationRepo{db: db}
}

// FindOrCreate returns the conversation for the unordered pair, creating it
// on first contact. The participants are canonicalized to sorted order, so
// (A,B) and (B,A) resolve to the same row. A duplicate-key failure on insert
// means the other participant won the race; the row is re-fetched instead of
// surfacing an error.
func (r *ConversationRepo) FindOrCreate(ctx context.Context, userA, userB string) (models.Conversation, error) {
	if userA == userB {
		return models.Conversation{}, errors.New("cannot create conversation with self")
	}
	low, high := userA, userB
	if high < low {
		low, high = high, low
	}

	var conv models.Conversation
	query := `SELECT id, participant1, participant2, last_message_at, created_at
        FROM conversations WHERE participant1=$1 AND participant2=$2`
	err := r.db.GetContext(ctx, &conv, query, low, high)
	if err == nil {
		return conv, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return models.Conversation{}, err
	}

	err = r.db.QueryRowxContext(ctx,
		`INSERT INTO conversations (id, participant1, participant2) VALUES ($1, $2, $3)
            RETURNING id, participant1, participant2, last_message_at, created_at`,
		uuid.NewString(), low, high).StructScan(&conv)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			err = r.db.GetContext(ctx, &conv, query, low, high)
		}
		if err != nil {
			return models.Conversation{}, err
		}
	}
	return conv, nil
}

// Get fetches a conversation by id.
func (r *ConversationRepo) Get(ctx context.Context, conversationID string) (models.Conversation, error) {
	var conv models.Conversation
	err := r.db.GetContext(ctx, &conv,
		`SELECT id, participant1, participant2, last_message_at, created_at FROM conversations WHERE id=$1`,
		conversationID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Conversation{}, ErrConversationNotFound
	}
	return conv, err
}

// Touch updates the conversation's last-activity timestamp.
func (r *ConversationRepo) Touch(ctx context.Context, conversationID string, at time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE conversations SET last_message_at=$2 WHERE id=$1`, conversationID, at)
	return err
}

// Delete removes the conversation; its messages cascade with it.
func (r *ConversationRepo) Delete(ctx context.Context, conversationID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM conversations WHERE id=$1`, conversationID)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrConversationNotFound
	}
	return nil
}
