package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"hr-realtime/internal/models"
)

// DepartmentMessageRepository persists the flat department broadcast log.
type DepartmentMessageRepository interface {
	Create(ctx context.Context, groupID, department, senderID, senderName, content, kind string) (models.DepartmentMessage, error)
	ListByGroup(ctx context.Context, groupID string) ([]models.DepartmentMessage, error)
}

// DepartmentMessageRepo is a sqlx-backed repository.
type DepartmentMessageRepo struct {
	db *sqlx.DB
}

// NewDepartmentMessageRepo constructs DepartmentMessageRepo.
func NewDepartmentMessageRepo(db *sqlx.DB) *DepartmentMessageRepo {
	return &DepartmentMessageRepo{db: db}
}

// Create appends a broadcast message under the derived group id.
func (r *DepartmentMessageRepo) Create(ctx context.Context, groupID, department, senderID, senderName, content, kind string) (models.DepartmentMessage, error) {
	var msg models.DepartmentMessage
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO department_messages (id, group_id, department, sender_id, sender_name, content, kind)
            VALUES ($1, $2, $3, $4, $5, $6, $7)
            RETURNING id, group_id, department, sender_id, sender_name, content, kind, sent_at`,
		uuid.NewString(), groupID, department, senderID, senderName, content, kind).StructScan(&msg)
	return msg, err
}

// ListByGroup returns the group's messages in send order.
func (r *DepartmentMessageRepo) ListByGroup(ctx context.Context, groupID string) ([]models.DepartmentMessage, error) {
	var msgs []models.DepartmentMessage
	err := r.db.SelectContext(ctx, &msgs,
		`SELECT id, group_id, department, sender_id, sender_name, content, kind, sent_at
            FROM department_messages WHERE group_id=$1 ORDER BY sent_at ASC`,
		groupID)
	return msgs, err
}
