// Package directory resolves users and department membership. It is the
// realtime layer's read-only view of the HR user store.
package directory

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"hr-realtime/internal/models"
)

// ErrUserNotFound is returned when no active account matches the id.
var ErrUserNotFound = errors.New("user not found")

// UserDirectory abstracts user lookups for the session manager and the
// broadcast pipeline.
type UserDirectory interface {
	ResolveUser(ctx context.Context, userID string) (models.User, error)
	ListDepartmentMembers(ctx context.Context, department string) ([]string, error)
}

// SQLDirectory is a sqlx implementation of UserDirectory.
type SQLDirectory struct {
	db *sqlx.DB
}

// NewSQLDirectory constructs a SQLDirectory.
func NewSQLDirectory(db *sqlx.DB) *SQLDirectory {
	return &SQLDirectory{db: db}
}

// ResolveUser fetches the directory record for an active user.
func (d *SQLDirectory) ResolveUser(ctx context.Context, userID string) (models.User, error) {
	var user models.User
	err := d.db.GetContext(ctx, &user,
		`SELECT id, name, email, role, department, is_active FROM users WHERE id=$1 AND is_active = TRUE`,
		userID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrUserNotFound
	}
	return user, err
}

// ListDepartmentMembers returns ids of active users in the department.
func (d *SQLDirectory) ListDepartmentMembers(ctx context.Context, department string) ([]string, error) {
	var ids []string
	err := d.db.SelectContext(ctx, &ids,
		`SELECT id FROM users WHERE department=$1 AND is_active = TRUE`, department)
	return ids, err
}
