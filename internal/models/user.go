package models

import "hr-realtime/internal/auth"

// User is the directory view of an account. Ownership of the full user
// record lives with the HR CRUD service; only the fields the realtime layer
// needs are mapped here.
type User struct {
	ID         string    `db:"id" json:"id"`
	Name       string    `db:"name" json:"name"`
	Email      string    `db:"email" json:"email"`
	Role       auth.Role `db:"role" json:"role"`
	Department string    `db:"department" json:"department"`
	IsActive   bool      `db:"is_active" json:"is_active"`
}
