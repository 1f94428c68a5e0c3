package models

import "time"

// DepartmentMessage is a broadcast message in a department room. There is no
// conversation wrapper; the log is flat and keyed by the derived group id.
type DepartmentMessage struct {
	ID         string    `db:"id" json:"id"`
	GroupID    string    `db:"group_id" json:"group_id"`
	Department string    `db:"department" json:"department"`
	SenderID   string    `db:"sender_id" json:"sender_id"`
	SenderName string    `db:"sender_name" json:"sender_name"`
	Content    string    `db:"content" json:"content"`
	Kind       string    `db:"kind" json:"kind"`
	SentAt     time.Time `db:"sent_at" json:"sent_at"`
}
