package ws

import (
	"time"

	"hr-realtime/internal/auth"
)

// Session is the typed per-connection state captured once at handshake. The
// role recorded here is the only role ever consulted for privileged
// operations on this connection; client-sent role fields are never trusted.
type Session struct {
	ConnID      string
	UserID      string
	Role        auth.Role
	IP          string
	DeviceID    string
	RequestID   string
	TraceID     string
	ConnectedAt time.Time
}
