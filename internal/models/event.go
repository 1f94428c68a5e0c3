package models

// Server-to-client event names.
const (
	EventConnected         = "connected"
	EventDepartmentJoined  = "department_joined"
	EventMessage           = "message"
	EventDepartmentMessage = "department_message"
	EventTyping            = "typing"
	EventReadReceiptAck    = "read_receipt_ack"
	EventNotify            = "notify"
	EventConversationEnded = "conversation_ended"
	EventError             = "error_message"
)

// Event is the envelope written to websocket clients.
type Event struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

// ConnectedPayload acknowledges a completed handshake.
type ConnectedPayload struct {
	OK bool `json:"ok"`
}

// DepartmentJoinedPayload confirms a department room join.
type DepartmentJoinedPayload struct {
	GroupID    string `json:"group_id"`
	Department string `json:"department,omitempty"`
}

// TypingPayload relays an ephemeral typing indicator.
type TypingPayload struct {
	From           string `json:"from"`
	Typing         bool   `json:"typing"`
	ConversationID string `json:"conversation_id,omitempty"`
}

// ReadReceiptAckPayload acknowledges a bulk read-receipt back to the reader.
type ReadReceiptAckPayload struct {
	ConversationID string `json:"conversation_id"`
}

// ConversationEndedPayload tells both participants their conversation was
// torn down.
type ConversationEndedPayload struct {
	ConversationID string `json:"conversation_id"`
}

// ErrorPayload reports a failed operation to the connection that caused it.
type ErrorPayload struct {
	Message string `json:"message"`
}
