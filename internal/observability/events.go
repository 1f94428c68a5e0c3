package observability

// EventEnvelope is the schema for events mirrored to the broker.
type EventEnvelope struct {
	EventType string `json:"event_type"`
	EventName string `json:"event_name"`
	Payload   any    `json:"payload"`
}

// Routing keys for the topic exchange.
const (
	RoutingKeyWS            = "realtime.ws"
	RoutingKeyNotifications = "realtime.notifications"
)

// WSLifecyclePayload describes a websocket connect/disconnect/error event.
type WSLifecyclePayload struct {
	ConnID     string `json:"conn_id"`
	UserID     string `json:"user_id"`
	Role       string `json:"role"`
	IP         string `json:"ip"`
	DeviceID   string `json:"device_id"`
	DurationMS int64  `json:"duration_ms"`
	Reason     string `json:"reason"`
}

// BuildHeaders assembles correlation headers for broker messages.
func BuildHeaders(requestID, traceID string) map[string]string {
	headers := map[string]string{}
	if requestID != "" {
		headers["x-request-id"] = requestID
	}
	if traceID != "" {
		headers["trace_id"] = traceID
	}
	return headers
}
