package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"hr-realtime/internal/auth"
	"hr-realtime/internal/chat"
	"hr-realtime/internal/directory"
	"hr-realtime/internal/models"
	"hr-realtime/internal/observability"
	"hr-realtime/pkg/logger"
)

// TokenVerifier resolves a presented credential to an identity.
type TokenVerifier interface {
	Verify(token string) (auth.Identity, error)
}

// ChatService is the slice of the delivery pipeline the event loop drives.
type ChatService interface {
	SendDirect(ctx context.Context, senderID string, in chat.DirectMessage) (models.ChatMessage, error)
	SendDepartmentBroadcast(ctx context.Context, senderID string, in chat.DepartmentBroadcast) (models.DepartmentMessage, error)
	MarkRead(ctx context.Context, conversationID, readerID string) error
	SignalTyping(senderID, to, conversationID string, typing bool)
	EndConversation(ctx context.Context, requesterRole auth.Role, conversationID string) error
}

// Handler upgrades connections, runs the handshake state machine and
// dispatches client events.
type Handler struct {
	hub      *Hub
	verifier TokenVerifier
	dir      directory.UserDirectory
	svc      ChatService
	events   observability.Publisher
	log      *logger.Logger
}

// NewHandler constructs the websocket handler.
func NewHandler(hub *Hub, verifier TokenVerifier, dir directory.UserDirectory, svc ChatService, events observability.Publisher, log *logger.Logger) *Handler {
	return &Handler{hub: hub, verifier: verifier, dir: dir, svc: svc, events: events, log: log}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type clientFrame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type sendMessagePayload struct {
	ConversationID string `json:"conversation_id"`
	To             string `json:"to"`
	Content        string `json:"content"`
	Kind           string `json:"kind"`
}

type departmentMessagePayload struct {
	Content          string `json:"content"`
	Kind             string `json:"kind"`
	TargetDepartment string `json:"target_department"`
}

type typingPayload struct {
	To             string `json:"to"`
	ConversationID string `json:"conversation_id"`
	Typing         bool   `json:"typing"`
}

type readReceiptPayload struct {
	ConversationID string `json:"conversation_id"`
}

type joinDepartmentPayload struct {
	Department string `json:"department"`
	GroupID    string `json:"group_id"`
}

type endConversationPayload struct {
	ConversationID string `json:"conversation_id"`
}

// Handle authenticates, upgrades and registers a connection, then serves its
// event loop. An invalid credential refuses the handshake before the upgrade
// completes; no session state is ever created for it.
func (h *Handler) Handle(c *gin.Context) {
	ctx, span := otel.Tracer("hr-realtime/ws").Start(c.Request.Context(), "ws.handshake")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	identity, err := h.verifier.Verify(bearerToken(c))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	meta := observability.CaptureRequestMeta(c.Request)
	session := Session{
		ConnID:      uuid.NewString(),
		UserID:      identity.UserID,
		Role:        identity.Role,
		IP:          meta.IP,
		DeviceID:    meta.DeviceID,
		RequestID:   meta.RequestID,
		TraceID:     span.SpanContext().TraceID().String(),
		ConnectedAt: time.Now(),
	}

	h.hub.Register(conn, session)
	h.hub.Join(conn, chat.UserRoom(session.UserID))
	h.hub.Emit(chat.UserRoom(session.UserID), models.Event{
		Event: models.EventConnected,
		Data:  models.ConnectedPayload{OK: true},
	})

	h.autoJoinDepartment(ctx, conn, session)

	observability.IncWSActive()
	h.publishLifecycle(ctx, "ws_connect", session, "")

	go h.readLoop(conn, session)
}

// autoJoinDepartment joins staff into their own department room. A directory
// failure degrades to the personal room only; the handshake never fails for
// it.
func (h *Handler) autoJoinDepartment(ctx context.Context, conn *websocket.Conn, session Session) {
	info, err := h.dir.ResolveUser(ctx, session.UserID)
	if err != nil {
		h.log.Warn("department lookup failed, personal room only",
			zap.String("user_id", session.UserID),
			zap.Error(err))
		return
	}
	if info.Role != auth.RoleStaff || strings.TrimSpace(info.Department) == "" {
		return
	}

	groupID := chat.DepartmentGroupID(info.Department)
	h.hub.Join(conn, chat.DepartmentRoom(groupID))
	h.hub.EmitTo(conn, models.Event{
		Event: models.EventDepartmentJoined,
		Data:  models.DepartmentJoinedPayload{GroupID: groupID, Department: info.Department},
	})
}

func (h *Handler) readLoop(conn *websocket.Conn, session Session) {
	var closeReason string
	defer func() {
		h.hub.Unregister(conn)
		conn.Close()
		observability.DecWSActive()
		h.publishLifecycle(context.Background(), "ws_disconnect", session, closeReason)
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			closeReason = err.Error()
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.publishLifecycle(context.Background(), "ws_error", session, closeReason)
			}
			return
		}

		var frame clientFrame
		if err := json.Unmarshal(raw, &frame); err != nil {
			h.hub.EmitTo(conn, errorEvent("malformed frame"))
			continue
		}
		h.dispatch(conn, session, frame)
	}
}

func (h *Handler) dispatch(conn *websocket.Conn, session Session, frame clientFrame) {
	ctx := context.Background()

	switch frame.Event {
	case "send_message":
		var p sendMessagePayload
		if err := json.Unmarshal(frame.Data, &p); err != nil {
			h.hub.EmitTo(conn, errorEvent("malformed payload"))
			return
		}
		_, err := h.svc.SendDirect(ctx, session.UserID, chat.DirectMessage{
			ConversationID: p.ConversationID,
			To:             p.To,
			Content:        p.Content,
			Kind:           p.Kind,
		})
		if err != nil {
			h.emitFailure(conn, session, "send message", err)
		}

	case "send_department_message":
		var p departmentMessagePayload
		if err := json.Unmarshal(frame.Data, &p); err != nil {
			h.hub.EmitTo(conn, errorEvent("malformed payload"))
			return
		}
		_, err := h.svc.SendDepartmentBroadcast(ctx, session.UserID, chat.DepartmentBroadcast{
			Content:          p.Content,
			Kind:             p.Kind,
			TargetDepartment: p.TargetDepartment,
		})
		if err != nil {
			h.emitFailure(conn, session, "send department message", err)
		}

	case "typing":
		var p typingPayload
		if err := json.Unmarshal(frame.Data, &p); err != nil {
			return
		}
		h.svc.SignalTyping(session.UserID, p.To, p.ConversationID, p.Typing)

	case "read_receipt":
		var p readReceiptPayload
		if err := json.Unmarshal(frame.Data, &p); err != nil {
			return
		}
		if err := h.svc.MarkRead(ctx, p.ConversationID, session.UserID); err != nil {
			h.emitFailure(conn, session, "read receipt", err)
		}

	case "join_department":
		var p joinDepartmentPayload
		if err := json.Unmarshal(frame.Data, &p); err != nil {
			return
		}
		h.joinDepartment(conn, session, p)

	case "end_conversation":
		var p endConversationPayload
		if err := json.Unmarshal(frame.Data, &p); err != nil {
			return
		}
		if err := h.svc.EndConversation(ctx, session.Role, p.ConversationID); err != nil {
			h.emitFailure(conn, session, "end conversation", err)
		}

	default:
		h.log.Debug("unknown client event",
			zap.String("event", frame.Event),
			zap.String("conn_id", session.ConnID))
	}
}

// joinDepartment lets elevated roles observe an arbitrary department room.
// Staff requests are silently ignored: their only department room is the one
// established automatically at handshake.
func (h *Handler) joinDepartment(conn *websocket.Conn, session Session, p joinDepartmentPayload) {
	if !auth.CanJoinDepartment(session.Role) {
		return
	}

	groupID := p.GroupID
	if groupID == "" && p.Department != "" {
		groupID = chat.DepartmentGroupID(p.Department)
	}
	if groupID == "" {
		return
	}

	h.hub.Join(conn, chat.DepartmentRoom(groupID))
	h.hub.EmitTo(conn, models.Event{
		Event: models.EventDepartmentJoined,
		Data:  models.DepartmentJoinedPayload{GroupID: groupID, Department: p.Department},
	})
}

// emitFailure reports an error to the offending connection only. The
// connection itself always stays alive.
func (h *Handler) emitFailure(conn *websocket.Conn, session Session, action string, err error) {
	h.log.Warn("client operation failed",
		zap.String("action", action),
		zap.String("conn_id", session.ConnID),
		zap.String("user_id", session.UserID),
		zap.Error(err))

	switch {
	case errors.Is(err, chat.ErrValidation), errors.Is(err, chat.ErrForbidden), errors.Is(err, chat.ErrNotFound):
		h.hub.EmitTo(conn, errorEvent(err.Error()))
	default:
		h.hub.EmitTo(conn, errorEvent("failed to "+action))
	}
}

func errorEvent(message string) models.Event {
	return models.Event{Event: models.EventError, Data: models.ErrorPayload{Message: message}}
}

func (h *Handler) publishLifecycle(ctx context.Context, name string, session Session, reason string) {
	observability.IncWSEvent(name)
	if h.events == nil {
		return
	}
	payload := observability.WSLifecyclePayload{
		ConnID:     session.ConnID,
		UserID:     session.UserID,
		Role:       string(session.Role),
		IP:         session.IP,
		DeviceID:   session.DeviceID,
		DurationMS: time.Since(session.ConnectedAt).Milliseconds(),
		Reason:     reason,
	}
	envelope := observability.EventEnvelope{
		EventType: "ws_events",
		EventName: name,
		Payload:   payload,
	}
	headers := observability.BuildHeaders(session.RequestID, session.TraceID)
	if err := h.events.PublishJSON(ctx, observability.RoutingKeyWS, envelope, headers); err != nil {
		h.log.Warn("ws lifecycle publish failed", zap.String("event", name), zap.Error(err))
	}
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return parts[1]
		}
		return ""
	}
	return c.Query("token")
}
