package ws

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"hr-realtime/internal/auth"
	"hr-realtime/internal/chat"
	"hr-realtime/internal/mocks"
	"hr-realtime/internal/models"
	"hr-realtime/pkg/logger"
)

type wsFixture struct {
	hub      *Hub
	verifier *auth.Verifier
	dir      *mocks.UserDirectoryMock
	convs    *mocks.ConversationRepositoryMock
	msgs     *mocks.MessageRepositoryMock
	depts    *mocks.DepartmentMessageRepositoryMock
	notifier *mocks.NotifierMock
	server   *httptest.Server
}

func newWSFixture(t *testing.T) *wsFixture {
	gin.SetMode(gin.TestMode)
	log := logger.NewNop()

	f := &wsFixture{
		hub:      NewHub(log),
		verifier: auth.NewVerifier("test-secret"),
		dir:      &mocks.UserDirectoryMock{},
		convs:    &mocks.ConversationRepositoryMock{},
		msgs:     &mocks.MessageRepositoryMock{},
		depts:    &mocks.DepartmentMessageRepositoryMock{},
		notifier: &mocks.NotifierMock{},
	}

	svc := chat.NewService(f.convs, f.msgs, f.depts, f.dir, f.notifier, f.hub, log, time.Second)
	handler := NewHandler(f.hub, f.verifier, f.dir, svc, nil, log)

	router := gin.New()
	router.GET("/ws", handler.Handle)
	f.server = httptest.NewServer(router)
	t.Cleanup(f.server.Close)

	return f
}

func (f *wsFixture) stubUser(id string, role auth.Role, department string) {
	f.dir.On("ResolveUser", mock.Anything, id).Return(models.User{
		ID:         id,
		Name:       id,
		Role:       role,
		Department: department,
		IsActive:   true,
	}, nil)
}

func (f *wsFixture) dial(t *testing.T, userID string, role auth.Role) *websocket.Conn {
	t.Helper()
	token, err := f.verifier.Sign(auth.Identity{UserID: userID, Role: role}, time.Minute)
	require.NoError(t, err)

	conn, resp, err := websocket.DefaultDialer.Dial(f.wsURL()+"?token="+token, nil)
	require.NoError(t, err)
	resp.Body.Close()
	t.Cleanup(func() { conn.Close() })
	return conn
}

func (f *wsFixture) wsURL() string {
	return "ws" + strings.TrimPrefix(f.server.URL, "http") + "/ws"
}

type receivedEvent struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

func readEvent(t *testing.T, conn *websocket.Conn) receivedEvent {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)
	var ev receivedEvent
	require.NoError(t, json.Unmarshal(raw, &ev))
	return ev
}

func sendFrame(t *testing.T, conn *websocket.Conn, event string, data any) {
	t.Helper()
	raw, err := json.Marshal(map[string]any{"event": event, "data": data})
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, raw))
}

func TestHandshakeRejectsInvalidToken(t *testing.T) {
	f := newWSFixture(t)

	conn, resp, err := websocket.DefaultDialer.Dial(f.wsURL()+"?token=garbage", nil)
	require.Error(t, err)
	require.Nil(t, conn)
	require.NotNil(t, resp)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestHandshakeRejectsMissingToken(t *testing.T) {
	f := newWSFixture(t)

	conn, resp, err := websocket.DefaultDialer.Dial(f.wsURL(), nil)
	require.Error(t, err)
	require.Nil(t, conn)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestHandshakeStaffAutoJoinsDepartment(t *testing.T) {
	f := newWSFixture(t)
	f.stubUser("alice", auth.RoleStaff, "Software Engineering")

	conn := f.dial(t, "alice", auth.RoleStaff)

	ev := readEvent(t, conn)
	assert.Equal(t, models.EventConnected, ev.Event)

	ev = readEvent(t, conn)
	require.Equal(t, models.EventDepartmentJoined, ev.Event)
	var joined models.DepartmentJoinedPayload
	require.NoError(t, json.Unmarshal(ev.Data, &joined))
	assert.Equal(t, "dept-software-engineering", joined.GroupID)
	assert.Equal(t, "Software Engineering", joined.Department)
}

func TestHandshakeSurvivesDirectoryFailure(t *testing.T) {
	f := newWSFixture(t)
	f.dir.On("ResolveUser", mock.Anything, "alice").Return(nil, assert.AnError)

	conn := f.dial(t, "alice", auth.RoleStaff)

	// The personal room still works even when the department lookup is down.
	ev := readEvent(t, conn)
	assert.Equal(t, models.EventConnected, ev.Event)

	require.Eventually(t, func() bool {
		return f.hub.RoomSize(chat.UserRoom("alice")) == 1
	}, time.Second, 10*time.Millisecond)
}

func TestTypingRelayedToRecipient(t *testing.T) {
	f := newWSFixture(t)
	f.stubUser("alice", auth.RoleStaff, "")
	f.stubUser("bob", auth.RoleStaff, "")

	alice := f.dial(t, "alice", auth.RoleStaff)
	bob := f.dial(t, "bob", auth.RoleStaff)
	readEvent(t, alice)
	readEvent(t, bob)

	sendFrame(t, alice, "typing", map[string]any{
		"to":              "bob",
		"conversation_id": "conv-1",
		"typing":          true,
	})

	ev := readEvent(t, bob)
	require.Equal(t, models.EventTyping, ev.Event)
	var typing models.TypingPayload
	require.NoError(t, json.Unmarshal(ev.Data, &typing))
	assert.Equal(t, "alice", typing.From)
	assert.True(t, typing.Typing)
	assert.Equal(t, "conv-1", typing.ConversationID)
}

func TestSendMessageDeliveredToBothParties(t *testing.T) {
	f := newWSFixture(t)
	f.stubUser("alice", auth.RoleStaff, "")
	f.stubUser("bob", auth.RoleStaff, "")

	alice := f.dial(t, "alice", auth.RoleStaff)
	bob := f.dial(t, "bob", auth.RoleStaff)
	readEvent(t, alice)
	readEvent(t, bob)

	conv := models.Conversation{ID: "conv-1", Participant1: "alice", Participant2: "bob"}
	msg := models.ChatMessage{
		ID:             "msg-1",
		ConversationID: "conv-1",
		SenderID:       "alice",
		RecipientID:    "bob",
		Content:        "hello",
		Kind:           models.KindText,
		CreatedAt:      time.Now(),
	}
	f.convs.On("FindOrCreate", mock.Anything, "alice", "bob").Return(conv, nil)
	f.msgs.On("Create", mock.Anything, "conv-1", "alice", "bob", "hello", models.KindText).Return(msg, nil)
	f.convs.On("Touch", mock.Anything, "conv-1", mock.Anything).Return(nil)
	f.notifier.On("Notify", mock.Anything, "bob", mock.Anything, models.NotificationChat).
		Return(models.Notification{}, nil)

	sendFrame(t, alice, "send_message", map[string]any{"to": "bob", "content": "hello"})

	for _, conn := range []*websocket.Conn{bob, alice} {
		ev := readEvent(t, conn)
		require.Equal(t, models.EventMessage, ev.Event)
		var got models.ChatMessage
		require.NoError(t, json.Unmarshal(ev.Data, &got))
		assert.Equal(t, "hello", got.Content)
		assert.Equal(t, "conv-1", got.ConversationID)
	}
}

func TestSendMessageValidationErrorReportedToSenderOnly(t *testing.T) {
	f := newWSFixture(t)
	f.stubUser("alice", auth.RoleStaff, "")

	alice := f.dial(t, "alice", auth.RoleStaff)
	readEvent(t, alice)

	sendFrame(t, alice, "send_message", map[string]any{"to": "bob", "content": "   "})

	ev := readEvent(t, alice)
	require.Equal(t, models.EventError, ev.Event)
	var payload models.ErrorPayload
	require.NoError(t, json.Unmarshal(ev.Data, &payload))
	assert.Contains(t, payload.Message, "empty content")
}

func TestReadReceiptAcknowledgedToReader(t *testing.T) {
	f := newWSFixture(t)
	f.stubUser("bob", auth.RoleStaff, "")

	bob := f.dial(t, "bob", auth.RoleStaff)
	readEvent(t, bob)

	f.msgs.On("MarkConversationRead", mock.Anything, "conv-1", "bob").Return(int64(2), nil)

	sendFrame(t, bob, "read_receipt", map[string]any{"conversation_id": "conv-1"})

	ev := readEvent(t, bob)
	require.Equal(t, models.EventReadReceiptAck, ev.Event)
	var ack models.ReadReceiptAckPayload
	require.NoError(t, json.Unmarshal(ev.Data, &ack))
	assert.Equal(t, "conv-1", ack.ConversationID)
}

func TestJoinDepartmentElevatedOnly(t *testing.T) {
	f := newWSFixture(t)
	f.stubUser("root", auth.RoleAdmin, "")
	f.stubUser("alice", auth.RoleStaff, "")

	admin := f.dial(t, "root", auth.RoleAdmin)
	staff := f.dial(t, "alice", auth.RoleStaff)
	readEvent(t, admin)
	readEvent(t, staff)

	sendFrame(t, admin, "join_department", map[string]any{"department": "Sales"})

	ev := readEvent(t, admin)
	require.Equal(t, models.EventDepartmentJoined, ev.Event)
	var joined models.DepartmentJoinedPayload
	require.NoError(t, json.Unmarshal(ev.Data, &joined))
	assert.Equal(t, "dept-sales", joined.GroupID)

	// A staff request is silently dropped. The typing echo that follows it
	// proves the join frame was already processed.
	sendFrame(t, staff, "join_department", map[string]any{"department": "Sales"})
	sendFrame(t, staff, "typing", map[string]any{"to": "alice", "typing": true})
	ev = readEvent(t, staff)
	require.Equal(t, models.EventTyping, ev.Event)
	assert.Equal(t, 1, f.hub.RoomSize(chat.DepartmentRoom("dept-sales")))
}

func TestEndConversationNotifiesBothParticipants(t *testing.T) {
	f := newWSFixture(t)
	f.stubUser("root", auth.RoleAdmin, "")
	f.stubUser("alice", auth.RoleStaff, "")
	f.stubUser("bob", auth.RoleStaff, "")

	admin := f.dial(t, "root", auth.RoleAdmin)
	alice := f.dial(t, "alice", auth.RoleStaff)
	bob := f.dial(t, "bob", auth.RoleStaff)
	readEvent(t, admin)
	readEvent(t, alice)
	readEvent(t, bob)

	conv := models.Conversation{ID: "conv-1", Participant1: "alice", Participant2: "bob"}
	f.convs.On("Get", mock.Anything, "conv-1").Return(conv, nil)
	f.convs.On("Delete", mock.Anything, "conv-1").Return(nil)

	sendFrame(t, admin, "end_conversation", map[string]any{"conversation_id": "conv-1"})

	for _, conn := range []*websocket.Conn{alice, bob} {
		ev := readEvent(t, conn)
		require.Equal(t, models.EventConversationEnded, ev.Event)
		var ended models.ConversationEndedPayload
		require.NoError(t, json.Unmarshal(ev.Data, &ended))
		assert.Equal(t, "conv-1", ended.ConversationID)
	}
}

func TestMalformedFrameReportedWithoutClosing(t *testing.T) {
	f := newWSFixture(t)
	f.stubUser("alice", auth.RoleStaff, "")

	alice := f.dial(t, "alice", auth.RoleStaff)
	readEvent(t, alice)

	require.NoError(t, alice.WriteMessage(websocket.TextMessage, []byte("not json")))

	ev := readEvent(t, alice)
	require.Equal(t, models.EventError, ev.Event)

	// The connection is still usable afterwards.
	sendFrame(t, alice, "typing", map[string]any{"to": "alice", "typing": true})
	ev = readEvent(t, alice)
	assert.Equal(t, models.EventTyping, ev.Event)
}
