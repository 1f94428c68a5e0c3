// Package chat implements the realtime message delivery pipeline: direct
// messages, department broadcasts, read receipts, typing relays and
// conversation teardown.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"hr-realtime/internal/auth"
	"hr-realtime/internal/directory"
	"hr-realtime/internal/models"
	"hr-realtime/internal/repositories"
	"hr-realtime/pkg/logger"
)

// RoomEmitter delivers events to every connection currently in a room. The
// websocket hub implements it; tests substitute a recorder.
type RoomEmitter interface {
	Emit(room string, event models.Event)
}

// Notifier is the bridge's publish entry point.
type Notifier interface {
	Notify(ctx context.Context, userID, message, kind string) (models.Notification, error)
}

// DirectMessage is an inbound 1:1 message. ConversationID is optional; when
// absent the conversation is found or created from the participant pair.
type DirectMessage struct {
	ConversationID string
	To             string
	Content        string
	Kind           string
}

// DepartmentBroadcast is an inbound department-room message.
// TargetDepartment is honored only for elevated roles.
type DepartmentBroadcast struct {
	Content          string
	Kind             string
	TargetDepartment string
}

// Service coordinates persistence, notification and room fan-out for the
// realtime layer.
type Service struct {
	conversations repositories.ConversationRepository
	messages      repositories.MessageRepository
	deptMessages  repositories.DepartmentMessageRepository
	directory     directory.UserDirectory
	notifier      Notifier
	emitter       RoomEmitter
	log           *logger.Logger
	notifyTimeout time.Duration
}

// NewService constructs the chat service.
func NewService(
	conversations repositories.ConversationRepository,
	messages repositories.MessageRepository,
	deptMessages repositories.DepartmentMessageRepository,
	userDirectory directory.UserDirectory,
	notifier Notifier,
	emitter RoomEmitter,
	log *logger.Logger,
	notifyTimeout time.Duration,
) *Service {
	if notifyTimeout <= 0 {
		notifyTimeout = 3 * time.Second
	}
	return &Service{
		conversations: conversations,
		messages:      messages,
		deptMessages:  deptMessages,
		directory:     userDirectory,
		notifier:      notifier,
		emitter:       emitter,
		log:           log,
		notifyTimeout: notifyTimeout,
	}
}

// SendDirect validates, persists and fans out a direct message. The message
// is emitted to both participants' personal rooms so the sender's other
// devices stay in sync. Notifying the recipient is a side effect: its
// failure never rolls back the delivered message.
func (s *Service) SendDirect(ctx context.Context, senderID string, in DirectMessage) (models.ChatMessage, error) {
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return models.ChatMessage{}, fmt.Errorf("%w: empty content", ErrValidation)
	}
	if in.To == "" {
		return models.ChatMessage{}, fmt.Errorf("%w: missing recipient", ErrValidation)
	}
	if in.To == senderID {
		return models.ChatMessage{}, fmt.Errorf("%w: cannot message yourself", ErrValidation)
	}
	kind := in.Kind
	if kind == "" {
		kind = models.KindText
	}
	if !models.ValidMessageKind(kind) {
		return models.ChatMessage{}, fmt.Errorf("%w: unknown kind %q", ErrValidation, kind)
	}

	conv, err := s.resolveConversation(ctx, senderID, in)
	if err != nil {
		return models.ChatMessage{}, err
	}

	msg, err := s.messages.Create(ctx, conv.ID, senderID, in.To, content, kind)
	if err != nil {
		return models.ChatMessage{}, fmt.Errorf("persist message: %w", err)
	}

	if err := s.conversations.Touch(ctx, conv.ID, msg.CreatedAt); err != nil {
		// The message is already delivered; a stale last-activity stamp is
		// not worth failing the send.
		s.log.Warn("conversation touch failed", zap.String("conversation_id", conv.ID), zap.Error(err))
	}

	s.notifyBestEffort(in.To, "New chat message received", models.NotificationChat)

	event := models.Event{Event: models.EventMessage, Data: msg}
	s.emitter.Emit(UserRoom(in.To), event)
	s.emitter.Emit(UserRoom(senderID), event)

	return msg, nil
}

func (s *Service) resolveConversation(ctx context.Context, senderID string, in DirectMessage) (models.Conversation, error) {
	if in.ConversationID == "" {
		conv, err := s.conversations.FindOrCreate(ctx, senderID, in.To)
		if err != nil {
			return models.Conversation{}, fmt.Errorf("find or create conversation: %w", err)
		}
		return conv, nil
	}

	conv, err := s.conversations.Get(ctx, in.ConversationID)
	if err != nil {
		if errors.Is(err, repositories.ErrConversationNotFound) {
			return models.Conversation{}, fmt.Errorf("%w: conversation %s", ErrNotFound, in.ConversationID)
		}
		return models.Conversation{}, fmt.Errorf("load conversation: %w", err)
	}
	if !conv.HasParticipant(senderID) || !conv.HasParticipant(in.To) {
		return models.Conversation{}, fmt.Errorf("%w: not a participant", ErrForbidden)
	}
	return conv, nil
}

// SendDepartmentBroadcast persists a message in the sender's department room
// and fans it out. Elevated roles may redirect to another department; a
// staff-supplied override is silently ignored.
func (s *Service) SendDepartmentBroadcast(ctx context.Context, senderID string, in DepartmentBroadcast) (models.DepartmentMessage, error) {
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return models.DepartmentMessage{}, fmt.Errorf("%w: empty content", ErrValidation)
	}
	kind := in.Kind
	if kind == "" {
		kind = models.KindText
	}
	if !models.ValidMessageKind(kind) {
		return models.DepartmentMessage{}, fmt.Errorf("%w: unknown kind %q", ErrValidation, kind)
	}

	sender, err := s.directory.ResolveUser(ctx, senderID)
	if err != nil {
		if errors.Is(err, directory.ErrUserNotFound) {
			return models.DepartmentMessage{}, fmt.Errorf("%w: sender", ErrNotFound)
		}
		return models.DepartmentMessage{}, fmt.Errorf("resolve sender: %w", err)
	}

	dept := sender.Department
	if override := strings.TrimSpace(in.TargetDepartment); override != "" && auth.CanOverrideTargetDepartment(sender.Role) {
		dept = override
	}
	if strings.TrimSpace(dept) == "" {
		return models.DepartmentMessage{}, fmt.Errorf("%w: no department", ErrValidation)
	}

	senderName := sender.Name
	if senderName == "" {
		senderName = "Staff Member"
	}

	groupID := DepartmentGroupID(dept)
	msg, err := s.deptMessages.Create(ctx, groupID, dept, senderID, senderName, content, kind)
	if err != nil {
		return models.DepartmentMessage{}, fmt.Errorf("persist department message: %w", err)
	}

	// N-way notification fan-out runs off the request path; one slow
	// recipient must not delay the room emit below.
	go s.fanOutDepartmentNotifications(dept, senderID)

	s.emitter.Emit(DepartmentRoom(groupID), models.Event{Event: models.EventDepartmentMessage, Data: msg})

	return msg, nil
}

func (s *Service) fanOutDepartmentNotifications(department, senderID string) {
	ctx, cancel := context.WithTimeout(context.Background(), s.notifyTimeout)
	members, err := s.directory.ListDepartmentMembers(ctx, department)
	cancel()
	if err != nil {
		s.log.Warn("department member lookup failed", zap.String("department", department), zap.Error(err))
		return
	}

	message := "New department message in " + department
	for _, member := range members {
		if member == senderID {
			continue
		}
		s.notifyBestEffort(member, message, models.NotificationDepartmentChat)
	}
}

func (s *Service) notifyBestEffort(userID, message, kind string) {
	ctx, cancel := context.WithTimeout(context.Background(), s.notifyTimeout)
	defer cancel()
	if _, err := s.notifier.Notify(ctx, userID, message, kind); err != nil {
		s.log.Warn("notification failed",
			zap.String("user_id", userID),
			zap.String("kind", kind),
			zap.Error(err))
	}
}

// MarkRead bulk-sets read timestamps on every unread message in the
// conversation addressed to the reader, then acknowledges to the reader's
// own room. Idempotent.
func (s *Service) MarkRead(ctx context.Context, conversationID, readerID string) error {
	if conversationID == "" {
		return fmt.Errorf("%w: missing conversation id", ErrValidation)
	}
	if _, err := s.messages.MarkConversationRead(ctx, conversationID, readerID); err != nil {
		return fmt.Errorf("mark read: %w", err)
	}
	s.emitter.Emit(UserRoom(readerID), models.Event{
		Event: models.EventReadReceiptAck,
		Data:  models.ReadReceiptAckPayload{ConversationID: conversationID},
	})
	return nil
}

// SignalTyping relays an ephemeral typing indicator to the addressed user's
// personal room. No persistence, safe to drop.
func (s *Service) SignalTyping(senderID, to, conversationID string, typing bool) {
	if to == "" {
		return
	}
	s.emitter.Emit(UserRoom(to), models.Event{
		Event: models.EventTyping,
		Data: models.TypingPayload{
			From:           senderID,
			Typing:         typing,
			ConversationID: conversationID,
		},
	})
}

// EndConversation destroys a conversation and its message history, then
// tells both former participants their session ended. Admin only; no
// soft-delete.
func (s *Service) EndConversation(ctx context.Context, requesterRole auth.Role, conversationID string) error {
	if !auth.CanTeardownConversation(requesterRole) {
		return fmt.Errorf("%w: conversation teardown requires admin", ErrForbidden)
	}
	if conversationID == "" {
		return fmt.Errorf("%w: missing conversation id", ErrValidation)
	}

	conv, err := s.conversations.Get(ctx, conversationID)
	if err != nil {
		if errors.Is(err, repositories.ErrConversationNotFound) {
			return fmt.Errorf("%w: conversation %s", ErrNotFound, conversationID)
		}
		return fmt.Errorf("load conversation: %w", err)
	}

	if err := s.conversations.Delete(ctx, conversationID); err != nil {
		if errors.Is(err, repositories.ErrConversationNotFound) {
			return fmt.Errorf("%w: conversation %s", ErrNotFound, conversationID)
		}
		return fmt.Errorf("delete conversation: %w", err)
	}

	event := models.Event{
		Event: models.EventConversationEnded,
		Data:  models.ConversationEndedPayload{ConversationID: conversationID},
	}
	s.emitter.Emit(UserRoom(conv.Participant1), event)
	s.emitter.Emit(UserRoom(conv.Participant2), event)

	return nil
}
