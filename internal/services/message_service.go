// Package services – MessageService
//
// This file implements chat message sending and listing. Messages are
// persisted with delivered status, an ISO-8601 timestamp string, and the
// sender's shortened display id; every successful write republishes the
// thread's feed. A community message from a real user additionally triggers
// the assistant responder in the background, and the assistant's failure is
// logged and suppressed rather than surfaced to the sender.
package services

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/skillup-app/go-skillup-backend/internal/domain"
)

// MessageRepo defines the repository contract required by MessageService.
type MessageRepo interface {
	CreateMessage(ctx context.Context, db *gorm.DB, threadID, senderID, senderShortID, body, status string) (*domain.ChatMessage, error)
	ListThreadMessages(ctx context.Context, db *gorm.DB, threadID string) ([]domain.ChatMessage, error)
	GetMessage(ctx context.Context, db *gorm.DB, id string) (*domain.ChatMessage, error)
}

// MessageService coordinates message persistence, feed publication, and the
// assistant reply pipeline.
type MessageService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Repo is the message repository used by this service.
	Repo MessageRepo
	// Hub republishes thread feeds after writes.
	Hub *ThreadHub
	// Groups validates group thread ids on send.
	Groups *GroupService
	// Assistant produces community replies. Nil disables the responder.
	Assistant *AssistantResponder

	// MaxBodyRunes caps message bodies; zero means no cap.
	MaxBodyRunes int
}

// NewMessageService constructs a MessageService.
func NewMessageService(db *gorm.DB, r MessageRepo, hub *ThreadHub, groups *GroupService, assistant *AssistantResponder) *MessageService {
	return &MessageService{DB: db, Repo: r, Hub: hub, Groups: groups, Assistant: assistant, MaxBodyRunes: 4000}
}

// Send persists a message from userID into the thread identified by mode and,
// for group mode, groupID. The stored message carries delivered status and
// the sender's short id. Community sends schedule an assistant reply on a
// background goroutine; the reply's lifetime is detached from the request
// context.
func (s *MessageService) Send(ctx context.Context, userID string, mode Mode, groupID, body string) (*domain.ChatMessage, error) {
	tr := otel.Tracer("services/MessageService")
	ctx, span := tr.Start(ctx, "Send",
		trace.WithAttributes(
			attribute.String("user.id", userID),
			attribute.String("chat.mode", string(mode)),
		),
	)
	defer span.End()

	body = strings.TrimSpace(body)
	if body == "" {
		return nil, ErrEmptyMessage
	}
	if s.MaxBodyRunes > 0 && len([]rune(body)) > s.MaxBodyRunes {
		body = string([]rune(body)[:s.MaxBodyRunes])
	}

	threadID, err := s.resolveThread(ctx, userID, mode, groupID)
	if err != nil {
		return nil, err
	}

	msg, err := s.Repo.CreateMessage(ctx, s.DB, threadID, userID, domain.ShortID(userID), body, domain.StatusDelivered)
	if err != nil {
		return nil, err
	}
	s.Hub.Publish(ctx, threadID)

	if threadID == domain.CommunityThreadID && s.Assistant != nil && userID != domain.AssistantID {
		go s.respond(body)
	}
	return msg, nil
}

// List returns the thread's messages sorted by timestamp ascending.
func (s *MessageService) List(ctx context.Context, userID string, mode Mode, groupID string) ([]domain.ChatMessage, error) {
	threadID, err := s.resolveThread(ctx, userID, mode, groupID)
	if err != nil {
		return nil, err
	}
	return s.Repo.ListThreadMessages(ctx, s.DB, threadID)
}

// resolveThread maps (mode, groupID) to a thread id, verifying group
// membership through the group service.
func (s *MessageService) resolveThread(ctx context.Context, userID string, mode Mode, groupID string) (string, error) {
	switch mode {
	case ModeCommunity:
		return domain.CommunityThreadID, nil
	case ModeGroup:
		if groupID == "" {
			return "", ErrGroupRequired
		}
		if s.Groups != nil {
			if _, err := s.Groups.Get(ctx, userID, groupID); err != nil {
				return "", err
			}
		}
		return groupID, nil
	default:
		return "", ErrUnknownMode
	}
}

// respond runs the assistant pipeline for one community utterance. Failures
// after all retries are logged and suppressed; no reply is posted.
func (s *MessageService) respond(utterance string) {
	ctx := context.Background()

	reply, err := s.Assistant.Reply(ctx, utterance)
	if err != nil {
		log.Error().Err(err).Msg("assistant reply failed")
		return
	}

	if _, err := s.Repo.CreateMessage(ctx, s.DB, domain.CommunityThreadID, domain.AssistantID, AssistantName, reply, domain.StatusDelivered); err != nil {
		log.Error().Err(err).Msg("persisting assistant reply failed")
		return
	}
	s.Hub.Publish(ctx, domain.CommunityThreadID)
}
