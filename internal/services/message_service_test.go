package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/skillup-app/go-skillup-backend/internal/domain"
	"github.com/skillup-app/go-skillup-backend/internal/repo"
)

type gormMessageRepo struct{}

func (gormMessageRepo) CreateMessage(ctx context.Context, db *gorm.DB, threadID, senderID, senderShortID, body, status string) (*domain.ChatMessage, error) {
	return repo.CreateMessage(ctx, db, threadID, senderID, senderShortID, body, status)
}

func (gormMessageRepo) ListThreadMessages(ctx context.Context, db *gorm.DB, threadID string) ([]domain.ChatMessage, error) {
	return repo.ListThreadMessages(ctx, db, threadID)
}

func (gormMessageRepo) GetMessage(ctx context.Context, db *gorm.DB, id string) (*domain.ChatMessage, error) {
	return repo.GetMessage(ctx, db, id)
}

func newMessageService(t *testing.T, db *gorm.DB, assistant *AssistantResponder) (*MessageService, *ThreadHub) {
	t.Helper()
	hub := NewThreadHub(db)
	groups := NewGroupService(db, gormGroupRepo{}, gormPersonRepo{})
	return NewMessageService(db, gormMessageRepo{}, hub, groups, assistant), hub
}

func TestMessageSend_PersistsDeliveredWithShortSenderID(t *testing.T) {
	db := newServiceDB(t)
	s, _ := newMessageService(t, db, nil)

	msg, err := s.Send(context.Background(), "user-123456789", ModeCommunity, "", "  hello there  ")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if msg.Status != domain.StatusDelivered {
		t.Fatalf("expected delivered status, got %q", msg.Status)
	}
	if msg.SenderShortID != "user-123" {
		t.Fatalf("expected 8-char sender short id, got %q", msg.SenderShortID)
	}
	if msg.Body != "hello there" {
		t.Fatalf("expected trimmed body, got %q", msg.Body)
	}
	if msg.ThreadID != domain.CommunityThreadID {
		t.Fatalf("expected community thread, got %q", msg.ThreadID)
	}
	if _, err := time.Parse(time.RFC3339Nano, msg.Timestamp); err != nil {
		t.Fatalf("timestamp must be ISO-8601: %q (%v)", msg.Timestamp, err)
	}
}

func TestMessageSend_RejectsEmptyBody(t *testing.T) {
	db := newServiceDB(t)
	s, _ := newMessageService(t, db, nil)

	if _, err := s.Send(context.Background(), "me", ModeCommunity, "", "   "); !errors.Is(err, ErrEmptyMessage) {
		t.Fatalf("expected ErrEmptyMessage, got %v", err)
	}
}

func TestMessageSend_GroupModeValidatesGroup(t *testing.T) {
	db := newServiceDB(t)
	ctx := context.Background()
	s, _ := newMessageService(t, db, nil)

	if _, err := s.Send(ctx, "me", ModeGroup, "", "hi"); !errors.Is(err, ErrGroupRequired) {
		t.Fatalf("expected ErrGroupRequired, got %v", err)
	}
	if _, err := s.Send(ctx, "me", ModeGroup, "missing", "hi"); !errors.Is(err, ErrGroupNotFound) {
		t.Fatalf("expected ErrGroupNotFound, got %v", err)
	}

	groups := NewGroupService(db, gormGroupRepo{}, gormPersonRepo{})
	g, err := groups.Create(ctx, "me", "Study", []string{"friend-1"})
	if err != nil {
		t.Fatalf("Create group: %v", err)
	}
	msg, err := s.Send(ctx, "me", ModeGroup, g.ID, "hi group")
	if err != nil {
		t.Fatalf("Send to group: %v", err)
	}
	if msg.ThreadID != g.ID {
		t.Fatalf("group message should land in the group thread, got %q", msg.ThreadID)
	}
}

func TestMessageSend_CommunityTriggersAssistantReply(t *testing.T) {
	db := newServiceDB(t)
	ctx := context.Background()

	assistant := fastResponder(&fakeGenerator{reply: "Nice work!"})
	s, hub := newMessageService(t, db, assistant)

	// Subscribe like a session would, to observe the assistant's message
	// arriving on the community feed.
	replies := make(chan []domain.ChatMessage, 4)
	h := hub.SubscribeThread(domain.CommunityThreadID, func(msgs []domain.ChatMessage) {
		replies <- msgs
	})
	defer h.Cancel()

	if _, err := s.Send(ctx, "me", ModeCommunity, "", "I practiced guitar"); err != nil {
		t.Fatalf("Send: %v", err)
	}

	deadline := time.After(3 * time.Second)
	for {
		select {
		case msgs := <-replies:
			for _, m := range msgs {
				if m.SenderID == domain.AssistantID {
					if m.Body != "Nice work!" || m.SenderShortID != AssistantName {
						t.Fatalf("unexpected assistant message: %+v", m)
					}
					return
				}
			}
		case <-deadline:
			t.Fatal("assistant reply never arrived on the community feed")
		}
	}
}

func TestMessageSend_AssistantFailureIsSuppressed(t *testing.T) {
	db := newServiceDB(t)
	ctx := context.Background()

	assistant := fastResponder(&fakeGenerator{failures: 10})
	s, _ := newMessageService(t, db, assistant)

	if _, err := s.Send(ctx, "me", ModeCommunity, "", "hello"); err != nil {
		t.Fatalf("Send must not surface assistant failures: %v", err)
	}

	// Give the background responder time to exhaust its retries.
	time.Sleep(100 * time.Millisecond)

	msgs, err := s.List(ctx, "me", ModeCommunity, "")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	for _, m := range msgs {
		if m.SenderID == domain.AssistantID {
			t.Fatal("no reply must be posted when all retries fail")
		}
	}
}
