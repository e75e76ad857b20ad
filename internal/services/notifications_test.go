package services

import (
	"testing"

	"github.com/skillup-app/go-skillup-backend/internal/domain"
)

func TestNotificationStore_AppendClearCount(t *testing.T) {
	var s NotificationStore

	if s.UnreadCount() != 0 {
		t.Fatalf("fresh store should be empty, got %d", s.UnreadCount())
	}

	s.Append(domain.Notification{ID: "a", Timestamp: "2026-01-01T10:00:00Z"})
	s.Append(domain.Notification{ID: "b", Timestamp: "2026-01-01T11:00:00Z"})
	if s.UnreadCount() != 2 {
		t.Fatalf("expected 2 unread, got %d", s.UnreadCount())
	}

	s.Clear()
	if s.UnreadCount() != 0 {
		t.Fatalf("expected empty store after clear, got %d", s.UnreadCount())
	}
}

func TestNotificationStore_SortedByRecency(t *testing.T) {
	var s NotificationStore
	s.Append(domain.Notification{ID: "old", Timestamp: "2026-01-01T08:00:00Z"})
	s.Append(domain.Notification{ID: "new", Timestamp: "2026-01-02T08:00:00Z"})
	s.Append(domain.Notification{ID: "mid", Timestamp: "2026-01-01T20:00:00Z"})

	got := s.SortedByRecency()
	if len(got) != 3 || got[0].ID != "new" || got[1].ID != "mid" || got[2].ID != "old" {
		t.Fatalf("unexpected order: %+v", got)
	}

	// The returned slice is a copy; mutating it must not affect the store.
	got[0].ID = "mutated"
	if s.SortedByRecency()[0].ID != "new" {
		t.Fatal("store contents leaked through the returned slice")
	}
}
