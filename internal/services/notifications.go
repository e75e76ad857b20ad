// Package services – NotificationStore
//
// This file implements the session-local notification store backing the bell
// badge. Entries are held in memory only: the store mirrors transient badge
// behavior, not a durable inbox, and is lost on process restart. Deduplication
// is unnecessary because the milestone watermark prevents repeat detections
// upstream.
package services

import (
	"sort"
	"sync"

	"github.com/skillup-app/go-skillup-backend/internal/domain"
)

// NotificationStore is a concurrency-safe working set of notifications.
// The zero value is ready to use.
type NotificationStore struct {
	mu      sync.Mutex
	entries []domain.Notification
}

// Append adds one notification to the working set.
func (s *NotificationStore) Append(n domain.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, n)
}

// Clear empties the working set. Only bulk clear is supported; there is no
// per-item dismissal.
func (s *NotificationStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
}

// UnreadCount returns the current size of the working set.
func (s *NotificationStore) UnreadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// SortedByRecency returns a copy of the entries ordered newest-first by
// timestamp. Timestamps are ISO-8601 strings, so string comparison orders
// them chronologically.
func (s *NotificationStore) SortedByRecency() []domain.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Notification, len(s.entries))
	copy(out, s.entries)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp > out[j].Timestamp
	})
	return out
}
