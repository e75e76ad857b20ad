// Package services – ThreadHub
//
// This file implements the process-wide registry of live message feeds, one
// per chat thread. Chat messages live in shared public collections, so the
// hub is not session-scoped: every session subscribing to the community
// thread observes the same feed.
package services

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/skillup-app/go-skillup-backend/internal/domain"
	"github.com/skillup-app/go-skillup-backend/internal/live"
	"github.com/skillup-app/go-skillup-backend/internal/repo"
)

// ThreadHub lazily creates and caches one live feed per thread id.
type ThreadHub struct {
	db *gorm.DB

	mu    sync.Mutex
	feeds map[string]*live.Feed[domain.ChatMessage]
}

// NewThreadHub constructs a ThreadHub over the given database handle.
func NewThreadHub(db *gorm.DB) *ThreadHub {
	return &ThreadHub{db: db, feeds: make(map[string]*live.Feed[domain.ChatMessage])}
}

// feed returns the feed for threadID, creating it on first use.
func (h *ThreadHub) feed(threadID string) *live.Feed[domain.ChatMessage] {
	h.mu.Lock()
	defer h.mu.Unlock()
	f, ok := h.feeds[threadID]
	if !ok {
		f = live.NewFeed(func(ctx context.Context) ([]domain.ChatMessage, error) {
			return repo.ListThreadMessages(ctx, h.db, threadID)
		})
		h.feeds[threadID] = f
	}
	return f
}

// SubscribeThread implements ThreadFeeds.
func (h *ThreadHub) SubscribeThread(threadID string, onSnapshot func([]domain.ChatMessage)) *live.Handle {
	return h.feed(threadID).Subscribe(onSnapshot)
}

// Publish re-reads threadID's messages and fans the snapshot out to
// subscribers. A load failure is logged and swallowed: feed delivery is
// background sync, never a caller-visible error.
func (h *ThreadHub) Publish(ctx context.Context, threadID string) {
	if err := h.feed(threadID).Publish(ctx); err != nil {
		log.Warn().Err(err).Str("thread_id", threadID).Msg("thread feed publish failed")
	}
}
