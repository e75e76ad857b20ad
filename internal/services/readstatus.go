// Package services – ReadStatusTracker
//
// This file implements read-receipt semantics for the community thread.
// Messages authored by the local user or by the assistant persona carry no
// read receipts (the assistant's messages are informational broadcasts), so a
// sweep only ever touches delivered messages from real correspondents.
package services

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/skillup-app/go-skillup-backend/internal/domain"
)

// ReadStatusRepo defines the repository contract required by ReadStatusTracker.
type ReadStatusRepo interface {
	// ListThreadMessages returns every message in a thread, ordered by
	// timestamp ascending.
	ListThreadMessages(ctx context.Context, db *gorm.DB, threadID string) ([]domain.ChatMessage, error)

	// UpdateMessageStatus transitions one message's delivery status; a missing
	// message affects zero rows.
	UpdateMessageStatus(ctx context.Context, db *gorm.DB, id, status string) (int64, error)
}

// ReadStatusTracker sweeps the community thread, marking delivered messages
// from other real users as read.
type ReadStatusTracker struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Repo is the message repository used by this tracker.
	Repo ReadStatusRepo

	// OnSwept, when set, is invoked after a sweep that changed at least one
	// message, so the owner can republish the thread feed.
	OnSwept func(ctx context.Context)
}

// eligible reports whether a message takes part in read-receipt semantics for
// the given local user.
func eligible(m domain.ChatMessage, localUserID string) bool {
	return m.SenderID != localUserID &&
		m.SenderID != domain.AssistantID &&
		m.Status == domain.StatusDelivered
}

// MarkThreadRead scans the community thread and transitions every delivered
// message from another real correspondent to read. Write-backs are issued
// concurrently; an individual failure is logged and skipped, never blocking
// the rest of the batch. It returns the number of messages marked.
func (t *ReadStatusTracker) MarkThreadRead(ctx context.Context, localUserID string) (int, error) {
	msgs, err := t.Repo.ListThreadMessages(ctx, t.DB, domain.CommunityThreadID)
	if err != nil {
		return 0, err
	}

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		marked int
	)
	for _, m := range msgs {
		if !eligible(m, localUserID) {
			continue
		}
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			n, err := t.Repo.UpdateMessageStatus(ctx, t.DB, id, domain.StatusRead)
			if err != nil {
				log.Warn().Err(err).Str("message_id", id).Msg("read sweep write-back failed")
				return
			}
			if n > 0 {
				mu.Lock()
				marked++
				mu.Unlock()
			}
		}(m.ID)
	}
	wg.Wait()

	if marked > 0 && t.OnSwept != nil {
		t.OnSwept(ctx)
	}
	return marked, nil
}

// HasUnread reports whether the community thread holds any delivered message
// from a correspondent other than the local user or the assistant persona.
func (t *ReadStatusTracker) HasUnread(ctx context.Context, localUserID string) (bool, error) {
	msgs, err := t.Repo.ListThreadMessages(ctx, t.DB, domain.CommunityThreadID)
	if err != nil {
		return false, err
	}
	for _, m := range msgs {
		if eligible(m, localUserID) {
			return true, nil
		}
	}
	return false, nil
}
