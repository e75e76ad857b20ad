// Package services – ChatThreadSelector
//
// This file implements the chat thread state machine. The community thread is
// always subscribed at session scope; selecting a group establishes exactly
// one additional live subscription, and the previous one is always cancelled
// before the new assignment (arena-of-one). Selecting the community thread
// creates no subscription and instead sweeps read receipts.
package services

import (
	"context"
	"sort"
	"sync"

	"github.com/skillup-app/go-skillup-backend/internal/domain"
	"github.com/skillup-app/go-skillup-backend/internal/live"
)

// Mode is the chat view axis: the shared community thread or one private
// group's thread.
type Mode string

// Chat modes.
const (
	ModeCommunity Mode = "community"
	ModeGroup     Mode = "group"
)

// ThreadFeeds resolves per-thread message feeds. Implemented by the thread
// hub owning the chat message collections.
type ThreadFeeds interface {
	SubscribeThread(threadID string, onSnapshot func([]domain.ChatMessage)) *live.Handle
}

// ThreadSelector owns the (mode, group id) chat state and the lifetime of the
// single optional group subscription.
type ThreadSelector struct {
	// UserID is the local user whose read receipts the selector sweeps.
	UserID string
	// Feeds resolves thread feeds for group subscriptions.
	Feeds ThreadFeeds
	// Reader performs the community read sweep on community selection and on
	// Close while in community mode.
	Reader *ReadStatusTracker
	// OnMessages receives the active group thread's snapshot, sorted by
	// timestamp ascending. Nil is allowed; snapshots are then dropped.
	OnMessages func(threadID string, msgs []domain.ChatMessage)

	mu      sync.Mutex
	mode    Mode
	groupID string
	handle  *live.Handle
	gen     uint64
}

// NewThreadSelector returns a selector starting in community mode.
func NewThreadSelector(userID string, feeds ThreadFeeds, reader *ReadStatusTracker) *ThreadSelector {
	return &ThreadSelector{UserID: userID, Feeds: feeds, Reader: reader, mode: ModeCommunity}
}

// Current returns the active mode and, in group mode, the active group id.
func (s *ThreadSelector) Current() (Mode, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode, s.groupID
}

// Select transitions to the requested thread. Any prior group subscription is
// cancelled first, synchronously, so no snapshot from the old thread reaches
// OnMessages after Select returns. Community selection triggers a read sweep
// instead of a subscription.
func (s *ThreadSelector) Select(ctx context.Context, mode Mode, groupID string) error {
	if mode != ModeCommunity && mode != ModeGroup {
		return ErrUnknownMode
	}
	if mode == ModeGroup && groupID == "" {
		return ErrGroupRequired
	}

	s.mu.Lock()
	old := s.handle
	s.handle = nil
	s.gen++
	gen := s.gen
	s.mode = mode
	if mode == ModeGroup {
		s.groupID = groupID
	} else {
		s.groupID = ""
	}
	s.mu.Unlock()

	// Cancel must not run under s.mu: snapshot delivery holds the handle
	// mutex across the callback, and the callback takes s.mu for its
	// staleness check. The generation bump above already makes any snapshot
	// from the old subscription stale, so dropping the lock first is safe.
	old.Cancel()

	if mode == ModeCommunity {
		if s.Reader != nil {
			_, err := s.Reader.MarkThreadRead(ctx, s.UserID)
			return err
		}
		return nil
	}

	// The lock is not held across Subscribe because subscribing may prime the
	// callback synchronously, and the callback takes the lock for its
	// staleness check.
	h := s.Feeds.SubscribeThread(groupID, func(msgs []domain.ChatMessage) {
		s.mu.Lock()
		stale := s.gen != gen
		s.mu.Unlock()
		if stale || s.OnMessages == nil {
			return
		}
		sorted := make([]domain.ChatMessage, len(msgs))
		copy(sorted, msgs)
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].Timestamp < sorted[j].Timestamp
		})
		s.OnMessages(groupID, sorted)
	})

	s.mu.Lock()
	if s.gen != gen {
		// A concurrent Select superseded this one while the lock was
		// released; the fresh handle already lost the race.
		s.mu.Unlock()
		h.Cancel()
		return nil
	}
	s.handle = h
	s.mu.Unlock()
	return nil
}

// Close exits the chat view: a group subscription is cancelled, a community
// view gets a final read sweep.
func (s *ThreadSelector) Close(ctx context.Context) error {
	s.mu.Lock()
	mode := s.mode
	old := s.handle
	s.handle = nil
	s.gen++
	s.mu.Unlock()

	// Same ordering constraint as Select: Cancel outside the lock.
	old.Cancel()

	if mode == ModeCommunity && s.Reader != nil {
		_, err := s.Reader.MarkThreadRead(ctx, s.UserID)
		return err
	}
	return nil
}
