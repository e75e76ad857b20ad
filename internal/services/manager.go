// Package services – SessionManager
//
// This file implements the registry of live sessions. Sessions are created
// lazily on a user's first request; creation seeds the default collections on
// an empty account and primes the derivation pipeline with an initial skills
// snapshot.
package services

import (
	"context"
	"sync"

	"gorm.io/gorm"
)

// SessionManager creates and caches one Session per user id.
type SessionManager struct {
	db  *gorm.DB
	hub *ThreadHub

	// SeedDefaults controls first-run seeding of sample skills and friends.
	SeedDefaults bool

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewSessionManager constructs a SessionManager.
func NewSessionManager(db *gorm.DB, hub *ThreadHub) *SessionManager {
	return &SessionManager{db: db, hub: hub, SeedDefaults: true, sessions: make(map[string]*Session)}
}

// Session returns the user's session, creating it on first use.
func (m *SessionManager) Session(ctx context.Context, userID string) (*Session, error) {
	m.mu.Lock()
	if s, ok := m.sessions[userID]; ok {
		m.mu.Unlock()
		return s, nil
	}
	m.mu.Unlock()

	// Seeding and the priming publish run outside the registry lock; a
	// concurrent first request for the same user is resolved below by
	// re-checking the map.
	if m.SeedDefaults {
		if err := Seed(ctx, m.db, userID); err != nil {
			return nil, err
		}
	}
	s := newSession(m.db, m.hub, userID)
	s.PublishSkills(ctx)

	m.mu.Lock()
	if existing, ok := m.sessions[userID]; ok {
		m.mu.Unlock()
		s.Close(ctx)
		return existing, nil
	}
	m.sessions[userID] = s
	m.mu.Unlock()
	return s, nil
}

// SkillsChanged implements ChangeListener: the user's skills feed republishes
// so score and milestones re-derive.
func (m *SessionManager) SkillsChanged(ctx context.Context, userID string) {
	s, err := m.Session(ctx, userID)
	if err != nil {
		return
	}
	s.PublishSkills(ctx)
}

// Close tears down every live session.
func (m *SessionManager) Close(ctx context.Context) {
	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, s := range sessions {
		s.Close(ctx)
	}
}
