// Package services – Session
//
// This file implements the per-user session coordinator. A session owns the
// user's live skills feed and the derived state hanging off it: aggregate
// score, milestone notifications, chat thread selection, and read receipts.
// On every skills snapshot the coordinator recomputes the score, evaluates
// milestones once per skill, issues the watermark write-backs concurrently,
// joins them, and then upserts the public score record. An in-process
// watermark cache prevents duplicate notifications when a second snapshot
// arrives before the first batch of write-backs has landed.
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

// Session holds one user's derived state and feed subscriptions. Sessions are
// created on first request after identity resolution and torn down on
// shutdown.
type Session struct {
	// UserID is the opaque identity this session belongs to.
	UserID string

	// Notifications is the session-local bell badge store.
	Notifications *NotificationStore
	// Selector owns the chat thread state machine.
	Selector *ThreadSelector
	// Reader sweeps community read receipts.
	Reader *ReadStatusTracker

	db         *gorm.DB
	score      ScorePolicy
	milestones MilestoneEvaluator

	skills *live.Feed[domain.Skill]
	handle *live.Handle

	mu         sync.Mutex
	totalScore float64
	// seenLevels caches the highest milestone level already notified per
	// skill, covering the window between detection and durable write-back.
	seenLevels map[string]int
}

// newSession wires a session's feeds and derivation pipeline. The caller is
// expected to publish the skills feed once to prime the derived state.
func newSession(db *gorm.DB, hub *ThreadHub, userID string) *Session {
	s := &Session{
		UserID:        userID,
		Notifications: &NotificationStore{},
		db:            db,
		score:         DefaultScorePolicy{},
		milestones:    NewMilestoneEvaluator(),
		seenLevels:    make(map[string]int),
	}
	s.Reader = &ReadStatusTracker{
		DB:   db,
		Repo: messageRepoFuncs{},
		OnSwept: func(ctx context.Context) {
			hub.Publish(ctx, domain.CommunityThreadID)
		},
	}
	s.Selector = NewThreadSelector(userID, hub, s.Reader)
	s.skills = live.NewFeed(func(ctx context.Context) ([]domain.Skill, error) {
		return repo.ListSkills(ctx, db, userID)
	})
	s.handle = s.skills.Subscribe(s.onSkillsSnapshot)
	return s
}

// PublishSkills re-reads the skill collection and runs the derivation
// pipeline. Load failures are logged and swallowed; prior derived state stays
// intact.
func (s *Session) PublishSkills(ctx context.Context) {
	if err := s.skills.Publish(ctx); err != nil {
		log.Warn().Err(err).Str("user_id", s.UserID).Msg("skills feed publish failed")
	}
}

// onSkillsSnapshot reconciles one full skills snapshot: score, milestones,
// watermark write-backs, public score record.
func (s *Session) onSkillsSnapshot(skills []domain.Skill) {
	ctx := context.Background()

	total := s.score.Total(skills)

	type writeback struct {
		skillID string
		level   int
	}
	var pending []writeback

	s.mu.Lock()
	s.totalScore = total
	alive := make(map[string]bool, len(skills))
	for _, sk := range skills {
		alive[sk.ID] = true
		n, level, fired := s.milestones.Evaluate(sk)
		if !fired || level <= s.seenLevels[sk.ID] {
			continue
		}
		s.seenLevels[sk.ID] = level
		s.Notifications.Append(*n)
		pending = append(pending, writeback{skillID: sk.ID, level: level})
	}
	for id := range s.seenLevels {
		if !alive[id] {
			delete(s.seenLevels, id)
		}
	}
	s.mu.Unlock()

	// Watermark write-backs are independent: issued together, reconciled
	// individually, and joined before the score write-back proceeds.
	var wg sync.WaitGroup
	for _, wb := range pending {
		wg.Add(1)
		go func(wb writeback) {
			defer wg.Done()
			if _, err := repo.UpdateMilestone(ctx, s.db, wb.skillID, s.UserID, wb.level); err != nil {
				log.Warn().Err(err).Str("skill_id", wb.skillID).Int("milestone", wb.level).
					Msg("milestone watermark write-back failed")
				s.mu.Lock()
				if s.seenLevels[wb.skillID] == wb.level {
					delete(s.seenLevels, wb.skillID)
				}
				s.mu.Unlock()
			}
		}(wb)
	}
	wg.Wait()

	if err := repo.UpsertScore(ctx, s.db, s.UserID, total); err != nil {
		log.Warn().Err(err).Str("user_id", s.UserID).Msg("score write-back failed")
	}
}

// TotalScore returns the score derived from the most recent skills snapshot.
func (s *Session) TotalScore() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totalScore
}

// Stats summarizes the session for the header strip.
type Stats struct {
	TotalScore  float64 `json:"total_score"`
	SkillCount  int64   `json:"skill_count"`
	FriendCount int64   `json:"friend_count"`
	GroupCount  int64   `json:"group_count"`
}

// Stats aggregates the user's collection counts with the derived score.
func (s *Session) Stats(ctx context.Context) (Stats, error) {
	skillCount, err := repo.CountSkills(ctx, s.db, s.UserID)
	if err != nil {
		return Stats{}, err
	}
	friendCount, err := repo.CountPeople(ctx, s.db, s.UserID)
	if err != nil {
		return Stats{}, err
	}
	groupCount, err := repo.CountGroups(ctx, s.db, s.UserID)
	if err != nil {
		return Stats{}, err
	}
	return Stats{
		TotalScore:  s.TotalScore(),
		SkillCount:  skillCount,
		FriendCount: friendCount,
		GroupCount:  groupCount,
	}, nil
}

// Close tears the session down: the chat view is exited and the skills
// subscription is cancelled.
func (s *Session) Close(ctx context.Context) {
	if err := s.Selector.Close(ctx); err != nil {
		log.Warn().Err(err).Str("user_id", s.UserID).Msg("closing chat selector failed")
	}
	s.handle.Cancel()
}

// messageRepoFuncs adapts the package-level message repository functions to
// the ReadStatusRepo interface.
type messageRepoFuncs struct{}

func (messageRepoFuncs) ListThreadMessages(ctx context.Context, db *gorm.DB, threadID string) ([]domain.ChatMessage, error) {
	return repo.ListThreadMessages(ctx, db, threadID)
}

func (messageRepoFuncs) UpdateMessageStatus(ctx context.Context, db *gorm.DB, id, status string) (int64, error) {
	return repo.UpdateMessageStatus(ctx, db, id, status)
}
