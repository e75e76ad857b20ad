// Package services – SkillService
//
// This file implements the skill lifecycle: create, list with substring
// search, suggest by word overlap, log progress, and delete. Mutations notify
// the change listener so the owner's skills feed republishes and the session
// coordinator re-derives score and milestones. Acting on a skill id that no
// longer exists is a silent no-op, not an error.
package services

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/skillup-app/go-skillup-backend/internal/domain"
	"github.com/skillup-app/go-skillup-backend/internal/search"
)

// SkillRepo defines the repository contract required by SkillService.
type SkillRepo interface {
	CreateSkill(ctx context.Context, db *gorm.DB, userID, title, description string, stars float64) (*domain.Skill, error)
	ListSkills(ctx context.Context, db *gorm.DB, userID string) ([]domain.Skill, error)
	IncrementProgress(ctx context.Context, db *gorm.DB, id, userID string) (int64, error)
	DeleteSkill(ctx context.Context, db *gorm.DB, id, userID string) (int64, error)
}

// ChangeListener is notified after a successful mutation of a user's private
// collections, so live feeds can republish. Implemented by the session
// manager.
type ChangeListener interface {
	SkillsChanged(ctx context.Context, userID string)
}

// SkillService provides skill-level operations and enforces input validation.
type SkillService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Repo is the skill repository used by this service.
	Repo SkillRepo
	// Changes is notified after each successful mutation. Optional.
	Changes ChangeListener

	// MaxStars clamps the difficulty rating; the conventional scale is 1–5.
	MaxStars float64
}

// NewSkillService constructs a SkillService with the conventional star scale.
func NewSkillService(db *gorm.DB, r SkillRepo) *SkillService {
	return &SkillService{DB: db, Repo: r, MaxStars: 5}
}

// Create adds a skill owned by userID. The title is required; stars are
// clamped into [1, MaxStars].
func (s *SkillService) Create(ctx context.Context, userID, title, description string, stars float64) (*domain.Skill, error) {
	tr := otel.Tracer("services/SkillService")
	ctx, span := tr.Start(ctx, "Create",
		trace.WithAttributes(attribute.String("user.id", userID)),
	)
	defer span.End()

	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrEmptyTitle
	}
	if stars < 1 {
		stars = 1
	}
	if s.MaxStars > 0 && stars > s.MaxStars {
		stars = s.MaxStars
	}

	skill, err := s.Repo.CreateSkill(ctx, s.DB, userID, title, strings.TrimSpace(description), stars)
	if err != nil {
		return nil, err
	}
	s.notify(ctx, userID)
	return skill, nil
}

// List returns the user's skills, optionally filtered by a case-insensitive
// substring match over title and description.
func (s *SkillService) List(ctx context.Context, userID, query string) ([]domain.Skill, error) {
	skills, err := s.Repo.ListSkills(ctx, s.DB, userID)
	if err != nil {
		return nil, err
	}
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return skills, nil
	}
	out := make([]domain.Skill, 0, len(skills))
	for _, sk := range skills {
		if strings.Contains(strings.ToLower(sk.Title), query) ||
			strings.Contains(strings.ToLower(sk.Description), query) {
			out = append(out, sk)
		}
	}
	return out, nil
}

// Suggest returns up to k skills ranked by word overlap with the query. It
// complements List's substring filter with fuzzier matching for the search
// box's suggestion dropdown.
func (s *SkillService) Suggest(ctx context.Context, userID, query string, k int) ([]domain.Skill, error) {
	skills, err := s.Repo.ListSkills(ctx, s.DB, userID)
	if err != nil {
		return nil, err
	}
	if len(skills) == 0 {
		return nil, nil
	}

	byID := make(map[string]domain.Skill, len(skills))
	entries := make([]search.Entry, 0, len(skills))
	for _, sk := range skills {
		byID[sk.ID] = sk
		entries = append(entries, search.Entry{ID: sk.ID, Text: sk.Title + " " + sk.Description})
	}

	matches := search.NewIndex(entries).TopK(query, k)
	out := make([]domain.Skill, 0, len(matches))
	for _, m := range matches {
		if sk, okMatch := byID[m.ID]; okMatch {
			out = append(out, sk)
		}
	}
	return out, nil
}

// LogProgress records one practice session against the skill. A missing skill
// id is a no-op guard: logged=false, no error.
func (s *SkillService) LogProgress(ctx context.Context, userID, skillID string) (logged bool, err error) {
	tr := otel.Tracer("services/SkillService")
	ctx, span := tr.Start(ctx, "LogProgress",
		trace.WithAttributes(
			attribute.String("user.id", userID),
			attribute.String("skill.id", skillID),
		),
	)
	defer span.End()

	n, err := s.Repo.IncrementProgress(ctx, s.DB, skillID, userID)
	if err != nil {
		return false, err
	}
	if n == 0 {
		return false, nil
	}
	s.notify(ctx, userID)
	return true, nil
}

// Delete removes the skill. A missing id deletes nothing and is not an error.
func (s *SkillService) Delete(ctx context.Context, userID, skillID string) (deleted bool, err error) {
	n, err := s.Repo.DeleteSkill(ctx, s.DB, skillID, userID)
	if err != nil {
		return false, err
	}
	if n == 0 {
		return false, nil
	}
	s.notify(ctx, userID)
	return true, nil
}

func (s *SkillService) notify(ctx context.Context, userID string) {
	if s.Changes != nil {
		s.Changes.SkillsChanged(ctx, userID)
	}
}
