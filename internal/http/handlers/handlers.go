// Package handlers provides HTTP handler implementations for the public API.
//
// This file defines the service contracts the handlers depend on and the
// Handlers aggregate wired by the router. Contracts are kept narrow so tests
// can substitute fakes without touching the real service layer.
package handlers

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/skillup-app/go-skillup-backend/internal/domain"
	"github.com/skillup-app/go-skillup-backend/internal/http/middleware"
	"github.com/skillup-app/go-skillup-backend/internal/services"
)

// SkillService defines skill operations consumed by HTTP handlers.
type SkillService interface {
	Create(ctx context.Context, userID, title, description string, stars float64) (*domain.Skill, error)
	List(ctx context.Context, userID, query string) ([]domain.Skill, error)
	Suggest(ctx context.Context, userID, query string, k int) ([]domain.Skill, error)
	LogProgress(ctx context.Context, userID, skillID string) (bool, error)
	Delete(ctx context.Context, userID, skillID string) (bool, error)
}

// FriendService defines friend-list operations consumed by HTTP handlers.
type FriendService interface {
	Add(ctx context.Context, userID, name, subtitle string) (*domain.Person, error)
	List(ctx context.Context, userID, query string) ([]domain.Person, error)
	PeerIDs(ctx context.Context, userID string) ([]string, error)
}

// GroupService defines private-group operations consumed by HTTP handlers.
type GroupService interface {
	Create(ctx context.Context, userID, name string, memberIDs []string) (*domain.Group, error)
	List(ctx context.Context, userID string) ([]domain.Group, error)
}

// MessageService defines chat operations consumed by HTTP handlers.
type MessageService interface {
	Send(ctx context.Context, userID string, mode services.Mode, groupID, body string) (*domain.ChatMessage, error)
	List(ctx context.Context, userID string, mode services.Mode, groupID string) ([]domain.ChatMessage, error)
}

// LeaderboardService defines the two ranked views consumed by HTTP handlers.
type LeaderboardService interface {
	Friends(ctx context.Context, localUserID string, friendIDs []string) ([]services.LeaderboardEntry, error)
	Global(ctx context.Context, localUserID string) ([]services.LeaderboardEntry, error)
}

// SessionProvider resolves the per-user session coordinator.
type SessionProvider interface {
	Session(ctx context.Context, userID string) (*services.Session, error)
}

// Handlers aggregates the HTTP endpoints and their dependencies.
type Handlers struct {
	Skills      SkillService
	Friends     FriendService
	Groups      GroupService
	Messages    MessageService
	Leaderboard LeaderboardService
	Sessions    SessionProvider

	// DB and IdempotencyTTL back the chat send idempotency records.
	DB             *gorm.DB
	IdempotencyTTL time.Duration
}

// New constructs the Handlers aggregate.
func New(skills SkillService, friends FriendService, groups GroupService, messages MessageService, leaderboard LeaderboardService, sessions SessionProvider, db *gorm.DB, idemTTL time.Duration) *Handlers {
	return &Handlers{
		Skills:         skills,
		Friends:        friends,
		Groups:         groups,
		Messages:       messages,
		Leaderboard:    leaderboard,
		Sessions:       sessions,
		DB:             db,
		IdempotencyTTL: idemTTL,
	}
}

// userID resolves the request identity via the identity middleware.
func userID(c *gin.Context) string {
	return middleware.UserIDFrom(c)
}
