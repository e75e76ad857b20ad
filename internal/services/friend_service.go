// Package services – FriendService
//
// This file implements the private friend list: add with duplicate-name
// rejection, list with substring search, and the peer-id helper feeding the
// friends leaderboard. The assistant persona lives in the same collection so
// it renders as a contact, but it is excluded from every real-correspondent
// surface.
package services

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/skillup-app/go-skillup-backend/internal/domain"
)

// PersonRepo defines the repository contract required by FriendService.
type PersonRepo interface {
	CreatePerson(ctx context.Context, db *gorm.DB, id, userID, title, subtitle string) (*domain.Person, error)
	ListPeople(ctx context.Context, db *gorm.DB, userID string) ([]domain.Person, error)
	PersonNameExists(ctx context.Context, db *gorm.DB, userID, title string) (bool, error)
}

// FriendService provides friend-list operations.
type FriendService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Repo is the person repository used by this service.
	Repo PersonRepo
}

// NewFriendService constructs a FriendService.
func NewFriendService(db *gorm.DB, r PersonRepo) *FriendService {
	return &FriendService{DB: db, Repo: r}
}

// Add creates a friend entry. Display names are unique per user,
// case-insensitively; a duplicate aborts with ErrDuplicateFriend and no
// partial write.
func (s *FriendService) Add(ctx context.Context, userID, name, subtitle string) (*domain.Person, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}
	exists, err := s.Repo.PersonNameExists(ctx, s.DB, userID, name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateFriend
	}
	return s.Repo.CreatePerson(ctx, s.DB, "", userID, name, strings.TrimSpace(subtitle))
}

// List returns the user's friends, optionally filtered by a case-insensitive
// substring match over name and subtitle.
func (s *FriendService) List(ctx context.Context, userID, query string) ([]domain.Person, error) {
	people, err := s.Repo.ListPeople(ctx, s.DB, userID)
	if err != nil {
		return nil, err
	}
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return people, nil
	}
	out := make([]domain.Person, 0, len(people))
	for _, p := range people {
		if strings.Contains(strings.ToLower(p.Title), query) ||
			strings.Contains(strings.ToLower(p.Subtitle), query) {
			out = append(out, p)
		}
	}
	return out, nil
}

// PeerIDs returns the ids of the user's real friends, excluding the assistant
// persona. The leaderboard's friends view matches against this set.
func (s *FriendService) PeerIDs(ctx context.Context, userID string) ([]string, error) {
	people, err := s.Repo.ListPeople(ctx, s.DB, userID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(people))
	for _, p := range people {
		if p.IsAssistant() {
			continue
		}
		ids = append(ids, p.ID)
	}
	return ids, nil
}
