// Package services – GroupService
//
// This file implements private group creation and listing. A group always
// contains its creator plus at least one real friend; the assistant persona
// is filtered out before validation. Member display names are snapshotted at
// creation: "You" for the creator, the friend's current title otherwise, and
// a shortened-id fallback for an id with no matching friend entry.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/skillup-app/go-skillup-backend/internal/domain"
)

// GroupRepo defines the repository contract required by GroupService.
type GroupRepo interface {
	CreateGroup(ctx context.Context, db *gorm.DB, userID, name string, memberUIDs, memberNames []string) (*domain.Group, error)
	ListGroups(ctx context.Context, db *gorm.DB, userID string) ([]domain.Group, error)
	GetGroup(ctx context.Context, db *gorm.DB, id, userID string) (*domain.Group, error)
}

// GroupService provides private group operations.
type GroupService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Repo is the group repository used by this service.
	Repo GroupRepo
	// People resolves member display names for the creation snapshot.
	People PersonRepo
}

// NewGroupService constructs a GroupService.
func NewGroupService(db *gorm.DB, r GroupRepo, people PersonRepo) *GroupService {
	return &GroupService{DB: db, Repo: r, People: people}
}

// Create validates and persists a new group. The creator is always a member;
// the assistant persona and duplicate ids are dropped from the selection
// before the minimum-size check. Validation failures abort with no partial
// write.
func (s *GroupService) Create(ctx context.Context, userID, name string, memberIDs []string) (*domain.Group, error) {
	name = strings.TrimSpace(name)
	if len(name) < 3 {
		return nil, ErrGroupNameTooShort
	}

	uids := make([]string, 0, len(memberIDs)+1)
	seen := make(map[string]bool, len(memberIDs)+1)
	add := func(id string) {
		if id == "" || id == domain.AssistantID || seen[id] {
			return
		}
		seen[id] = true
		uids = append(uids, id)
	}
	add(userID)
	for _, id := range memberIDs {
		add(id)
	}
	if len(uids) < 2 {
		return nil, ErrGroupTooSmall
	}

	people, err := s.People.ListPeople(ctx, s.DB, userID)
	if err != nil {
		return nil, err
	}
	titles := make(map[string]string, len(people))
	for _, p := range people {
		titles[p.ID] = p.Title
	}

	names := make([]string, len(uids))
	for i, id := range uids {
		switch {
		case id == userID:
			names[i] = "You"
		case titles[id] != "":
			names[i] = titles[id]
		default:
			names[i] = fmt.Sprintf("Friend (%s...)", domain.ShortID(id))
		}
	}

	return s.Repo.CreateGroup(ctx, s.DB, userID, name, uids, names)
}

// List returns the user's groups, most recent first.
func (s *GroupService) List(ctx context.Context, userID string) ([]domain.Group, error) {
	return s.Repo.ListGroups(ctx, s.DB, userID)
}

// Get fetches one group, mapping a missing record to ErrGroupNotFound.
func (s *GroupService) Get(ctx context.Context, userID, groupID string) (*domain.Group, error) {
	g, err := s.Repo.GetGroup(ctx, s.DB, groupID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, err
	}
	return g, nil
}
