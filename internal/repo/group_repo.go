// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Group model.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/skillup-app/go-skillup-backend/internal/domain"
)

// CreateGroup inserts a new private group owned by userID. Member validation
// (minimum size, assistant exclusion) belongs to the service layer; the repo
// persists what it is given.
func CreateGroup(ctx context.Context, db *gorm.DB, userID, name string, memberUIDs, memberNames []string) (*domain.Group, error) {
	g := &domain.Group{
		ID:          uuid.NewString(),
		UserID:      userID,
		Name:        name,
		MemberUIDs:  memberUIDs,
		MemberNames: memberNames,
		CreatorID:   userID,
		CreatedAt:   time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(g).Error; err != nil {
		return nil, err
	}
	return g, nil
}

// ListGroups returns all private groups belonging to userID, ordered by
// creation time descending (most recent first).
func ListGroups(ctx context.Context, db *gorm.DB, userID string) ([]domain.Group, error) {
	var out []domain.Group
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&out).Error
	return out, err
}

// GetGroup fetches a single group by ID/owner, or ErrNotFound.
func GetGroup(ctx context.Context, db *gorm.DB, id, userID string) (*domain.Group, error) {
	var g domain.Group
	err := db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&g).Error
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// CountGroups returns the total number of groups owned by userID.
func CountGroups(ctx context.Context, db *gorm.DB, userID string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Group{}).
		Where("user_id = ?", userID).
		Count(&total).Error
	return total, err
}
