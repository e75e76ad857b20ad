// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Person
// (friend) model.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/skillup-app/go-skillup-backend/internal/domain"
)

// CreatePerson inserts a new friend entry for userID. When id is empty a UUID
// is generated; the assistant persona is seeded under its reserved id.
func CreatePerson(ctx context.Context, db *gorm.DB, id, userID, title, subtitle string) (*domain.Person, error) {
	if id == "" {
		id = uuid.NewString()
	}
	p := &domain.Person{
		ID:        id,
		UserID:    userID,
		Title:     title,
		Subtitle:  subtitle,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(p).Error; err != nil {
		return nil, err
	}
	return p, nil
}

// ListPeople returns all friends belonging to userID, ordered by display name.
func ListPeople(ctx context.Context, db *gorm.DB, userID string) ([]domain.Person, error) {
	var out []domain.Person
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("title asc").
		Find(&out).Error
	return out, err
}

// CountPeople returns the total number of friends owned by userID.
func CountPeople(ctx context.Context, db *gorm.DB, userID string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Person{}).
		Where("user_id = ?", userID).
		Count(&total).Error
	return total, err
}

// PersonNameExists reports whether userID already has a friend with the given
// display name, compared case-insensitively.
func PersonNameExists(ctx context.Context, db *gorm.DB, userID, title string) (bool, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Person{}).
		Where("user_id = ? AND LOWER(title) = LOWER(?)", userID, title).
		Count(&total).Error
	return total > 0, err
}
