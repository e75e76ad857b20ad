// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Skill model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations.
// They follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Error semantics:
//   - When a skill is not found, functions return gorm.ErrRecordNotFound
//     (also exported in this package as ErrNotFound).
//   - On DB errors (constraint violations, connectivity issues, etc.),
//     the raw gorm error is propagated.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/skillup-app/go-skillup-backend/internal/domain"
)

// CreateSkill inserts a new Skill row owned by userID. The skill ID is a
// randomly generated UUID and CreatedAt is set to UTC.
func CreateSkill(ctx context.Context, db *gorm.DB, userID, title, description string, stars float64) (*domain.Skill, error) {
	s := &domain.Skill{
		ID:          uuid.NewString(),
		UserID:      userID,
		Title:       title,
		Description: description,
		Stars:       stars,
		CreatedAt:   time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(s).Error; err != nil {
		return nil, err
	}
	return s, nil
}

// SeedSkill inserts a fully specified Skill row, used for first-run defaults
// where progress and watermark are pre-populated.
func SeedSkill(ctx context.Context, db *gorm.DB, s *domain.Skill) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	return db.WithContext(ctx).Create(s).Error
}

// ListSkills returns all skills belonging to userID, ordered by creation time
// ascending. It returns an empty slice if the user has none.
func ListSkills(ctx context.Context, db *gorm.DB, userID string) ([]domain.Skill, error) {
	var out []domain.Skill
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at asc").
		Find(&out).Error
	return out, err
}

// CountSkills returns the total number of skills owned by userID.
func CountSkills(ctx context.Context, db *gorm.DB, userID string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Skill{}).
		Where("user_id = ?", userID).
		Count(&total).Error
	return total, err
}

// GetSkill fetches a single skill by its ID and owner. If the record does not
// exist, it returns ErrNotFound.
func GetSkill(ctx context.Context, db *gorm.DB, id, userID string) (*domain.Skill, error) {
	var s domain.Skill
	err := db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// IncrementProgress adds one practice log to the skill's cumulative count.
// It returns the number of rows affected so callers can treat a missing
// skill as a no-op guard rather than an error.
func IncrementProgress(ctx context.Context, db *gorm.DB, id, userID string) (int64, error) {
	res := db.WithContext(ctx).
		Model(&domain.Skill{}).
		Where("id = ? AND user_id = ?", id, userID).
		UpdateColumn("progress", gorm.Expr("progress + 1"))
	return res.RowsAffected, res.Error
}

// UpdateMilestone persists a milestone watermark write-back. The watermark
// only moves forward; a stale concurrent write-back with a lower level is
// silently ignored.
func UpdateMilestone(ctx context.Context, db *gorm.DB, id, userID string, milestone int) (int64, error) {
	res := db.WithContext(ctx).
		Model(&domain.Skill{}).
		Where("id = ? AND user_id = ? AND last_milestone < ?", id, userID, milestone).
		UpdateColumn("last_milestone", milestone)
	return res.RowsAffected, res.Error
}

// DeleteSkill removes a skill by ID/owner. Deleting a skill that no longer
// exists affects zero rows and is not an error.
func DeleteSkill(ctx context.Context, db *gorm.DB, id, userID string) (int64, error) {
	res := db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&domain.Skill{})
	return res.RowsAffected, res.Error
}
