// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the public
// ScoreRecord collection used by the leaderboards.
//
// The collection mirrors the query surface of the original document store:
// membership filtering is capped at 10 identifiers per query (callers batch
// and merge larger sets), and ranked reads use ORDER BY total_score DESC with
// an explicit limit.
package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/skillup-app/go-skillup-backend/internal/domain"
)

// MaxScoreBatch is the maximum number of user ids accepted by a single
// membership query, matching the document store's `in` operator cap.
const MaxScoreBatch = 10

// ErrBatchTooLarge is returned when a membership query exceeds MaxScoreBatch
// identifiers; callers must split the set and merge results themselves.
var ErrBatchTooLarge = errors.New("score batch exceeds 10 ids")

// UpsertScore writes the user's public score record with merge semantics:
// one row per user, updated in place whenever the local score changes.
func UpsertScore(ctx context.Context, db *gorm.DB, userID string, total float64) error {
	rec := &domain.ScoreRecord{
		UserID:      userID,
		UserShortID: domain.ShortID(userID),
		TotalScore:  total,
		LastUpdated: time.Now().UTC(),
	}
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"user_short_id", "total_score", "last_updated"}),
		}).
		Create(rec).Error
}

// ScoresByUserIDs returns the score records for up to MaxScoreBatch users.
// Users without a record are simply absent from the result.
func ScoresByUserIDs(ctx context.Context, db *gorm.DB, userIDs []string) ([]domain.ScoreRecord, error) {
	if len(userIDs) == 0 {
		return []domain.ScoreRecord{}, nil
	}
	if len(userIDs) > MaxScoreBatch {
		return nil, ErrBatchTooLarge
	}
	var out []domain.ScoreRecord
	err := db.WithContext(ctx).
		Where("user_id IN ?", userIDs).
		Find(&out).Error
	return out, err
}

// TopScores returns the highest-scoring records, ordered descending, capped
// at limit.
func TopScores(ctx context.Context, db *gorm.DB, limit int) ([]domain.ScoreRecord, error) {
	var out []domain.ScoreRecord
	err := db.WithContext(ctx).
		Order("total_score DESC").
		Limit(limit).
		Find(&out).Error
	return out, err
}

// GetScore fetches one user's score record, or ErrNotFound.
func GetScore(ctx context.Context, db *gorm.DB, userID string) (*domain.ScoreRecord, error) {
	var rec domain.ScoreRecord
	if err := db.WithContext(ctx).Where("user_id = ?", userID).First(&rec).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}
