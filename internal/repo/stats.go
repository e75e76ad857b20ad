package repo

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// SkillsStats returns the number of skills a user owns and the most recent
// update time across them. Handlers use the pair to derive weak ETags for
// skill listings.
func SkillsStats(ctx context.Context, db *gorm.DB, userID string) (count int64, lastUpdated time.Time, err error) {
	type row struct {
		Cnt int64
		Max *time.Time
	}
	var r row
	err = db.WithContext(ctx).
		Table("skills").
		Select("COUNT(*) AS cnt, MAX(updated_at) AS max").
		Where("user_id = ?", userID).
		Scan(&r).Error
	if err != nil {
		return 0, time.Time{}, err
	}
	if r.Max != nil {
		lastUpdated = *r.Max
	}
	return r.Cnt, lastUpdated, nil
}

// ThreadStats returns the message count and the latest timestamp string in a
// thread. Timestamps are RFC 3339 strings, so MAX() picks the newest one.
func ThreadStats(ctx context.Context, db *gorm.DB, threadID string) (count int64, lastTimestamp string, err error) {
	type row struct {
		Cnt int64
		Max *string
	}
	var r row
	err = db.WithContext(ctx).
		Table("chat_messages").
		Select("COUNT(*) AS cnt, MAX(timestamp) AS max").
		Where("thread_id = ?", threadID).
		Scan(&r).Error
	if err != nil {
		return 0, "", err
	}
	if r.Max != nil {
		lastTimestamp = *r.Max
	}
	return r.Cnt, lastTimestamp, nil
}
