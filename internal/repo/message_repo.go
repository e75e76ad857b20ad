// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the ChatMessage
// model.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/skillup-app/go-skillup-backend/internal/domain"
)

// CreateMessage inserts a new message into a thread. The timestamp is an
// ISO-8601 UTC string so message ordering can rely on plain string
// comparison.
func CreateMessage(ctx context.Context, db *gorm.DB, threadID, senderID, senderShortID, body, status string) (*domain.ChatMessage, error) {
	now := time.Now().UTC()
	m := &domain.ChatMessage{
		ID:            uuid.NewString(),
		ThreadID:      threadID,
		SenderID:      senderID,
		SenderShortID: senderShortID,
		Body:          body,
		Timestamp:     now.Format(time.RFC3339Nano),
		Status:        status,
		CreatedAt:     now,
	}
	if err := db.WithContext(ctx).Create(m).Error; err != nil {
		return nil, err
	}
	return m, nil
}

// ListThreadMessages returns every message in a thread ordered
// deterministically (Timestamp ASC, ID ASC).
func ListThreadMessages(ctx context.Context, db *gorm.DB, threadID string) ([]domain.ChatMessage, error) {
	var out []domain.ChatMessage
	err := db.WithContext(ctx).
		Where("thread_id = ?", threadID).
		Order("timestamp ASC, id ASC").
		Find(&out).Error
	return out, err
}

// GetMessage fetches a message by ID, or ErrNotFound.
func GetMessage(ctx context.Context, db *gorm.DB, id string) (*domain.ChatMessage, error) {
	var m domain.ChatMessage
	if err := db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// UpdateMessageStatus transitions one message's delivery status. A missing
// message affects zero rows and is reported through the returned count, not
// as an error.
func UpdateMessageStatus(ctx context.Context, db *gorm.DB, id, status string) (int64, error) {
	res := db.WithContext(ctx).
		Model(&domain.ChatMessage{}).
		Where("id = ?", id).
		Update("status", status)
	return res.RowsAffected, res.Error
}
