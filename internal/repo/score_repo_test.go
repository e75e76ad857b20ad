package repo

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/skillup-app/go-skillup-backend/internal/domain"
)

func TestUpsertScore_MergesOnConflict(t *testing.T) {
	db := newRepoDB(t, &domain.ScoreRecord{})
	ctx := context.Background()

	if err := UpsertScore(ctx, db, "user-123456789", 10); err != nil {
		t.Fatalf("UpsertScore: %v", err)
	}
	if err := UpsertScore(ctx, db, "user-123456789", 25.5); err != nil {
		t.Fatalf("UpsertScore (update): %v", err)
	}

	rec, err := GetScore(ctx, db, "user-123456789")
	if err != nil {
		t.Fatalf("GetScore: %v", err)
	}
	if rec.TotalScore != 25.5 {
		t.Fatalf("expected merged score 25.5, got %v", rec.TotalScore)
	}
	if rec.UserShortID != "user-123" {
		t.Fatalf("expected short id %q, got %q", "user-123", rec.UserShortID)
	}
}

func TestScoresByUserIDs_EnforcesBatchCap(t *testing.T) {
	db := newRepoDB(t, &domain.ScoreRecord{})
	ctx := context.Background()

	ids := make([]string, MaxScoreBatch+1)
	for i := range ids {
		ids[i] = fmt.Sprintf("u%d", i)
	}
	if _, err := ScoresByUserIDs(ctx, db, ids); !errors.Is(err, ErrBatchTooLarge) {
		t.Fatalf("expected ErrBatchTooLarge, got %v", err)
	}

	got, err := ScoresByUserIDs(ctx, db, nil)
	if err != nil || len(got) != 0 {
		t.Fatalf("expected empty result for empty input, got %v err=%v", got, err)
	}
}

func TestTopScores_OrdersDescendingWithLimit(t *testing.T) {
	db := newRepoDB(t, &domain.ScoreRecord{})
	ctx := context.Background()

	for i, score := range []float64{5, 50, 20} {
		if err := UpsertScore(ctx, db, fmt.Sprintf("user-%d", i), score); err != nil {
			t.Fatalf("UpsertScore: %v", err)
		}
	}

	got, err := TopScores(ctx, db, 2)
	if err != nil {
		t.Fatalf("TopScores: %v", err)
	}
	if len(got) != 2 || got[0].TotalScore != 50 || got[1].TotalScore != 20 {
		t.Fatalf("unexpected ranking: %+v", got)
	}
}

func TestCreateMessage_TimestampsAreSortableStrings(t *testing.T) {
	db := newRepoDB(t, &domain.ChatMessage{})
	ctx := context.Background()

	first, err := CreateMessage(ctx, db, "community", "u1", "u1", "hello", domain.StatusDelivered)
	if err != nil {
		t.Fatalf("CreateMessage: %v", err)
	}
	time.Sleep(2 * time.Millisecond)
	second, err := CreateMessage(ctx, db, "community", "u2", "u2", "hi back", domain.StatusDelivered)
	if err != nil {
		t.Fatalf("CreateMessage: %v", err)
	}
	if !(first.Timestamp < second.Timestamp) {
		t.Fatalf("expected lexicographic ordering, got %q then %q", first.Timestamp, second.Timestamp)
	}

	msgs, err := ListThreadMessages(ctx, db, "community")
	if err != nil {
		t.Fatalf("ListThreadMessages: %v", err)
	}
	if len(msgs) != 2 || msgs[0].ID != first.ID || msgs[1].ID != second.ID {
		t.Fatalf("unexpected thread order: %+v", msgs)
	}
}

func TestUpdateMessageStatus_MissingIsNoOp(t *testing.T) {
	db := newRepoDB(t, &domain.ChatMessage{})
	ctx := context.Background()

	m, err := CreateMessage(ctx, db, "community", "u1", "u1", "hello", domain.StatusDelivered)
	if err != nil {
		t.Fatalf("CreateMessage: %v", err)
	}

	n, err := UpdateMessageStatus(ctx, db, m.ID, domain.StatusRead)
	if err != nil || n != 1 {
		t.Fatalf("UpdateMessageStatus: n=%d err=%v", n, err)
	}
	n, err = UpdateMessageStatus(ctx, db, "missing", domain.StatusRead)
	if err != nil || n != 0 {
		t.Fatalf("expected no-op, got n=%d err=%v", n, err)
	}
}

func TestIdempotency_DuplicateKeyDetected(t *testing.T) {
	db := newRepoDB(t, &domain.Idempotency{})
	ctx := context.Background()

	if _, err := CreateIdempotency(ctx, db, "u1", "community", "k1", "m1", 201, time.Hour); err != nil {
		t.Fatalf("CreateIdempotency: %v", err)
	}
	if _, err := CreateIdempotency(ctx, db, "u1", "community", "k1", "m2", 201, time.Hour); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}

	rec, err := GetIdempotency(ctx, db, "u1", "community", "k1", time.Now().UTC())
	if err != nil {
		t.Fatalf("GetIdempotency: %v", err)
	}
	if rec.MessageID != "m1" {
		t.Fatalf("expected original message id, got %q", rec.MessageID)
	}

	// Expired records behave as absent.
	if _, err := GetIdempotency(ctx, db, "u1", "community", "k1", time.Now().UTC().Add(2*time.Hour)); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for expired record, got %v", err)
	}
}
