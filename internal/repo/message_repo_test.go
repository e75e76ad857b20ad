package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/skillup-app/go-skillup-backend/internal/domain"
)

func TestCreateMessage_AndThreadOrdering(t *testing.T) {
	db := newRepoDB(t, &domain.ChatMessage{})
	ctx := context.Background()

	first, err := CreateMessage(ctx, db, domain.CommunityThreadID, "user-123456789", "user-123", "hello", domain.StatusDelivered)
	if err != nil {
		t.Fatalf("CreateMessage: %v", err)
	}
	if first.ID == "" || first.Timestamp == "" {
		t.Fatalf("unfilled message: %+v", first)
	}
	if _, err := time.Parse(time.RFC3339Nano, first.Timestamp); err != nil {
		t.Fatalf("timestamp not RFC3339: %q", first.Timestamp)
	}

	if _, err := CreateMessage(ctx, db, domain.CommunityThreadID, "user-123456789", "user-123", "second", domain.StatusDelivered); err != nil {
		t.Fatalf("CreateMessage: %v", err)
	}
	// a different thread must not leak into the listing
	if _, err := CreateMessage(ctx, db, "group-1", "user-123456789", "user-123", "elsewhere", domain.StatusDelivered); err != nil {
		t.Fatalf("CreateMessage: %v", err)
	}

	msgs, err := ListThreadMessages(ctx, db, domain.CommunityThreadID)
	if err != nil {
		t.Fatalf("ListThreadMessages: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	if msgs[0].Body != "hello" || msgs[1].Body != "second" {
		t.Fatalf("order wrong: %q then %q", msgs[0].Body, msgs[1].Body)
	}
	if msgs[0].Timestamp > msgs[1].Timestamp {
		t.Fatalf("timestamps out of order: %q > %q", msgs[0].Timestamp, msgs[1].Timestamp)
	}
}

func TestUpdateMessageStatus_CountsRows(t *testing.T) {
	db := newRepoDB(t, &domain.ChatMessage{})
	ctx := context.Background()

	m, err := CreateMessage(ctx, db, domain.CommunityThreadID, "sender-1", "sender-1", "hi", domain.StatusDelivered)
	if err != nil {
		t.Fatalf("CreateMessage: %v", err)
	}

	n, err := UpdateMessageStatus(ctx, db, m.ID, domain.StatusRead)
	if err != nil || n != 1 {
		t.Fatalf("update: n=%d err=%v", n, err)
	}
	got, err := GetMessage(ctx, db, m.ID)
	if err != nil {
		t.Fatalf("GetMessage: %v", err)
	}
	if got.Status != domain.StatusRead {
		t.Fatalf("status = %q", got.Status)
	}

	// missing id is zero rows, not an error
	n, err = UpdateMessageStatus(ctx, db, "no-such-id", domain.StatusRead)
	if err != nil || n != 0 {
		t.Fatalf("missing id: n=%d err=%v", n, err)
	}
}

func TestIdempotency_RoundTripAndExpiry(t *testing.T) {
	db := newRepoDB(t, &domain.Idempotency{})
	ctx := context.Background()
	now := time.Now().UTC()

	rec, err := CreateIdempotency(ctx, db, "u1", domain.CommunityThreadID, "retry-1", "msg-1", 201, time.Hour)
	if err != nil {
		t.Fatalf("CreateIdempotency: %v", err)
	}
	if rec.MessageID != "msg-1" || rec.Status != 201 {
		t.Fatalf("unexpected record: %+v", rec)
	}

	got, err := GetIdempotency(ctx, db, "u1", domain.CommunityThreadID, "retry-1", now)
	if err != nil {
		t.Fatalf("GetIdempotency: %v", err)
	}
	if got.MessageID != "msg-1" {
		t.Fatalf("message id = %q", got.MessageID)
	}

	// same tuple again is a duplicate
	if _, err := CreateIdempotency(ctx, db, "u1", domain.CommunityThreadID, "retry-1", "msg-2", 201, time.Hour); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}

	// a different thread scopes independently
	if _, err := CreateIdempotency(ctx, db, "u1", "group-9", "retry-1", "msg-3", 201, time.Hour); err != nil {
		t.Fatalf("cross-thread create: %v", err)
	}

	// expired records are invisible
	if _, err := GetIdempotency(ctx, db, "u1", domain.CommunityThreadID, "retry-1", now.Add(2*time.Hour)); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after expiry, got %v", err)
	}

	// blank thread never matches
	if _, err := GetIdempotency(ctx, db, "u1", "  ", "retry-1", now); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for blank thread, got %v", err)
	}
}
