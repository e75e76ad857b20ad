package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/skillup-app/go-skillup-backend/internal/domain"
	"github.com/skillup-app/go-skillup-backend/internal/http/middleware"
	"github.com/skillup-app/go-skillup-backend/internal/repo"
	"github.com/skillup-app/go-skillup-backend/internal/services"
)

func newChatDB(t *testing.T) *gorm.DB {
	t.Helper()

	// Unique DSN per call to avoid cross-test contamination
	dsn := fmt.Sprintf("file:chat_handlers_%s?mode=memory&cache=shared", uuid.NewString())

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// Flexible message service stub
type stubMsgSvc struct {
	send func(userID string, mode services.Mode, groupID, body string) (*domain.ChatMessage, error)
	list func(userID string, mode services.Mode, groupID string) ([]domain.ChatMessage, error)
}

func (s stubMsgSvc) Send(_ context.Context, u string, mode services.Mode, gid, body string) (*domain.ChatMessage, error) {
	if s.send != nil {
		return s.send(u, mode, gid, body)
	}
	return &domain.ChatMessage{ID: "m-1", ThreadID: domain.CommunityThreadID, SenderID: u, Body: body, Status: "delivered"}, nil
}

func (s stubMsgSvc) List(_ context.Context, u string, mode services.Mode, gid string) ([]domain.ChatMessage, error) {
	if s.list != nil {
		return s.list(u, mode, gid)
	}
	return nil, nil
}

func newChatRouter(h *Handlers) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.IdempotencyValidator(middleware.IdempotencyOptions{}, nil))
	r.POST("/chat/messages", h.SendMessage)
	r.GET("/chat/messages", h.ListMessages)
	return r
}

func TestSendMessage_StatusMapping(t *testing.T) {
	cases := []struct {
		name     string
		body     string
		err      error
		wantCode int
	}{
		{"bad json", "{bad", nil, http.StatusBadRequest},
		{"unknown mode", `{"mode":"broadcast","message":"hi"}`, nil, http.StatusBadRequest},
		{"empty message", `{"message":"   "}`, services.ErrEmptyMessage, http.StatusUnprocessableEntity},
		{"missing group", `{"mode":"group","message":"hi"}`, services.ErrGroupRequired, http.StatusUnprocessableEntity},
		{"unknown group", `{"mode":"group","group_id":"ghost","message":"hi"}`, services.ErrGroupNotFound, http.StatusNotFound},
		{"success", `{"message":"hello"}`, nil, http.StatusCreated},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := &Handlers{Messages: stubMsgSvc{
				send: func(u string, _ services.Mode, _, body string) (*domain.ChatMessage, error) {
					if tc.err != nil {
						return nil, tc.err
					}
					return &domain.ChatMessage{ID: "m-1", SenderID: u, Body: body}, nil
				},
			}}
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/chat/messages", bytes.NewBufferString(tc.body))
			newChatRouter(h).ServeHTTP(w, req)
			if w.Code != tc.wantCode {
				t.Fatalf("%s -> %d want %d (%s)", tc.name, w.Code, tc.wantCode, w.Body.String())
			}
		})
	}
}

func TestSendMessage_IdempotentReplay(t *testing.T) {
	db := newChatDB(t)
	ctx := context.Background()

	stored, err := repo.CreateMessage(ctx, db, domain.CommunityThreadID, "demo-user", "demo-use", "original", "delivered")
	if err != nil {
		t.Fatalf("seed message: %v", err)
	}
	if _, err := repo.CreateIdempotency(ctx, db, "demo-user", domain.CommunityThreadID, "retry-1", stored.ID, http.StatusCreated, time.Hour); err != nil {
		t.Fatalf("seed idempotency: %v", err)
	}

	sends := 0
	h := &Handlers{
		Messages: stubMsgSvc{
			send: func(string, services.Mode, string, string) (*domain.ChatMessage, error) {
				sends++
				return &domain.ChatMessage{ID: "should-not-happen"}, nil
			},
		},
		DB:             db,
		IdempotencyTTL: time.Hour,
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/chat/messages", bytes.NewBufferString(`{"message":"retried"}`))
	req.Header.Set(middleware.HeaderIdempotencyKey, "retry-1")
	newChatRouter(h).ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("replay -> %d (%s)", w.Code, w.Body.String())
	}
	if sends != 0 {
		t.Fatalf("send executed %d times on replay", sends)
	}
	var got domain.ChatMessage
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.ID != stored.ID || got.Body != "original" {
		t.Fatalf("replayed message = %+v", got)
	}
}

func TestSendMessage_RecordsIdempotencyKey(t *testing.T) {
	db := newChatDB(t)

	h := &Handlers{
		Messages:       stubMsgSvc{},
		DB:             db,
		IdempotencyTTL: time.Hour,
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/chat/messages", bytes.NewBufferString(`{"message":"first"}`))
	req.Header.Set(middleware.HeaderIdempotencyKey, "first-key")
	newChatRouter(h).ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("send -> %d (%s)", w.Code, w.Body.String())
	}
	rec, err := repo.GetIdempotency(context.Background(), db, "demo-user", domain.CommunityThreadID, "first-key", time.Now().UTC())
	if err != nil {
		t.Fatalf("lookup recorded key: %v", err)
	}
	if rec.MessageID != "m-1" || rec.Status != http.StatusCreated {
		t.Fatalf("record = %+v", rec)
	}
}

func TestListMessages_StatusMapping(t *testing.T) {
	// Unknown mode -> 400
	{
		h := &Handlers{Messages: stubMsgSvc{}}
		w := httptest.NewRecorder()
		newChatRouter(h).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/chat/messages?mode=broadcast", nil))
		if w.Code != http.StatusBadRequest {
			t.Fatalf("bad mode -> %d", w.Code)
		}
	}

	// Group without id -> 400
	{
		h := &Handlers{Messages: stubMsgSvc{
			list: func(string, services.Mode, string) ([]domain.ChatMessage, error) {
				return nil, services.ErrGroupRequired
			},
		}}
		w := httptest.NewRecorder()
		newChatRouter(h).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/chat/messages?mode=group", nil))
		if w.Code != http.StatusBadRequest {
			t.Fatalf("missing group -> %d", w.Code)
		}
	}

	// Success with items envelope
	{
		h := &Handlers{Messages: stubMsgSvc{
			list: func(_ string, mode services.Mode, _ string) ([]domain.ChatMessage, error) {
				if mode != services.ModeCommunity {
					t.Fatalf("mode = %q", mode)
				}
				return []domain.ChatMessage{{ID: "m-1"}, {ID: "m-2"}}, nil
			},
		}}
		w := httptest.NewRecorder()
		newChatRouter(h).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/chat/messages", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("list -> %d", w.Code)
		}
		var body struct {
			Items []domain.ChatMessage `json:"items"`
			Total int                  `json:"total"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if body.Total != 2 {
			t.Fatalf("total = %d", body.Total)
		}
	}
}
