package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/skillup-app/go-skillup-backend/internal/domain"
	"github.com/skillup-app/go-skillup-backend/internal/repo"
	"github.com/skillup-app/go-skillup-backend/internal/services"
	"gorm.io/gorm"
)

func jsonBody(s string) io.Reader { return bytes.NewBufferString(s) }

// Session-backed endpoints run against a real manager so the derivation
// pipeline and seed data behave as in production.
func newSessionRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := newChatDB(t)
	mgr := services.NewSessionManager(db, services.NewThreadHub(db))
	t.Cleanup(func() { mgr.Close(context.Background()) })

	h := &Handlers{Sessions: mgr}
	r := gin.New()
	r.GET("/notifications", h.ListNotifications)
	r.DELETE("/notifications", h.ClearNotifications)
	r.GET("/stats", h.GetStats)
	r.POST("/chat/read", h.MarkRead)
	r.GET("/chat/unread", h.UnreadBadge)
	r.POST("/chat/select", h.SelectThread)
	return r, db
}

func TestGetStats_SeededAccount(t *testing.T) {
	r, _ := newSessionRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/stats", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("stats -> %d (%s)", w.Code, w.Body.String())
	}

	var stats services.Stats
	if err := json.Unmarshal(w.Body.Bytes(), &stats); err != nil {
		t.Fatalf("decode: %v", err)
	}
	// Seeds: Learn Python 4x5, Meditation 2x18, Public Speaking 3x2 = 62
	if stats.TotalScore != 62 {
		t.Fatalf("total score = %v", stats.TotalScore)
	}
	if stats.SkillCount != 3 || stats.FriendCount != 3 || stats.GroupCount != 0 {
		t.Fatalf("counts = %+v", stats)
	}
}

func TestNotifications_ListAndClear(t *testing.T) {
	r, _ := newSessionRouter(t)

	// Fresh session: empty list, zero badge, never null items
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/notifications", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("list -> %d", w.Code)
	}
	var body struct {
		Items  []domain.Notification `json:"items"`
		Unread int                   `json:"unread"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Items == nil || len(body.Items) != 0 || body.Unread != 0 {
		t.Fatalf("fresh session body = %+v", body)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/notifications", nil))
	if w.Code != http.StatusNoContent {
		t.Fatalf("clear -> %d", w.Code)
	}
}

func TestMarkReadAndUnreadBadge(t *testing.T) {
	r, db := newSessionRouter(t)
	ctx := context.Background()

	// Prime the session before inserting foreign traffic.
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/chat/unread", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("badge -> %d (%s)", w.Code, w.Body.String())
	}
	if got := w.Body.String(); got != `{"unread":false}` {
		t.Fatalf("fresh badge = %s", got)
	}

	if _, err := repo.CreateMessage(ctx, db, domain.CommunityThreadID, "stranger", "stranger", "hello", "delivered"); err != nil {
		t.Fatalf("seed message: %v", err)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/chat/unread", nil))
	if got := w.Body.String(); got != `{"unread":true}` {
		t.Fatalf("badge after foreign message = %s", got)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/chat/read", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("read sweep -> %d", w.Code)
	}
	if got := w.Body.String(); got != `{"marked":1}` {
		t.Fatalf("sweep result = %s", got)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/chat/unread", nil))
	if got := w.Body.String(); got != `{"unread":false}` {
		t.Fatalf("badge after sweep = %s", got)
	}
}

func TestSelectThread_ValidationAndSwitch(t *testing.T) {
	r, _ := newSessionRouter(t)

	// Group mode without an id -> 422
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/chat/select", jsonBody(`{"mode":"group"}`))
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("group without id -> %d (%s)", w.Code, w.Body.String())
	}

	// Community select succeeds and reports the active thread
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/chat/select", jsonBody(`{"mode":"community"}`))
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("community select -> %d (%s)", w.Code, w.Body.String())
	}
	var body struct {
		Mode    string `json:"mode"`
		GroupID string `json:"group_id"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Mode != "community" || body.GroupID != "" {
		t.Fatalf("active thread = %+v", body)
	}
}
