package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/skillup-app/go-skillup-backend/internal/domain"
	"github.com/skillup-app/go-skillup-backend/internal/services"
)

// Flexible friend service stub
type stubFriendSvc struct {
	add   func(userID, name, subtitle string) (*domain.Person, error)
	list  func(userID, query string) ([]domain.Person, error)
	peers func(userID string) ([]string, error)
}

func (s stubFriendSvc) Add(_ context.Context, u, name, sub string) (*domain.Person, error) {
	if s.add != nil {
		return s.add(u, name, sub)
	}
	return &domain.Person{ID: "p-1", UserID: u, Title: name, Subtitle: sub}, nil
}

func (s stubFriendSvc) List(_ context.Context, u, q string) ([]domain.Person, error) {
	if s.list != nil {
		return s.list(u, q)
	}
	return nil, nil
}

func (s stubFriendSvc) PeerIDs(_ context.Context, u string) ([]string, error) {
	if s.peers != nil {
		return s.peers(u)
	}
	return nil, nil
}

func newFriendRouter(svc FriendService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := &Handlers{Friends: svc}
	r := gin.New()
	r.POST("/friends", h.AddFriend)
	r.GET("/friends", h.ListFriends)
	return r
}

func TestAddFriend_StatusMapping(t *testing.T) {
	cases := []struct {
		name     string
		body     string
		err      error
		wantCode int
	}{
		{"bad json", "{bad", nil, http.StatusBadRequest},
		{"empty name", `{"name":""}`, services.ErrEmptyName, http.StatusUnprocessableEntity},
		{"duplicate", `{"name":"Alice"}`, services.ErrDuplicateFriend, http.StatusConflict},
		{"success", `{"name":"Alice","subtitle":"ML"}`, nil, http.StatusCreated},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newFriendRouter(stubFriendSvc{
				add: func(u, name, sub string) (*domain.Person, error) {
					if tc.err != nil {
						return nil, tc.err
					}
					return &domain.Person{ID: "p-1", UserID: u, Title: name, Subtitle: sub}, nil
				},
			})
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/friends", bytes.NewBufferString(tc.body))
			r.ServeHTTP(w, req)
			if w.Code != tc.wantCode {
				t.Fatalf("%s -> %d want %d", tc.name, w.Code, tc.wantCode)
			}
		})
	}
}

func TestListFriends_ReturnsItems(t *testing.T) {
	r := newFriendRouter(stubFriendSvc{
		list: func(_, _ string) ([]domain.Person, error) {
			return []domain.Person{{ID: domain.AssistantID, Title: "AI Assistant"}, {ID: "p-2", Title: "Alice Johnson"}}, nil
		},
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/friends", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("list -> %d", w.Code)
	}
	var body struct {
		Items []domain.Person `json:"items"`
		Total int             `json:"total"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Total != 2 {
		t.Fatalf("total = %d", body.Total)
	}
}
