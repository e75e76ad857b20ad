// Package handlers – friend endpoints
//
// POST /friends     add a friend (duplicate display names rejected)
// GET  /friends?q=  list friends with optional substring search
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/skillup-app/go-skillup-backend/internal/services"
)

// AddFriendRequest is the JSON body for POST /friends.
type AddFriendRequest struct {
	Name     string `json:"name"`
	Subtitle string `json:"subtitle"`
}

// AddFriend handles POST /friends.
func (h *Handlers) AddFriend(c *gin.Context) {
	var req AddFriendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	person, err := h.Friends.Add(c.Request.Context(), userID(c), req.Name, req.Subtitle)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmptyName):
			fail(c, http.StatusUnprocessableEntity, ErrCodeValidation, err.Error())
		case errors.Is(err, services.ErrDuplicateFriend):
			fail(c, http.StatusConflict, ErrCodeConflict, err.Error())
		default:
			fail(c, http.StatusInternalServerError, ErrCodeCreateFailed, "could not add friend")
		}
		return
	}
	ok(c, http.StatusCreated, person)
}

// ListFriends handles GET /friends.
func (h *Handlers) ListFriends(c *gin.Context) {
	people, err := h.Friends.List(c.Request.Context(), userID(c), c.Query("q"))
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, "could not list friends")
		return
	}
	ok(c, http.StatusOK, gin.H{"items": people, "total": len(people)})
}
