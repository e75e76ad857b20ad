// Package handlers – leaderboard endpoints
//
// GET /leaderboard/friends  local user plus accepted friends, ranked
// GET /leaderboard/global   top cohort with the local user appended when unranked
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/skillup-app/go-skillup-backend/internal/services"
)

// FriendsLeaderboard handles GET /leaderboard/friends. An empty board is a
// legitimate state and is reported explicitly rather than as a bare list.
func (h *Handlers) FriendsLeaderboard(c *gin.Context) {
	ctx := c.Request.Context()
	uid := userID(c)

	peers, err := h.Friends.PeerIDs(ctx, uid)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, "could not resolve friend list")
		return
	}

	entries, err := h.Leaderboard.Friends(ctx, uid, peers)
	if err != nil {
		if errors.Is(err, services.ErrNoScores) {
			ok(c, http.StatusOK, gin.H{"empty": true, "items": []services.LeaderboardEntry{}})
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, "could not build leaderboard")
		return
	}
	ok(c, http.StatusOK, gin.H{"empty": false, "items": entries})
}

// GlobalLeaderboard handles GET /leaderboard/global.
func (h *Handlers) GlobalLeaderboard(c *gin.Context) {
	entries, err := h.Leaderboard.Global(c.Request.Context(), userID(c))
	if err != nil {
		if errors.Is(err, services.ErrNoScores) {
			ok(c, http.StatusOK, gin.H{"empty": true, "items": []services.LeaderboardEntry{}})
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, "could not build leaderboard")
		return
	}
	ok(c, http.StatusOK, gin.H{"empty": false, "items": entries})
}
