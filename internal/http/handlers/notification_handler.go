// Package handlers – notification and stats endpoints
//
// GET    /notifications  unread milestone toasts, newest first
// DELETE /notifications  dismiss all toasts
// GET    /stats          header strip counters and derived score
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/skillup-app/go-skillup-backend/internal/domain"
)

// ListNotifications handles GET /notifications.
func (h *Handlers) ListNotifications(c *gin.Context) {
	sess, err := h.Sessions.Session(c.Request.Context(), userID(c))
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not open session")
		return
	}
	items := sess.Notifications.SortedByRecency()
	if items == nil {
		items = []domain.Notification{}
	}
	ok(c, http.StatusOK, gin.H{
		"items":  items,
		"unread": sess.Notifications.UnreadCount(),
	})
}

// ClearNotifications handles DELETE /notifications.
func (h *Handlers) ClearNotifications(c *gin.Context) {
	sess, err := h.Sessions.Session(c.Request.Context(), userID(c))
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not open session")
		return
	}
	sess.Notifications.Clear()
	noContent(c)
}

// GetStats handles GET /stats.
func (h *Handlers) GetStats(c *gin.Context) {
	ctx := c.Request.Context()
	sess, err := h.Sessions.Session(ctx, userID(c))
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not open session")
		return
	}
	stats, err := sess.Stats(ctx)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not compute stats")
		return
	}
	ok(c, http.StatusOK, stats)
}
