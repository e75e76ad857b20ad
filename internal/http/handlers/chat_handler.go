// Package handlers – chat endpoints
//
// POST /chat/messages  send a message (Idempotency-Key honored)
// GET  /chat/messages  list the selected thread, timestamp ascending
// POST /chat/select    switch the session's active thread
// POST /chat/read      sweep community read receipts
// GET  /chat/unread    community unread badge state
package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/skillup-app/go-skillup-backend/internal/domain"
	"github.com/skillup-app/go-skillup-backend/internal/http/middleware"
	"github.com/skillup-app/go-skillup-backend/internal/repo"
	"github.com/skillup-app/go-skillup-backend/internal/services"
	"github.com/skillup-app/go-skillup-backend/internal/utils"
)

// SendMessageRequest is the JSON body for POST /chat/messages.
type SendMessageRequest struct {
	Mode    string `json:"mode"`
	GroupID string `json:"group_id"`
	Body    string `json:"message"`
}

// modeFrom normalizes the wire mode; an absent mode means community.
func modeFrom(raw string) (services.Mode, bool) {
	switch raw {
	case "", string(services.ModeCommunity):
		return services.ModeCommunity, true
	case string(services.ModeGroup):
		return services.ModeGroup, true
	}
	return "", false
}

// threadIDFor maps (mode, groupID) to the idempotency scope.
func threadIDFor(mode services.Mode, groupID string) string {
	if mode == services.ModeGroup {
		return groupID
	}
	return domain.CommunityThreadID
}

// SendMessage handles POST /chat/messages. When the request carries an
// Idempotency-Key, a replay within the TTL window returns the originally
// stored message instead of re-executing side effects such as assistant
// replies.
func (h *Handlers) SendMessage(c *gin.Context) {
	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	mode, okMode := modeFrom(req.Mode)
	if !okMode {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "mode must be community or group")
		return
	}

	ctx := c.Request.Context()
	uid := userID(c)
	threadID := threadIDFor(mode, req.GroupID)

	key, hasKey := middleware.GetIdempotencyKey(c)
	if hasKey && h.DB != nil {
		if rec, err := repo.GetIdempotency(ctx, h.DB, uid, threadID, key, time.Now().UTC()); err == nil {
			if msg, err := repo.GetMessage(ctx, h.DB, rec.MessageID); err == nil {
				ok(c, rec.Status, msg)
				return
			}
		}
	}

	msg, err := h.Messages.Send(ctx, uid, mode, req.GroupID, req.Body)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmptyMessage),
			errors.Is(err, services.ErrGroupRequired),
			errors.Is(err, services.ErrUnknownMode):
			fail(c, http.StatusUnprocessableEntity, ErrCodeValidation, err.Error())
		case errors.Is(err, services.ErrGroupNotFound):
			fail(c, http.StatusNotFound, ErrCodeNotFound, err.Error())
		default:
			fail(c, http.StatusInternalServerError, ErrCodeSendFailed, "could not send message")
		}
		return
	}

	if hasKey && h.DB != nil {
		ttl := h.IdempotencyTTL
		if ttl <= 0 {
			ttl = 24 * time.Hour
		}
		if _, err := repo.CreateIdempotency(ctx, h.DB, uid, threadID, key, msg.ID, http.StatusCreated, ttl); err != nil && !errors.Is(err, repo.ErrDuplicate) {
			// Recording failures must not undo a successful send.
			middleware.LoggerFrom(c).Warn().Err(err).Msg("idempotency record write failed")
		}
	}
	ok(c, http.StatusCreated, msg)
}

// ListMessages handles GET /chat/messages.
func (h *Handlers) ListMessages(c *gin.Context) {
	mode, okMode := modeFrom(c.Query("mode"))
	if !okMode {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "mode must be community or group")
		return
	}

	msgs, err := h.Messages.List(c.Request.Context(), userID(c), mode, c.Query("group_id"))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrGroupRequired):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		case errors.Is(err, services.ErrGroupNotFound):
			fail(c, http.StatusNotFound, ErrCodeNotFound, err.Error())
		default:
			fail(c, http.StatusInternalServerError, ErrCodeListFailed, "could not list messages")
		}
		return
	}
	// An optional limit keeps the payload to the tail of a long thread.
	if limit := utils.AtoiDefault(c.Query("limit"), 0); limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	ok(c, http.StatusOK, gin.H{"items": msgs, "total": len(msgs)})
}

// SelectThreadRequest is the JSON body for POST /chat/select.
type SelectThreadRequest struct {
	Mode    string `json:"mode"`
	GroupID string `json:"group_id"`
}

// SelectThread handles POST /chat/select: it moves the session's thread
// selector, cancelling any prior group subscription. Selecting community
// sweeps read receipts as a side effect.
func (h *Handlers) SelectThread(c *gin.Context) {
	var req SelectThreadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	mode, okMode := modeFrom(req.Mode)
	if !okMode {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "mode must be community or group")
		return
	}

	ctx := c.Request.Context()
	sess, err := h.Sessions.Session(ctx, userID(c))
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not open session")
		return
	}
	if err := sess.Selector.Select(ctx, mode, req.GroupID); err != nil {
		switch {
		case errors.Is(err, services.ErrGroupRequired), errors.Is(err, services.ErrUnknownMode):
			fail(c, http.StatusUnprocessableEntity, ErrCodeValidation, err.Error())
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not select thread")
		}
		return
	}

	activeMode, activeGroup := sess.Selector.Current()
	ok(c, http.StatusOK, gin.H{"mode": activeMode, "group_id": activeGroup})
}

// MarkRead handles POST /chat/read: a full community read sweep.
func (h *Handlers) MarkRead(c *gin.Context) {
	ctx := c.Request.Context()
	sess, err := h.Sessions.Session(ctx, userID(c))
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not open session")
		return
	}
	marked, err := sess.Reader.MarkThreadRead(ctx, sess.UserID)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not mark thread read")
		return
	}
	ok(c, http.StatusOK, gin.H{"marked": marked})
}

// UnreadBadge handles GET /chat/unread.
func (h *Handlers) UnreadBadge(c *gin.Context) {
	ctx := c.Request.Context()
	sess, err := h.Sessions.Session(ctx, userID(c))
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not open session")
		return
	}
	unread, err := sess.Reader.HasUnread(ctx, sess.UserID)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not compute badge state")
		return
	}
	ok(c, http.StatusOK, gin.H{"unread": unread})
}
