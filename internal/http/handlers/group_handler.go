// Package handlers – private group endpoints
//
// POST /groups  create a group (name >= 3 chars, creator + at least one friend)
// GET  /groups  list the user's groups, most recent first
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/skillup-app/go-skillup-backend/internal/services"
)

// CreateGroupRequest is the JSON body for POST /groups.
type CreateGroupRequest struct {
	Name      string   `json:"name"`
	MemberIDs []string `json:"member_ids"`
}

// CreateGroup handles POST /groups.
func (h *Handlers) CreateGroup(c *gin.Context) {
	var req CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	group, err := h.Groups.Create(c.Request.Context(), userID(c), req.Name, req.MemberIDs)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrGroupNameTooShort), errors.Is(err, services.ErrGroupTooSmall):
			fail(c, http.StatusUnprocessableEntity, ErrCodeValidation, err.Error())
		default:
			fail(c, http.StatusInternalServerError, ErrCodeCreateFailed, "could not create group")
		}
		return
	}
	ok(c, http.StatusCreated, group)
}

// ListGroups handles GET /groups.
func (h *Handlers) ListGroups(c *gin.Context) {
	groups, err := h.Groups.List(c.Request.Context(), userID(c))
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, "could not list groups")
		return
	}
	ok(c, http.StatusOK, gin.H{"items": groups, "total": len(groups)})
}
