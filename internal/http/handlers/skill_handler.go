// Package handlers – skill endpoints
//
// POST   /skills          create a skill
// GET    /skills?q=       list skills with optional substring search
// GET    /skills/suggest  ranked word-overlap suggestions
// POST   /skills/:id/log  record one practice session
// DELETE /skills/:id      delete a skill (missing id is a no-op)
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/skillup-app/go-skillup-backend/internal/domain"
	"github.com/skillup-app/go-skillup-backend/internal/services"
	"github.com/skillup-app/go-skillup-backend/internal/utils"
)

// CreateSkillRequest is the JSON body for POST /skills.
type CreateSkillRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Stars       float64 `json:"stars"`
}

// CreateSkill handles POST /skills.
func (h *Handlers) CreateSkill(c *gin.Context) {
	var req CreateSkillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	skill, err := h.Skills.Create(c.Request.Context(), userID(c), req.Title, req.Description, req.Stars)
	if err != nil {
		if errors.Is(err, services.ErrEmptyTitle) {
			fail(c, http.StatusUnprocessableEntity, ErrCodeValidation, err.Error())
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeCreateFailed, "could not create skill")
		return
	}
	ok(c, http.StatusCreated, skill)
}

// ListSkills handles GET /skills.
func (h *Handlers) ListSkills(c *gin.Context) {
	skills, err := h.Skills.List(c.Request.Context(), userID(c), c.Query("q"))
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, "could not list skills")
		return
	}
	ok(c, http.StatusOK, gin.H{"items": skills, "total": len(skills)})
}

// SuggestSkills handles GET /skills/suggest: ranked word-overlap matches for
// the search box dropdown.
func (h *Handlers) SuggestSkills(c *gin.Context) {
	k := utils.ClampInt(utils.AtoiDefault(c.Query("k"), 5), 1, 25)
	skills, err := h.Skills.Suggest(c.Request.Context(), userID(c), c.Query("q"), k)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, "could not build suggestions")
		return
	}
	if skills == nil {
		skills = []domain.Skill{}
	}
	ok(c, http.StatusOK, gin.H{"items": skills, "total": len(skills)})
}

// LogSkillProgress handles POST /skills/:id/log.
func (h *Handlers) LogSkillProgress(c *gin.Context) {
	logged, err := h.Skills.LogProgress(c.Request.Context(), userID(c), c.Param("id"))
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not log progress")
		return
	}
	// A vanished skill is a no-op guard, reported but not an error.
	ok(c, http.StatusOK, gin.H{"logged": logged})
}

// DeleteSkill handles DELETE /skills/:id.
func (h *Handlers) DeleteSkill(c *gin.Context) {
	deleted, err := h.Skills.Delete(c.Request.Context(), userID(c), c.Param("id"))
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not delete skill")
		return
	}
	if !deleted {
		ok(c, http.StatusOK, gin.H{"deleted": false})
		return
	}
	noContent(c)
}
