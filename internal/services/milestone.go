// Package services – MilestoneEvaluator
//
// This file implements milestone detection for skill progress. A milestone is
// a crossed multiple of the unit size since the last recorded watermark. The
// evaluator is a pure function: it emits a notification descriptor and the new
// watermark value, and the caller persists the watermark. Running it once per
// skill per snapshot (instead of per log action) keeps it correct even when
// external writes are batched or arrive out of order.
package services

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/skillup-app/go-skillup-backend/internal/domain"
)

// MilestoneUnit is the fixed quantum of cumulative log count that triggers a
// celebratory notification.
const MilestoneUnit = 10

// MilestoneEvaluator detects crossed progress milestones. The zero value is
// not usable; construct it with NewMilestoneEvaluator.
type MilestoneEvaluator struct {
	unit int
	now  func() time.Time
}

// NewMilestoneEvaluator returns an evaluator with the standard unit size.
func NewMilestoneEvaluator() MilestoneEvaluator {
	return MilestoneEvaluator{unit: MilestoneUnit, now: time.Now}
}

// Evaluate checks whether the skill's progress crossed a milestone level not
// yet recorded in its watermark. When it fires it returns the notification to
// surface and the new watermark value the caller must persist. It is
// idempotent: re-evaluating after the watermark has been advanced to
// newMilestone never fires again for the same progress.
func (e MilestoneEvaluator) Evaluate(s domain.Skill) (notification *domain.Notification, newMilestone int, fired bool) {
	progress := s.Progress
	if progress < 0 {
		progress = 0
	}
	last := s.LastMilestone
	if last < 0 {
		last = 0
	}

	currentLevel := (progress / e.unit) * e.unit
	lastLevel := (last / e.unit) * e.unit
	if currentLevel <= lastLevel || currentLevel <= 0 {
		return nil, 0, false
	}

	n := &domain.Notification{
		ID:        uuid.NewString(),
		Message:   fmt.Sprintf("Congratulations! You hit a %d-log milestone for %q! Keep up the great work!", currentLevel, s.Title),
		Type:      domain.NotificationTypeMilestone,
		Timestamp: e.now().UTC().Format(time.RFC3339Nano),
		SkillID:   s.ID,
	}
	return n, currentLevel, true
}
