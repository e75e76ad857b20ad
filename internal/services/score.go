// Package services – ScoreEngine
//
// This file implements score derivation: a user's aggregate score is a pure
// function of their skill records. The policy is pluggable so alternative
// weightings can be swapped in without touching the session coordinator.
package services

import "github.com/skillup-app/go-skillup-backend/internal/domain"

// ScorePolicy derives an aggregate score from a full skill snapshot. The
// computation must be pure and must never fail; malformed records receive
// defensive defaults instead of causing errors.
type ScorePolicy interface {
	Total(skills []domain.Skill) float64
}

// DefaultScorePolicy scores Σ progress × stars over all skills. A negative
// progress counts as zero and a non-positive stars rating counts as one, so a
// half-written record degrades gracefully instead of poisoning the total.
type DefaultScorePolicy struct{}

// Total implements ScorePolicy.
func (DefaultScorePolicy) Total(skills []domain.Skill) float64 {
	var total float64
	for _, s := range skills {
		progress := s.Progress
		if progress < 0 {
			progress = 0
		}
		stars := s.Stars
		if stars <= 0 {
			stars = 1
		}
		total += float64(progress) * stars
	}
	return total
}
