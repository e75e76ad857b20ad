// Package services – first-run seeding
//
// This file populates an empty account with the sample collections the app
// ships with: three skills to practice against and a starter friend list
// headed by the assistant persona.
package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/skillup-app/go-skillup-backend/internal/domain"
	"github.com/skillup-app/go-skillup-backend/internal/repo"
)

// Seed inserts the default skills and people for userID when the respective
// collections are empty. It is safe to call on every session creation.
func Seed(ctx context.Context, db *gorm.DB, userID string) error {
	if err := seedSkills(ctx, db, userID); err != nil {
		return err
	}
	return seedPeople(ctx, db, userID)
}

func seedSkills(ctx context.Context, db *gorm.DB, userID string) error {
	n, err := repo.CountSkills(ctx, db, userID)
	if err != nil || n > 0 {
		return err
	}

	defaults := []domain.Skill{
		{
			UserID:      userID,
			Title:       "Learn Python",
			Description: "Mastering the basics of data structures and algorithms.",
			Stars:       4,
			Progress:    5,
		},
		{
			UserID:        userID,
			Title:         "Meditation Practice",
			Description:   "Daily 15-minute mindfulness sessions.",
			Stars:         2,
			Progress:      18,
			LastMilestone: 10,
		},
		{
			UserID:      userID,
			Title:       "Public Speaking",
			Description: "Practicing extemporaneous speeches.",
			Stars:       3,
			Progress:    2,
		},
	}
	for i := range defaults {
		if err := repo.SeedSkill(ctx, db, &defaults[i]); err != nil {
			return err
		}
	}
	return nil
}

func seedPeople(ctx context.Context, db *gorm.DB, userID string) error {
	n, err := repo.CountPeople(ctx, db, userID)
	if err != nil || n > 0 {
		return err
	}

	seeds := []struct {
		id, title, subtitle string
	}{
		{domain.AssistantID, AssistantName, "An expert in personal development and learning."},
		{"", "Alice Johnson", "Focusing on Python and ML."},
		{"", "Bob Smith", "Runs weekly mindfulness sessions."},
	}
	for _, p := range seeds {
		if _, err := repo.CreatePerson(ctx, db, p.id, userID, p.title, p.subtitle); err != nil {
			return err
		}
	}
	return nil
}
