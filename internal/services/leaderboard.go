// Package services – LeaderboardRanker
//
// This file implements the two leaderboard views. The score collection caps
// membership queries at ten identifiers, so the friends view batches the
// fetches and merges the results before ranking. Both views distinguish the
// explicit empty-state signal (ErrNoScores) from a fetch failure.
package services

import (
	"context"
	"errors"
	"sort"

	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/skillup-app/go-skillup-backend/internal/domain"
	"github.com/skillup-app/go-skillup-backend/internal/repo"
)

// GlobalTopN is the size of the global leaderboard window.
const GlobalTopN = 50

// LeaderboardEntry is one ranked row. Rank is 1-based and only meaningful
// when Ranked is true; an unranked entry is the local user's own record shown
// below a global top list that does not contain it.
type LeaderboardEntry struct {
	UserID      string  `json:"user_id"`
	UserShortID string  `json:"user_short_id"`
	TotalScore  float64 `json:"total_score"`
	Rank        int     `json:"rank,omitempty"`
	Ranked      bool    `json:"ranked"`
	IsLocal     bool    `json:"is_local"`
}

// ScoreRepo defines the repository contract required by LeaderboardService.
type ScoreRepo interface {
	// ScoresByUserIDs returns records for up to repo.MaxScoreBatch users.
	ScoresByUserIDs(ctx context.Context, db *gorm.DB, userIDs []string) ([]domain.ScoreRecord, error)

	// TopScores returns the highest-scoring records, descending, capped at limit.
	TopScores(ctx context.Context, db *gorm.DB, limit int) ([]domain.ScoreRecord, error)

	// GetScore fetches one user's record, or repo.ErrNotFound.
	GetScore(ctx context.Context, db *gorm.DB, userID string) (*domain.ScoreRecord, error)
}

// LeaderboardService ranks public score records for display.
type LeaderboardService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Repo is the score repository used by this service.
	Repo ScoreRepo
	// TopN caps the global view; zero means GlobalTopN.
	TopN int
}

// NewLeaderboardService constructs a LeaderboardService with the standard
// global window.
func NewLeaderboardService(db *gorm.DB, r ScoreRepo) *LeaderboardService {
	return &LeaderboardService{DB: db, Repo: r, TopN: GlobalTopN}
}

// Friends ranks the local user against their friends. The assistant persona
// is never a peer and is filtered from the id set. Records are fetched in
// batches of repo.MaxScoreBatch, merged, stably sorted by score descending,
// and assigned dense ranks starting at 1. Exactly one entry carries the local
// flag. An empty merged set yields ErrNoScores.
func (s *LeaderboardService) Friends(ctx context.Context, localUserID string, friendIDs []string) ([]LeaderboardEntry, error) {
	tr := otel.Tracer("services/LeaderboardService")
	ctx, span := tr.Start(ctx, "Friends",
		trace.WithAttributes(
			attribute.String("user.id", localUserID),
			attribute.Int("friend_count", len(friendIDs)),
		),
	)
	defer span.End()

	ids := make([]string, 0, len(friendIDs)+1)
	ids = append(ids, localUserID)
	for _, id := range friendIDs {
		if id == domain.AssistantID || id == localUserID {
			continue
		}
		ids = append(ids, id)
	}

	var records []domain.ScoreRecord
	for start := 0; start < len(ids); start += repo.MaxScoreBatch {
		end := start + repo.MaxScoreBatch
		if end > len(ids) {
			end = len(ids)
		}
		batch, err := s.Repo.ScoresByUserIDs(ctx, s.DB, ids[start:end])
		if err != nil {
			return nil, err
		}
		records = append(records, batch...)
	}
	if len(records) == 0 {
		return nil, ErrNoScores
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].TotalScore > records[j].TotalScore
	})

	out := make([]LeaderboardEntry, 0, len(records))
	flagged := false
	for i, rec := range records {
		isLocal := !flagged && rec.UserID == localUserID
		if isLocal {
			flagged = true
		}
		out = append(out, LeaderboardEntry{
			UserID:      rec.UserID,
			UserShortID: rec.UserShortID,
			TotalScore:  rec.TotalScore,
			Rank:        i + 1,
			Ranked:      true,
			IsLocal:     isLocal,
		})
	}
	return out, nil
}

// Global returns the top-N records by score descending. When the local user
// is outside the window, their own record is appended unranked so the view
// can render "not in top 50". An empty window with no local record yields
// ErrNoScores.
func (s *LeaderboardService) Global(ctx context.Context, localUserID string) ([]LeaderboardEntry, error) {
	tr := otel.Tracer("services/LeaderboardService")
	ctx, span := tr.Start(ctx, "Global",
		trace.WithAttributes(attribute.String("user.id", localUserID)),
	)
	defer span.End()

	topN := s.TopN
	if topN <= 0 {
		topN = GlobalTopN
	}
	records, err := s.Repo.TopScores(ctx, s.DB, topN)
	if err != nil {
		return nil, err
	}

	out := make([]LeaderboardEntry, 0, len(records)+1)
	localRanked := false
	for i, rec := range records {
		isLocal := rec.UserID == localUserID
		if isLocal {
			localRanked = true
		}
		out = append(out, LeaderboardEntry{
			UserID:      rec.UserID,
			UserShortID: rec.UserShortID,
			TotalScore:  rec.TotalScore,
			Rank:        i + 1,
			Ranked:      true,
			IsLocal:     isLocal,
		})
	}

	if !localRanked {
		own, err := s.Repo.GetScore(ctx, s.DB, localUserID)
		switch {
		case err == nil:
			out = append(out, LeaderboardEntry{
				UserID:      own.UserID,
				UserShortID: own.UserShortID,
				TotalScore:  own.TotalScore,
				Ranked:      false,
				IsLocal:     true,
			})
		case errors.Is(err, repo.ErrNotFound):
			// No record yet; nothing to append.
		default:
			return nil, err
		}
	}

	if len(out) == 0 {
		return nil, ErrNoScores
	}
	return out, nil
}
