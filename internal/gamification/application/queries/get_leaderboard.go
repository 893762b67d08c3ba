package queries

import (
	"context"

	"github.com/google/uuid"

	"github.com/taskforge/taskforge/internal/gamification/domain/progress"
)

// LeaderboardEntryDTO is one ranked row of the leaderboard.
type LeaderboardEntryDTO struct {
	Rank       int       `json:"rank"`
	UserID     uuid.UUID `json:"user_id"`
	Name       string    `json:"name"`
	Points     int       `json:"points"`
	Level      int       `json:"level"`
	LevelTitle string    `json:"level_title"`
	BadgeCount int       `json:"badge_count"`
}

// LeaderboardReader supplies ranked leaderboard entries. The plain
// repository-backed reader can be wrapped with a cache.
type LeaderboardReader interface {
	Top(ctx context.Context, limit int) ([]LeaderboardEntryDTO, error)
}

// RepositoryLeaderboard reads the leaderboard straight from the
// progress repository.
type RepositoryLeaderboard struct {
	progressRepo progress.Repository
}

// NewRepositoryLeaderboard creates a repository-backed reader.
func NewRepositoryLeaderboard(progressRepo progress.Repository) *RepositoryLeaderboard {
	return &RepositoryLeaderboard{progressRepo: progressRepo}
}

// Top returns the highest-scoring users. Ties keep the order the users
// first appeared.
func (r *RepositoryLeaderboard) Top(ctx context.Context, limit int) ([]LeaderboardEntryDTO, error) {
	records, err := r.progressRepo.ListByPoints(ctx, limit)
	if err != nil {
		return nil, err
	}

	entries := make([]LeaderboardEntryDTO, len(records))
	for i, p := range records {
		entries[i] = LeaderboardEntryDTO{
			Rank:       i + 1,
			UserID:     p.UserID(),
			Name:       p.DisplayName(),
			Points:     p.Points(),
			Level:      p.Level(),
			LevelTitle: p.LevelTitle(),
			BadgeCount: p.BadgeCount(),
		}
	}
	return entries, nil
}

// GetLeaderboardQuery contains the parameters for the leaderboard.
type GetLeaderboardQuery struct {
	Limit int
}

// DefaultLeaderboardLimit bounds the leaderboard when no limit is given.
const DefaultLeaderboardLimit = 10

// GetLeaderboardHandler handles the GetLeaderboardQuery.
type GetLeaderboardHandler struct {
	reader LeaderboardReader
}

// NewGetLeaderboardHandler creates a new GetLeaderboardHandler.
func NewGetLeaderboardHandler(reader LeaderboardReader) *GetLeaderboardHandler {
	return &GetLeaderboardHandler{reader: reader}
}

// Handle executes the GetLeaderboardQuery.
func (h *GetLeaderboardHandler) Handle(ctx context.Context, query GetLeaderboardQuery) ([]LeaderboardEntryDTO, error) {
	limit := query.Limit
	if limit <= 0 {
		limit = DefaultLeaderboardLimit
	}
	return h.reader.Top(ctx, limit)
}
