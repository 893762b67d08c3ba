package queries

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/taskforge/taskforge/internal/gamification/domain/progress"
)

// BadgeDTO is a data transfer object for earned badges.
type BadgeDTO struct {
	ID          string
	Name        string
	Description string
	AwardedAt   time.Time
}

// StatsDTO is a data transfer object for a user's gamification state.
type StatsDTO struct {
	UserID         uuid.UUID
	DisplayName    string
	Points         int
	XP             int
	XPToNextLevel  int
	Level          int
	LevelTitle     string
	CurrentStreak  int
	LongestStreak  int
	TotalCompleted int
	Badges         []BadgeDTO
}

// GetStatsQuery contains the parameters for fetching user stats.
type GetStatsQuery struct {
	UserID uuid.UUID
}

// GetStatsHandler handles the GetStatsQuery.
type GetStatsHandler struct {
	progressRepo progress.Repository
}

// NewGetStatsHandler creates a new GetStatsHandler.
func NewGetStatsHandler(progressRepo progress.Repository) *GetStatsHandler {
	return &GetStatsHandler{progressRepo: progressRepo}
}

// Handle executes the GetStatsQuery.
func (h *GetStatsHandler) Handle(ctx context.Context, query GetStatsQuery) (*StatsDTO, error) {
	p, err := h.progressRepo.FindByUserID(ctx, query.UserID)
	if err != nil {
		return nil, err
	}

	badges := make([]BadgeDTO, len(p.Badges()))
	for i, b := range p.Badges() {
		badges[i] = BadgeDTO{
			ID:          string(b.ID),
			Name:        b.Name,
			Description: b.Description,
			AwardedAt:   b.AwardedAt,
		}
	}

	return &StatsDTO{
		UserID:         p.UserID(),
		DisplayName:    p.DisplayName(),
		Points:         p.Points(),
		XP:             p.XP(),
		XPToNextLevel:  p.XPToNextLevel(),
		Level:          p.Level(),
		LevelTitle:     p.LevelTitle(),
		CurrentStreak:  p.CurrentStreak(),
		LongestStreak:  p.LongestStreak(),
		TotalCompleted: p.TotalCompleted(),
		Badges:         badges,
	}, nil
}
