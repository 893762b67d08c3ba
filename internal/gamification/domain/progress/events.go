package progress

import (
	"github.com/google/uuid"

	"github.com/taskforge/taskforge/internal/shared/domain"
)

const (
	AggregateType = "UserProgress"

	RoutingKeyInitialized    = "gamification.progress.initialized"
	RoutingKeyPointsAwarded  = "gamification.progress.points_awarded"
	RoutingKeyPointsDeducted = "gamification.progress.points_deducted"
	RoutingKeyLeveledUp      = "gamification.progress.leveled_up"
	RoutingKeyBadgeAwarded   = "gamification.progress.badge_awarded"
)

// ProgressInitialized is emitted when a user's progress record is created.
type ProgressInitialized struct {
	domain.BaseEvent
	DisplayName string `json:"display_name"`
}

// NewProgressInitialized creates a ProgressInitialized event.
func NewProgressInitialized(userID uuid.UUID, displayName string) ProgressInitialized {
	return ProgressInitialized{
		BaseEvent:   domain.NewBaseEvent(userID, AggregateType, RoutingKeyInitialized),
		DisplayName: displayName,
	}
}

// PointsAwarded is emitted when points are credited.
type PointsAwarded struct {
	domain.BaseEvent
	Points      int `json:"points"`
	TotalPoints int `json:"total_points"`
}

// NewPointsAwarded creates a PointsAwarded event.
func NewPointsAwarded(userID uuid.UUID, points, totalPoints int) PointsAwarded {
	return PointsAwarded{
		BaseEvent:   domain.NewBaseEvent(userID, AggregateType, RoutingKeyPointsAwarded),
		Points:      points,
		TotalPoints: totalPoints,
	}
}

// PointsDeducted is emitted when points are debited.
type PointsDeducted struct {
	domain.BaseEvent
	Points      int `json:"points"`
	TotalPoints int `json:"total_points"`
}

// NewPointsDeducted creates a PointsDeducted event.
func NewPointsDeducted(userID uuid.UUID, points, totalPoints int) PointsDeducted {
	return PointsDeducted{
		BaseEvent:   domain.NewBaseEvent(userID, AggregateType, RoutingKeyPointsDeducted),
		Points:      points,
		TotalPoints: totalPoints,
	}
}

// LeveledUp is emitted when enough XP accumulates for the next level.
type LeveledUp struct {
	domain.BaseEvent
	Level int    `json:"level"`
	Title string `json:"title"`
}

// NewLeveledUp creates a LeveledUp event.
func NewLeveledUp(userID uuid.UUID, level int, title string) LeveledUp {
	return LeveledUp{
		BaseEvent: domain.NewBaseEvent(userID, AggregateType, RoutingKeyLeveledUp),
		Level:     level,
		Title:     title,
	}
}

// BadgeAwarded is emitted when a badge is newly earned.
type BadgeAwarded struct {
	domain.BaseEvent
	BadgeID string `json:"badge_id"`
	Name    string `json:"name"`
}

// NewBadgeAwarded creates a BadgeAwarded event.
func NewBadgeAwarded(userID uuid.UUID, badgeID BadgeID, name string) BadgeAwarded {
	return BadgeAwarded{
		BaseEvent: domain.NewBaseEvent(userID, AggregateType, RoutingKeyBadgeAwarded),
		BadgeID:   string(badgeID),
		Name:      name,
	}
}
