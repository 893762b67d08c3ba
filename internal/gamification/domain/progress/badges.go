package progress

import "time"

// BadgeID identifies a badge in the catalog.
type BadgeID string

const (
	BadgeEarlyBird       BadgeID = "early_bird"
	BadgeConsistencyKing BadgeID = "consistency_king"
	BadgeWeeklyChampion  BadgeID = "weekly_champion"
	BadgeTaskMaster      BadgeID = "task_master"
	BadgePerfectWeek     BadgeID = "perfect_week"
	BadgeSpeedDemon      BadgeID = "speed_demon"
)

// BadgeSpec describes a badge that can be earned.
type BadgeSpec struct {
	ID          BadgeID
	Name        string
	Description string
	Icon        string
	Requirement int
}

// Catalog holds every badge the system can award. Perfect Week and
// Speed Demon are listed but not yet wired to an evaluator.
var Catalog = map[BadgeID]BadgeSpec{
	BadgeEarlyBird: {
		ID:          BadgeEarlyBird,
		Name:        "Early Bird",
		Description: "Complete a task before 10 AM",
		Icon:        "🌅",
		Requirement: 1,
	},
	BadgeConsistencyKing: {
		ID:          BadgeConsistencyKing,
		Name:        "Consistency King",
		Description: "Complete daily tasks for 7 days in a row",
		Icon:        "👑",
		Requirement: 7,
	},
	BadgeWeeklyChampion: {
		ID:          BadgeWeeklyChampion,
		Name:        "Weekly Champion",
		Description: "Complete all weekly tasks in a week",
		Icon:        "🏆",
		Requirement: 1,
	},
	BadgeTaskMaster: {
		ID:          BadgeTaskMaster,
		Name:        "Task Master",
		Description: "Complete 100 tasks",
		Icon:        "🎯",
		Requirement: 100,
	},
	BadgePerfectWeek: {
		ID:          BadgePerfectWeek,
		Name:        "Perfect Week",
		Description: "Complete all tasks for a full week",
		Icon:        "⭐",
		Requirement: 1,
	},
	BadgeSpeedDemon: {
		ID:          BadgeSpeedDemon,
		Name:        "Speed Demon",
		Description: "Complete 10 tasks in one day",
		Icon:        "⚡",
		Requirement: 10,
	},
}

// Badge is a badge earned by a user.
type Badge struct {
	ID          BadgeID
	Name        string
	Description string
	AwardedAt   time.Time
}
