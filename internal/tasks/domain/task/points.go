package task

import (
	"math"
	"time"
)

// Base point values per category.
const (
	basePointsDaily   = 10
	basePointsWeekly  = 50
	basePointsMonthly = 200
)

// Penalty applied when a task passes its deadline uncompleted.
const (
	penaltyDaily   = 5
	penaltyWeekly  = 25
	penaltyMonthly = 100
)

// Completion bonus multipliers.
const (
	onTimeMultiplier    = 1.5
	earlyBirdMultiplier = 1.2
	earlyBirdCutoffHour = 10
)

// BasePoints returns the point value of completing a task in this
// category before any bonus multipliers.
func (c Category) BasePoints() int {
	switch c {
	case CategoryDaily:
		return basePointsDaily
	case CategoryWeekly:
		return basePointsWeekly
	case CategoryMonthly:
		return basePointsMonthly
	default:
		return 0
	}
}

// OverduePenalty returns the points deducted when a task in this
// category goes overdue.
func (c Category) OverduePenalty() int {
	switch c {
	case CategoryDaily:
		return penaltyDaily
	case CategoryWeekly:
		return penaltyWeekly
	case CategoryMonthly:
		return penaltyMonthly
	default:
		return 0
	}
}

// PointsForCompletion computes the points a completion is worth.
// Completing at or before the deadline earns a 50% bonus; completing
// before 10 AM local time earns an additional 20% bonus. The two
// bonuses stack multiplicatively and the result rounds half-up.
func PointsForCompletion(category Category, deadline, completedAt time.Time) int {
	points := float64(category.BasePoints())

	if !completedAt.After(deadline) {
		points *= onTimeMultiplier
	}
	if completedAt.Hour() < earlyBirdCutoffHour {
		points *= earlyBirdMultiplier
	}

	return int(math.Round(points))
}
