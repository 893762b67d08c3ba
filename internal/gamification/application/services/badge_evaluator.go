package services

import (
	"context"
	"time"

	"github.com/taskforge/taskforge/internal/gamification/domain/progress"
	"github.com/taskforge/taskforge/internal/tasks/domain/task"
)

// BadgeEvaluator checks badge conditions after a completion and grants
// any newly earned badges on the progress aggregate.
type BadgeEvaluator struct {
	taskRepo task.Repository
}

// NewBadgeEvaluator creates a new BadgeEvaluator.
func NewBadgeEvaluator(taskRepo task.Repository) *BadgeEvaluator {
	return &BadgeEvaluator{taskRepo: taskRepo}
}

// Evaluate awards badges earned by the given completion and returns the
// newly granted specs in evaluation order. Already-earned badges are
// skipped.
func (e *BadgeEvaluator) Evaluate(ctx context.Context, p *progress.UserProgress, completed *task.Task, now time.Time) ([]progress.BadgeSpec, error) {
	var earned []progress.BadgeSpec

	award := func(spec progress.BadgeSpec) {
		if p.AwardBadge(spec, now) {
			earned = append(earned, spec)
		}
	}

	if completedAt := completed.CompletedAt(); completedAt != nil && completedAt.Hour() < 10 {
		award(progress.Catalog[progress.BadgeEarlyBird])
	}

	if spec := progress.Catalog[progress.BadgeConsistencyKing]; p.CurrentStreak() >= spec.Requirement {
		award(spec)
	}

	if spec := progress.Catalog[progress.BadgeTaskMaster]; p.TotalCompleted() >= spec.Requirement {
		award(spec)
	}

	if completed.Category() == task.CategoryWeekly {
		champion, err := e.isWeeklyChampion(ctx, p, now)
		if err != nil {
			return earned, err
		}
		if champion {
			award(progress.Catalog[progress.BadgeWeeklyChampion])
		}
	}

	return earned, nil
}

// isWeeklyChampion reports whether every weekly task created in the
// current week is complete, with at least one such task existing.
func (e *BadgeEvaluator) isWeeklyChampion(ctx context.Context, p *progress.UserProgress, now time.Time) (bool, error) {
	week := task.WeekWindow(now)
	weekly, err := e.taskRepo.FindCreatedBetween(ctx, p.UserID(), task.CategoryWeekly, week.Start, week.End)
	if err != nil {
		return false, err
	}
	if len(weekly) == 0 {
		return false, nil
	}

	for _, t := range weekly {
		if !t.IsCompleted() {
			return false, nil
		}
	}
	return true, nil
}
