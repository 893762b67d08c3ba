package queries

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/taskforge/taskforge/internal/tasks/domain/task"
)

// PeriodProgressDTO is the completion ratio for one period.
type PeriodProgressDTO struct {
	Completed int
	Total     int
	Pct       int
}

// ProgressReportDTO breaks completion down by period. Membership is
// decided by creation time: a daily task counts towards today's window,
// a weekly task towards the current week, a monthly task towards the
// current month.
type ProgressReportDTO struct {
	Daily   PeriodProgressDTO
	Weekly  PeriodProgressDTO
	Monthly PeriodProgressDTO
	Overall PeriodProgressDTO
}

// GetProgressQuery contains the parameters for the progress report.
type GetProgressQuery struct {
	UserID uuid.UUID
}

// GetProgressHandler handles the GetProgressQuery.
type GetProgressHandler struct {
	taskRepo task.Repository
	now      func() time.Time
}

// NewGetProgressHandler creates a new GetProgressHandler.
func NewGetProgressHandler(taskRepo task.Repository) *GetProgressHandler {
	return &GetProgressHandler{taskRepo: taskRepo, now: time.Now}
}

// WithClock overrides the handler's clock. Used in tests.
func (h *GetProgressHandler) WithClock(now func() time.Time) *GetProgressHandler {
	h.now = now
	return h
}

// Handle executes the GetProgressQuery.
func (h *GetProgressHandler) Handle(ctx context.Context, query GetProgressQuery) (*ProgressReportDTO, error) {
	now := h.now()

	daily, err := h.periodProgress(ctx, query.UserID, task.CategoryDaily, now)
	if err != nil {
		return nil, err
	}
	weekly, err := h.periodProgress(ctx, query.UserID, task.CategoryWeekly, now)
	if err != nil {
		return nil, err
	}
	monthly, err := h.periodProgress(ctx, query.UserID, task.CategoryMonthly, now)
	if err != nil {
		return nil, err
	}

	overall := PeriodProgressDTO{
		Completed: daily.Completed + weekly.Completed + monthly.Completed,
		Total:     daily.Total + weekly.Total + monthly.Total,
	}
	overall.Pct = pct(overall.Completed, overall.Total)

	return &ProgressReportDTO{
		Daily:   daily,
		Weekly:  weekly,
		Monthly: monthly,
		Overall: overall,
	}, nil
}

func (h *GetProgressHandler) periodProgress(ctx context.Context, userID uuid.UUID, category task.Category, now time.Time) (PeriodProgressDTO, error) {
	window := task.WindowFor(category, now)
	tasks, err := h.taskRepo.FindCreatedBetween(ctx, userID, category, window.Start, window.End)
	if err != nil {
		return PeriodProgressDTO{}, err
	}

	var completed int
	for _, t := range tasks {
		if t.IsCompleted() {
			completed++
		}
	}

	return PeriodProgressDTO{
		Completed: completed,
		Total:     len(tasks),
		Pct:       pct(completed, len(tasks)),
	}, nil
}

// pct rounds to the nearest whole percent; an empty period is 0.
func pct(completed, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(completed) / float64(total)))
}
