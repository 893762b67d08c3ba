package queries

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/taskforge/taskforge/internal/tasks/domain/task"
)

// TaskDTO is a data transfer object for tasks.
type TaskDTO struct {
	ID            uuid.UUID
	Title         string
	Description   string
	Category      string
	Deadline      time.Time
	Completed     bool
	CompletedAt   *time.Time
	PointsAwarded int
	Overdue       bool
	CreatedAt     time.Time
}

// ListTasksQuery contains the parameters for listing tasks.
type ListTasksQuery struct {
	UserID      uuid.UUID
	Category    string // "daily", "weekly", "monthly" or "" for all
	OnlyPending bool
	OnlyOverdue bool
	Limit       int // 0 = no limit
}

// ListTasksHandler handles the ListTasksQuery.
type ListTasksHandler struct {
	taskRepo task.Repository
}

// NewListTasksHandler creates a new ListTasksHandler.
func NewListTasksHandler(taskRepo task.Repository) *ListTasksHandler {
	return &ListTasksHandler{taskRepo: taskRepo}
}

// Handle executes the ListTasksQuery.
func (h *ListTasksHandler) Handle(ctx context.Context, query ListTasksQuery) ([]TaskDTO, error) {
	var tasks []*task.Task
	var err error

	if query.Category != "" {
		category, perr := task.ParseCategory(query.Category)
		if perr != nil {
			return nil, perr
		}
		tasks, err = h.taskRepo.FindByUserAndCategory(ctx, query.UserID, category)
	} else {
		tasks, err = h.taskRepo.FindByUserID(ctx, query.UserID)
	}
	if err != nil {
		return nil, err
	}

	if query.OnlyPending {
		tasks = filterTasks(tasks, func(t *task.Task) bool { return !t.IsCompleted() })
	}
	if query.OnlyOverdue {
		tasks = filterTasks(tasks, func(t *task.Task) bool { return t.IsOverdue() })
	}

	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].CreatedAt().After(tasks[j].CreatedAt())
	})

	if query.Limit > 0 && len(tasks) > query.Limit {
		tasks = tasks[:query.Limit]
	}

	return toTaskDTOs(tasks), nil
}

func filterTasks(tasks []*task.Task, keep func(*task.Task) bool) []*task.Task {
	var filtered []*task.Task
	for _, t := range tasks {
		if keep(t) {
			filtered = append(filtered, t)
		}
	}
	return filtered
}

func toTaskDTO(t *task.Task) TaskDTO {
	return TaskDTO{
		ID:            t.ID(),
		Title:         t.Title(),
		Description:   t.Description(),
		Category:      t.Category().String(),
		Deadline:      t.Deadline(),
		Completed:     t.IsCompleted(),
		CompletedAt:   t.CompletedAt(),
		PointsAwarded: t.PointsAwarded(),
		Overdue:       t.IsOverdue(),
		CreatedAt:     t.CreatedAt(),
	}
}

func toTaskDTOs(tasks []*task.Task) []TaskDTO {
	dtos := make([]TaskDTO, len(tasks))
	for i, t := range tasks {
		dtos[i] = toTaskDTO(t)
	}
	return dtos
}
