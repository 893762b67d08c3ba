package task

import (
	"time"

	"github.com/google/uuid"

	"github.com/taskforge/taskforge/internal/shared/domain"
)

const (
	AggregateType = "Task"

	RoutingKeyCreated           = "tasks.task.created"
	RoutingKeyCompleted         = "tasks.task.completed"
	RoutingKeyCompletionReverted = "tasks.task.completion_reverted"
	RoutingKeyMarkedOverdue     = "tasks.task.marked_overdue"
	RoutingKeyDeleted           = "tasks.task.deleted"
)

// TaskCreated is emitted when a new task is created.
type TaskCreated struct {
	domain.BaseEvent
	UserID   uuid.UUID `json:"user_id"`
	Title    string    `json:"title"`
	Category string    `json:"category"`
	Deadline time.Time `json:"deadline"`
}

// NewTaskCreated creates a TaskCreated event.
func NewTaskCreated(taskID, userID uuid.UUID, title string, category Category, deadline time.Time) TaskCreated {
	return TaskCreated{
		BaseEvent: domain.NewBaseEvent(taskID, AggregateType, RoutingKeyCreated),
		UserID:    userID,
		Title:     title,
		Category:  category.String(),
		Deadline:  deadline,
	}
}

// TaskCompleted is emitted when a task is completed.
type TaskCompleted struct {
	domain.BaseEvent
	UserID      uuid.UUID `json:"user_id"`
	Category    string    `json:"category"`
	CompletedAt time.Time `json:"completed_at"`
}

// NewTaskCompleted creates a TaskCompleted event.
func NewTaskCompleted(taskID, userID uuid.UUID, category Category, completedAt time.Time) TaskCompleted {
	return TaskCompleted{
		BaseEvent:   domain.NewBaseEvent(taskID, AggregateType, RoutingKeyCompleted),
		UserID:      userID,
		Category:    category.String(),
		CompletedAt: completedAt,
	}
}

// TaskCompletionReverted is emitted when a completion is undone.
type TaskCompletionReverted struct {
	domain.BaseEvent
	UserID         uuid.UUID `json:"user_id"`
	PointsReverted int       `json:"points_reverted"`
}

// NewTaskCompletionReverted creates a TaskCompletionReverted event.
func NewTaskCompletionReverted(taskID, userID uuid.UUID, pointsReverted int) TaskCompletionReverted {
	return TaskCompletionReverted{
		BaseEvent:      domain.NewBaseEvent(taskID, AggregateType, RoutingKeyCompletionReverted),
		UserID:         userID,
		PointsReverted: pointsReverted,
	}
}

// TaskMarkedOverdue is emitted when the sweep flags a task overdue.
type TaskMarkedOverdue struct {
	domain.BaseEvent
	UserID   uuid.UUID `json:"user_id"`
	Category string    `json:"category"`
	Penalty  int       `json:"penalty"`
}

// NewTaskMarkedOverdue creates a TaskMarkedOverdue event.
func NewTaskMarkedOverdue(taskID, userID uuid.UUID, category Category, penalty int) TaskMarkedOverdue {
	return TaskMarkedOverdue{
		BaseEvent: domain.NewBaseEvent(taskID, AggregateType, RoutingKeyMarkedOverdue),
		UserID:    userID,
		Category:  category.String(),
		Penalty:   penalty,
	}
}

// TaskDeleted is emitted when a task is deleted.
type TaskDeleted struct {
	domain.BaseEvent
	UserID uuid.UUID `json:"user_id"`
}

// NewTaskDeleted creates a TaskDeleted event.
func NewTaskDeleted(taskID, userID uuid.UUID) TaskDeleted {
	return TaskDeleted{
		BaseEvent: domain.NewBaseEvent(taskID, AggregateType, RoutingKeyDeleted),
		UserID:    userID,
	}
}
