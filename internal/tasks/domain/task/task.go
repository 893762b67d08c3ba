package task

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/taskforge/taskforge/internal/shared/domain"
)

// MaxTitleLength bounds task titles.
const MaxTitleLength = 200

var (
	ErrEmptyTitle          = errors.New("task title cannot be empty")
	ErrTitleTooLong        = errors.New("task title cannot exceed 200 characters")
	ErrTaskAlreadyComplete = errors.New("task is already completed")
	ErrTaskNotComplete     = errors.New("task is not completed")
	ErrTaskComplete        = errors.New("task is completed")
)

// Task is a unit of work with a category-derived deadline. Completing
// it earns points; letting the deadline pass costs them.
type Task struct {
	domain.BaseAggregateRoot
	userID        uuid.UUID
	title         string
	description   string
	category      Category
	deadline      time.Time
	completed     bool
	completedAt   *time.Time
	pointsAwarded int
	overdue       bool
}

// NewTask creates a new task. The deadline is derived from the
// category and the creation time.
func NewTask(userID uuid.UUID, title, description string, category Category, now time.Time) (*Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrEmptyTitle
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return nil, ErrTitleTooLong
	}
	if !category.IsValid() {
		return nil, ErrInvalidCategory
	}

	t := &Task{
		BaseAggregateRoot: domain.NewBaseAggregateRootAt(now),
		userID:            userID,
		title:             title,
		description:       strings.TrimSpace(description),
		category:          category,
		deadline:          Deadline(category, now),
	}

	t.AddDomainEvent(NewTaskCreated(t.ID(), t.userID, t.title, t.category, t.deadline))

	return t, nil
}

// Getters

func (t *Task) UserID() uuid.UUID      { return t.userID }
func (t *Task) Title() string          { return t.title }
func (t *Task) Description() string    { return t.description }
func (t *Task) Category() Category     { return t.category }
func (t *Task) Deadline() time.Time    { return t.deadline }
func (t *Task) IsCompleted() bool      { return t.completed }
func (t *Task) CompletedAt() *time.Time { return t.completedAt }
func (t *Task) PointsAwarded() int     { return t.pointsAwarded }
func (t *Task) IsOverdue() bool        { return t.overdue }

// IsPastDeadline reports whether the deadline has passed at the given
// instant.
func (t *Task) IsPastDeadline(now time.Time) bool {
	return now.After(t.deadline)
}

// Complete marks the task as completed at the given instant. The
// overdue flag is cleared; it only describes incomplete tasks, and any
// penalty it caused has already been charged.
func (t *Task) Complete(at time.Time) error {
	if t.completed {
		return ErrTaskAlreadyComplete
	}

	t.completed = true
	t.completedAt = &at
	t.overdue = false
	t.Touch()

	t.AddDomainEvent(NewTaskCompleted(t.ID(), t.userID, t.category, at))

	return nil
}

// AwardPoints records the points granted for the current completion.
func (t *Task) AwardPoints(points int) error {
	if !t.completed {
		return ErrTaskNotComplete
	}
	t.pointsAwarded = points
	t.Touch()
	return nil
}

// RevertCompletion undoes a completion and returns the points that
// had been awarded so they can be deducted.
func (t *Task) RevertCompletion() (int, error) {
	if !t.completed {
		return 0, ErrTaskNotComplete
	}

	reverted := t.pointsAwarded
	t.completed = false
	t.completedAt = nil
	t.pointsAwarded = 0
	t.Touch()

	t.AddDomainEvent(NewTaskCompletionReverted(t.ID(), t.userID, reverted))

	return reverted, nil
}

// MarkOverdue flags the task as overdue and returns the penalty to
// deduct. Marking an already-overdue task is a no-op.
func (t *Task) MarkOverdue() (int, error) {
	if t.completed {
		return 0, ErrTaskComplete
	}
	if t.overdue {
		return 0, nil // Idempotent
	}

	t.overdue = true
	t.Touch()

	penalty := t.category.OverduePenalty()
	t.AddDomainEvent(NewTaskMarkedOverdue(t.ID(), t.userID, t.category, penalty))

	return penalty, nil
}

// Delete emits the deletion event. The repository removes the row.
func (t *Task) Delete() {
	t.AddDomainEvent(NewTaskDeleted(t.ID(), t.userID))
}

// RehydrateTask recreates a task from persisted state without
// generating events.
func RehydrateTask(
	id uuid.UUID,
	userID uuid.UUID,
	title string,
	description string,
	category Category,
	deadline time.Time,
	completed bool,
	completedAt *time.Time,
	pointsAwarded int,
	overdue bool,
	createdAt time.Time,
	updatedAt time.Time,
	version int,
) *Task {
	baseEntity := domain.RehydrateBaseEntity(id, createdAt, updatedAt)

	return &Task{
		BaseAggregateRoot: domain.RehydrateBaseAggregateRoot(baseEntity, version),
		userID:            userID,
		title:             title,
		description:       description,
		category:          category,
		deadline:          deadline,
		completed:         completed,
		completedAt:       completedAt,
		pointsAwarded:     pointsAwarded,
		overdue:           overdue,
	}
}
