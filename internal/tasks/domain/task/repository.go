package task

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrTaskNotFound = errors.New("task not found")

// Repository defines the interface for task persistence.
type Repository interface {
	Save(ctx context.Context, task *Task) error
	FindByID(ctx context.Context, id uuid.UUID) (*Task, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) ([]*Task, error)
	FindByUserAndCategory(ctx context.Context, userID uuid.UUID, category Category) ([]*Task, error)
	// FindCreatedBetween returns the user's tasks of a category created
	// inside [from, to), ordered by creation time.
	FindCreatedBetween(ctx context.Context, userID uuid.UUID, category Category, from, to time.Time) ([]*Task, error)
	// FindOverdueCandidates returns incomplete, not-yet-flagged tasks
	// whose deadline has passed.
	FindOverdueCandidates(ctx context.Context, before time.Time, limit int) ([]*Task, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
