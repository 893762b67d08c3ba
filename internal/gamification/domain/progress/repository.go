package progress

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrProgressNotFound = errors.New("user progress not found")

// Repository defines the interface for progress persistence.
type Repository interface {
	Save(ctx context.Context, p *UserProgress) error
	FindByUserID(ctx context.Context, userID uuid.UUID) (*UserProgress, error)
	// ListByPoints returns all progress records ordered by points
	// descending; ties keep creation order.
	ListByPoints(ctx context.Context, limit int) ([]*UserProgress, error)
}
