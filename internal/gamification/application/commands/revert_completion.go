package commands

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/taskforge/taskforge/internal/gamification/application/services"
	"github.com/taskforge/taskforge/internal/gamification/domain/progress"
	sharedApplication "github.com/taskforge/taskforge/internal/shared/application"
	"github.com/taskforge/taskforge/internal/shared/infrastructure/outbox"
	"github.com/taskforge/taskforge/internal/tasks/domain/task"
	"github.com/taskforge/taskforge/pkg/observability"
)

// RevertCompletionCommand undoes a completion and takes back the
// points it earned. XP, level, streaks and badges stay.
type RevertCompletionCommand struct {
	TaskID uuid.UUID
	UserID uuid.UUID
}

// RevertCompletionResult summarizes the deduction.
type RevertCompletionResult struct {
	PointsReverted int
	TotalPoints    int
}

// RevertCompletionHandler handles the RevertCompletionCommand.
type RevertCompletionHandler struct {
	taskRepo     task.Repository
	progressRepo progress.Repository
	outboxRepo   outbox.Repository
	uow          sharedApplication.UnitOfWork
	locks        *services.UserLocks
	metrics      observability.Metrics
	now          func() time.Time
}

// NewRevertCompletionHandler creates a new RevertCompletionHandler.
func NewRevertCompletionHandler(
	taskRepo task.Repository,
	progressRepo progress.Repository,
	outboxRepo outbox.Repository,
	uow sharedApplication.UnitOfWork,
	locks *services.UserLocks,
) *RevertCompletionHandler {
	return &RevertCompletionHandler{
		taskRepo:     taskRepo,
		progressRepo: progressRepo,
		outboxRepo:   outboxRepo,
		uow:          uow,
		locks:        locks,
		metrics:      observability.NoopMetrics{},
		now:          time.Now,
	}
}

// WithClock overrides the handler's clock. Used in tests.
func (h *RevertCompletionHandler) WithClock(now func() time.Time) *RevertCompletionHandler {
	h.now = now
	return h
}

// WithMetrics replaces the metrics sink.
func (h *RevertCompletionHandler) WithMetrics(m observability.Metrics) *RevertCompletionHandler {
	if m != nil {
		h.metrics = m
	}
	return h
}

// Handle executes the RevertCompletionCommand.
func (h *RevertCompletionHandler) Handle(ctx context.Context, cmd RevertCompletionCommand) (*RevertCompletionResult, error) {
	unlock := h.locks.Lock(cmd.UserID)
	defer unlock()

	var result RevertCompletionResult

	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		t, err := h.taskRepo.FindByID(txCtx, cmd.TaskID)
		if err != nil {
			return err
		}
		if t.UserID() != cmd.UserID {
			return ErrNotTaskOwner
		}

		points, err := t.RevertCompletion()
		if err != nil {
			return err
		}

		p, err := loadOrCreateProgress(txCtx, h.progressRepo, cmd.UserID, h.now())
		if err != nil {
			return err
		}
		if err := p.RemovePoints(points); err != nil {
			return err
		}

		if err := h.taskRepo.Save(txCtx, t); err != nil {
			return err
		}
		if err := h.progressRepo.Save(txCtx, p); err != nil {
			return err
		}

		if err := saveEvents(txCtx, h.outboxRepo, cmd.UserID, t.DomainEvents(), p.DomainEvents()); err != nil {
			return err
		}

		result = RevertCompletionResult{
			PointsReverted: points,
			TotalPoints:    p.Points(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	h.metrics.Counter(observability.MetricPointsDeducted, int64(result.PointsReverted))

	return &result, nil
}
