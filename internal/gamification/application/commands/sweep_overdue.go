package commands

import (
	"context"
	"log/slog"
	"time"

	"github.com/taskforge/taskforge/internal/gamification/application/services"
	"github.com/taskforge/taskforge/internal/gamification/domain/progress"
	sharedApplication "github.com/taskforge/taskforge/internal/shared/application"
	"github.com/taskforge/taskforge/internal/shared/infrastructure/outbox"
	"github.com/taskforge/taskforge/internal/tasks/domain/task"
	"github.com/taskforge/taskforge/pkg/observability"
)

const defaultSweepBatchSize = 100

// SweepOverdueCommand flags every task whose deadline has passed and
// deducts the category penalty from its owner.
type SweepOverdueCommand struct {
	BatchSize int
}

// SweepOverdueResult summarizes one sweep run.
type SweepOverdueResult struct {
	Flagged        int
	PointsDeducted int
	Failed         int
}

// SweepOverdueHandler handles the SweepOverdueCommand.
type SweepOverdueHandler struct {
	taskRepo     task.Repository
	progressRepo progress.Repository
	outboxRepo   outbox.Repository
	uow          sharedApplication.UnitOfWork
	locks        *services.UserLocks
	logger       *slog.Logger
	metrics      observability.Metrics
	now          func() time.Time
}

// NewSweepOverdueHandler creates a new SweepOverdueHandler.
func NewSweepOverdueHandler(
	taskRepo task.Repository,
	progressRepo progress.Repository,
	outboxRepo outbox.Repository,
	uow sharedApplication.UnitOfWork,
	locks *services.UserLocks,
	logger *slog.Logger,
) *SweepOverdueHandler {
	return &SweepOverdueHandler{
		taskRepo:     taskRepo,
		progressRepo: progressRepo,
		outboxRepo:   outboxRepo,
		uow:          uow,
		locks:        locks,
		logger:       logger,
		metrics:      observability.NoopMetrics{},
		now:          time.Now,
	}
}

// WithClock overrides the handler's clock. Used in tests.
func (h *SweepOverdueHandler) WithClock(now func() time.Time) *SweepOverdueHandler {
	h.now = now
	return h
}

// WithMetrics replaces the metrics sink.
func (h *SweepOverdueHandler) WithMetrics(m observability.Metrics) *SweepOverdueHandler {
	if m != nil {
		h.metrics = m
	}
	return h
}

// Handle executes the SweepOverdueCommand. Each task is flagged in its
// own transaction so one failing task does not roll back the rest of
// the sweep; already-flagged tasks are skipped, which keeps re-runs
// idempotent.
func (h *SweepOverdueHandler) Handle(ctx context.Context, cmd SweepOverdueCommand) (*SweepOverdueResult, error) {
	batchSize := cmd.BatchSize
	if batchSize <= 0 {
		batchSize = defaultSweepBatchSize
	}

	started := h.now()
	h.metrics.Counter(observability.MetricSweepRuns, 1)

	candidates, err := h.taskRepo.FindOverdueCandidates(ctx, started, batchSize)
	if err != nil {
		h.metrics.Counter(observability.MetricSweepFailures, 1)
		return nil, err
	}

	var result SweepOverdueResult
	for _, candidate := range candidates {
		penalty, err := h.sweepOne(ctx, candidate)
		if err != nil {
			result.Failed++
			h.logger.Error("overdue sweep failed for task",
				"task_id", candidate.ID(), "user_id", candidate.UserID(), "error", err)
			continue
		}
		if penalty > 0 {
			result.Flagged++
			result.PointsDeducted += penalty
		}
	}

	if result.Flagged > 0 {
		h.metrics.Counter(observability.MetricSweepFlagged, int64(result.Flagged))
		h.metrics.Counter(observability.MetricPointsDeducted, int64(result.PointsDeducted))
	}
	if result.Failed > 0 {
		h.metrics.Counter(observability.MetricSweepFailures, int64(result.Failed))
	}
	h.metrics.Timing(observability.MetricSweepDuration, time.Since(started))

	return &result, nil
}

func (h *SweepOverdueHandler) sweepOne(ctx context.Context, candidate *task.Task) (int, error) {
	unlock := h.locks.Lock(candidate.UserID())
	defer unlock()

	var penalty int

	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		// Re-read inside the transaction; the task may have been
		// completed or flagged since the candidate query ran.
		t, err := h.taskRepo.FindByID(txCtx, candidate.ID())
		if err != nil {
			return err
		}
		if t.IsCompleted() || t.IsOverdue() {
			return nil
		}

		penalty, err = t.MarkOverdue()
		if err != nil {
			return err
		}

		p, err := loadOrCreateProgress(txCtx, h.progressRepo, t.UserID(), h.now())
		if err != nil {
			return err
		}
		if err := p.RemovePoints(penalty); err != nil {
			return err
		}

		if err := h.taskRepo.Save(txCtx, t); err != nil {
			return err
		}
		if err := h.progressRepo.Save(txCtx, p); err != nil {
			return err
		}

		return saveEvents(txCtx, h.outboxRepo, t.UserID(), t.DomainEvents(), p.DomainEvents())
	})
	if err != nil {
		return 0, err
	}

	return penalty, nil
}
