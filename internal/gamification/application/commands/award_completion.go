package commands

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/taskforge/taskforge/internal/gamification/application/services"
	"github.com/taskforge/taskforge/internal/gamification/domain/progress"
	sharedApplication "github.com/taskforge/taskforge/internal/shared/application"
	sharedDomain "github.com/taskforge/taskforge/internal/shared/domain"
	"github.com/taskforge/taskforge/internal/shared/infrastructure/outbox"
	"github.com/taskforge/taskforge/internal/tasks/domain/task"
	"github.com/taskforge/taskforge/pkg/observability"
)

// ErrNotTaskOwner is returned when a command targets another user's task.
var ErrNotTaskOwner = errors.New("task belongs to another user")

// DefaultDisplayName is used when a progress record is created lazily
// on first completion instead of through InitProgress.
const DefaultDisplayName = "Player"

// AwardCompletionCommand completes a task and credits the earned
// points, streak progress and badges in one transaction.
type AwardCompletionCommand struct {
	TaskID uuid.UUID
	UserID uuid.UUID
}

// AwardCompletionResult summarizes what the completion earned.
type AwardCompletionResult struct {
	PointsAwarded int
	TotalPoints   int
	LeveledUp     bool
	Level         int
	LevelTitle    string
	CurrentStreak int
	NewBadges     []progress.BadgeSpec
}

// AwardCompletionHandler handles the AwardCompletionCommand.
type AwardCompletionHandler struct {
	taskRepo     task.Repository
	progressRepo progress.Repository
	outboxRepo   outbox.Repository
	uow          sharedApplication.UnitOfWork
	badges       *services.BadgeEvaluator
	locks        *services.UserLocks
	metrics      observability.Metrics
	now          func() time.Time
}

// NewAwardCompletionHandler creates a new AwardCompletionHandler.
func NewAwardCompletionHandler(
	taskRepo task.Repository,
	progressRepo progress.Repository,
	outboxRepo outbox.Repository,
	uow sharedApplication.UnitOfWork,
	badges *services.BadgeEvaluator,
	locks *services.UserLocks,
) *AwardCompletionHandler {
	return &AwardCompletionHandler{
		taskRepo:     taskRepo,
		progressRepo: progressRepo,
		outboxRepo:   outboxRepo,
		uow:          uow,
		badges:       badges,
		locks:        locks,
		metrics:      observability.NoopMetrics{},
		now:          time.Now,
	}
}

// WithClock overrides the handler's clock. Used in tests.
func (h *AwardCompletionHandler) WithClock(now func() time.Time) *AwardCompletionHandler {
	h.now = now
	return h
}

// WithMetrics replaces the metrics sink.
func (h *AwardCompletionHandler) WithMetrics(m observability.Metrics) *AwardCompletionHandler {
	if m != nil {
		h.metrics = m
	}
	return h
}

// Handle executes the AwardCompletionCommand. Operations for the same
// user are serialized so concurrent completions cannot race on the
// progress record.
func (h *AwardCompletionHandler) Handle(ctx context.Context, cmd AwardCompletionCommand) (*AwardCompletionResult, error) {
	unlock := h.locks.Lock(cmd.UserID)
	defer unlock()

	var result AwardCompletionResult

	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		t, err := h.taskRepo.FindByID(txCtx, cmd.TaskID)
		if err != nil {
			return err
		}
		if t.UserID() != cmd.UserID {
			return ErrNotTaskOwner
		}

		now := h.now()
		if err := t.Complete(now); err != nil {
			return err
		}

		points := task.PointsForCompletion(t.Category(), t.Deadline(), now)
		if err := t.AwardPoints(points); err != nil {
			return err
		}

		p, err := loadOrCreateProgress(txCtx, h.progressRepo, cmd.UserID, now)
		if err != nil {
			return err
		}

		leveledUp, err := p.AddPoints(points)
		if err != nil {
			return err
		}
		p.RecordCompletion()
		p.UpdateStreak(now)

		newBadges, err := h.badges.Evaluate(txCtx, p, t, now)
		if err != nil {
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

		result = AwardCompletionResult{
			PointsAwarded: points,
			TotalPoints:   p.Points(),
			LeveledUp:     leveledUp,
			Level:         p.Level(),
			LevelTitle:    p.LevelTitle(),
			CurrentStreak: p.CurrentStreak(),
			NewBadges:     newBadges,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	h.metrics.Counter(observability.MetricTasksCompleted, 1)
	h.metrics.Counter(observability.MetricPointsAwarded, int64(result.PointsAwarded))
	if result.LeveledUp {
		h.metrics.Counter(observability.MetricLevelUps, 1)
	}
	if len(result.NewBadges) > 0 {
		h.metrics.Counter(observability.MetricBadgesAwarded, int64(len(result.NewBadges)))
	}

	return &result, nil
}

// loadOrCreateProgress fetches the user's progress record, creating a
// fresh one on first use.
func loadOrCreateProgress(ctx context.Context, repo progress.Repository, userID uuid.UUID, now time.Time) (*progress.UserProgress, error) {
	p, err := repo.FindByUserID(ctx, userID)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, progress.ErrProgressNotFound) {
		return nil, err
	}
	return progress.NewUserProgress(userID, DefaultDisplayName, now)
}

// saveEvents stamps metadata on the aggregates' events and appends them
// to the outbox inside the surrounding transaction.
func saveEvents(ctx context.Context, repo outbox.Repository, userID uuid.UUID, eventLists ...[]sharedDomain.DomainEvent) error {
	var all []sharedDomain.DomainEvent
	for _, events := range eventLists {
		all = append(all, events...)
	}
	if len(all) == 0 {
		return nil
	}

	sharedApplication.ApplyEventMetadata(all, sharedApplication.NewEventMetadata(userID))

	msgs, err := outbox.FromEvents(all)
	if err != nil {
		return err
	}
	return repo.SaveBatch(ctx, msgs)
}
