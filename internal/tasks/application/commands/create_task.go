package commands

import (
	"context"
	"time"

	"github.com/google/uuid"

	sharedApplication "github.com/taskforge/taskforge/internal/shared/application"
	"github.com/taskforge/taskforge/internal/shared/infrastructure/outbox"
	"github.com/taskforge/taskforge/internal/tasks/domain/task"
	"github.com/taskforge/taskforge/pkg/observability"
)

// CreateTaskCommand contains the data needed to create a task.
type CreateTaskCommand struct {
	UserID      uuid.UUID
	Title       string
	Description string
	Category    task.Category
}

// CreateTaskHandler handles the CreateTaskCommand.
type CreateTaskHandler struct {
	taskRepo   task.Repository
	outboxRepo outbox.Repository
	uow        sharedApplication.UnitOfWork
	metrics    observability.Metrics
	now        func() time.Time
}

// NewCreateTaskHandler creates a new CreateTaskHandler.
func NewCreateTaskHandler(taskRepo task.Repository, outboxRepo outbox.Repository, uow sharedApplication.UnitOfWork) *CreateTaskHandler {
	return &CreateTaskHandler{
		taskRepo:   taskRepo,
		outboxRepo: outboxRepo,
		uow:        uow,
		metrics:    observability.NoopMetrics{},
		now:        time.Now,
	}
}

// WithClock overrides the handler's clock. Used in tests.
func (h *CreateTaskHandler) WithClock(now func() time.Time) *CreateTaskHandler {
	h.now = now
	return h
}

// WithMetrics replaces the metrics sink.
func (h *CreateTaskHandler) WithMetrics(m observability.Metrics) *CreateTaskHandler {
	if m != nil {
		h.metrics = m
	}
	return h
}

// Handle executes the CreateTaskCommand.
func (h *CreateTaskHandler) Handle(ctx context.Context, cmd CreateTaskCommand) (*task.Task, error) {
	t, err := task.NewTask(cmd.UserID, cmd.Title, cmd.Description, cmd.Category, h.now())
	if err != nil {
		return nil, err
	}

	err = sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		if err := h.taskRepo.Save(txCtx, t); err != nil {
			return err
		}

		events := t.DomainEvents()
		sharedApplication.ApplyEventMetadata(events, sharedApplication.NewEventMetadata(cmd.UserID))

		msgs, err := outbox.FromEvents(events)
		if err != nil {
			return err
		}
		return h.outboxRepo.SaveBatch(txCtx, msgs)
	})
	if err != nil {
		return nil, err
	}

	h.metrics.Counter(observability.MetricTasksCreated, 1, observability.T("category", cmd.Category.String()))

	return t, nil
}
