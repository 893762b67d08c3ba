package commands

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/taskforge/taskforge/internal/shared/infrastructure/outbox"
	"github.com/taskforge/taskforge/internal/tasks/domain/task"
)

type mockTaskRepository struct {
	mock.Mock
}

func (m *mockTaskRepository) Save(ctx context.Context, t *task.Task) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *mockTaskRepository) FindByID(ctx context.Context, id uuid.UUID) (*task.Task, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*task.Task), args.Error(1)
}

func (m *mockTaskRepository) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*task.Task, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*task.Task), args.Error(1)
}

func (m *mockTaskRepository) FindByUserAndCategory(ctx context.Context, userID uuid.UUID, category task.Category) ([]*task.Task, error) {
	args := m.Called(ctx, userID, category)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*task.Task), args.Error(1)
}

func (m *mockTaskRepository) FindCreatedBetween(ctx context.Context, userID uuid.UUID, category task.Category, from, to time.Time) ([]*task.Task, error) {
	args := m.Called(ctx, userID, category, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*task.Task), args.Error(1)
}

func (m *mockTaskRepository) FindOverdueCandidates(ctx context.Context, before time.Time, limit int) ([]*task.Task, error) {
	args := m.Called(ctx, before, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*task.Task), args.Error(1)
}

func (m *mockTaskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockOutboxRepository struct {
	mock.Mock
}

func (m *mockOutboxRepository) Save(ctx context.Context, msg *outbox.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *mockOutboxRepository) SaveBatch(ctx context.Context, msgs []*outbox.Message) error {
	args := m.Called(ctx, msgs)
	return args.Error(0)
}

func (m *mockOutboxRepository) GetUnpublished(ctx context.Context, limit int) ([]*outbox.Message, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*outbox.Message), args.Error(1)
}

func (m *mockOutboxRepository) MarkPublished(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockOutboxRepository) MarkFailed(ctx context.Context, id int64, errMsg string, nextRetryAt time.Time) error {
	args := m.Called(ctx, id, errMsg, nextRetryAt)
	return args.Error(0)
}

func (m *mockOutboxRepository) MarkDead(ctx context.Context, id int64, reason string) error {
	args := m.Called(ctx, id, reason)
	return args.Error(0)
}

func (m *mockOutboxRepository) DeleteOld(ctx context.Context, olderThanDays int) (int64, error) {
	args := m.Called(ctx, olderThanDays)
	return args.Get(0).(int64), args.Error(1)
}

type mockUnitOfWork struct {
	mock.Mock
}

func (m *mockUnitOfWork) Begin(ctx context.Context) (context.Context, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(context.Context), args.Error(1)
}

func (m *mockUnitOfWork) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *mockUnitOfWork) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func passthroughUoW(ctx context.Context) *mockUnitOfWork {
	uow := new(mockUnitOfWork)
	uow.On("Begin", mock.Anything).Return(ctx, nil).Maybe()
	uow.On("Commit", mock.Anything).Return(nil).Maybe()
	uow.On("Rollback", mock.Anything).Return(nil).Maybe()
	return uow
}

func TestCreateTaskHandler_Handle(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	t.Run("creates task and records events in outbox", func(t *testing.T) {
		taskRepo := new(mockTaskRepository)
		outboxRepo := new(mockOutboxRepository)
		uow := passthroughUoW(ctx)

		handler := NewCreateTaskHandler(taskRepo, outboxRepo, uow).
			WithClock(func() time.Time { return now })

		taskRepo.On("Save", mock.Anything, mock.AnythingOfType("*task.Task")).Return(nil)
		outboxRepo.On("SaveBatch", mock.Anything, mock.MatchedBy(func(msgs []*outbox.Message) bool {
			return len(msgs) == 1 && msgs[0].RoutingKey == task.RoutingKeyCreated
		})).Return(nil)

		created, err := handler.Handle(ctx, CreateTaskCommand{
			UserID:   userID,
			Title:    "Water the plants",
			Category: task.CategoryDaily,
		})
		require.NoError(t, err)

		assert.Equal(t, "Water the plants", created.Title())
		assert.Equal(t, time.Date(2026, 3, 10, 23, 59, 59, 0, time.UTC), created.Deadline())
		taskRepo.AssertExpectations(t)
		outboxRepo.AssertExpectations(t)
	})

	t.Run("rejects invalid input without touching the repository", func(t *testing.T) {
		taskRepo := new(mockTaskRepository)
		outboxRepo := new(mockOutboxRepository)
		uow := passthroughUoW(ctx)

		handler := NewCreateTaskHandler(taskRepo, outboxRepo, uow)

		_, err := handler.Handle(ctx, CreateTaskCommand{
			UserID:   userID,
			Title:    "   ",
			Category: task.CategoryDaily,
		})
		assert.ErrorIs(t, err, task.ErrEmptyTitle)
		taskRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("propagates save errors", func(t *testing.T) {
		taskRepo := new(mockTaskRepository)
		outboxRepo := new(mockOutboxRepository)
		uow := passthroughUoW(ctx)

		handler := NewCreateTaskHandler(taskRepo, outboxRepo, uow)

		taskRepo.On("Save", mock.Anything, mock.Anything).Return(errors.New("db down"))

		_, err := handler.Handle(ctx, CreateTaskCommand{
			UserID:   userID,
			Title:    "Water the plants",
			Category: task.CategoryDaily,
		})
		assert.Error(t, err)
	})
}

func TestDeleteTaskHandler_Handle(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	newTask := func(t *testing.T) *task.Task {
		tk, err := task.NewTask(userID, "Clean desk", "", task.CategoryDaily, now)
		require.NoError(t, err)
		tk.ClearDomainEvents()
		return tk
	}

	t.Run("deletes owned task", func(t *testing.T) {
		taskRepo := new(mockTaskRepository)
		outboxRepo := new(mockOutboxRepository)
		uow := passthroughUoW(ctx)

		tk := newTask(t)
		handler := NewDeleteTaskHandler(taskRepo, outboxRepo, uow)

		taskRepo.On("FindByID", mock.Anything, tk.ID()).Return(tk, nil)
		taskRepo.On("Delete", mock.Anything, tk.ID()).Return(nil)
		outboxRepo.On("SaveBatch", mock.Anything, mock.MatchedBy(func(msgs []*outbox.Message) bool {
			return len(msgs) == 1 && msgs[0].RoutingKey == task.RoutingKeyDeleted
		})).Return(nil)

		err := handler.Handle(ctx, DeleteTaskCommand{TaskID: tk.ID(), UserID: userID})
		require.NoError(t, err)
		taskRepo.AssertExpectations(t)
		outboxRepo.AssertExpectations(t)
	})

	t.Run("rejects foreign task", func(t *testing.T) {
		taskRepo := new(mockTaskRepository)
		outboxRepo := new(mockOutboxRepository)
		uow := passthroughUoW(ctx)

		tk := newTask(t)
		handler := NewDeleteTaskHandler(taskRepo, outboxRepo, uow)

		taskRepo.On("FindByID", mock.Anything, tk.ID()).Return(tk, nil)

		err := handler.Handle(ctx, DeleteTaskCommand{TaskID: tk.ID(), UserID: uuid.New()})
		assert.ErrorIs(t, err, ErrNotTaskOwner)
		taskRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}
