package queries

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

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

func mustNewTask(t *testing.T, userID uuid.UUID, title string, category task.Category, createdAt time.Time) *task.Task {
	tk, err := task.NewTask(userID, title, "", category, createdAt)
	require.NoError(t, err)
	tk.ClearDomainEvents()
	return tk
}

func TestListTasksHandler_Handle(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	t.Run("lists all tasks newest first", func(t *testing.T) {
		repo := new(mockTaskRepository)
		handler := NewListTasksHandler(repo)

		older := mustNewTask(t, userID, "First", task.CategoryDaily, base)
		newer := mustNewTask(t, userID, "Second", task.CategoryWeekly, base.Add(time.Hour))

		repo.On("FindByUserID", mock.Anything, userID).Return([]*task.Task{older, newer}, nil)

		dtos, err := handler.Handle(ctx, ListTasksQuery{UserID: userID})
		require.NoError(t, err)

		require.Len(t, dtos, 2)
		assert.Equal(t, "Second", dtos[0].Title)
		assert.Equal(t, "First", dtos[1].Title)
	})

	t.Run("filters by category via repository", func(t *testing.T) {
		repo := new(mockTaskRepository)
		handler := NewListTasksHandler(repo)

		weekly := mustNewTask(t, userID, "Plan sprint", task.CategoryWeekly, base)
		repo.On("FindByUserAndCategory", mock.Anything, userID, task.CategoryWeekly).Return([]*task.Task{weekly}, nil)

		dtos, err := handler.Handle(ctx, ListTasksQuery{UserID: userID, Category: "weekly"})
		require.NoError(t, err)

		require.Len(t, dtos, 1)
		assert.Equal(t, "weekly", dtos[0].Category)
	})

	t.Run("rejects unknown category", func(t *testing.T) {
		repo := new(mockTaskRepository)
		handler := NewListTasksHandler(repo)

		_, err := handler.Handle(ctx, ListTasksQuery{UserID: userID, Category: "hourly"})
		assert.ErrorIs(t, err, task.ErrInvalidCategory)
	})

	t.Run("filters pending tasks", func(t *testing.T) {
		repo := new(mockTaskRepository)
		handler := NewListTasksHandler(repo)

		done := mustNewTask(t, userID, "Done", task.CategoryDaily, base)
		require.NoError(t, done.Complete(base.Add(time.Hour)))
		open := mustNewTask(t, userID, "Open", task.CategoryDaily, base)

		repo.On("FindByUserID", mock.Anything, userID).Return([]*task.Task{done, open}, nil)

		dtos, err := handler.Handle(ctx, ListTasksQuery{UserID: userID, OnlyPending: true})
		require.NoError(t, err)

		require.Len(t, dtos, 1)
		assert.Equal(t, "Open", dtos[0].Title)
	})

	t.Run("applies limit", func(t *testing.T) {
		repo := new(mockTaskRepository)
		handler := NewListTasksHandler(repo)

		tasks := []*task.Task{
			mustNewTask(t, userID, "A", task.CategoryDaily, base),
			mustNewTask(t, userID, "B", task.CategoryDaily, base.Add(time.Minute)),
			mustNewTask(t, userID, "C", task.CategoryDaily, base.Add(2*time.Minute)),
		}
		repo.On("FindByUserID", mock.Anything, userID).Return(tasks, nil)

		dtos, err := handler.Handle(ctx, ListTasksQuery{UserID: userID, Limit: 2})
		require.NoError(t, err)
		require.Len(t, dtos, 2)
		assert.Equal(t, "C", dtos[0].Title)
		assert.Equal(t, "B", dtos[1].Title)
	})
}

func TestGetTaskHandler_Handle(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	t.Run("returns owned task", func(t *testing.T) {
		repo := new(mockTaskRepository)
		handler := NewGetTaskHandler(repo)

		tk := mustNewTask(t, userID, "Read book", task.CategoryMonthly, base)
		repo.On("FindByID", mock.Anything, tk.ID()).Return(tk, nil)

		dto, err := handler.Handle(ctx, GetTaskQuery{TaskID: tk.ID(), UserID: userID})
		require.NoError(t, err)
		assert.Equal(t, "Read book", dto.Title)
		assert.Equal(t, "monthly", dto.Category)
	})

	t.Run("hides foreign task", func(t *testing.T) {
		repo := new(mockTaskRepository)
		handler := NewGetTaskHandler(repo)

		tk := mustNewTask(t, userID, "Read book", task.CategoryMonthly, base)
		repo.On("FindByID", mock.Anything, tk.ID()).Return(tk, nil)

		_, err := handler.Handle(ctx, GetTaskQuery{TaskID: tk.ID(), UserID: uuid.New()})
		assert.ErrorIs(t, err, task.ErrTaskNotFound)
	})
}
