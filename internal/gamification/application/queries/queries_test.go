package queries

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/taskforge/taskforge/internal/gamification/domain/progress"
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

type mockProgressRepository struct {
	mock.Mock
}

func (m *mockProgressRepository) Save(ctx context.Context, p *progress.UserProgress) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *mockProgressRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*progress.UserProgress, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*progress.UserProgress), args.Error(1)
}

func (m *mockProgressRepository) ListByPoints(ctx context.Context, limit int) ([]*progress.UserProgress, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*progress.UserProgress), args.Error(1)
}

func mustTask(t *testing.T, userID uuid.UUID, category task.Category, createdAt time.Time, completed bool) *task.Task {
	tk, err := task.NewTask(userID, "Task", "", category, createdAt)
	require.NoError(t, err)
	if completed {
		require.NoError(t, tk.Complete(createdAt.Add(time.Hour)))
	}
	tk.ClearDomainEvents()
	return tk
}

func mustProgressWithPoints(t *testing.T, name string, points int) *progress.UserProgress {
	p, err := progress.NewUserProgress(uuid.New(), name, time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	if points > 0 {
		_, err = p.AddPoints(points)
		require.NoError(t, err)
	}
	p.ClearDomainEvents()
	return p
}

func TestGetProgressHandler_Handle(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	now := time.Date(2026, 3, 11, 15, 0, 0, 0, time.UTC) // Wednesday

	dayWindow := task.DayWindow(now)
	weekWindow := task.WeekWindow(now)
	monthWindow := task.MonthWindow(now)

	t.Run("computes per-period and overall percentages", func(t *testing.T) {
		repo := new(mockTaskRepository)
		handler := NewGetProgressHandler(repo).WithClock(func() time.Time { return now })

		daily := []*task.Task{
			mustTask(t, userID, task.CategoryDaily, now.Add(-2*time.Hour), true),
			mustTask(t, userID, task.CategoryDaily, now.Add(-time.Hour), false),
			mustTask(t, userID, task.CategoryDaily, now.Add(-time.Minute), false),
		}
		weekly := []*task.Task{
			mustTask(t, userID, task.CategoryWeekly, now.AddDate(0, 0, -2), true),
		}

		repo.On("FindCreatedBetween", mock.Anything, userID, task.CategoryDaily, dayWindow.Start, dayWindow.End).Return(daily, nil)
		repo.On("FindCreatedBetween", mock.Anything, userID, task.CategoryWeekly, weekWindow.Start, weekWindow.End).Return(weekly, nil)
		repo.On("FindCreatedBetween", mock.Anything, userID, task.CategoryMonthly, monthWindow.Start, monthWindow.End).Return([]*task.Task{}, nil)

		report, err := handler.Handle(ctx, GetProgressQuery{UserID: userID})
		require.NoError(t, err)

		// 1 of 3 daily tasks: 33%, rounded from 33.33.
		assert.Equal(t, PeriodProgressDTO{Completed: 1, Total: 3, Pct: 33}, report.Daily)
		assert.Equal(t, PeriodProgressDTO{Completed: 1, Total: 1, Pct: 100}, report.Weekly)
		assert.Equal(t, PeriodProgressDTO{Completed: 0, Total: 0, Pct: 0}, report.Monthly)
		assert.Equal(t, PeriodProgressDTO{Completed: 2, Total: 4, Pct: 50}, report.Overall)
	})

	t.Run("empty periods report zero", func(t *testing.T) {
		repo := new(mockTaskRepository)
		handler := NewGetProgressHandler(repo).WithClock(func() time.Time { return now })

		repo.On("FindCreatedBetween", mock.Anything, userID, mock.Anything, mock.Anything, mock.Anything).Return([]*task.Task{}, nil)

		report, err := handler.Handle(ctx, GetProgressQuery{UserID: userID})
		require.NoError(t, err)

		assert.Equal(t, 0, report.Overall.Pct)
		assert.Equal(t, 0, report.Overall.Total)
	})
}

func TestGetStatsHandler_Handle(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the full gamification state", func(t *testing.T) {
		repo := new(mockProgressRepository)
		handler := NewGetStatsHandler(repo)

		p := mustProgressWithPoints(t, "Alex", 150)
		p.UpdateStreak(time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC))
		p.AwardBadge(progress.Catalog[progress.BadgeEarlyBird], time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC))
		p.ClearDomainEvents()

		repo.On("FindByUserID", mock.Anything, p.UserID()).Return(p, nil)

		stats, err := handler.Handle(ctx, GetStatsQuery{UserID: p.UserID()})
		require.NoError(t, err)

		assert.Equal(t, "Alex", stats.DisplayName)
		assert.Equal(t, 150, stats.Points)
		assert.Equal(t, 150, stats.XP)
		assert.Equal(t, 2, stats.Level)
		assert.Equal(t, "Novice", stats.LevelTitle)
		assert.Equal(t, 50, stats.XPToNextLevel)
		assert.Equal(t, 1, stats.CurrentStreak)
		require.Len(t, stats.Badges, 1)
		assert.Equal(t, "Early Bird", stats.Badges[0].Name)
	})

	t.Run("propagates missing progress", func(t *testing.T) {
		repo := new(mockProgressRepository)
		handler := NewGetStatsHandler(repo)

		userID := uuid.New()
		repo.On("FindByUserID", mock.Anything, userID).Return(nil, progress.ErrProgressNotFound)

		_, err := handler.Handle(ctx, GetStatsQuery{UserID: userID})
		assert.ErrorIs(t, err, progress.ErrProgressNotFound)
	})
}

func TestGetLeaderboardHandler_Handle(t *testing.T) {
	ctx := context.Background()

	t.Run("ranks users by points", func(t *testing.T) {
		repo := new(mockProgressRepository)
		handler := NewGetLeaderboardHandler(NewRepositoryLeaderboard(repo))

		first := mustProgressWithPoints(t, "Ada", 300)
		second := mustProgressWithPoints(t, "Grace", 120)

		repo.On("ListByPoints", mock.Anything, 10).Return([]*progress.UserProgress{first, second}, nil)

		entries, err := handler.Handle(ctx, GetLeaderboardQuery{})
		require.NoError(t, err)

		require.Len(t, entries, 2)
		assert.Equal(t, 1, entries[0].Rank)
		assert.Equal(t, "Ada", entries[0].Name)
		assert.Equal(t, 300, entries[0].Points)
		assert.Equal(t, 2, entries[1].Rank)
		assert.Equal(t, "Grace", entries[1].Name)
	})

	t.Run("passes an explicit limit through", func(t *testing.T) {
		repo := new(mockProgressRepository)
		handler := NewGetLeaderboardHandler(NewRepositoryLeaderboard(repo))

		repo.On("ListByPoints", mock.Anything, 3).Return([]*progress.UserProgress{}, nil)

		entries, err := handler.Handle(ctx, GetLeaderboardQuery{Limit: 3})
		require.NoError(t, err)
		assert.Empty(t, entries)
		repo.AssertExpectations(t)
	})
}
