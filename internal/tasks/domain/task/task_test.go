package task

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTask(t *testing.T) {
	userID := uuid.New()
	createdAt := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC) // Tuesday

	t.Run("creates task with derived deadline", func(t *testing.T) {
		tk, err := NewTask(userID, "Morning run", "5k around the park", CategoryDaily, createdAt)
		require.NoError(t, err)

		assert.Equal(t, userID, tk.UserID())
		assert.Equal(t, "Morning run", tk.Title())
		assert.Equal(t, CategoryDaily, tk.Category())
		assert.Equal(t, time.Date(2026, 3, 10, 23, 59, 59, 0, time.UTC), tk.Deadline())
		assert.False(t, tk.IsCompleted())
		assert.False(t, tk.IsOverdue())
		assert.Equal(t, 0, tk.PointsAwarded())
		assert.Len(t, tk.DomainEvents(), 1)
	})

	t.Run("trims title and description", func(t *testing.T) {
		tk, err := NewTask(userID, "  Review PRs  ", "  backlog  ", CategoryDaily, createdAt)
		require.NoError(t, err)
		assert.Equal(t, "Review PRs", tk.Title())
		assert.Equal(t, "backlog", tk.Description())
	})

	t.Run("rejects empty title", func(t *testing.T) {
		_, err := NewTask(userID, "   ", "", CategoryDaily, createdAt)
		assert.ErrorIs(t, err, ErrEmptyTitle)
	})

	t.Run("rejects overlong title", func(t *testing.T) {
		_, err := NewTask(userID, strings.Repeat("x", MaxTitleLength+1), "", CategoryDaily, createdAt)
		assert.ErrorIs(t, err, ErrTitleTooLong)
	})

	t.Run("accepts title at the limit", func(t *testing.T) {
		_, err := NewTask(userID, strings.Repeat("x", MaxTitleLength), "", CategoryDaily, createdAt)
		assert.NoError(t, err)
	})

	t.Run("rejects invalid category", func(t *testing.T) {
		_, err := NewTask(userID, "Plan sprint", "", Category("yearly"), createdAt)
		assert.ErrorIs(t, err, ErrInvalidCategory)
	})
}

func TestDeadline(t *testing.T) {
	t.Run("daily ends at end of creation day", func(t *testing.T) {
		createdAt := time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)
		assert.Equal(t, time.Date(2026, 3, 10, 23, 59, 59, 0, time.UTC), Deadline(CategoryDaily, createdAt))
	})

	t.Run("weekly ends on upcoming Sunday", func(t *testing.T) {
		// 2026-03-10 is a Tuesday; the upcoming Sunday is 2026-03-15.
		createdAt := time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)
		assert.Equal(t, time.Date(2026, 3, 15, 23, 59, 59, 0, time.UTC), Deadline(CategoryWeekly, createdAt))
	})

	t.Run("weekly created on Sunday gets a full week", func(t *testing.T) {
		createdAt := time.Date(2026, 3, 15, 9, 30, 0, 0, time.UTC) // Sunday
		assert.Equal(t, time.Date(2026, 3, 22, 23, 59, 59, 0, time.UTC), Deadline(CategoryWeekly, createdAt))
	})

	t.Run("monthly ends on last day of month", func(t *testing.T) {
		createdAt := time.Date(2026, 2, 3, 9, 30, 0, 0, time.UTC)
		assert.Equal(t, time.Date(2026, 2, 28, 23, 59, 59, 0, time.UTC), Deadline(CategoryMonthly, createdAt))

		createdAt = time.Date(2028, 2, 3, 9, 30, 0, 0, time.UTC) // leap year
		assert.Equal(t, time.Date(2028, 2, 29, 23, 59, 59, 0, time.UTC), Deadline(CategoryMonthly, createdAt))
	})
}

func TestPointsForCompletion(t *testing.T) {
	deadline := time.Date(2026, 3, 10, 23, 59, 59, 0, time.UTC)

	tests := []struct {
		name        string
		category    Category
		completedAt time.Time
		want        int
	}{
		{"daily on time before 10am", CategoryDaily, time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC), 18},
		{"daily on time after 10am", CategoryDaily, time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC), 15},
		{"daily late after 10am", CategoryDaily, time.Date(2026, 3, 11, 15, 0, 0, 0, time.UTC), 10},
		{"daily late before 10am", CategoryDaily, time.Date(2026, 3, 11, 8, 0, 0, 0, time.UTC), 12},
		{"exactly at deadline counts as on time", CategoryDaily, deadline, 15},
		{"weekly on time before 10am", CategoryWeekly, time.Date(2026, 3, 10, 9, 59, 0, 0, time.UTC), 90},
		{"weekly late", CategoryWeekly, time.Date(2026, 3, 12, 12, 0, 0, 0, time.UTC), 50},
		{"monthly on time", CategoryMonthly, time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC), 300},
		{"monthly on time before 10am", CategoryMonthly, time.Date(2026, 3, 10, 7, 0, 0, 0, time.UTC), 360},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PointsForCompletion(tt.category, deadline, tt.completedAt))
		})
	}
}

func TestTask_Complete(t *testing.T) {
	userID := uuid.New()
	createdAt := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	t.Run("records completion time", func(t *testing.T) {
		tk, err := NewTask(userID, "Write report", "", CategoryDaily, createdAt)
		require.NoError(t, err)
		tk.ClearDomainEvents()

		completedAt := createdAt.Add(2 * time.Hour)
		require.NoError(t, tk.Complete(completedAt))

		assert.True(t, tk.IsCompleted())
		require.NotNil(t, tk.CompletedAt())
		assert.Equal(t, completedAt, *tk.CompletedAt())
		assert.Len(t, tk.DomainEvents(), 1)
	})

	t.Run("rejects double completion", func(t *testing.T) {
		tk, err := NewTask(userID, "Write report", "", CategoryDaily, createdAt)
		require.NoError(t, err)
		require.NoError(t, tk.Complete(createdAt.Add(time.Hour)))

		assert.ErrorIs(t, tk.Complete(createdAt.Add(2*time.Hour)), ErrTaskAlreadyComplete)
	})

	t.Run("clears the overdue flag", func(t *testing.T) {
		tk, err := NewTask(userID, "Write report", "", CategoryDaily, createdAt)
		require.NoError(t, err)

		_, err = tk.MarkOverdue()
		require.NoError(t, err)
		require.True(t, tk.IsOverdue())

		require.NoError(t, tk.Complete(createdAt.Add(26*time.Hour)))

		assert.True(t, tk.IsCompleted())
		assert.False(t, tk.IsOverdue())
	})
}

func TestTask_AwardPoints(t *testing.T) {
	userID := uuid.New()
	createdAt := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	t.Run("records awarded points", func(t *testing.T) {
		tk, err := NewTask(userID, "Write report", "", CategoryDaily, createdAt)
		require.NoError(t, err)
		require.NoError(t, tk.Complete(createdAt.Add(time.Hour)))

		require.NoError(t, tk.AwardPoints(15))
		assert.Equal(t, 15, tk.PointsAwarded())
	})

	t.Run("rejects awarding on incomplete task", func(t *testing.T) {
		tk, err := NewTask(userID, "Write report", "", CategoryDaily, createdAt)
		require.NoError(t, err)

		assert.ErrorIs(t, tk.AwardPoints(15), ErrTaskNotComplete)
	})
}

func TestTask_RevertCompletion(t *testing.T) {
	userID := uuid.New()
	createdAt := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	t.Run("clears completion and returns awarded points", func(t *testing.T) {
		tk, err := NewTask(userID, "Write report", "", CategoryDaily, createdAt)
		require.NoError(t, err)
		require.NoError(t, tk.Complete(createdAt.Add(time.Hour)))
		require.NoError(t, tk.AwardPoints(18))

		reverted, err := tk.RevertCompletion()
		require.NoError(t, err)

		assert.Equal(t, 18, reverted)
		assert.False(t, tk.IsCompleted())
		assert.Nil(t, tk.CompletedAt())
		assert.Equal(t, 0, tk.PointsAwarded())
	})

	t.Run("rejects reverting an incomplete task", func(t *testing.T) {
		tk, err := NewTask(userID, "Write report", "", CategoryDaily, createdAt)
		require.NoError(t, err)

		_, err = tk.RevertCompletion()
		assert.ErrorIs(t, err, ErrTaskNotComplete)
	})
}

func TestTask_MarkOverdue(t *testing.T) {
	userID := uuid.New()
	createdAt := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	t.Run("flags task and returns category penalty", func(t *testing.T) {
		tk, err := NewTask(userID, "Pay rent", "", CategoryMonthly, createdAt)
		require.NoError(t, err)

		penalty, err := tk.MarkOverdue()
		require.NoError(t, err)

		assert.Equal(t, 100, penalty)
		assert.True(t, tk.IsOverdue())
	})

	t.Run("is idempotent", func(t *testing.T) {
		tk, err := NewTask(userID, "Pay rent", "", CategoryDaily, createdAt)
		require.NoError(t, err)

		_, err = tk.MarkOverdue()
		require.NoError(t, err)
		tk.ClearDomainEvents()

		penalty, err := tk.MarkOverdue()
		require.NoError(t, err)
		assert.Equal(t, 0, penalty)
		assert.Empty(t, tk.DomainEvents())
	})

	t.Run("rejects completed tasks", func(t *testing.T) {
		tk, err := NewTask(userID, "Pay rent", "", CategoryDaily, createdAt)
		require.NoError(t, err)
		require.NoError(t, tk.Complete(createdAt.Add(time.Hour)))

		_, err = tk.MarkOverdue()
		assert.ErrorIs(t, err, ErrTaskComplete)
	})
}

func TestWindows(t *testing.T) {
	now := time.Date(2026, 3, 11, 15, 30, 0, 0, time.UTC) // Wednesday

	t.Run("day window covers the calendar day", func(t *testing.T) {
		w := DayWindow(now)
		assert.Equal(t, time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC), w.Start)
		assert.True(t, w.Contains(now))
		assert.False(t, w.Contains(now.AddDate(0, 0, 1)))
	})

	t.Run("week window starts on Sunday", func(t *testing.T) {
		w := WeekWindow(now)
		assert.Equal(t, time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC), w.Start)
		assert.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), w.End)
	})

	t.Run("week window on a Sunday starts that day", func(t *testing.T) {
		sunday := time.Date(2026, 3, 8, 10, 0, 0, 0, time.UTC)
		w := WeekWindow(sunday)
		assert.Equal(t, time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC), w.Start)
	})

	t.Run("month window covers the calendar month", func(t *testing.T) {
		w := MonthWindow(now)
		assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), w.Start)
		assert.Equal(t, time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), w.End)
	})
}

func TestParseCategory(t *testing.T) {
	c, err := ParseCategory(" Weekly ")
	require.NoError(t, err)
	assert.Equal(t, CategoryWeekly, c)

	_, err = ParseCategory("hourly")
	assert.ErrorIs(t, err, ErrInvalidCategory)
}
