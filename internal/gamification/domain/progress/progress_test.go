package progress

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProgress(t *testing.T) *UserProgress {
	p, err := NewUserProgress(uuid.New(), "Alex", time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	p.ClearDomainEvents()
	return p
}

func TestNewUserProgress(t *testing.T) {
	t.Run("starts at level one with nothing earned", func(t *testing.T) {
		userID := uuid.New()
		p, err := NewUserProgress(userID, "Alex", time.Now())
		require.NoError(t, err)

		assert.Equal(t, userID, p.UserID())
		assert.Equal(t, "Alex", p.DisplayName())
		assert.Equal(t, 0, p.Points())
		assert.Equal(t, 0, p.XP())
		assert.Equal(t, 1, p.Level())
		assert.Equal(t, 0, p.CurrentStreak())
		assert.Equal(t, 0, p.BadgeCount())
		assert.Len(t, p.DomainEvents(), 1)
	})

	t.Run("rejects empty display name", func(t *testing.T) {
		_, err := NewUserProgress(uuid.New(), "  ", time.Now())
		assert.ErrorIs(t, err, ErrEmptyDisplayName)
	})
}

func TestUserProgress_AddPoints(t *testing.T) {
	t.Run("credits points and xp together", func(t *testing.T) {
		p := newProgress(t)

		leveledUp, err := p.AddPoints(60)
		require.NoError(t, err)

		assert.False(t, leveledUp)
		assert.Equal(t, 60, p.Points())
		assert.Equal(t, 60, p.XP())
		assert.Equal(t, 1, p.Level())
	})

	t.Run("levels up when xp reaches the threshold", func(t *testing.T) {
		p := newProgress(t)

		_, err := p.AddPoints(60)
		require.NoError(t, err)
		leveledUp, err := p.AddPoints(40) // xp now exactly 100
		require.NoError(t, err)

		assert.True(t, leveledUp)
		assert.Equal(t, 2, p.Level())
	})

	t.Run("advances at most one level per award", func(t *testing.T) {
		p := newProgress(t)

		leveledUp, err := p.AddPoints(500)
		require.NoError(t, err)

		assert.True(t, leveledUp)
		assert.Equal(t, 2, p.Level())
		assert.Equal(t, 500, p.XP())
	})

	t.Run("rejects negative points", func(t *testing.T) {
		p := newProgress(t)

		_, err := p.AddPoints(-1)
		assert.ErrorIs(t, err, ErrNegativePoints)
	})
}

func TestUserProgress_RemovePoints(t *testing.T) {
	t.Run("floors points at zero and keeps xp", func(t *testing.T) {
		p := newProgress(t)
		_, err := p.AddPoints(30)
		require.NoError(t, err)

		require.NoError(t, p.RemovePoints(100))

		assert.Equal(t, 0, p.Points())
		assert.Equal(t, 30, p.XP())
	})

	t.Run("never lowers the level", func(t *testing.T) {
		p := newProgress(t)
		_, err := p.AddPoints(150)
		require.NoError(t, err)
		require.Equal(t, 2, p.Level())

		require.NoError(t, p.RemovePoints(150))
		assert.Equal(t, 2, p.Level())
	})
}

func TestUserProgress_UpdateStreak(t *testing.T) {
	day := func(d int) time.Time {
		return time.Date(2026, 3, d, 14, 0, 0, 0, time.UTC)
	}

	t.Run("first completion starts the streak", func(t *testing.T) {
		p := newProgress(t)

		p.UpdateStreak(day(1))

		assert.Equal(t, 1, p.CurrentStreak())
		assert.Equal(t, 1, p.LongestStreak())
	})

	t.Run("consecutive days extend the streak", func(t *testing.T) {
		p := newProgress(t)

		p.UpdateStreak(day(1))
		p.UpdateStreak(day(2))
		p.UpdateStreak(day(3))

		assert.Equal(t, 3, p.CurrentStreak())
		assert.Equal(t, 3, p.LongestStreak())
	})

	t.Run("same-day completions do not change the streak", func(t *testing.T) {
		p := newProgress(t)

		p.UpdateStreak(day(1))
		p.UpdateStreak(day(1).Add(4 * time.Hour))

		assert.Equal(t, 1, p.CurrentStreak())
	})

	t.Run("a gap resets the streak but keeps the longest", func(t *testing.T) {
		p := newProgress(t)

		p.UpdateStreak(day(1))
		p.UpdateStreak(day(2))
		p.UpdateStreak(day(3))
		p.UpdateStreak(day(10))

		assert.Equal(t, 1, p.CurrentStreak())
		assert.Equal(t, 3, p.LongestStreak())
	})

	t.Run("a two-day gap across spring forward resets the streak", func(t *testing.T) {
		loc, err := time.LoadLocation("America/New_York")
		require.NoError(t, err)
		p := newProgress(t)

		// DST starts 2026-03-08; only 47 real hours separate these
		// afternoons but the calendar gap is two days.
		p.UpdateStreak(time.Date(2026, 3, 7, 14, 0, 0, 0, loc))
		p.UpdateStreak(time.Date(2026, 3, 9, 13, 0, 0, 0, loc))

		assert.Equal(t, 1, p.CurrentStreak())
	})

	t.Run("the shortened spring-forward day still extends the streak", func(t *testing.T) {
		loc, err := time.LoadLocation("America/New_York")
		require.NoError(t, err)
		p := newProgress(t)

		p.UpdateStreak(time.Date(2026, 3, 7, 14, 0, 0, 0, loc))
		p.UpdateStreak(time.Date(2026, 3, 8, 14, 0, 0, 0, loc))

		assert.Equal(t, 2, p.CurrentStreak())
	})
}

func TestUserProgress_AwardBadge(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	t.Run("grants a badge once", func(t *testing.T) {
		p := newProgress(t)

		assert.True(t, p.AwardBadge(Catalog[BadgeEarlyBird], now))
		assert.False(t, p.AwardBadge(Catalog[BadgeEarlyBird], now))

		assert.Equal(t, 1, p.BadgeCount())
		assert.True(t, p.HasBadge(BadgeEarlyBird))
	})

	t.Run("keeps badges in award order", func(t *testing.T) {
		p := newProgress(t)

		p.AwardBadge(Catalog[BadgeEarlyBird], now)
		p.AwardBadge(Catalog[BadgeConsistencyKing], now.Add(time.Hour))

		badges := p.Badges()
		require.Len(t, badges, 2)
		assert.Equal(t, BadgeEarlyBird, badges[0].ID)
		assert.Equal(t, BadgeConsistencyKing, badges[1].ID)
	})
}

func TestLevelTitle(t *testing.T) {
	tests := []struct {
		level int
		want  string
	}{
		{1, "Beginner"},
		{2, "Novice"},
		{3, "Task Master"},
		{9, "Productivity Guru"},
		{10, "Task Overlord Level 1"},
		{12, "Task Overlord Level 3"},
		{0, "Level 0 Master"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, LevelTitle(tt.level))
	}
}

func TestXPToNextLevel(t *testing.T) {
	p := newProgress(t)

	assert.Equal(t, 100, p.XPToNextLevel())

	_, err := p.AddPoints(40)
	require.NoError(t, err)
	assert.Equal(t, 60, p.XPToNextLevel())
}
