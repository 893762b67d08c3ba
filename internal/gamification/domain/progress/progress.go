package progress

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/taskforge/taskforge/internal/shared/domain"
)

var (
	ErrEmptyDisplayName = errors.New("display name cannot be empty")
	ErrNegativePoints   = errors.New("points cannot be negative")
)

// UserProgress tracks a user's points, XP, level, streaks and badges.
// The aggregate ID is the user ID.
type UserProgress struct {
	domain.BaseAggregateRoot
	displayName        string
	points             int
	xp                 int
	level              int
	currentStreak      int
	longestStreak      int
	lastCompletionDate *time.Time
	totalCompleted     int
	badges             []Badge
}

// NewUserProgress creates a fresh progress record for a user.
func NewUserProgress(userID uuid.UUID, displayName string, now time.Time) (*UserProgress, error) {
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return nil, ErrEmptyDisplayName
	}

	p := &UserProgress{
		BaseAggregateRoot: domain.RehydrateBaseAggregateRoot(
			domain.RehydrateBaseEntity(userID, now, now), 0),
		displayName: displayName,
		level:       1,
	}

	p.AddDomainEvent(NewProgressInitialized(userID, displayName))

	return p, nil
}

// Getters

func (p *UserProgress) UserID() uuid.UUID   { return p.ID() }
func (p *UserProgress) DisplayName() string { return p.displayName }
func (p *UserProgress) Points() int         { return p.points }
func (p *UserProgress) XP() int             { return p.xp }
func (p *UserProgress) Level() int          { return p.level }
func (p *UserProgress) CurrentStreak() int  { return p.currentStreak }
func (p *UserProgress) LongestStreak() int  { return p.longestStreak }
func (p *UserProgress) TotalCompleted() int { return p.totalCompleted }

// LevelTitle returns the display title for the current level.
func (p *UserProgress) LevelTitle() string { return LevelTitle(p.level) }

// LastCompletionDate returns the day of the most recent completion.
func (p *UserProgress) LastCompletionDate() *time.Time { return p.lastCompletionDate }

// Badges returns the earned badges in award order.
func (p *UserProgress) Badges() []Badge { return p.badges }

// BadgeCount returns the number of earned badges.
func (p *UserProgress) BadgeCount() int { return len(p.badges) }

// HasBadge reports whether the badge has already been earned.
func (p *UserProgress) HasBadge(id BadgeID) bool {
	for _, b := range p.badges {
		if b.ID == id {
			return true
		}
	}
	return false
}

// XPToNextLevel returns the XP still missing for the next level.
func (p *UserProgress) XPToNextLevel() int {
	missing := XPForNextLevel(p.level) - p.xp
	if missing < 0 {
		return 0
	}
	return missing
}

// AddPoints credits points and XP and advances at most one level. It
// reports whether a level-up occurred.
func (p *UserProgress) AddPoints(points int) (bool, error) {
	if points < 0 {
		return false, ErrNegativePoints
	}

	p.points += points
	p.xp += points
	p.Touch()
	p.AddDomainEvent(NewPointsAwarded(p.UserID(), points, p.points))

	if p.xp >= XPForNextLevel(p.level) {
		p.level++
		p.AddDomainEvent(NewLeveledUp(p.UserID(), p.level, p.LevelTitle()))
		return true, nil
	}

	return false, nil
}

// RemovePoints debits points, flooring at zero. XP is never deducted.
func (p *UserProgress) RemovePoints(points int) error {
	if points < 0 {
		return ErrNegativePoints
	}

	p.points -= points
	if p.points < 0 {
		p.points = 0
	}
	p.Touch()
	p.AddDomainEvent(NewPointsDeducted(p.UserID(), points, p.points))

	return nil
}

// RecordCompletion counts a completed task towards lifetime totals.
func (p *UserProgress) RecordCompletion() {
	p.totalCompleted++
	p.Touch()
}

// UpdateStreak extends, keeps or resets the daily streak based on the
// gap between the completion day and the previous completion day.
// Multiple completions on the same day leave the streak unchanged.
func (p *UserProgress) UpdateStreak(now time.Time) {
	today := startOfDay(now)

	switch {
	case p.lastCompletionDate == nil:
		p.currentStreak = 1
		p.lastCompletionDate = &today
	default:
		last := startOfDay(*p.lastCompletionDate)
		days := calendarDaysBetween(last, today)

		switch {
		case days == 1:
			p.currentStreak++
			p.lastCompletionDate = &today
		case days > 1:
			p.currentStreak = 1
			p.lastCompletionDate = &today
		}
		// Same-day completion keeps the streak as-is.
	}

	if p.currentStreak > p.longestStreak {
		p.longestStreak = p.currentStreak
	}
	p.Touch()
}

// AwardBadge grants a badge at most once and reports whether it was
// newly earned.
func (p *UserProgress) AwardBadge(spec BadgeSpec, now time.Time) bool {
	if p.HasBadge(spec.ID) {
		return false
	}

	p.badges = append(p.badges, Badge{
		ID:          spec.ID,
		Name:        spec.Name,
		Description: spec.Description,
		AwardedAt:   now,
	})
	p.Touch()
	p.AddDomainEvent(NewBadgeAwarded(p.UserID(), spec.ID, spec.Name))

	return true
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// calendarDaysBetween counts calendar days from a to b. Dates are
// compared in UTC so DST transitions cannot stretch or shrink a day
// into the wrong gap.
func calendarDaysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	au := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	bu := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(bu.Sub(au).Hours() / 24)
}

// RehydrateUserProgress recreates a progress record from persisted
// state without generating events.
func RehydrateUserProgress(
	userID uuid.UUID,
	displayName string,
	points int,
	xp int,
	level int,
	currentStreak int,
	longestStreak int,
	lastCompletionDate *time.Time,
	totalCompleted int,
	badges []Badge,
	createdAt time.Time,
	updatedAt time.Time,
	version int,
) *UserProgress {
	baseEntity := domain.RehydrateBaseEntity(userID, createdAt, updatedAt)

	return &UserProgress{
		BaseAggregateRoot:  domain.RehydrateBaseAggregateRoot(baseEntity, version),
		displayName:        displayName,
		points:             points,
		xp:                 xp,
		level:              level,
		currentStreak:      currentStreak,
		longestStreak:      longestStreak,
		lastCompletionDate: lastCompletionDate,
		totalCompleted:     totalCompleted,
		badges:             badges,
	}
}
