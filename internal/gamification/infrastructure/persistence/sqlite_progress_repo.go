package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/taskforge/taskforge/internal/gamification/domain/progress"
	"github.com/taskforge/taskforge/internal/shared/infrastructure/database"
)

// SQLiteProgressRepository implements progress.Repository using SQLite.
// Timestamps are stored as RFC 3339 strings.
type SQLiteProgressRepository struct {
	conn database.Connection
}

// NewSQLiteProgressRepository creates a new SQLite progress repository.
func NewSQLiteProgressRepository(conn database.Connection) *SQLiteProgressRepository {
	return &SQLiteProgressRepository{conn: conn}
}

const sqliteProgressColumns = `user_id, display_name, points, xp, level, current_streak,
	       longest_streak, last_completion_date, total_completed, version, created_at, updated_at`

// Save persists a progress record and any newly earned badges, bumping
// the version on update.
func (r *SQLiteProgressRepository) Save(ctx context.Context, p *progress.UserProgress) error {
	query := `
		INSERT INTO user_progress (
			user_id, display_name, points, xp, level, current_streak,
			longest_streak, last_completion_date, total_completed, version, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			display_name = excluded.display_name,
			points = excluded.points,
			xp = excluded.xp,
			level = excluded.level,
			current_streak = excluded.current_streak,
			longest_streak = excluded.longest_streak,
			last_completion_date = excluded.last_completion_date,
			total_completed = excluded.total_completed,
			version = user_progress.version + 1,
			updated_at = excluded.updated_at
		WHERE user_progress.version = ?
	`

	exec := database.ExecutorFromContext(ctx, r.conn)
	result, err := exec.Exec(ctx, query,
		p.UserID().String(),
		p.DisplayName(),
		p.Points(),
		p.XP(),
		p.Level(),
		p.CurrentStreak(),
		p.LongestStreak(),
		formatTimePtr(p.LastCompletionDate()),
		p.TotalCompleted(),
		p.Version(),
		formatTime(p.CreatedAt()),
		formatTime(p.UpdatedAt()),
		p.Version(),
	)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrOptimisticLocking
	}

	return r.saveBadges(ctx, p)
}

func (r *SQLiteProgressRepository) saveBadges(ctx context.Context, p *progress.UserProgress) error {
	exec := database.ExecutorFromContext(ctx, r.conn)
	for _, b := range p.Badges() {
		_, err := exec.Exec(ctx, `
			INSERT INTO badges (user_id, badge_id, name, description, awarded_at)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT (user_id, badge_id) DO NOTHING
		`, p.UserID().String(), string(b.ID), b.Name, b.Description, formatTime(b.AwardedAt))
		if err != nil {
			return err
		}
	}
	return nil
}

// FindByUserID retrieves a user's progress with badges.
func (r *SQLiteProgressRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*progress.UserProgress, error) {
	query := `SELECT ` + sqliteProgressColumns + ` FROM user_progress WHERE user_id = ?`

	exec := database.ExecutorFromContext(ctx, r.conn)
	rows, err := exec.Query(ctx, query, userID.String())
	if err != nil {
		return nil, err
	}

	records, err := r.scanProgress(ctx, rows)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, progress.ErrProgressNotFound
	}
	return records[0], nil
}

// ListByPoints retrieves progress records ordered by points descending;
// ties keep first-seen order.
func (r *SQLiteProgressRepository) ListByPoints(ctx context.Context, limit int) ([]*progress.UserProgress, error) {
	query := `SELECT ` + sqliteProgressColumns + ` FROM user_progress
		ORDER BY points DESC, created_at, user_id
		LIMIT ?`

	exec := database.ExecutorFromContext(ctx, r.conn)
	rows, err := exec.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}

	return r.scanProgress(ctx, rows)
}

type sqliteProgressRow struct {
	userID             string
	displayName        string
	points             int
	xp                 int
	level              int
	currentStreak      int
	longestStreak      int
	lastCompletionDate sql.NullString
	totalCompleted     int
	version            int
	createdAt          string
	updatedAt          string
}

// scanProgress drains rows before loading badges so the single SQLite
// connection is free for the follow-up queries. It closes rows.
func (r *SQLiteProgressRepository) scanProgress(ctx context.Context, rows database.Rows) ([]*progress.UserProgress, error) {
	var rowData []sqliteProgressRow
	for rows.Next() {
		var row sqliteProgressRow
		err := rows.Scan(
			&row.userID, &row.displayName, &row.points, &row.xp, &row.level,
			&row.currentStreak, &row.longestStreak, &row.lastCompletionDate,
			&row.totalCompleted, &row.version, &row.createdAt, &row.updatedAt,
		)
		if err != nil {
			rows.Close()
			return nil, err
		}
		rowData = append(rowData, row)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	records := make([]*progress.UserProgress, 0, len(rowData))
	for _, row := range rowData {
		p, err := r.rowToProgress(ctx, row)
		if err != nil {
			return nil, err
		}
		records = append(records, p)
	}

	return records, nil
}

func (r *SQLiteProgressRepository) rowToProgress(ctx context.Context, row sqliteProgressRow) (*progress.UserProgress, error) {
	userID, err := uuid.Parse(row.userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user id in database: %w", err)
	}
	lastCompletion, err := parseTimePtr(row.lastCompletionDate)
	if err != nil {
		return nil, err
	}
	created, err := parseTime(row.createdAt)
	if err != nil {
		return nil, err
	}
	updated, err := parseTime(row.updatedAt)
	if err != nil {
		return nil, err
	}

	badges, err := r.loadBadges(ctx, userID)
	if err != nil {
		return nil, err
	}

	return progress.RehydrateUserProgress(
		userID, row.displayName, row.points, row.xp, row.level,
		row.currentStreak, row.longestStreak, lastCompletion,
		row.totalCompleted, badges, created, updated, row.version,
	), nil
}

func (r *SQLiteProgressRepository) loadBadges(ctx context.Context, userID uuid.UUID) ([]progress.Badge, error) {
	exec := database.ExecutorFromContext(ctx, r.conn)
	rows, err := exec.Query(ctx, `
		SELECT badge_id, name, description, awarded_at
		FROM badges
		WHERE user_id = ?
		ORDER BY awarded_at, badge_id
	`, userID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var badges []progress.Badge
	for rows.Next() {
		var (
			badgeID     string
			name        string
			description string
			awardedAt   string
		)
		if err := rows.Scan(&badgeID, &name, &description, &awardedAt); err != nil {
			return nil, err
		}
		awarded, err := parseTime(awardedAt)
		if err != nil {
			return nil, err
		}
		badges = append(badges, progress.Badge{
			ID:          progress.BadgeID(badgeID),
			Name:        name,
			Description: description,
			AwardedAt:   awarded,
		})
	}

	return badges, rows.Err()
}

// Fixed-width so stored timestamps compare correctly as strings.
const sqliteTimeFormat = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(sqliteTimeFormat)
}

func formatTimePtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}

func parseTime(value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse timestamp %q: %w", value, err)
	}
	return t, nil
}

func parseTimePtr(value sql.NullString) (*time.Time, error) {
	if !value.Valid {
		return nil, nil
	}
	t, err := parseTime(value.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
