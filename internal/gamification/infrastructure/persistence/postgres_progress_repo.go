package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/taskforge/taskforge/internal/gamification/domain/progress"
	"github.com/taskforge/taskforge/internal/shared/infrastructure/database"
)

var ErrOptimisticLocking = errors.New("optimistic locking conflict")

// progressRow represents a database row for user progress.
type progressRow struct {
	UserID             uuid.UUID
	DisplayName        string
	Points             int
	XP                 int
	Level              int
	CurrentStreak      int
	LongestStreak      int
	LastCompletionDate *time.Time
	TotalCompleted     int
	Version            int
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// PostgresProgressRepository implements progress.Repository using
// PostgreSQL. Badges live in their own table and are append-only.
type PostgresProgressRepository struct {
	conn database.Connection
}

// NewPostgresProgressRepository creates a new PostgreSQL progress repository.
func NewPostgresProgressRepository(conn database.Connection) *PostgresProgressRepository {
	return &PostgresProgressRepository{conn: conn}
}

const postgresProgressColumns = `user_id, display_name, points, xp, level, current_streak,
	       longest_streak, last_completion_date, total_completed, version, created_at, updated_at`

// Save persists a progress record and any newly earned badges.
func (r *PostgresProgressRepository) Save(ctx context.Context, p *progress.UserProgress) error {
	query := `
		INSERT INTO user_progress (
			user_id, display_name, points, xp, level, current_streak,
			longest_streak, last_completion_date, total_completed, version, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (user_id) DO UPDATE SET
			display_name = EXCLUDED.display_name,
			points = EXCLUDED.points,
			xp = EXCLUDED.xp,
			level = EXCLUDED.level,
			current_streak = EXCLUDED.current_streak,
			longest_streak = EXCLUDED.longest_streak,
			last_completion_date = EXCLUDED.last_completion_date,
			total_completed = EXCLUDED.total_completed,
			version = user_progress.version + 1,
			updated_at = NOW()
		WHERE user_progress.version = $10
		RETURNING version
	`

	var newVersion int
	exec := database.ExecutorFromContext(ctx, r.conn)
	err := exec.QueryRow(ctx, query,
		p.UserID(),
		p.DisplayName(),
		p.Points(),
		p.XP(),
		p.Level(),
		p.CurrentStreak(),
		p.LongestStreak(),
		p.LastCompletionDate(),
		p.TotalCompleted(),
		p.Version(),
		p.CreatedAt(),
		p.UpdatedAt(),
	).Scan(&newVersion)

	if err != nil {
		if database.IsNoRows(err) {
			return ErrOptimisticLocking
		}
		return err
	}
	p.SetVersion(newVersion)

	return r.saveBadges(ctx, p)
}

func (r *PostgresProgressRepository) saveBadges(ctx context.Context, p *progress.UserProgress) error {
	exec := database.ExecutorFromContext(ctx, r.conn)
	for _, b := range p.Badges() {
		_, err := exec.Exec(ctx, `
			INSERT INTO badges (user_id, badge_id, name, description, awarded_at)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (user_id, badge_id) DO NOTHING
		`, p.UserID(), string(b.ID), b.Name, b.Description, b.AwardedAt)
		if err != nil {
			return err
		}
	}
	return nil
}

// FindByUserID retrieves a user's progress with badges.
func (r *PostgresProgressRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*progress.UserProgress, error) {
	query := `SELECT ` + postgresProgressColumns + ` FROM user_progress WHERE user_id = $1`

	var row progressRow
	exec := database.ExecutorFromContext(ctx, r.conn)
	err := exec.QueryRow(ctx, query, userID).Scan(
		&row.UserID, &row.DisplayName, &row.Points, &row.XP, &row.Level,
		&row.CurrentStreak, &row.LongestStreak, &row.LastCompletionDate,
		&row.TotalCompleted, &row.Version, &row.CreatedAt, &row.UpdatedAt,
	)
	if err != nil {
		if database.IsNoRows(err) {
			return nil, progress.ErrProgressNotFound
		}
		return nil, err
	}

	return r.rowToProgress(ctx, row)
}

// ListByPoints retrieves progress records ordered by points descending;
// ties keep first-seen order.
func (r *PostgresProgressRepository) ListByPoints(ctx context.Context, limit int) ([]*progress.UserProgress, error) {
	query := `SELECT ` + postgresProgressColumns + ` FROM user_progress
		ORDER BY points DESC, created_at, user_id
		LIMIT $1`

	exec := database.ExecutorFromContext(ctx, r.conn)
	rows, err := exec.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}

	// Drain the result set before loading badges so the connection is
	// free for the follow-up queries.
	var rowData []progressRow
	for rows.Next() {
		var row progressRow
		err := rows.Scan(
			&row.UserID, &row.DisplayName, &row.Points, &row.XP, &row.Level,
			&row.CurrentStreak, &row.LongestStreak, &row.LastCompletionDate,
			&row.TotalCompleted, &row.Version, &row.CreatedAt, &row.UpdatedAt,
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

func (r *PostgresProgressRepository) rowToProgress(ctx context.Context, row progressRow) (*progress.UserProgress, error) {
	badges, err := r.loadBadges(ctx, row.UserID)
	if err != nil {
		return nil, err
	}

	return progress.RehydrateUserProgress(
		row.UserID, row.DisplayName, row.Points, row.XP, row.Level,
		row.CurrentStreak, row.LongestStreak, row.LastCompletionDate,
		row.TotalCompleted, badges, row.CreatedAt, row.UpdatedAt, row.Version,
	), nil
}

func (r *PostgresProgressRepository) loadBadges(ctx context.Context, userID uuid.UUID) ([]progress.Badge, error) {
	exec := database.ExecutorFromContext(ctx, r.conn)
	rows, err := exec.Query(ctx, `
		SELECT badge_id, name, description, awarded_at
		FROM badges
		WHERE user_id = $1
		ORDER BY awarded_at, badge_id
	`, userID)
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
			awardedAt   time.Time
		)
		if err := rows.Scan(&badgeID, &name, &description, &awardedAt); err != nil {
			return nil, err
		}
		badges = append(badges, progress.Badge{
			ID:          progress.BadgeID(badgeID),
			Name:        name,
			Description: description,
			AwardedAt:   awardedAt,
		})
	}

	return badges, rows.Err()
}
