package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/taskforge/taskforge/internal/shared/infrastructure/database"
	"github.com/taskforge/taskforge/internal/tasks/domain/task"
)

// SQLiteTaskRepository implements task.Repository using SQLite.
// Timestamps are stored as RFC 3339 strings and booleans as integers.
type SQLiteTaskRepository struct {
	conn database.Connection
}

// NewSQLiteTaskRepository creates a new SQLite task repository.
func NewSQLiteTaskRepository(conn database.Connection) *SQLiteTaskRepository {
	return &SQLiteTaskRepository{conn: conn}
}

const sqliteTaskColumns = `id, user_id, title, description, category, deadline,
	       completed, completed_at, points_awarded, overdue, version, created_at, updated_at`

// Save persists a task, bumping the version on update.
func (r *SQLiteTaskRepository) Save(ctx context.Context, t *task.Task) error {
	query := `
		INSERT INTO tasks (
			id, user_id, title, description, category, deadline,
			completed, completed_at, points_awarded, overdue, version, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			completed = excluded.completed,
			completed_at = excluded.completed_at,
			points_awarded = excluded.points_awarded,
			overdue = excluded.overdue,
			version = tasks.version + 1,
			updated_at = excluded.updated_at
		WHERE tasks.version = ?
	`

	exec := database.ExecutorFromContext(ctx, r.conn)
	result, err := exec.Exec(ctx, query,
		t.ID().String(),
		t.UserID().String(),
		t.Title(),
		t.Description(),
		t.Category().String(),
		formatTime(t.Deadline()),
		boolToInt(t.IsCompleted()),
		formatTimePtr(t.CompletedAt()),
		t.PointsAwarded(),
		boolToInt(t.IsOverdue()),
		t.Version(),
		formatTime(t.CreatedAt()),
		formatTime(t.UpdatedAt()),
		t.Version(),
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

	return nil
}

// FindByID retrieves a task by its ID.
func (r *SQLiteTaskRepository) FindByID(ctx context.Context, id uuid.UUID) (*task.Task, error) {
	query := `SELECT ` + sqliteTaskColumns + ` FROM tasks WHERE id = ?`

	exec := database.ExecutorFromContext(ctx, r.conn)
	rows, err := exec.Query(ctx, query, id.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks, err := r.scanTasks(rows)
	if err != nil {
		return nil, err
	}
	if len(tasks) == 0 {
		return nil, task.ErrTaskNotFound
	}
	return tasks[0], nil
}

// FindByUserID retrieves all tasks for a user, oldest first.
func (r *SQLiteTaskRepository) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*task.Task, error) {
	query := `SELECT ` + sqliteTaskColumns + ` FROM tasks WHERE user_id = ? ORDER BY created_at`

	exec := database.ExecutorFromContext(ctx, r.conn)
	rows, err := exec.Query(ctx, query, userID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.scanTasks(rows)
}

// FindByUserAndCategory retrieves a user's tasks of one category.
func (r *SQLiteTaskRepository) FindByUserAndCategory(ctx context.Context, userID uuid.UUID, category task.Category) ([]*task.Task, error) {
	query := `SELECT ` + sqliteTaskColumns + ` FROM tasks
		WHERE user_id = ? AND category = ?
		ORDER BY created_at`

	exec := database.ExecutorFromContext(ctx, r.conn)
	rows, err := exec.Query(ctx, query, userID.String(), category.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.scanTasks(rows)
}

// FindCreatedBetween retrieves a user's tasks of one category created in
// [from, to).
func (r *SQLiteTaskRepository) FindCreatedBetween(ctx context.Context, userID uuid.UUID, category task.Category, from, to time.Time) ([]*task.Task, error) {
	query := `SELECT ` + sqliteTaskColumns + ` FROM tasks
		WHERE user_id = ? AND category = ? AND created_at >= ? AND created_at < ?
		ORDER BY created_at`

	exec := database.ExecutorFromContext(ctx, r.conn)
	rows, err := exec.Query(ctx, query, userID.String(), category.String(), formatTime(from), formatTime(to))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.scanTasks(rows)
}

// FindOverdueCandidates retrieves incomplete, unflagged tasks whose
// deadline passed before the given instant.
func (r *SQLiteTaskRepository) FindOverdueCandidates(ctx context.Context, before time.Time, limit int) ([]*task.Task, error) {
	query := `SELECT ` + sqliteTaskColumns + ` FROM tasks
		WHERE completed = 0 AND overdue = 0 AND deadline < ?
		ORDER BY deadline
		LIMIT ?`

	exec := database.ExecutorFromContext(ctx, r.conn)
	rows, err := exec.Query(ctx, query, formatTime(before), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.scanTasks(rows)
}

// Delete removes a task from the database.
func (r *SQLiteTaskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	exec := database.ExecutorFromContext(ctx, r.conn)
	result, err := exec.Exec(ctx, `DELETE FROM tasks WHERE id = ?`, id.String())
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return task.ErrTaskNotFound
	}
	return nil
}

func (r *SQLiteTaskRepository) scanTasks(rows database.Rows) ([]*task.Task, error) {
	var tasks []*task.Task

	for rows.Next() {
		var (
			id            string
			userID        string
			title         string
			description   string
			category      string
			deadline      string
			completed     int
			completedAt   sql.NullString
			pointsAwarded int
			overdue       int
			version       int
			createdAt     string
			updatedAt     string
		)

		err := rows.Scan(
			&id, &userID, &title, &description, &category, &deadline,
			&completed, &completedAt, &pointsAwarded, &overdue, &version,
			&createdAt, &updatedAt,
		)
		if err != nil {
			return nil, err
		}

		taskID, err := uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("invalid task id in database: %w", err)
		}
		ownerID, err := uuid.Parse(userID)
		if err != nil {
			return nil, fmt.Errorf("invalid user id in database: %w", err)
		}
		deadlineAt, err := parseTime(deadline)
		if err != nil {
			return nil, err
		}
		completedAtPtr, err := parseTimePtr(completedAt)
		if err != nil {
			return nil, err
		}
		created, err := parseTime(createdAt)
		if err != nil {
			return nil, err
		}
		updated, err := parseTime(updatedAt)
		if err != nil {
			return nil, err
		}

		tasks = append(tasks, task.RehydrateTask(
			taskID,
			ownerID,
			title,
			description,
			task.Category(category),
			deadlineAt,
			completed != 0,
			completedAtPtr,
			pointsAwarded,
			overdue != 0,
			created,
			updated,
			version,
		))
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return tasks, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
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
