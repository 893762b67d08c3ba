package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/taskforge/taskforge/internal/shared/infrastructure/database"
	"github.com/taskforge/taskforge/internal/tasks/domain/task"
)

var ErrOptimisticLocking = errors.New("optimistic locking conflict")

// PostgresTaskRepository implements task.Repository using PostgreSQL.
type PostgresTaskRepository struct {
	conn database.Connection
}

// NewPostgresTaskRepository creates a new PostgreSQL task repository.
func NewPostgresTaskRepository(conn database.Connection) *PostgresTaskRepository {
	return &PostgresTaskRepository{conn: conn}
}

// taskRow represents a database row for tasks.
type taskRow struct {
	ID            uuid.UUID
	UserID        uuid.UUID
	Title         string
	Description   string
	Category      string
	Deadline      time.Time
	Completed     bool
	CompletedAt   *time.Time
	PointsAwarded int
	Overdue       bool
	Version       int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

const postgresTaskColumns = `id, user_id, title, description, category, deadline,
	       completed, completed_at, points_awarded, overdue, version, created_at, updated_at`

// Save persists a task, bumping the version on update.
func (r *PostgresTaskRepository) Save(ctx context.Context, t *task.Task) error {
	query := `
		INSERT INTO tasks (
			id, user_id, title, description, category, deadline,
			completed, completed_at, points_awarded, overdue, version, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			completed = EXCLUDED.completed,
			completed_at = EXCLUDED.completed_at,
			points_awarded = EXCLUDED.points_awarded,
			overdue = EXCLUDED.overdue,
			version = tasks.version + 1,
			updated_at = NOW()
		WHERE tasks.version = $11
		RETURNING version
	`

	var newVersion int
	exec := database.ExecutorFromContext(ctx, r.conn)
	err := exec.QueryRow(ctx, query,
		t.ID(),
		t.UserID(),
		t.Title(),
		t.Description(),
		t.Category().String(),
		t.Deadline(),
		t.IsCompleted(),
		t.CompletedAt(),
		t.PointsAwarded(),
		t.IsOverdue(),
		t.Version(),
		t.CreatedAt(),
		t.UpdatedAt(),
	).Scan(&newVersion)

	if err != nil {
		if database.IsNoRows(err) {
			return ErrOptimisticLocking
		}
		return err
	}

	t.SetVersion(newVersion)
	return nil
}

// FindByID retrieves a task by its ID.
func (r *PostgresTaskRepository) FindByID(ctx context.Context, id uuid.UUID) (*task.Task, error) {
	query := `SELECT ` + postgresTaskColumns + ` FROM tasks WHERE id = $1`

	var row taskRow
	exec := database.ExecutorFromContext(ctx, r.conn)
	err := exec.QueryRow(ctx, query, id).Scan(
		&row.ID,
		&row.UserID,
		&row.Title,
		&row.Description,
		&row.Category,
		&row.Deadline,
		&row.Completed,
		&row.CompletedAt,
		&row.PointsAwarded,
		&row.Overdue,
		&row.Version,
		&row.CreatedAt,
		&row.UpdatedAt,
	)

	if err != nil {
		if database.IsNoRows(err) {
			return nil, task.ErrTaskNotFound
		}
		return nil, err
	}

	return rowToTask(row), nil
}

// FindByUserID retrieves all tasks for a user, oldest first.
func (r *PostgresTaskRepository) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*task.Task, error) {
	query := `SELECT ` + postgresTaskColumns + ` FROM tasks WHERE user_id = $1 ORDER BY created_at`

	exec := database.ExecutorFromContext(ctx, r.conn)
	rows, err := exec.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTasks(rows)
}

// FindByUserAndCategory retrieves a user's tasks of one category.
func (r *PostgresTaskRepository) FindByUserAndCategory(ctx context.Context, userID uuid.UUID, category task.Category) ([]*task.Task, error) {
	query := `SELECT ` + postgresTaskColumns + ` FROM tasks
		WHERE user_id = $1 AND category = $2
		ORDER BY created_at`

	exec := database.ExecutorFromContext(ctx, r.conn)
	rows, err := exec.Query(ctx, query, userID, category.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTasks(rows)
}

// FindCreatedBetween retrieves a user's tasks of one category created in
// [from, to).
func (r *PostgresTaskRepository) FindCreatedBetween(ctx context.Context, userID uuid.UUID, category task.Category, from, to time.Time) ([]*task.Task, error) {
	query := `SELECT ` + postgresTaskColumns + ` FROM tasks
		WHERE user_id = $1 AND category = $2 AND created_at >= $3 AND created_at < $4
		ORDER BY created_at`

	exec := database.ExecutorFromContext(ctx, r.conn)
	rows, err := exec.Query(ctx, query, userID, category.String(), from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTasks(rows)
}

// FindOverdueCandidates retrieves incomplete, unflagged tasks whose
// deadline passed before the given instant.
func (r *PostgresTaskRepository) FindOverdueCandidates(ctx context.Context, before time.Time, limit int) ([]*task.Task, error) {
	query := `SELECT ` + postgresTaskColumns + ` FROM tasks
		WHERE completed = FALSE AND overdue = FALSE AND deadline < $1
		ORDER BY deadline
		LIMIT $2`

	exec := database.ExecutorFromContext(ctx, r.conn)
	rows, err := exec.Query(ctx, query, before, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTasks(rows)
}

// Delete removes a task from the database.
func (r *PostgresTaskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	exec := database.ExecutorFromContext(ctx, r.conn)
	result, err := exec.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
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

func scanTasks(rows database.Rows) ([]*task.Task, error) {
	var tasks []*task.Task

	for rows.Next() {
		var row taskRow
		err := rows.Scan(
			&row.ID,
			&row.UserID,
			&row.Title,
			&row.Description,
			&row.Category,
			&row.Deadline,
			&row.Completed,
			&row.CompletedAt,
			&row.PointsAwarded,
			&row.Overdue,
			&row.Version,
			&row.CreatedAt,
			&row.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, rowToTask(row))
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return tasks, nil
}

func rowToTask(row taskRow) *task.Task {
	return task.RehydrateTask(
		row.ID,
		row.UserID,
		row.Title,
		row.Description,
		task.Category(row.Category),
		row.Deadline,
		row.Completed,
		row.CompletedAt,
		row.PointsAwarded,
		row.Overdue,
		row.CreatedAt,
		row.UpdatedAt,
		row.Version,
	)
}
