package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskforge/backend/domain"
	"github.com/taskforge/backend/repository"
)

type taskRepository struct {
	pool *pgxpool.Pool
}

// NewTaskRepository returns a Postgres-backed implementation of TaskRepository.
// Ownership is enforced inside every statement, so a foreign task is
// indistinguishable from a missing one.
func NewTaskRepository(pool *pgxpool.Pool) repository.TaskRepository {
	return &taskRepository{pool: pool}
}

const taskColumns = `id, owner_id, title, description, priority, due_date, completed, created_at, updated_at`

func (r *taskRepository) GetOwned(ctx context.Context, id, ownerID string) (*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1 AND owner_id = $2`
	return scanTask(r.pool.QueryRow(ctx, query, id, ownerID))
}

func (r *taskRepository) List(ctx context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	query := `
	SELECT ` + taskColumns + `
	FROM tasks
	WHERE owner_id = $1
	  AND ($2 = '' OR title ILIKE '%' || $2 || '%' OR description ILIKE '%' || $2 || '%')
	  AND ($3 = '' OR priority = $3)
	  AND ($4::boolean IS NULL OR completed = $4)
	ORDER BY created_at DESC
	LIMIT $5 OFFSET $6
	`
	rows, err := r.pool.Query(ctx, query,
		filter.OwnerID,
		filter.Search,
		string(filter.Priority),
		filter.Completed,
		clampLimit(filter.Limit),
		filter.Offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	return tasks, rows.Err()
}

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	if task == nil {
		return nil, domain.ErrInvalidPayload
	}
	if task.ID == "" {
		task.ID = uuid.NewString()
	}

	const query = `
	INSERT INTO tasks (id, owner_id, title, description, priority, due_date, completed)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	RETURNING created_at, updated_at
	`

	if err := r.pool.QueryRow(ctx, query,
		task.ID,
		task.OwnerID,
		task.Title,
		task.Description,
		string(task.Priority),
		nullTime(task.DueDate),
		task.Completed,
	).Scan(&task.CreatedAt, &task.UpdatedAt); err != nil {
		return nil, err
	}

	return task, nil
}

func (r *taskRepository) UpdateOwned(ctx context.Context, id, ownerID string, update repository.TaskUpdate) (*domain.Task, error) {
	query := `
	UPDATE tasks
	SET title = COALESCE($3, title),
		description = COALESCE($4, description),
		priority = COALESCE($5, priority),
		due_date = COALESCE($6, due_date),
		updated_at = NOW()
	WHERE id = $1 AND owner_id = $2
	RETURNING ` + taskColumns

	var priority *string
	if update.Priority != nil {
		p := string(*update.Priority)
		priority = &p
	}

	return scanTask(r.pool.QueryRow(ctx, query,
		id,
		ownerID,
		update.Title,
		update.Description,
		priority,
		update.DueDate,
	))
}

func (r *taskRepository) DeleteOwned(ctx context.Context, id, ownerID string) error {
	const query = `DELETE FROM tasks WHERE id = $1 AND owner_id = $2`
	tag, err := r.pool.Exec(ctx, query, id, ownerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func (r *taskRepository) ToggleOwned(ctx context.Context, id, ownerID string) (*domain.Task, error) {
	query := `
	UPDATE tasks
	SET completed = NOT completed,
		updated_at = NOW()
	WHERE id = $1 AND owner_id = $2
	RETURNING ` + taskColumns

	return scanTask(r.pool.QueryRow(ctx, query, id, ownerID))
}

func (r *taskRepository) Stats(ctx context.Context, ownerID string) (*domain.TaskStats, error) {
	const query = `
	SELECT COUNT(*), COUNT(*) FILTER (WHERE completed)
	FROM tasks
	WHERE owner_id = $1
	`
	var stats domain.TaskStats
	if err := r.pool.QueryRow(ctx, query, ownerID).Scan(&stats.Total, &stats.Completed); err != nil {
		return nil, err
	}
	stats.Pending = stats.Total - stats.Completed
	if stats.Total > 0 {
		stats.CompletionRate = float64(stats.Completed) / float64(stats.Total)
	}
	return &stats, nil
}

func scanTask(row pgx.Row) (*domain.Task, error) {
	var task domain.Task
	var (
		priority string
		due      *time.Time
	)

	if err := row.Scan(
		&task.ID,
		&task.OwnerID,
		&task.Title,
		&task.Description,
		&priority,
		&due,
		&task.Completed,
		&task.CreatedAt,
		&task.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, err
	}

	task.Priority = domain.Priority(priority)
	task.DueDate = due
	return &task, nil
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > 100 {
		return 100
	}
	return limit
}
