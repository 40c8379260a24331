package repository

import (
	"context"
	"fmt"

	"github.com/adolfofidel/afdevs-admin/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const taskColumns = `id, site_id, title, description, status, urgency, task_type,
	assignee_id, scheduled_start, created_at, updated_at`

// TaskRepository handles database operations for maintenance tasks.
type TaskRepository struct {
	db *pgxpool.Pool
}

// NewTaskRepository creates a new TaskRepository.
func NewTaskRepository(db *pgxpool.Pool) *TaskRepository {
	return &TaskRepository{db: db}
}

func scanTask(row pgx.Row) (*domain.Task, error) {
	var t domain.Task
	err := row.Scan(
		&t.ID, &t.SiteID, &t.Title, &t.Description, &t.Status, &t.Urgency, &t.TaskType,
		&t.AssigneeID, &t.ScheduledStart, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan task: %w", err)
	}
	return &t, nil
}

// Create inserts a new task.
func (r *TaskRepository) Create(ctx context.Context, t *domain.Task) error {
	query := `
		INSERT INTO tasks (id, site_id, title, description, status, urgency, task_type,
			assignee_id, scheduled_start, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.db.Exec(ctx, query,
		t.ID, t.SiteID, t.Title, t.Description, t.Status, t.Urgency, t.TaskType,
		t.AssigneeID, t.ScheduledStart, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	return nil
}

// FindByID returns a task by ID, or nil if absent.
func (r *TaskRepository) FindByID(ctx context.Context, id string) (*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`
	return scanTask(r.db.QueryRow(ctx, query, id))
}

// ListAll returns all tasks, most recent first.
func (r *TaskRepository) ListAll(ctx context.Context) ([]*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*domain.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

// Update applies the non-nil fields of the request to a task row.
func (r *TaskRepository) Update(ctx context.Context, id string, req *domain.UpdateTaskRequest) error {
	query := `
		UPDATE tasks SET
			site_id         = COALESCE($2, site_id),
			title           = COALESCE($3, title),
			description     = COALESCE($4, description),
			status          = COALESCE($5, status),
			urgency         = COALESCE($6, urgency),
			task_type       = COALESCE($7, task_type),
			assignee_id     = COALESCE($8, assignee_id),
			scheduled_start = COALESCE($9, scheduled_start),
			updated_at      = NOW()
		WHERE id = $1
	`
	_, err := r.db.Exec(ctx, query, id,
		req.SiteID, req.Title, req.Description, req.Status, req.Urgency, req.TaskType,
		req.AssigneeID, req.ScheduledStart,
	)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	return nil
}

// Delete removes a task by ID.
func (r *TaskRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}
