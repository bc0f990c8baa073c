package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"videoserver/internal/domain"
	"videoserver/internal/infra"
	"videoserver/internal/sqlinline"
)

// TaskRepositoryPG implements domain.TaskRepository over PostgreSQL.
type TaskRepositoryPG struct {
	sql infra.SQLExecutor
}

// NewTaskRepository creates a task repository.
func NewTaskRepository(sql infra.SQLExecutor) *TaskRepositoryPG {
	return &TaskRepositoryPG{sql: sql}
}

// Enqueue spends the task's credit cost and inserts it as PENDING in one
// statement. Returns the owner's remaining balance.
func (r *TaskRepositoryPG) Enqueue(ctx context.Context, task *domain.VideoTask, ownerID string) (int, error) {
	row := r.sql.QueryRow(ctx, sqlinline.QEnqueueVideoTask,
		ownerID,
		task.ID,
		task.ProjectID,
		task.TaskID,
		nullableBytes(task.VideoSettings),
		task.CreditsCost,
		task.IsEdited,
		task.OriginalTaskID,
	)
	var remaining int
	if err := row.Scan(&remaining); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrCreditsExhausted
		}
		return 0, err
	}
	return remaining, nil
}

// GetByID fetches a task by its identifier.
func (r *TaskRepositoryPG) GetByID(ctx context.Context, id string) (*domain.VideoTask, error) {
	return scanTask(r.sql.QueryRow(ctx, sqlinline.QSelectTask, id))
}

// ListByProject returns a project's tasks in creation order.
func (r *TaskRepositoryPG) ListByProject(ctx context.Context, projectID string) ([]domain.VideoTask, error) {
	rows, err := r.sql.Query(ctx, sqlinline.QListTasksByProject, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []domain.VideoTask
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	return tasks, rows.Err()
}

// ClaimPending flips the oldest PENDING task to PROCESSING and returns it.
func (r *TaskRepositoryPG) ClaimPending(ctx context.Context) (*domain.VideoTask, error) {
	return scanTask(r.sql.QueryRow(ctx, sqlinline.QClaimPendingTask))
}

// SetExternalTask stores the engine's job identifier on the task.
func (r *TaskRepositoryPG) SetExternalTask(ctx context.Context, id, taskID string) error {
	_, err := r.sql.Exec(ctx, sqlinline.QSetExternalTask, id, taskID)
	return err
}

// UpdateProgress persists an engine progress report. Progress never moves
// backwards; the query takes the greater of stored and reported values.
func (r *TaskRepositoryPG) UpdateProgress(ctx context.Context, id string, progress int) error {
	if progress < 0 {
		progress = 0
	}
	if progress > domain.MaxProgress {
		progress = domain.MaxProgress
	}
	_, err := r.sql.Exec(ctx, sqlinline.QUpdateTaskProgress, id, progress)
	return err
}

// MarkCompleted finishes a PROCESSING task with its result urls.
func (r *TaskRepositoryPG) MarkCompleted(ctx context.Context, id, videoURL, thumbnailURL string) error {
	tag, err := r.sql.Exec(ctx, sqlinline.QCompleteTask, id, videoURL, thumbnailURL)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrInvalidTransition
	}
	return nil
}

// MarkFailed finishes a PROCESSING task with a failure reason.
func (r *TaskRepositoryPG) MarkFailed(ctx context.Context, id, reason string) error {
	tag, err := r.sql.Exec(ctx, sqlinline.QFailTask, id, reason)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrInvalidTransition
	}
	return nil
}

// TerminalCounts reports (total, completed, failed) for a project.
func (r *TaskRepositoryPG) TerminalCounts(ctx context.Context, projectID string) (int, int, int, error) {
	row := r.sql.QueryRow(ctx, sqlinline.QTaskTerminalCounts, projectID)
	var total, completed, failed int
	if err := row.Scan(&total, &completed, &failed); err != nil {
		return 0, 0, 0, err
	}
	return total, completed, failed, nil
}

func scanTask(row rowScanner) (*domain.VideoTask, error) {
	var t domain.VideoTask
	var status string
	if err := row.Scan(
		&t.ID,
		&t.ProjectID,
		&t.TaskID,
		&status,
		&t.Progress,
		&t.VideoURL,
		&t.ThumbnailURL,
		&t.VideoSettings,
		&t.CreditsCost,
		&t.ErrorMessage,
		&t.IsEdited,
		&t.OriginalTaskID,
		&t.CreatedAt,
		&t.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	parsed, err := domain.ParseTaskStatus(status)
	if err != nil {
		return nil, err
	}
	t.Status = parsed
	return &t, nil
}

func nullableBytes(b []byte) []byte {
	if len(b) == 0 {
		return []byte(`{}`)
	}
	return b
}

var _ domain.TaskRepository = (*TaskRepositoryPG)(nil)
