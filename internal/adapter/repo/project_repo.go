package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"videoserver/internal/domain"
	"videoserver/internal/infra"
	"videoserver/internal/sqlinline"
)

// ProjectRepositoryPG implements domain.ProjectRepository over PostgreSQL.
type ProjectRepositoryPG struct {
	sql   infra.SQLExecutor
	tasks domain.TaskRepository
}

// NewProjectRepository creates a project repository. The task repository
// is used to hydrate a project's videoTasks on detail loads.
func NewProjectRepository(sql infra.SQLExecutor, tasks domain.TaskRepository) *ProjectRepositoryPG {
	return &ProjectRepositoryPG{sql: sql, tasks: tasks}
}

// Create inserts a new project record.
func (r *ProjectRepositoryPG) Create(ctx context.Context, project *domain.VideoProject) error {
	_, err := r.sql.Exec(ctx, sqlinline.QInsertProject,
		project.ID,
		project.OwnerID,
		project.Name,
		project.Description,
		project.Status,
	)
	return err
}

// GetByID fetches a project scoped to its owner, with tasks embedded.
func (r *ProjectRepositoryPG) GetByID(ctx context.Context, id, ownerID string) (*domain.VideoProject, error) {
	row := r.sql.QueryRow(ctx, sqlinline.QSelectProject, id, ownerID)
	project, err := scanProject(row)
	if err != nil {
		return nil, err
	}
	tasks, err := r.tasks.ListByProject(ctx, project.ID)
	if err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []domain.VideoTask{}
	}
	project.VideoTasks = tasks
	return project, nil
}

// ListByOwner returns the owner's projects, newest first, without tasks.
func (r *ProjectRepositoryPG) ListByOwner(ctx context.Context, ownerID string) ([]domain.VideoProject, error) {
	rows, err := r.sql.Query(ctx, sqlinline.QListProjectsByOwner, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []domain.VideoProject
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		project.VideoTasks = []domain.VideoTask{}
		projects = append(projects, *project)
	}
	return projects, rows.Err()
}

// UpdateMeta replaces the project's name and description. Callers merge
// unchanged fields in before calling; values are written as given.
func (r *ProjectRepositoryPG) UpdateMeta(ctx context.Context, id, ownerID, name, description string) error {
	tag, err := r.sql.Exec(ctx, sqlinline.QUpdateProjectMeta, id, ownerID, name, description)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdateBrief records the subject and script supplied with a generation request.
func (r *ProjectRepositoryPG) UpdateBrief(ctx context.Context, id, subject, script string) error {
	_, err := r.sql.Exec(ctx, sqlinline.QUpdateProjectBrief, id, subject, script)
	return err
}

// UpdateStatus moves the project to the given lifecycle state.
func (r *ProjectRepositoryPG) UpdateStatus(ctx context.Context, id string, status domain.ProjectStatus) error {
	tag, err := r.sql.Exec(ctx, sqlinline.QUpdateProjectStatus, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// CompleteIfActive advances an ACTIVE project to COMPLETED. Projects in
// any other state are left as they are.
func (r *ProjectRepositoryPG) CompleteIfActive(ctx context.Context, id string) error {
	_, err := r.sql.Exec(ctx, sqlinline.QCompleteProject, id)
	return err
}

// OwnerOf resolves the owning user of a project.
func (r *ProjectRepositoryPG) OwnerOf(ctx context.Context, id string) (string, error) {
	var owner string
	if err := r.sql.QueryRow(ctx, sqlinline.QSelectProjectOwner, id).Scan(&owner); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", domain.ErrNotFound
		}
		return "", err
	}
	return owner, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(row rowScanner) (*domain.VideoProject, error) {
	var p domain.VideoProject
	var status string
	if err := row.Scan(
		&p.ID,
		&p.OwnerID,
		&p.Name,
		&p.Description,
		&status,
		&p.VideoSubject,
		&p.VideoScript,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	parsed, err := domain.ParseProjectStatus(status)
	if err != nil {
		return nil, err
	}
	p.Status = parsed
	return &p, nil
}

var _ domain.ProjectRepository = (*ProjectRepositoryPG)(nil)
