package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"taskdeck.app/assistant/common/id"
	"taskdeck.app/assistant/core/db"
	"taskdeck.app/assistant/internal/model"
)

type projectStore struct {
	pool *pgxpool.Pool
	db   *db.DB
	ids  *id.Generator
}

const projectColumns = `id, workspace_id, name, description, color, archived, created_at, updated_at`

func (s *projectStore) GetByID(ctx context.Context, projectID int64) (*model.Project, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE id = $1`, projectID)

	p, err := scanProject(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (s *projectStore) ListActive(ctx context.Context, workspaceID int64) ([]model.Project, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+projectColumns+` FROM projects
		 WHERE workspace_id = $1 AND archived = false
		 ORDER BY created_at`, workspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []model.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, *p)
	}
	return projects, rows.Err()
}

func (s *projectStore) Create(ctx context.Context, project *model.Project) error {
	if project.ID == 0 {
		project.ID = s.ids.New()
	}
	now := time.Now()
	project.CreatedAt = now
	project.UpdatedAt = now

	_, err := s.pool.Exec(ctx,
		`INSERT INTO projects (id, workspace_id, name, description, color, archived, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		project.ID, project.WorkspaceID, project.Name, project.Description,
		project.Color, project.Archived, project.CreatedAt, project.UpdatedAt)
	return err
}

func (s *projectStore) CreateWithStatuses(ctx context.Context, project *model.Project, statusNames []string) error {
	if project.ID == 0 {
		project.ID = s.ids.New()
	}
	now := time.Now()
	project.CreatedAt = now
	project.UpdatedAt = now

	return s.db.WithTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			`INSERT INTO projects (id, workspace_id, name, description, color, archived, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			project.ID, project.WorkspaceID, project.Name, project.Description,
			project.Color, project.Archived, project.CreatedAt, project.UpdatedAt)
		if err != nil {
			return err
		}

		for i, name := range statusNames {
			_, err := tx.Exec(ctx,
				`INSERT INTO project_statuses (id, project_id, name, position, created_at)
				 VALUES ($1, $2, $3, $4, $5)`,
				s.ids.New(), project.ID, name, i, now)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *projectStore) Update(ctx context.Context, project *model.Project) error {
	project.UpdatedAt = time.Now()

	tag, err := s.pool.Exec(ctx,
		`UPDATE projects SET name = $2, description = $3, color = $4, archived = $5, updated_at = $6
		 WHERE id = $1`,
		project.ID, project.Name, project.Description, project.Color,
		project.Archived, project.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanProject(row pgx.Row) (*model.Project, error) {
	var p model.Project
	err := row.Scan(&p.ID, &p.WorkspaceID, &p.Name, &p.Description, &p.Color,
		&p.Archived, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
