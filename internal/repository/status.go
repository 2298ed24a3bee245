package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"taskdeck.app/assistant/common/id"
	"taskdeck.app/assistant/internal/model"
)

type statusStore struct {
	pool *pgxpool.Pool
	ids  *id.Generator
}

func (s *statusStore) ListByProject(ctx context.Context, projectID int64) ([]model.ProjectStatus, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, project_id, name, position, created_at
		 FROM project_statuses WHERE project_id = $1 ORDER BY position`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var statuses []model.ProjectStatus
	for rows.Next() {
		var st model.ProjectStatus
		if err := rows.Scan(&st.ID, &st.ProjectID, &st.Name, &st.Position, &st.CreatedAt); err != nil {
			return nil, err
		}
		statuses = append(statuses, st)
	}
	return statuses, rows.Err()
}

func (s *statusStore) Create(ctx context.Context, status *model.ProjectStatus) error {
	if status.ID == 0 {
		status.ID = s.ids.New()
	}
	status.CreatedAt = time.Now()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO project_statuses (id, project_id, name, position, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		status.ID, status.ProjectID, status.Name, status.Position, status.CreatedAt)
	return err
}

func (s *statusStore) Rename(ctx context.Context, projectID int64, from, to string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE project_statuses SET name = $3
		 WHERE project_id = $1 AND lower(name) = lower($2)`,
		projectID, from, to)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
