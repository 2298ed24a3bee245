package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"taskdeck.app/assistant/internal/model"
)

type activityStore struct {
	pool *pgxpool.Pool
}

func (s *activityStore) ListRecent(ctx context.Context, workspaceID int64, limit int) ([]model.ActivityLog, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, workspace_id, user_id, action, entity_type, entity_title, created_at
		 FROM activity_logs WHERE workspace_id = $1
		 ORDER BY created_at DESC LIMIT $2`,
		workspaceID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []model.ActivityLog
	for rows.Next() {
		var a model.ActivityLog
		if err := rows.Scan(&a.ID, &a.WorkspaceID, &a.UserID, &a.Action, &a.EntityType, &a.EntityTitle, &a.CreatedAt); err != nil {
			return nil, err
		}
		logs = append(logs, a)
	}
	return logs, rows.Err()
}
