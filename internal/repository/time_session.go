package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"taskdeck.app/assistant/internal/model"
)

type timeSessionStore struct {
	pool *pgxpool.Pool
}

func (s *timeSessionStore) ListCompletedSince(ctx context.Context, projectIDs []int64, since time.Time) ([]model.TimeSession, error) {
	if len(projectIDs) == 0 {
		return nil, nil
	}
	rows, err := s.pool.Query(ctx,
		`SELECT ts.id, ts.task_id, t.project_id, ts.user_id, ts.started_at, ts.ended_at, ts.duration_secs
		 FROM time_sessions ts
		 JOIN tasks t ON t.id = ts.task_id
		 WHERE t.project_id = ANY($1) AND ts.ended_at IS NOT NULL AND ts.started_at >= $2
		 ORDER BY ts.started_at`,
		projectIDs, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []model.TimeSession
	for rows.Next() {
		var ts model.TimeSession
		if err := rows.Scan(&ts.ID, &ts.TaskID, &ts.ProjectID, &ts.UserID, &ts.StartedAt, &ts.EndedAt, &ts.DurationSecs); err != nil {
			return nil, err
		}
		sessions = append(sessions, ts)
	}
	return sessions, rows.Err()
}
