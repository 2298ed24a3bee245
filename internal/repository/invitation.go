package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"taskdeck.app/assistant/common/id"
	"taskdeck.app/assistant/internal/model"
)

const invitationTTL = 7 * 24 * time.Hour

type invitationStore struct {
	pool *pgxpool.Pool
	ids  *id.Generator
}

func (s *invitationStore) Create(ctx context.Context, inv *model.Invitation) error {
	if inv.ID == 0 {
		inv.ID = s.ids.New()
	}
	inv.Status = model.InvitationStatusPending
	inv.CreatedAt = time.Now()
	if inv.ExpiresAt.IsZero() {
		inv.ExpiresAt = inv.CreatedAt.Add(invitationTTL)
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO invitations (id, workspace_id, email, role, status, invited_by, expires_at, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		inv.ID, inv.WorkspaceID, inv.Email, inv.Role, inv.Status, inv.InvitedBy,
		inv.ExpiresAt, inv.CreatedAt)
	return err
}

func (s *invitationStore) FindPending(ctx context.Context, workspaceID int64, email string) (*model.Invitation, error) {
	var inv model.Invitation
	err := s.pool.QueryRow(ctx,
		`SELECT id, workspace_id, email, role, status, invited_by, accepted_by, expires_at, created_at, accepted_at
		 FROM invitations
		 WHERE workspace_id = $1 AND lower(email) = lower($2) AND status = 'pending'`,
		workspaceID, email).
		Scan(&inv.ID, &inv.WorkspaceID, &inv.Email, &inv.Role, &inv.Status,
			&inv.InvitedBy, &inv.AcceptedBy, &inv.ExpiresAt, &inv.CreatedAt, &inv.AcceptedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &inv, nil
}
