package repository

import (
	"taskdeck.app/assistant/common/id"
	"taskdeck.app/assistant/core/db"
)

// Stores provides access to all store implementations.
//
// Usage:
//
//	stores := repository.NewStores(database, ids)
//	task, err := stores.Tasks.GetByID(ctx, 123)
type Stores struct {
	Projects     ProjectStore
	Statuses     StatusStore
	Tasks        TaskStore
	Members      MemberStore
	Invitations  InvitationStore
	TimeSessions TimeSessionStore
	Comments     CommentStore
	Activity     ActivityStore
}

// NewStores creates store implementations backed by the given database.
// The ID generator assigns snowflake IDs to newly created rows.
func NewStores(database *db.DB, ids *id.Generator) *Stores {
	pool := database.Pool()
	return &Stores{
		Projects:     &projectStore{pool: pool, db: database, ids: ids},
		Statuses:     &statusStore{pool: pool, ids: ids},
		Tasks:        &taskStore{pool: pool, ids: ids},
		Members:      &memberStore{pool: pool},
		Invitations:  &invitationStore{pool: pool, ids: ids},
		TimeSessions: &timeSessionStore{pool: pool},
		Comments:     &commentStore{pool: pool},
		Activity:     &activityStore{pool: pool},
	}
}
