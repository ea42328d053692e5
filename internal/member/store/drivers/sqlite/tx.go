package sqlite

import (
	"database/sql"

	"github.com/crewdesk/memberd/internal/member/store"
)

// storeTx scopes the repositories to a single transaction.
type storeTx struct {
	tx *sql.Tx
}

func (t *storeTx) Invitations() store.Invitations { return &invitationsRepo{db: t.tx} }
func (t *storeTx) Users() store.Users             { return &usersRepo{db: t.tx} }
func (t *storeTx) Teams() store.Teams             { return &teamsRepo{db: t.tx} }
func (t *storeTx) TeamMembers() store.TeamMembers { return &teamMembersRepo{db: t.tx} }

func (t *storeTx) Commit() error   { return t.tx.Commit() }
func (t *storeTx) Rollback() error { return t.tx.Rollback() }
