// Package repomanager wires the concrete repositories to a database handle
// and owns schema migrations.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/chatrelay/internal/server/repositories/messages"
	"github.com/dmitrijs2005/chatrelay/internal/server/repositories/users"
)

type RepositoryManager interface {
	Conn() *sql.DB
	RunMigrations(ctx context.Context) error
	Users() users.Repository
	Messages() messages.Repository
}
