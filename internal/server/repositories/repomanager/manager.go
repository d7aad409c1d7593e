package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/resourcekeeper/internal/dbx"
	"github.com/dmitrijs2005/resourcekeeper/internal/server/repositories/allocations"
	"github.com/dmitrijs2005/resourcekeeper/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/resourcekeeper/internal/server/repositories/resources"
	"github.com/dmitrijs2005/resourcekeeper/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a DBTX handle, so the same
// repository code runs against *sql.DB for plain reads and against *sql.Tx
// inside a transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Resources(db dbx.DBTX) resources.Repository
	Allocations(db dbx.DBTX) allocations.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
}
