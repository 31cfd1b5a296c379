// Package repomanager vends repositories bound to a DBTX and runs the
// schema migrations for the configured SQL dialect.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/otpsteward/internal/dbx"
	"github.com/dmitrijs2005/otpsteward/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/otpsteward/internal/server/repositories/clients"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Accounts(db dbx.DBTX) accounts.Repository
	Clients(db dbx.DBTX) clients.Repository
}
