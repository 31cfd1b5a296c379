package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/otpsteward/internal/dbx"
	"github.com/dmitrijs2005/otpsteward/internal/server/migrations"
	"github.com/dmitrijs2005/otpsteward/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/otpsteward/internal/server/repositories/clients"
	"github.com/pressly/goose/v3"
)

// SQLRepositoryManager serves SQLite and PostgreSQL. Only migrations differ
// between the two.
type SQLRepositoryManager struct {
	dialect string
	dir     string
}

// Accounts returns an accounts.Repository bound to the provided DBTX.
func (m *SQLRepositoryManager) Accounts(db dbx.DBTX) accounts.Repository {
	return accounts.NewSQLRepository(db)
}

// Clients returns a clients.Repository bound to the provided DBTX.
func (m *SQLRepositoryManager) Clients(db dbx.DBTX) clients.Repository {
	return clients.NewSQLRepository(db)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations applies the embedded migrations for the manager's dialect.
func (m *SQLRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect(m.dialect); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	if err := gooseUpContext(ctx, db, m.dir); err != nil {
		return err
	}
	return nil
}

// NewRepositoryManager returns a manager for a dbx driver name.
func NewRepositoryManager(driver string) (RepositoryManager, error) {
	switch driver {
	case dbx.DriverSQLite:
		return &SQLRepositoryManager{dialect: "sqlite3", dir: migrations.DirSQLite}, nil
	case dbx.DriverPostgres:
		return &SQLRepositoryManager{dialect: "pgx", dir: migrations.DirPostgres}, nil
	default:
		return nil, fmt.Errorf("no repositories for driver %q", driver)
	}
}
