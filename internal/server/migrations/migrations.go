// Package migrations embeds the goose schema migrations, one directory per
// SQL dialect.
package migrations

import "embed"

//go:embed sqlite/*.sql postgres/*.sql
var Migrations embed.FS

// Directories inside Migrations.
const (
	DirSQLite   = "sqlite"
	DirPostgres = "postgres"
)
