package dbx

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteDSN(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain path", in: "steward.db", want: "steward.db?" + sqlitePragmas},
		{name: "existing query", in: "file:steward.db?mode=rwc", want: "file:steward.db?mode=rwc&" + sqlitePragmas},
		{name: "caller pragmas kept", in: "x.db?_pragma=journal_mode(WAL)", want: "x.db?_pragma=journal_mode(WAL)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SQLiteDSN(tt.in))
		})
	}
}

func TestOpen_SQLiteEnablesForeignKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "open.db")

	db, err := Open(context.Background(), DriverSQLite, path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	var fk int
	require.NoError(t, db.QueryRow(`PRAGMA foreign_keys`).Scan(&fk))
	assert.Equal(t, 1, fk)
	assert.Equal(t, 1, db.Stats().MaxOpenConnections)
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open(context.Background(), "mysql", "dsn")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database driver")
}
