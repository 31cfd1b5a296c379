// Package backup periodically snapshots the SQLite store and uploads the
// snapshot to object storage.
package backup

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/dmitrijs2005/otpsteward/internal/dbx"
	"github.com/dmitrijs2005/otpsteward/internal/logging"
)

// ErrBackupUnsupported is returned for drivers without an online snapshot;
// PostgreSQL deployments use pg_dump.
var ErrBackupUnsupported = errors.New("backup is not supported for this database driver")

type Uploader interface {
	Upload(ctx context.Context, key string, body io.Reader, size int64) error
}

type Backuper struct {
	db       *sql.DB
	driver   string
	uploader Uploader
	interval time.Duration
	logger   logging.Logger
	now      func() time.Time
}

func New(db *sql.DB, driver string, u Uploader, interval time.Duration, l logging.Logger) *Backuper {
	return &Backuper{
		db:       db,
		driver:   driver,
		uploader: u,
		interval: interval,
		logger:   l.With("module", "backup"),
		now:      time.Now,
	}
}

// Key is the object key of a snapshot taken at t.
func Key(t time.Time) string {
	t = t.UTC()
	return fmt.Sprintf("steward/%04d/%02d/%02d/%d.db", t.Year(), t.Month(), t.Day(), t.Unix())
}

// Snapshot copies the database with VACUUM INTO and uploads the copy.
// It returns the object key.
func (b *Backuper) Snapshot(ctx context.Context) (string, error) {
	if b.driver != dbx.DriverSQLite {
		return "", ErrBackupUnsupported
	}

	dir, err := os.MkdirTemp("", "steward-backup-*")
	if err != nil {
		return "", err
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "snapshot.db")
	if _, err := b.db.ExecContext(ctx, `VACUUM INTO ?`, path); err != nil {
		return "", fmt.Errorf("vacuum into: %w", err)
	}

	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", err
	}

	key := Key(b.now())
	if err := b.uploader.Upload(ctx, key, f, info.Size()); err != nil {
		return "", err
	}
	return key, nil
}

// Run takes a snapshot every interval until ctx is done. Failed snapshots
// are logged and retried on the next tick. A non-positive interval
// disables backups.
func (b *Backuper) Run(ctx context.Context) error {
	if b.interval <= 0 {
		return nil
	}
	if b.driver != dbx.DriverSQLite {
		b.logger.Warn(ctx, "backups disabled", "driver", b.driver, "error", ErrBackupUnsupported)
		return nil
	}

	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()

	b.logger.Info(ctx, "Starting backups", "interval", b.interval.String())

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			key, err := b.Snapshot(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				b.logger.Error(ctx, "backup failed", "error", err)
				continue
			}
			b.logger.Info(ctx, "backup uploaded", "key", key)
		}
	}
}
