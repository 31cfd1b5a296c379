// Package server wires the steward server: configuration, logging, the
// database and its migrations, the identity index, the gRPC transport,
// and periodic backups.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmitrijs2005/otpsteward/internal/dbx"
	"github.com/dmitrijs2005/otpsteward/internal/logging"
	"github.com/dmitrijs2005/otpsteward/internal/server/auth"
	"github.com/dmitrijs2005/otpsteward/internal/server/backup"
	"github.com/dmitrijs2005/otpsteward/internal/server/config"
	"github.com/dmitrijs2005/otpsteward/internal/server/identity"
	"github.com/dmitrijs2005/otpsteward/internal/server/provision"
	"github.com/dmitrijs2005/otpsteward/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/otpsteward/internal/server/services"
	"golang.org/x/sync/errgroup"

	gs "github.com/dmitrijs2005/otpsteward/internal/server/grpc"
)

// maxLoadBackoff caps the wait between attempts to load the index.
const maxLoadBackoff = 30 * time.Second

type App struct {
	config   *config.Config
	logger   logging.Logger
	db       *sql.DB
	accounts *services.AccountService
	backuper *backup.Backuper
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.New(os.Stdout, c.LogLevel, c.LogFormat)

	db, err := dbx.Open(ctx, c.DatabaseDriver, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm, err := repomanager.NewRepositoryManager(c.DatabaseDriver)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	p := provision.New(provision.Options{
		Issuer:     c.TOTPIssuer,
		Period:     c.TOTPPeriod,
		Digits:     c.TOTPDigits,
		SecretSize: c.SecretSize,
		QRWidth:    c.QRWidth,
	})
	as := services.NewAccountService(db, rm, identity.NewIndex(), p, auth.NewAuthenticator(), logger, c)

	var uploader backup.Uploader
	if c.BackupInterval > 0 && c.DatabaseDriver == dbx.DriverSQLite {
		u, err := backup.NewS3Uploader(ctx, c)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		uploader = u
	}
	bk := backup.New(db, c.DatabaseDriver, uploader, c.BackupInterval, logger)

	return &App{config: c, logger: logger, db: db, accounts: as, backuper: bk}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// loadIndex retries until the identity index is loaded or ctx is done.
// Requests are answered with "database not ready" meanwhile.
func (app *App) loadIndex(ctx context.Context) error {
	backoff := time.Second
	for {
		err := app.accounts.Load(ctx)
		if err == nil {
			return nil
		}
		app.logger.Warn(ctx, "identity index not loaded", "error", err, "retryIn", backoff.String())

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(backoff):
		}
		backoff = min(2*backoff, maxLoadBackoff)
	}
}

// Run serves until ctx is done or a signal arrives, then drains pending
// last-login writes and closes the database.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "driver", app.config.DatabaseDriver)

	app.initSignalHandler(cancelFunc)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return app.loadIndex(gctx)
	})

	g.Go(func() error {
		s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.accounts, app.config.SecretKey)
		return s.Run(gctx)
	})

	g.Go(func() error {
		return app.backuper.Run(gctx)
	})

	err := g.Wait()
	if err != nil {
		app.logger.Error(ctx, "server stopped", "error", err)
	}

	app.accounts.Wait()
	if cerr := app.db.Close(); cerr != nil {
		app.logger.Error(ctx, "close database", "error", cerr)
	}

	app.logger.Info(ctx, "Stopped")
	return err
}
