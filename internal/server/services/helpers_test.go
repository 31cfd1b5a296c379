package services

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/otpsteward/internal/dbx"
	"github.com/dmitrijs2005/otpsteward/internal/logging"
	"github.com/dmitrijs2005/otpsteward/internal/server/auth"
	"github.com/dmitrijs2005/otpsteward/internal/server/config"
	"github.com/dmitrijs2005/otpsteward/internal/server/identity"
	"github.com/dmitrijs2005/otpsteward/internal/server/provision"
	"github.com/dmitrijs2005/otpsteward/internal/server/repositories/repomanager"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/require"
)

const testSecretKey = "test-secret"

// fixedNow sits mid-step so neighbouring steps are exactly 30s away.
var fixedNow = time.Date(2026, 10, 18, 9, 30, 10, 0, time.UTC)

func strPtr(s string) *string { return &s }

func newService(t *testing.T, db *sql.DB, rm repomanager.RepositoryManager) *AccountService {
	t.Helper()
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.SecretKey = testSecretKey

	p := provision.New(provision.Options{
		Issuer: cfg.TOTPIssuer, Period: cfg.TOTPPeriod, Digits: cfg.TOTPDigits,
		SecretSize: cfg.SecretSize, QRWidth: 2,
	})
	a := auth.NewAuthenticator(auth.WithClock(func() time.Time { return fixedNow }))
	return NewAccountService(db, rm, identity.NewIndex(), p, a, logging.NopLogger{}, cfg)
}

// newSQLiteService returns a loaded service over a migrated temp-file
// database.
func newSQLiteService(t *testing.T) (*AccountService, *sql.DB) {
	t.Helper()
	ctx := context.Background()

	db, err := dbx.Open(ctx, dbx.DriverSQLite, filepath.Join(t.TempDir(), "steward.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	rm, err := repomanager.NewRepositoryManager(dbx.DriverSQLite)
	require.NoError(t, err)
	require.NoError(t, rm.RunMigrations(ctx, db))

	s := newService(t, db, rm)
	require.NoError(t, s.Load(ctx))
	t.Cleanup(s.Wait)
	return s, db
}

// newMockService returns a ready service whose store is a sqlmock with the
// regexp matcher.
func newMockService(t *testing.T) (*AccountService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	rm, err := repomanager.NewRepositoryManager(dbx.DriverSQLite)
	require.NoError(t, err)

	s := newService(t, db, rm)
	s.ready.Store(true)
	return s, mock
}

func mustCreate(t *testing.T, s *AccountService, uuid, name string) *CreateResult {
	t.Helper()
	res, err := s.Create(context.Background(), CreateParams{UUID: uuid, Name: strPtr(name)}, nil)
	require.NoError(t, err)
	return res
}

// codeFor computes the passcode of the account's first client at fixedNow
// shifted by offset.
func codeFor(t *testing.T, s *AccountService, accountName string, offset time.Duration) string {
	t.Helper()
	a, ok := s.index.AccountByName(accountName)
	require.True(t, ok)
	clients := s.index.Clients(a)
	require.NotEmpty(t, clients)

	code, err := totp.GenerateCodeCustom(clients[0].AuthKey, fixedNow.Add(offset), totp.ValidateOpts{
		Period: clients[0].AuthParams.Step, Digits: otp.DigitsSix, Algorithm: otp.AlgorithmSHA1,
	})
	require.NoError(t, err)
	return code
}
