package server

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmitrijs2005/otpsteward/internal/dbx"
	"github.com/dmitrijs2005/otpsteward/internal/server/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.EndpointAddrGRPC = "127.0.0.1:0"
	cfg.DatabaseDSN = filepath.Join(t.TempDir(), "steward.db")
	cfg.LogLevel = "error"
	return cfg
}

func TestApp_RunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, err := NewApp(ctx, testConfig(t))
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	require.Eventually(t, app.accounts.Ready, 2*time.Second, 10*time.Millisecond)
	assert.False(t, app.accounts.HasAccounts())

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("app did not stop")
	}
	assert.Error(t, app.db.PingContext(context.Background()), "database closed")
}

func TestApp_RunReturnsServerError(t *testing.T) {
	cfg := testConfig(t)
	cfg.EndpointAddrGRPC = "127.0.0.1:99999"

	app, err := NewApp(context.Background(), cfg)
	require.NoError(t, err)

	assert.Error(t, app.Run(context.Background()))
}

func TestNewApp_Errors(t *testing.T) {
	cfg := testConfig(t)
	cfg.DatabaseDriver = "mysql"
	_, err := NewApp(context.Background(), cfg)
	assert.Error(t, err)

	cfg = testConfig(t)
	cfg.DatabaseDriver = dbx.DriverSQLite
	cfg.DatabaseDSN = filepath.Join(t.TempDir(), "missing", "dir", "steward.db")
	_, err = NewApp(context.Background(), cfg)
	assert.Error(t, err)
}
