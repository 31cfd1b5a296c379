package services

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/dmitrijs2005/otpsteward/internal/common"
	"github.com/dmitrijs2005/otpsteward/internal/server/auth"
	"github.com/dmitrijs2005/otpsteward/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthenticate_CurrentCode(t *testing.T) {
	s, db := newSQLiteService(t)
	mustCreate(t, s, "u-1", "mrose")

	res, err := s.Authenticate(context.Background(), "mrose/1", codeFor(t, s, "mrose", 0))
	require.NoError(t, err)
	assert.Equal(t, "1", res.User)
	assert.Equal(t, models.RoleResident, res.Role)

	claims, err := auth.ParseToken(res.AccessToken, []byte(testSecretKey))
	require.NoError(t, err)
	assert.Equal(t, int64(1), claims.AccountID)
	assert.Equal(t, models.RoleResident, claims.Role)

	s.Wait()

	a, ok := s.index.AccountByName("mrose")
	require.True(t, ok)
	require.NotNil(t, a.LastLogin)
	assert.True(t, fixedNow.Equal(*a.LastLogin))
	c, ok := s.index.Client(a, 1)
	require.True(t, ok)
	require.NotNil(t, c.LastLogin)
	assert.True(t, fixedNow.Equal(*c.LastLogin))

	for _, table := range []string{"accounts", "clients"} {
		var at sql.NullTime
		require.NoError(t, db.QueryRow(`SELECT last_login FROM `+table+` WHERE id = 1`).Scan(&at))
		require.True(t, at.Valid, table)
		assert.True(t, fixedNow.Equal(at.Time), table)
	}
}

func TestAuthenticate_NeighbouringStepsRejected(t *testing.T) {
	s, _ := newSQLiteService(t)
	mustCreate(t, s, "u-1", "mrose")

	for _, offset := range []time.Duration{-30 * time.Second, 30 * time.Second} {
		_, err := s.Authenticate(context.Background(), "mrose/1", codeFor(t, s, "mrose", offset))
		assert.Equal(t, common.Transient(common.DiagInvalidPair), err, offset.String())
	}
}

func TestAuthenticate_FailuresAreIndistinguishable(t *testing.T) {
	s, _ := newSQLiteService(t)
	mustCreate(t, s, "u-1", "mrose")
	mustCreate(t, s, "u-2", "dev")

	good := codeFor(t, s, "mrose", 0)
	wrong := "000000"
	if good == wrong {
		wrong = "111111"
	}

	tests := []struct {
		name     string
		clientID string
		response string
	}{
		{name: "unknown account", clientID: "nobody/1", response: good},
		{name: "unknown client", clientID: "mrose/7", response: good},
		{name: "client of another account", clientID: "mrose/2", response: good},
		{name: "non-numeric client", clientID: "mrose/one", response: good},
		{name: "wrong code", clientID: "mrose/1", response: wrong},
		{name: "too long", clientID: "mrose/1", response: "12345678901"},
	}

	want := common.Transient(common.DiagInvalidPair)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := s.Authenticate(context.Background(), tt.clientID, tt.response)
			assert.Nil(t, res)
			assert.Equal(t, want, err)
		})
	}

	s.Wait()
	a, _ := s.index.AccountByName("mrose")
	assert.Nil(t, a.LastLogin, "failed attempts record nothing")
}

func TestAuthenticate_Validation(t *testing.T) {
	s, _ := newSQLiteService(t)

	tests := []struct {
		name     string
		clientID string
		response string
		diag     string
	}{
		{name: "missing client id", response: "123456", diag: common.DiagMissingClientID},
		{name: "no separator", clientID: "mrose", response: "123456", diag: common.DiagInvalidClientID},
		{name: "extra segment", clientID: "mrose/1/2", response: "123456", diag: common.DiagInvalidClientID},
		{name: "missing response", clientID: "mrose/1", diag: common.DiagMissingResponse},
		{name: "short response", clientID: "mrose/1", response: "12345", diag: common.DiagInvalidResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Authenticate(context.Background(), tt.clientID, tt.response)
			assert.Equal(t, common.Permanent(tt.diag), err)
		})
	}
}

func TestAuthenticate_UnsupportedAlgorithm(t *testing.T) {
	s, _ := newSQLiteService(t)
	s.index.Commit(
		&models.Account{ID: 50, UUID: "u-50", Name: "legacy", Role: models.RoleResident},
		&models.Client{ID: 51, UUID: "u-50", AccountID: 50, AuthAlg: "otpauth://hotp", AuthKey: "JBSWY3DPEHPK3PXP"},
	)

	_, err := s.Authenticate(context.Background(), "legacy/51", "123456")
	assert.Equal(t, common.Permanent(common.DiagInternal), err)
}

func TestAuthenticate_MasterRoleInToken(t *testing.T) {
	s, _ := newSQLiteService(t)
	_, err := s.Create(context.Background(), CreateParams{UUID: "u-1", Name: strPtr("boss"), Role: "master"}, nil)
	require.NoError(t, err)

	res, err := s.Authenticate(context.Background(), "boss/1", codeFor(t, s, "boss", 0))
	require.NoError(t, err)
	assert.Equal(t, models.RoleMaster, res.Role)

	claims, err := auth.ParseToken(res.AccessToken, []byte(testSecretKey))
	require.NoError(t, err)
	assert.Equal(t, models.RoleMaster, claims.Role)
}
