// Package services contains the request handlers of the identity subsystem:
// account creation, listing, and passcode authentication. AccountService
// coordinates the identity index, the durable store, and the credential
// provisioner.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/otpsteward/internal/common"
	"github.com/dmitrijs2005/otpsteward/internal/dbx"
	"github.com/dmitrijs2005/otpsteward/internal/logging"
	"github.com/dmitrijs2005/otpsteward/internal/server/auth"
	"github.com/dmitrijs2005/otpsteward/internal/server/config"
	"github.com/dmitrijs2005/otpsteward/internal/server/identity"
	"github.com/dmitrijs2005/otpsteward/internal/server/models"
	"github.com/dmitrijs2005/otpsteward/internal/server/provision"
	"github.com/dmitrijs2005/otpsteward/internal/server/repositories/repomanager"
)

type AccountService struct {
	db            *sql.DB
	repomanager   repomanager.RepositoryManager
	index         *identity.Index
	provisioner   *provision.Provisioner
	authenticator *auth.Authenticator
	logger        logging.Logger

	jwtSecret                   []byte
	accessTokenValidityDuration time.Duration

	ready      atomic.Bool
	background sync.WaitGroup
}

func NewAccountService(db *sql.DB, m repomanager.RepositoryManager, index *identity.Index,
	p *provision.Provisioner, a *auth.Authenticator, l logging.Logger, cfg *config.Config) *AccountService {
	return &AccountService{
		db:                          db,
		repomanager:                 m,
		index:                       index,
		provisioner:                 p,
		authenticator:               a,
		logger:                      l.With("module", "account_service"),
		jwtSecret:                   []byte(cfg.SecretKey),
		accessTokenValidityDuration: cfg.AccessTokenValidityDuration,
	}
}

// Load fills the identity index from the store. Requests that need the
// store fail with "database not ready" until it succeeds.
func (s *AccountService) Load(ctx context.Context) error {
	if err := s.index.Load(ctx, s.repomanager.Accounts(s.db), s.repomanager.Clients(s.db)); err != nil {
		return err
	}
	s.ready.Store(true)
	s.logger.Info(ctx, "identity index loaded", "accounts", s.index.Len())
	return nil
}

// Ready reports whether the index has been loaded.
func (s *AccountService) Ready() bool {
	return s.ready.Load()
}

// HasAccounts reports whether any account has been committed.
func (s *AccountService) HasAccounts() bool {
	return s.index.Len() > 0
}

// Wait blocks until background last-login writes have finished.
func (s *AccountService) Wait() {
	s.background.Wait()
}

// CreateParams is a validated-later create request. Name is a pointer so a
// missing element can be told apart from an empty one.
type CreateParams struct {
	UUID       string
	Name       *string
	Comments   string
	Role       string
	ClientName string
}

type CreateResult struct {
	User             string `json:"user"`
	Client           string `json:"client"`
	AuthenticatorURL string `json:"authenticatorURL"`
	OTPURL           string `json:"otpURL"`
}

// Create validates p, reserves its uuid and name, calls ack, and then
// persists one account with one TOTP client.
//
// Validation and duplicate errors are returned before ack is called. After
// ack, the only failure reported is a transient internal error; the
// reservation is released and nothing durable remains.
func (s *AccountService) Create(ctx context.Context, p CreateParams, ack func() error) (*CreateResult, error) {
	if !s.ready.Load() {
		return nil, common.Transient(common.DiagDatabaseNotReady)
	}

	role, err := validateCreate(p)
	if err != nil {
		return nil, err
	}
	name := *p.Name

	if err := s.index.Reserve(p.UUID, name); err != nil {
		switch {
		case errors.Is(err, common.ErrDuplicateUUID):
			return nil, common.Transient(common.DiagDuplicateUUID)
		case errors.Is(err, common.ErrDuplicateName):
			return nil, common.Transient(common.DiagDuplicateName)
		default:
			return nil, err
		}
	}

	if ack != nil {
		if err := ack(); err != nil {
			s.index.Release(p.UUID, name)
			return nil, fmt.Errorf("acknowledge create: %w", err)
		}
	}

	// an acknowledged create runs to completion even if the caller leaves
	ctx = context.WithoutCancel(ctx)

	account, client, draft, err := s.persist(ctx, p, name, role)
	if err != nil {
		s.index.Release(p.UUID, name)
		s.logger.Error(ctx, "create failed", "uuid", p.UUID, "error", err)
		return nil, common.Transient(common.DiagInternal)
	}

	final := s.provisioner.Finalize(draft, client.ID)
	if err := s.repomanager.Clients(s.db).UpdateAuthParams(ctx, client.ID, final.Params); err != nil {
		s.logger.Error(ctx, "update client auth params", "uuid", p.UUID, "clientID", client.ID, "error", err)
	}
	client.AuthParams = final.Params

	s.index.Commit(account, client)

	qr, err := s.provisioner.QRDataURL(final.URI)
	if err != nil {
		s.logger.Warn(ctx, "render provisioning qr", "uuid", p.UUID, "error", err)
	}

	s.logger.Info(ctx, "account created", "uuid", p.UUID, "accountID", account.ID, "clientID", client.ID, "role", role)

	return &CreateResult{
		User:             strconv.FormatInt(account.ID, 10),
		Client:           strconv.FormatInt(client.ID, 10),
		AuthenticatorURL: final.URI,
		OTPURL:           qr,
	}, nil
}

// persist drafts the credential and writes the account and client rows in
// one transaction.
func (s *AccountService) persist(ctx context.Context, p CreateParams, name string, role models.Role) (*models.Account, *models.Client, *provision.Draft, error) {
	draft, err := s.provisioner.Draft(name)
	if err != nil {
		return nil, nil, nil, err
	}

	account := &models.Account{UUID: p.UUID, Name: name, Comments: p.Comments, Role: role}
	client := &models.Client{
		UUID:       p.UUID,
		Name:       p.ClientName,
		AuthAlg:    models.AlgTOTP,
		AuthParams: draft.Params,
		AuthKey:    draft.Secret,
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := s.repomanager.Accounts(tx).Create(ctx, account); err != nil {
			return fmt.Errorf("insert account: %w", err)
		}
		client.AccountID = account.ID
		if _, err := s.repomanager.Clients(tx).Create(ctx, client); err != nil {
			return fmt.Errorf("insert client: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, nil, nil, err
	}

	account.Clients = []int64{client.ID}
	return account, client, draft, nil
}
