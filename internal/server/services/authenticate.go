package services

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/otpsteward/internal/common"
	"github.com/dmitrijs2005/otpsteward/internal/server/auth"
	"github.com/dmitrijs2005/otpsteward/internal/server/models"
)

// minResponseLen is the shortest passcode accepted for checking.
const minResponseLen = 6

type AuthResult struct {
	User        string      `json:"user"`
	Role        models.Role `json:"role"`
	AccessToken string      `json:"accessToken"`
}

// Authenticate checks response against the credential of the client named
// by clientID ("<accountName>/<clientID>").
//
// Unknown accounts, unknown clients, and wrong codes all produce the same
// transient "invalid clientID/response pair" error.
func (s *AccountService) Authenticate(ctx context.Context, clientID, response string) (*AuthResult, error) {
	if !s.ready.Load() {
		return nil, common.Transient(common.DiagDatabaseNotReady)
	}

	if clientID == "" {
		return nil, common.Permanent(common.DiagMissingClientID)
	}
	pair := strings.Split(clientID, "/")
	if len(pair) != 2 {
		return nil, common.Permanent(common.DiagInvalidClientID)
	}
	if response == "" {
		return nil, common.Permanent(common.DiagMissingResponse)
	}
	if len(response) < minResponseLen {
		return nil, common.Permanent(common.DiagInvalidResponse)
	}

	invalid := common.Transient(common.DiagInvalidPair)

	account, ok := s.index.AccountByName(pair[0])
	if !ok {
		return nil, invalid
	}
	id, err := strconv.ParseInt(pair[1], 10, 64)
	if err != nil {
		return nil, invalid
	}
	client, ok := s.index.Client(account, id)
	if !ok {
		return nil, invalid
	}

	match, err := s.authenticator.Verify(client, response)
	if err != nil {
		s.logger.Error(ctx, "verify passcode", "accountID", account.ID, "clientID", client.ID, "alg", client.AuthAlg, "error", err)
		return nil, common.Permanent(common.DiagInternal)
	}
	if !match {
		return nil, invalid
	}

	token, err := auth.GenerateToken(account.ID, account.Role, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		s.logger.Error(ctx, "issue access token", "accountID", account.ID, "error", err)
		return nil, common.Transient(common.DiagInternal)
	}

	s.logger.Info(ctx, "login", "clientID", clientID, "role", account.Role)
	s.recordLogin(ctx, account.ID, client.ID, s.authenticator.Now())

	return &AuthResult{
		User:        strconv.FormatInt(account.ID, 10),
		Role:        account.Role,
		AccessToken: token,
	}, nil
}

// recordLogin stores the login time for the account and the client
// independently. Each index entry is updated only after its row is
// written; failures are logged.
func (s *AccountService) recordLogin(ctx context.Context, accountID, clientID int64, at time.Time) {
	ctx = context.WithoutCancel(ctx)

	s.background.Add(2)
	go func() {
		defer s.background.Done()
		if err := s.repomanager.Accounts(s.db).UpdateLastLogin(ctx, accountID, at); err != nil {
			s.logger.Error(ctx, "update account last login", "accountID", accountID, "error", err)
			return
		}
		s.index.SetAccountLastLogin(accountID, at)
	}()
	go func() {
		defer s.background.Done()
		if err := s.repomanager.Clients(s.db).UpdateLastLogin(ctx, clientID, at); err != nil {
			s.logger.Error(ctx, "update client last login", "clientID", clientID, "error", err)
			return
		}
		s.index.SetClientLastLogin(accountID, clientID, at)
	}()
}
