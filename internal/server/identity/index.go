// Package identity holds the in-memory mirror of accounts and clients.
//
// The Index answers every read on the request path. It is written only
// after the durable store accepted the change it mirrors, and it guards
// in-flight creates with reservations so two concurrent requests cannot
// claim the same external identifier or name.
package identity

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/otpsteward/internal/common"
	"github.com/dmitrijs2005/otpsteward/internal/server/models"
	"github.com/dmitrijs2005/otpsteward/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/otpsteward/internal/server/repositories/clients"
)

type clientKey struct {
	accountID int64
	clientID  int64
}

type Index struct {
	mu sync.RWMutex

	accounts map[string]*models.Account // by uuid
	clients  map[string]*models.Client  // by uuid
	byName   map[string]*models.Account
	byID     map[int64]*models.Account
	byOwner  map[clientKey]*models.Client
	order    []string // account uuids in sort order

	reservedUUIDs map[string]struct{}
	reservedNames map[string]struct{}
}

func NewIndex() *Index {
	return &Index{
		accounts:      make(map[string]*models.Account),
		clients:       make(map[string]*models.Client),
		byName:        make(map[string]*models.Account),
		byID:          make(map[int64]*models.Account),
		byOwner:       make(map[clientKey]*models.Client),
		reservedUUIDs: make(map[string]struct{}),
		reservedNames: make(map[string]struct{}),
	}
}

// Load replaces the index contents with what the store holds: accounts in
// sort order, each with its clients in sort order.
func (x *Index) Load(ctx context.Context, ar accounts.Repository, cr clients.Repository) error {
	list, err := ar.List(ctx)
	if err != nil {
		return fmt.Errorf("load accounts: %w", err)
	}

	fresh := NewIndex()
	for _, a := range list {
		owned, err := cr.ListByAccount(ctx, a.ID)
		if err != nil {
			return fmt.Errorf("load clients of account %d: %w", a.ID, err)
		}
		a.Clients = a.Clients[:0]
		for _, c := range owned {
			a.Clients = append(a.Clients, c.ID)
		}
		fresh.put(a, owned...)
	}

	x.mu.Lock()
	defer x.mu.Unlock()
	x.accounts, x.clients = fresh.accounts, fresh.clients
	x.byName, x.byID, x.byOwner = fresh.byName, fresh.byID, fresh.byOwner
	x.order = fresh.order
	return nil
}

// put stores a and its clients without locking.
func (x *Index) put(a *models.Account, owned ...*models.Client) {
	if _, ok := x.accounts[a.UUID]; !ok {
		x.order = append(x.order, a.UUID)
	}
	x.accounts[a.UUID] = a
	x.byName[a.Name] = a
	x.byID[a.ID] = a
	for _, c := range owned {
		x.clients[c.UUID] = c
		x.byOwner[clientKey{accountID: c.AccountID, clientID: c.ID}] = c
	}
}

// Reserve claims uuid and name for an in-flight create. It fails with
// common.ErrDuplicateUUID or common.ErrDuplicateName when either is already
// committed or reserved; the uuid is checked first.
func (x *Index) Reserve(uuid, name string) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	if _, ok := x.accounts[uuid]; ok {
		return common.ErrDuplicateUUID
	}
	if _, ok := x.reservedUUIDs[uuid]; ok {
		return common.ErrDuplicateUUID
	}
	if _, ok := x.byName[name]; ok {
		return common.ErrDuplicateName
	}
	if _, ok := x.reservedNames[name]; ok {
		return common.ErrDuplicateName
	}

	x.reservedUUIDs[uuid] = struct{}{}
	x.reservedNames[name] = struct{}{}
	return nil
}

// Release drops a reservation after a failed create.
func (x *Index) Release(uuid, name string) {
	x.mu.Lock()
	defer x.mu.Unlock()
	delete(x.reservedUUIDs, uuid)
	delete(x.reservedNames, name)
}

// Commit publishes a durably stored account and its client, and releases
// the matching reservation. The client id is appended to the account's
// client list if missing.
func (x *Index) Commit(a *models.Account, c *models.Client) {
	a = a.Clone()
	c = c.Clone()
	if !a.OwnsClient(c.ID) {
		a.Clients = append(a.Clients, c.ID)
	}

	x.mu.Lock()
	defer x.mu.Unlock()
	delete(x.reservedUUIDs, a.UUID)
	delete(x.reservedNames, a.Name)
	x.put(a, c)
}

func (x *Index) AccountByUUID(uuid string) (*models.Account, bool) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	a, ok := x.accounts[uuid]
	return a.Clone(), ok
}

func (x *Index) AccountByName(name string) (*models.Account, bool) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	a, ok := x.byName[name]
	return a.Clone(), ok
}

func (x *Index) AccountByID(id int64) (*models.Account, bool) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	a, ok := x.byID[id]
	return a.Clone(), ok
}

// Client resolves clientID through its owner. A client that exists but is
// not listed on account is not found.
func (x *Index) Client(account *models.Account, clientID int64) (*models.Client, bool) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	owner, ok := x.byID[account.ID]
	if !ok || !owner.OwnsClient(clientID) {
		return nil, false
	}
	c, ok := x.byOwner[clientKey{accountID: owner.ID, clientID: clientID}]
	return c.Clone(), ok
}

// Accounts returns every account in sort order.
func (x *Index) Accounts() []*models.Account {
	x.mu.RLock()
	defer x.mu.RUnlock()

	out := make([]*models.Account, 0, len(x.order))
	for _, uuid := range x.order {
		out = append(out, x.accounts[uuid].Clone())
	}
	return out
}

// Clients returns the account's clients in client-list order.
func (x *Index) Clients(account *models.Account) []*models.Client {
	x.mu.RLock()
	defer x.mu.RUnlock()

	owner, ok := x.byID[account.ID]
	if !ok {
		return nil
	}
	out := make([]*models.Client, 0, len(owner.Clients))
	for _, id := range owner.Clients {
		if c, ok := x.byOwner[clientKey{accountID: owner.ID, clientID: id}]; ok {
			out = append(out, c.Clone())
		}
	}
	return out
}

func (x *Index) SetAccountLastLogin(accountID int64, at time.Time) {
	x.mu.Lock()
	defer x.mu.Unlock()
	if a, ok := x.byID[accountID]; ok {
		a.LastLogin = &at
	}
}

func (x *Index) SetClientLastLogin(accountID, clientID int64, at time.Time) {
	x.mu.Lock()
	defer x.mu.Unlock()
	if c, ok := x.byOwner[clientKey{accountID: accountID, clientID: clientID}]; ok {
		c.LastLogin = &at
	}
}

// Len is the number of committed accounts.
func (x *Index) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.accounts)
}
