package services

import (
	"context"
	"strconv"
	"time"

	"github.com/dmitrijs2005/otpsteward/internal/common"
	"github.com/dmitrijs2005/otpsteward/internal/server/models"
)

// Listing depths.
const (
	DepthFlat = "flat"
	DepthTree = "tree"
	DepthAll  = "all"
)

type UserEntry struct {
	UUID      string      `json:"uuid"`
	Name      string      `json:"name"`
	Comments  string      `json:"comments"`
	Role      models.Role `json:"role"`
	LastLogin *time.Time  `json:"lastLogin"`
	Clients   []string    `json:"clients,omitempty"`
}

type ClientEntry struct {
	UUID      string     `json:"uuid"`
	Name      string     `json:"name"`
	Comments  string     `json:"comments"`
	LastLogin *time.Time `json:"lastLogin"`
}

// ListResult is keyed by "user/<name>" and "user/<name>/<clientID>".
// Clients is present only for depth "all".
type ListResult struct {
	Users   map[string]*UserEntry   `json:"users"`
	Clients map[string]*ClientEntry `json:"clients,omitempty"`
}

// List reports accounts from the identity index. accountID, when not
// empty, restricts the result to the account with that durable id.
func (s *AccountService) List(ctx context.Context, accountID, depth string) (*ListResult, error) {
	if !s.ready.Load() {
		return nil, common.Transient(common.DiagDatabaseNotReady)
	}

	var tree, all bool
	switch depth {
	case "", DepthFlat:
	case DepthTree:
		tree = true
	case DepthAll:
		tree, all = true, true
	default:
		return nil, common.Permanent(common.DiagInvalidDepth)
	}

	result := &ListResult{Users: make(map[string]*UserEntry)}
	if all {
		result.Clients = make(map[string]*ClientEntry)
	}

	for _, a := range s.index.Accounts() {
		id := strconv.FormatInt(a.ID, 10)
		if accountID != "" && accountID != id {
			continue
		}

		key := "user/" + a.Name
		entry := &UserEntry{UUID: a.UUID, Name: a.Name, Comments: a.Comments, Role: a.Role, LastLogin: a.LastLogin}
		if tree {
			entry.Clients = make([]string, 0, len(a.Clients))
			for _, cid := range a.Clients {
				entry.Clients = append(entry.Clients, strconv.FormatInt(cid, 10))
			}
		}
		result.Users[key] = entry

		if all {
			for _, c := range s.index.Clients(a) {
				result.Clients[key+"/"+strconv.FormatInt(c.ID, 10)] = &ClientEntry{
					UUID: c.UUID, Name: c.Name, Comments: c.Comments, LastLogin: c.LastLogin,
				}
			}
		}
	}

	s.logger.Debug(ctx, "listed accounts", "depth", depth, "count", len(result.Users))
	return result, nil
}
