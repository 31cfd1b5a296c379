// Package models holds the persistent entities of the identity graph.
package models

import (
	"slices"
	"strings"
	"time"
)

// Role is the coarse authority level of an account.
type Role string

const (
	RoleMaster   Role = "master"
	RoleResident Role = "resident"
	RoleGuest    Role = "guest"
	RoleDevice   Role = "device"
	RoleCloud    Role = "cloud"
	RoleNone     Role = "none"
)

// DefaultRole is assigned when a create request names no role.
const DefaultRole = RoleResident

var roles = []Role{RoleMaster, RoleResident, RoleGuest, RoleDevice, RoleCloud, RoleNone}

// ParseRole normalizes s (case-insensitive) and reports whether it names a
// known role. The empty string yields DefaultRole.
func ParseRole(s string) (Role, bool) {
	if s == "" {
		return DefaultRole, true
	}
	r := Role(strings.ToLower(s))
	return r, slices.Contains(roles, r)
}

// Account is a principal. It owns one or more clients, listed in Clients by
// durable id in creation order.
type Account struct {
	ID        int64
	UUID      string
	Name      string
	Comments  string
	Role      Role
	LastLogin *time.Time
	Clients   []int64
}

// Clone returns a deep copy safe to hand outside the identity index.
func (a *Account) Clone() *Account {
	if a == nil {
		return nil
	}
	c := *a
	c.Clients = slices.Clone(a.Clients)
	if a.LastLogin != nil {
		t := *a.LastLogin
		c.LastLogin = &t
	}
	return &c
}

// OwnsClient reports whether clientID is in the account's client list.
func (a *Account) OwnsClient(clientID int64) bool {
	return slices.Contains(a.Clients, clientID)
}
