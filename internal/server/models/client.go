package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// AlgTOTP is the only credential algorithm tag steward issues.
const AlgTOTP = "otpauth://totp"

// AuthParams are the public credential parameters. Name is the label shown
// in authenticator apps.
type AuthParams struct {
	Step   uint   `json:"step"`
	Digits int    `json:"digits"`
	Issuer string `json:"issuer"`
	Name   string `json:"name"`
}

// Marshal renders p as the JSON text stored in the clients table.
func (p AuthParams) Marshal() (string, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ParseAuthParams decodes the stored JSON text.
func ParseAuthParams(s string) (AuthParams, error) {
	var p AuthParams
	if err := json.Unmarshal([]byte(s), &p); err != nil {
		return AuthParams{}, fmt.Errorf("auth params: %w", err)
	}
	return p, nil
}

// Client is a credential-bearing endpoint belonging to exactly one account.
// AuthKey is the shared secret, base32 without padding.
type Client struct {
	ID         int64
	UUID       string
	AccountID  int64
	Name       string
	Comments   string
	AuthAlg    string
	AuthParams AuthParams
	AuthKey    string
	LastLogin  *time.Time
}

// Clone returns a copy safe to hand outside the identity index.
func (c *Client) Clone() *Client {
	if c == nil {
		return nil
	}
	cp := *c
	if c.LastLogin != nil {
		t := *c.LastLogin
		cp.LastLogin = &t
	}
	return &cp
}
