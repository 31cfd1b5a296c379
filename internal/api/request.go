package api

import (
	"strconv"
	"strings"

	"github.com/dmitrijs2005/otpsteward/internal/common"
)

// Path prefixes. The path suffix carries the target of the request.
const (
	PathCreate       = "/api/v1/user/create"
	PathList         = "/api/v1/user/list"
	PathAuthenticate = "/api/v1/user/authenticate"
)

// CreateRequest asks for a new account with one TOTP client. Path is
// PathCreate + "/<uuid>".
type CreateRequest struct {
	RequestID  string  `json:"requestID"`
	Path       string  `json:"path"`
	Name       *string `json:"name,omitempty"`
	Comments   string  `json:"comments,omitempty"`
	Role       string  `json:"role,omitempty"`
	ClientName string  `json:"clientName,omitempty"`
}

// ListRequest reports accounts. Path is PathList, optionally followed by
// "/<accountID>".
type ListRequest struct {
	RequestID string      `json:"requestID"`
	Path      string      `json:"path"`
	Options   ListOptions `json:"options"`
}

type ListOptions struct {
	Depth string `json:"depth,omitempty"`
}

// AuthenticateRequest checks a passcode. Path is
// PathAuthenticate + "/<accountName>/<clientID>".
type AuthenticateRequest struct {
	RequestID string `json:"requestID"`
	Path      string `json:"path"`
	Response  string `json:"response"`
}

// suffix returns what follows prefix in path. ok is false when path is
// not under prefix.
func suffix(path, prefix string) (rest string, ok bool) {
	if path == prefix {
		return "", true
	}
	return strings.CutPrefix(path, prefix+"/")
}

// CreateUUID extracts the account uuid from a create path.
func CreateUUID(path string) (string, error) {
	uuid, ok := suffix(path, PathCreate)
	switch {
	case !ok:
		return "", common.Permanent(common.DiagUnsupportedRequest)
	case uuid == "":
		return "", common.Permanent(common.DiagMissingUUID)
	case strings.Contains(uuid, "/"):
		return "", common.Permanent(common.DiagInvalidPath)
	}
	return uuid, nil
}

// ListAccountID extracts the optional account id from a list path.
func ListAccountID(path string) (string, error) {
	id, ok := suffix(path, PathList)
	if !ok {
		return "", common.Permanent(common.DiagUnsupportedRequest)
	}
	if id == "" {
		return "", nil
	}
	if _, err := strconv.ParseInt(id, 10, 64); err != nil {
		return "", common.Permanent(common.DiagInvalidPath)
	}
	return id, nil
}

// AuthenticateClientID extracts "<accountName>/<clientID>" from an
// authenticate path. Its shape is checked by the handler.
func AuthenticateClientID(path string) (string, error) {
	id, ok := suffix(path, PathAuthenticate)
	if !ok {
		return "", common.Permanent(common.DiagUnsupportedRequest)
	}
	return id, nil
}

func CreatePath(uuid string) string { return PathCreate + "/" + uuid }

func ListPath(accountID string) string {
	if accountID == "" {
		return PathList
	}
	return PathList + "/" + accountID
}

func AuthenticatePath(clientID string) string { return PathAuthenticate + "/" + clientID }
