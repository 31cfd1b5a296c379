// Package common contains shared constants and sentinel errors used across
// steward server and client components.
package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the
// access token on outbound requests.
const AccessTokenHeaderName = "access_token"

// Diagnostics reported back to callers inside an error envelope.
const (
	DiagMissingUUID        = "missing uuid"
	DiagMissingName        = "missing name element"
	DiagEmptyName          = "empty name element"
	DiagInvalidName        = "invalid name element"
	DiagInvalidRole        = "invalid role element"
	DiagDuplicateUUID      = "duplicate uuid"
	DiagDuplicateName      = "duplicate name"
	DiagInternal           = "internal error"
	DiagDatabaseNotReady   = "database not ready"
	DiagMissingClientID    = "missing clientID"
	DiagInvalidClientID    = "invalid clientID element"
	DiagMissingResponse    = "missing response element"
	DiagInvalidResponse    = "invalid response element"
	DiagInvalidPair        = "invalid clientID/response pair"
	DiagInvalidDepth       = "invalid depth element"
	DiagInvalidPath        = "invalid path"
	DiagUnsupportedRequest = "unsupported request"
)
