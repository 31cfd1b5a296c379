// Package client talks to the steward server.
//
// Client is the transport-agnostic contract used by the CLI; GRPCClient
// implements it over gRPC with the JSON codec, attaching the access token
// to every call and mapping status codes to ErrUnauthorized and
// ErrUnavailable.
package client
