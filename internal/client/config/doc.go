// Package config loads runtime configuration for the steward client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected via -c/-config or STEWARD_CLIENT_CONFIG.
//  3. STEWARD_CLIENT_* environment variables.
//  4. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-a string   address:port of the steward gRPC endpoint
//	-t string   access token for write requests
//	-w int      request timeout (seconds)
//
// # JSON schema
//
//	{
//	  "server_endpoint_addr": "127.0.0.1:50051",
//	  "request_timeout": "10s",
//	  "access_token": "..."
//	}
package config
