// Package cli implements the steward operator command line:
//
//	client [-a addr] [-t token] create -name mrose [-uuid id] [-role master] [-qr out.png]
//	client list [-depth flat|tree|all] [-user id]
//	client authenticate -path mrose/1 [-code 123456]
//
// Each command sends one request and prints the reply. Without -code,
// authenticate reads the passcode from the terminal without echo.
package cli
