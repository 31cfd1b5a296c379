package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dmitrijs2005/otpsteward/internal/client/client"
	"github.com/dmitrijs2005/otpsteward/internal/client/config"
	"github.com/google/uuid"
)

type App struct {
	config *config.Config
	api    client.Client
	out    io.Writer
	reader *bufio.Reader
	newID  func() string
}

func NewApp(c *config.Config) (*App, error) {
	apiClient, err := client.NewStewardClient(c.ServerEndpointAddr, c.AccessToken)
	if err != nil {
		return nil, err
	}

	return &App{
		config: c,
		api:    apiClient,
		out:    os.Stdout,
		reader: bufio.NewReader(os.Stdin),
		newID:  uuid.NewString,
	}, nil
}

func (a *App) Close() error {
	return a.api.Close()
}

// Run executes the command named in args. Global flags may appear before
// or after the command name.
func (a *App) Run(ctx context.Context, args []string) error {
	cmd, rest := SplitCommand(args)

	ctx, cancel := context.WithTimeout(ctx, a.config.RequestTimeout)
	defer cancel()

	switch cmd {
	case "create":
		return a.create(ctx, rest)
	case "list":
		return a.list(ctx, rest)
	case "authenticate", "auth":
		return a.authenticate(ctx, rest)
	case "", "help":
		a.usage()
		return nil
	default:
		a.usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func (a *App) usage() {
	fmt.Fprintln(a.out, "Usage: client [-a addr] [-t token] [-w seconds] [-c config.json] <command> [flags]")
	fmt.Fprintln(a.out, "Commands: create, list, authenticate")
}

// SplitCommand returns the command name and its arguments with the global
// flags removed.
func SplitCommand(args []string) (string, []string) {
	var cmd string
	rest := make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]
		if isGlobalFlag(arg) {
			if !strings.Contains(arg, "=") {
				i++
			}
			continue
		}
		if cmd == "" && !strings.HasPrefix(arg, "-") {
			cmd = arg
			continue
		}
		rest = append(rest, arg)
	}
	return cmd, rest
}

func isGlobalFlag(arg string) bool {
	name, _, _ := strings.Cut(arg, "=")
	name = "-" + strings.TrimLeft(name, "-")
	for _, f := range config.GlobalFlags {
		if name == f {
			return true
		}
	}
	return false
}

func (a *App) printJSON(raw json.RawMessage) error {
	var buf strings.Builder
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return err
	}
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return err
	}
	_, err := fmt.Fprint(a.out, buf.String())
	return err
}
