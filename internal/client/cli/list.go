package cli

import (
	"context"
	"flag"

	"github.com/dmitrijs2005/otpsteward/internal/api"
)

func (a *App) list(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	fs.SetOutput(a.out)

	depth := fs.String("depth", "", "flat, tree or all")
	user := fs.String("user", "", "only the account with this id")

	if err := fs.Parse(args); err != nil {
		return err
	}

	env, err := a.api.List(ctx, &api.ListRequest{
		RequestID: a.newID(),
		Path:      api.ListPath(*user),
		Options:   api.ListOptions{Depth: *depth},
	})
	if err != nil {
		return err
	}
	if env.Error != nil {
		return env.Error
	}

	return a.printJSON(env.Result)
}
