package cli

import (
	"context"
	"flag"
	"fmt"

	"github.com/dmitrijs2005/otpsteward/internal/api"
)

type authResult struct {
	User        string `json:"user"`
	Role        string `json:"role"`
	AccessToken string `json:"accessToken"`
}

func (a *App) authenticate(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("authenticate", flag.ContinueOnError)
	fs.SetOutput(a.out)

	path := fs.String("path", "", "<accountName>/<clientID>")
	code := fs.String("code", "", "passcode (prompted when empty)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	var err error
	if *path == "" {
		if *path, err = GetSimpleText(a.reader, "Client (<name>/<clientID>)", a.out); err != nil {
			return err
		}
	}
	if *code == "" {
		if *code, err = GetCode(a.out); err != nil {
			return err
		}
	}

	env, err := a.api.Authenticate(ctx, &api.AuthenticateRequest{
		RequestID: a.newID(),
		Path:      api.AuthenticatePath(*path),
		Response:  *code,
	})
	if err != nil {
		return err
	}

	var res authResult
	if err := env.Decode(&res); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "user: %s\nrole: %s\naccess token: %s\n", res.User, res.Role, res.AccessToken)
	return nil
}
