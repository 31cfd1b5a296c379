package cli

import (
	"context"
	"encoding/base64"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/dmitrijs2005/otpsteward/internal/api"
)

const pngDataURLPrefix = "data:image/png;base64,"

type createResult struct {
	User             string `json:"user"`
	Client           string `json:"client"`
	AuthenticatorURL string `json:"authenticatorURL"`
	OTPURL           string `json:"otpURL"`
}

func (a *App) create(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("create", flag.ContinueOnError)
	fs.SetOutput(a.out)

	id := fs.String("uuid", "", "account uuid (generated when empty)")
	name := fs.String("name", "", "account name")
	role := fs.String("role", "", "master or resident")
	comments := fs.String("comments", "", "free text")
	clientName := fs.String("client-name", "", "name of the first client")
	qr := fs.String("qr", "", "write the provisioning QR code to this PNG file")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *id == "" {
		*id = a.newID()
	}

	req := &api.CreateRequest{
		RequestID:  a.newID(),
		Path:       api.CreatePath(*id),
		Comments:   *comments,
		Role:       *role,
		ClientName: *clientName,
	}
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "name" {
			req.Name = name
		}
	})

	env, err := a.api.Create(ctx, req, func(ack *api.Envelope) {
		fmt.Fprintf(a.out, "accepted %s (uuid %s)\n", ack.RequestID, *id)
	})
	if err != nil {
		return err
	}

	var res createResult
	if err := env.Decode(&res); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "user: %s\nclient: %s\nauthenticator url: %s\n", res.User, res.Client, res.AuthenticatorURL)

	if *qr != "" {
		if err := writeQR(*qr, res.OTPURL); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "qr code written to %s\n", *qr)
	}
	return nil
}

// writeQR decodes a PNG data URL into path.
func writeQR(path, dataURL string) error {
	encoded, ok := strings.CutPrefix(dataURL, pngDataURLPrefix)
	if !ok {
		return errors.New("server returned no QR image")
	}
	png, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return fmt.Errorf("decode qr: %w", err)
	}
	return os.WriteFile(path, png, 0o600)
}
