// Package provision issues TOTP credentials for new clients.
//
// Provisioning happens in two steps because the final credential label
// embeds the client's durable id, which exists only after the client row is
// stored: Draft produces the secret and a provisional label, Finalize
// rewrites the label once the id is known.
package provision

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"github.com/dmitrijs2005/otpsteward/internal/server/models"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	"github.com/yeqown/go-qrcode/v2"
	"github.com/yeqown/go-qrcode/writer/standard"
)

// Options shape new credentials.
type Options struct {
	Issuer     string
	Period     uint
	Digits     int
	SecretSize uint
	QRWidth    uint8
}

type Provisioner struct {
	opts Options
}

func New(opts Options) *Provisioner {
	if opts.QRWidth == 0 {
		opts.QRWidth = 8
	}
	return &Provisioner{opts: opts}
}

// Draft is a credential whose label does not yet carry the client id.
type Draft struct {
	Secret string
	Params models.AuthParams
	URI    string
}

// Final is the credential handed back to the caller. URI is the otpauth://
// provisioning URI.
type Final struct {
	Params models.AuthParams
	URI    string
}

// AccountLabel is the provisional credential label for an account.
func AccountLabel(accountName string) string {
	return "/user/" + accountName
}

// Draft generates a fresh secret from crypto/rand and the provisional
// parameters for accountName.
func (p *Provisioner) Draft(accountName string) (*Draft, error) {
	if accountName == "" {
		return nil, errors.New("provision: empty account name")
	}
	label := AccountLabel(accountName)

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      p.opts.Issuer,
		AccountName: label,
		Period:      p.opts.Period,
		SecretSize:  p.opts.SecretSize,
		Digits:      otp.Digits(p.opts.Digits),
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return nil, fmt.Errorf("provision: generate secret: %w", err)
	}

	params := models.AuthParams{
		Step:   p.opts.Period,
		Digits: p.opts.Digits,
		Issuer: p.opts.Issuer,
		Name:   label,
	}
	return &Draft{Secret: key.Secret(), Params: params, URI: BuildURI(params, key.Secret())}, nil
}

// Finalize appends clientID to the draft label and renders the final URI.
func (p *Provisioner) Finalize(d *Draft, clientID int64) *Final {
	params := d.Params
	params.Name = d.Params.Name + "/" + strconv.FormatInt(clientID, 10)
	return &Final{Params: params, URI: BuildURI(params, d.Secret)}
}

// BuildURI renders otpauth://totp/<label>?secret=<secret>&issuer=<issuer>.
// The label is escaped as a single path segment, so its slashes are kept
// as %2F.
func BuildURI(params models.AuthParams, secret string) string {
	return models.AlgTOTP + "/" + url.PathEscape(params.Name) +
		"?secret=" + url.QueryEscape(secret) +
		"&issuer=" + url.QueryEscape(params.Issuer)
}

// QRDataURL renders uri as a QR code and returns it as a
// data:image/png;base64 URL.
func (p *Provisioner) QRDataURL(uri string) (string, error) {
	qrc, err := qrcode.NewWith(uri, qrcode.WithErrorCorrectionLevel(qrcode.ErrorCorrectionLow))
	if err != nil {
		return "", fmt.Errorf("provision: qr encode: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString("data:image/png;base64,")
	w := standard.NewWithWriter(base64.NewEncoder(base64.StdEncoding, &buf),
		standard.WithQRWidth(p.opts.QRWidth),
		standard.WithBuiltinImageEncoder(standard.PNG_FORMAT))
	// Save closes the writer, which flushes the base64 tail
	if err := qrc.Save(w); err != nil {
		return "", fmt.Errorf("provision: qr render: %w", err)
	}
	return buf.String(), nil
}
