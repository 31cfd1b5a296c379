package provision

import (
	"bytes"
	"encoding/base32"
	"encoding/base64"
	"image/png"
	"strings"
	"testing"

	"github.com/dmitrijs2005/otpsteward/internal/server/models"
	"github.com/pquerna/otp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProvisioner() *Provisioner {
	return New(Options{Issuer: "steward", Period: 30, Digits: 6, SecretSize: 20})
}

func TestDraft(t *testing.T) {
	p := newProvisioner()

	d, err := p.Draft("mrose")
	require.NoError(t, err)

	assert.Equal(t, models.AuthParams{Step: 30, Digits: 6, Issuer: "steward", Name: "/user/mrose"}, d.Params)
	assert.Len(t, d.Secret, 32, "20 bytes encode to 32 base32 chars")
	assert.NotContains(t, d.Secret, "=")

	raw, err := base32.StdEncoding.WithPadding(base32.NoPadding).DecodeString(d.Secret)
	require.NoError(t, err)
	assert.Len(t, raw, 20)

	assert.Equal(t, "otpauth://totp/%2Fuser%2Fmrose?secret="+d.Secret+"&issuer=steward", d.URI)
}

func TestDraft_SecretsDiffer(t *testing.T) {
	p := newProvisioner()
	a, err := p.Draft("mrose")
	require.NoError(t, err)
	b, err := p.Draft("mrose")
	require.NoError(t, err)
	assert.NotEqual(t, a.Secret, b.Secret)
}

func TestDraft_EmptyName(t *testing.T) {
	_, err := newProvisioner().Draft("")
	assert.Error(t, err)
}

func TestFinalize_LabelCarriesClientID(t *testing.T) {
	p := newProvisioner()
	d, err := p.Draft("mrose")
	require.NoError(t, err)

	f := p.Finalize(d, 1)

	assert.Equal(t, "/user/mrose/1", f.Params.Name)
	assert.Equal(t, "/user/mrose", d.Params.Name, "draft is not modified")

	key, err := otp.NewKeyFromURL(f.URI)
	require.NoError(t, err)
	assert.Equal(t, "totp", key.Type())
	assert.Equal(t, d.Secret, key.Secret())
	assert.Equal(t, "steward", key.Issuer())
	assert.True(t, strings.HasSuffix(key.AccountName(), "/1"), key.AccountName())
}

func TestFinalize_QRIsPNGDataURL(t *testing.T) {
	p := newProvisioner()
	d, err := p.Draft("mrose")
	require.NoError(t, err)
	qr, err := p.QRDataURL(p.Finalize(d, 7).URI)
	require.NoError(t, err)

	payload, ok := strings.CutPrefix(qr, "data:image/png;base64,")
	require.True(t, ok)

	raw, err := base64.StdEncoding.DecodeString(payload)
	require.NoError(t, err)
	_, err = png.Decode(bytes.NewReader(raw))
	assert.NoError(t, err)
}

func TestBuildURI_Escaping(t *testing.T) {
	params := models.AuthParams{Issuer: "Acme Corp", Name: "/user/a b"}
	assert.Equal(t, "otpauth://totp/%2Fuser%2Fa%20b?secret=ABC&issuer=Acme+Corp", BuildURI(params, "ABC"))
}
