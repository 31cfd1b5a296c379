package auth

import (
	"crypto/subtle"
	"errors"
	"time"

	"github.com/dmitrijs2005/otpsteward/internal/server/models"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

// ErrAlgorithm reports a stored credential steward cannot verify.
var ErrAlgorithm = errors.New("unsupported credential algorithm")

// maxDigits bounds the code length; HOTP truncation yields 31 bits.
const maxDigits = 10

// Authenticator checks passcodes against stored TOTP credentials.
//
// Only the current time step is accepted: codes from the previous or next
// step fail.
type Authenticator struct {
	now func() time.Time
}

type Option func(*Authenticator)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(a *Authenticator) { a.now = now }
}

func NewAuthenticator(opts ...Option) *Authenticator {
	a := &Authenticator{now: time.Now}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Now is the authenticator's clock.
func (a *Authenticator) Now() time.Time {
	return a.now()
}

// Verify reports whether response is the code for the client's secret at
// the current step. The code length is taken from the response. Only
// ErrAlgorithm is returned as an error; every other mismatch is false.
func (a *Authenticator) Verify(c *models.Client, response string) (bool, error) {
	if c.AuthAlg != models.AlgTOTP {
		return false, ErrAlgorithm
	}

	if len(response) > maxDigits {
		return false, nil
	}

	step := c.AuthParams.Step
	if step == 0 {
		step = 30
	}

	expected, err := totp.GenerateCodeCustom(c.AuthKey, a.now(), totp.ValidateOpts{
		Period:    step,
		Skew:      0,
		Digits:    otp.Digits(len(response)),
		Algorithm: otp.AlgorithmSHA1,
	})
	if err != nil {
		// undecodable secret
		return false, nil
	}

	return subtle.ConstantTimeCompare([]byte(expected), []byte(response)) == 1, nil
}
