package common

import "errors"

var (
	// repository specific errors
	ErrorNotFound = errors.New("not found")

	// service specific errors
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// identity index errors
	ErrDuplicateUUID = errors.New("duplicate uuid")
	ErrDuplicateName = errors.New("duplicate name")

	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// RequestError is the only error shape that is reported back to a caller.
// Permanent errors will fail again if retried unchanged.
type RequestError struct {
	Permanent  bool
	Diagnostic string
}

func (e *RequestError) Error() string {
	return e.Diagnostic
}

// Permanent returns a RequestError that must not be retried.
func Permanent(diagnostic string) *RequestError {
	return &RequestError{Permanent: true, Diagnostic: diagnostic}
}

// Transient returns a RequestError that may succeed on retry.
func Transient(diagnostic string) *RequestError {
	return &RequestError{Diagnostic: diagnostic}
}

// AsRequestError extracts a RequestError from err. Anything else is reported
// as a transient internal error so details never leak to callers.
func AsRequestError(err error) *RequestError {
	if err == nil {
		return nil
	}
	var re *RequestError
	if errors.As(err, &re) {
		return re
	}
	return Transient(DiagInternal)
}
