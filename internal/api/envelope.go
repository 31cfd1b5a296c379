// Package api defines the messages exchanged with steward: requests
// addressed by path, and the envelope every reply is wrapped in.
package api

import (
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/otpsteward/internal/common"
)

// Envelope is a reply. An acknowledgement carries only RequestID; a final
// reply carries either Result or Error.
type Envelope struct {
	RequestID string          `json:"requestID"`
	Result    json.RawMessage `json:"result,omitempty"`
	Error     *ErrorBody      `json:"error,omitempty"`
}

type ErrorBody struct {
	Permanent  bool   `json:"permanent"`
	Diagnostic string `json:"diagnostic"`
}

func (e *ErrorBody) Error() string {
	if e.Permanent {
		return e.Diagnostic + " (permanent)"
	}
	return e.Diagnostic
}

// Ack builds the acknowledgement of a create request.
func Ack(requestID string) *Envelope {
	return &Envelope{RequestID: requestID}
}

// Success wraps v as the result of request requestID.
func Success(requestID string, v any) (*Envelope, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}
	return &Envelope{RequestID: requestID, Result: b}, nil
}

// Failure wraps err as the error of request requestID. Errors other than
// common.RequestError become a transient internal error.
func Failure(requestID string, err error) *Envelope {
	re := common.AsRequestError(err)
	return &Envelope{
		RequestID: requestID,
		Error:     &ErrorBody{Permanent: re.Permanent, Diagnostic: re.Diagnostic},
	}
}

// IsAck reports whether e is an acknowledgement rather than a final reply.
func (e *Envelope) IsAck() bool {
	return e.Result == nil && e.Error == nil
}

// Decode unmarshals the result into v, or returns the envelope error.
func (e *Envelope) Decode(v any) error {
	if e.Error != nil {
		return e.Error
	}
	if e.Result == nil {
		return fmt.Errorf("request %s: empty result", e.RequestID)
	}
	return json.Unmarshal(e.Result, v)
}
