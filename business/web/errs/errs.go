// Package errs provides types and support related to web v1 functionality.
package errs

import (
	"errors"
	"net/http"

	"github.com/ardanlabs/ledger/foundation/validate"
)

// Response is the form used for API responses from failures in the API.
type Response struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// Trusted is used to pass an error during the request through the
// application with web specific context. The message of a trusted error is
// safe to show to the client.
type Trusted struct {
	Err    error
	Status int
}

// NewTrusted wraps a provided error with an HTTP status code. This
// function should be used when handlers encounter expected errors.
func NewTrusted(err error, status int) error {
	return &Trusted{err, status}
}

// Error implements the error interface. It uses the default message of the
// wrapped error. This is what will be shown in the services' logs.
func (te *Trusted) Error() string {
	return te.Err.Error()
}

// Unwrap provides access to the wrapped error.
func (te *Trusted) Unwrap() error {
	return te.Err
}

// IsTrusted checks if an error of type Trusted exists.
func IsTrusted(err error) bool {
	var te *Trusted
	return errors.As(err, &te)
}

// GetTrusted returns a copy of the Trusted pointer.
func GetTrusted(err error) *Trusted {
	var te *Trusted
	if !errors.As(err, &te) {
		return nil
	}
	return te
}

// =============================================================================

// Classify converts an error into the response sent to the client. Field
// validation failures and trusted errors keep their message. Anything else
// is reported as an internal error so details don't leak.
func Classify(err error) (Response, int) {
	switch {
	case validate.IsFieldErrors(err):
		resp := Response{
			Error:  "data validation error",
			Fields: validate.GetFieldErrors(err).Fields(),
		}
		return resp, http.StatusBadRequest

	case IsTrusted(err):
		te := GetTrusted(err)
		return Response{Error: te.Error()}, te.Status
	}

	return Response{Error: http.StatusText(http.StatusInternalServerError)}, http.StatusInternalServerError
}
