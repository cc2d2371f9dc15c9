package web

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/ardanlabs/ledger/foundation/validate"
	"github.com/dimfeld/httptreemux/v5"
)

// maxBodyBytes caps the size of a request body.
const maxBodyBytes = 1 << 20

// Param returns the web call parameters from the request.
func Param(r *http.Request, key string) string {
	m := httptreemux.ContextParams(r.Context())
	return m[key]
}

// Decode reads the body of an HTTP request looking for a JSON document. The
// body is decoded into the provided value.
//
// If the provided value is a struct then it is checked for validation tags.
func Decode(r *http.Request, val any) error {
	decoder := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	if err := decoder.Decode(val); err != nil {
		return fmt.Errorf("unable to decode payload: %w", err)
	}

	if err := validate.Check(val); err != nil {
		return err
	}

	return nil
}
