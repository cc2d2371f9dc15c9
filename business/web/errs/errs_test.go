package errs_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/ardanlabs/ledger/business/web/errs"
	"github.com/ardanlabs/ledger/foundation/validate"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func Test_Classify(t *testing.T) {
	fields := validate.FieldErrors{{Field: "nodes", Error: "nodes is a required field"}}

	tt := []struct {
		name   string
		err    error
		status int
		msg    string
	}{
		{name: "trusted", err: errs.NewTrusted(errors.New("replay_duplicate"), http.StatusForbidden), status: http.StatusForbidden, msg: "replay_duplicate"},
		{name: "wrapped", err: fmt.Errorf("submit: %w", errs.NewTrusted(errors.New("missing_tx_id"), http.StatusBadRequest)), status: http.StatusBadRequest, msg: "missing_tx_id"},
		{name: "fields", err: errs.NewTrusted(fields, http.StatusBadRequest), status: http.StatusBadRequest, msg: "data validation error"},
		{name: "untrusted", err: errors.New("disk on fire"), status: http.StatusInternalServerError, msg: http.StatusText(http.StatusInternalServerError)},
	}

	t.Log("Given the need to turn errors into client responses.")
	{
		for testID, test := range tt {
			tf := func(t *testing.T) {
				resp, status := errs.Classify(test.err)

				if status != test.status {
					t.Fatalf("\t%s\tTest %d:\tShould get status %d, got %d", failed, testID, test.status, status)
				}
				t.Logf("\t%s\tTest %d:\tShould get status %d.", success, testID, test.status)

				if resp.Error != test.msg {
					t.Fatalf("\t%s\tTest %d:\tShould get message %q, got %q", failed, testID, test.msg, resp.Error)
				}
				t.Logf("\t%s\tTest %d:\tShould get message %q.", success, testID, test.msg)
			}

			t.Run(test.name, tf)
		}
	}
}
