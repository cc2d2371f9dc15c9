package cmd

import (
	"strings"
	"testing"

	"github.com/ardanlabs/ledger/foundation/blockchain/canonical"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func Test_BuildPayload(t *testing.T) {
	t.Log("Given the need to build a payload from the data flag.")
	{
		tt := []struct {
			name string
			data string
			exp  string
		}{
			{name: "empty", data: `{}`, exp: `{"last_update":1700000000,"tx_id":"t1"}`},
			{name: "bigint", data: `{"qty":9007199254740993}`, exp: `{"last_update":1700000000,"qty":9007199254740993,"tx_id":"t1"}`},
			{name: "override", data: `{"tx_id":"other","sku":"A"}`, exp: `{"last_update":1700000000,"sku":"A","tx_id":"t1"}`},
		}

		for testID, test := range tt {
			tf := func(t *testing.T) {
				v, err := buildPayload(test.data, "t1", 1700000000)
				if err != nil {
					t.Fatalf("\t%s\tTest %d:\tShould be able to build the payload: %v", failed, testID, err)
				}

				if got := string(canonical.Encode(v)); got != test.exp {
					t.Fatalf("\t%s\tTest %d:\tShould encode as %s, got %s", failed, testID, test.exp, got)
				}
				t.Logf("\t%s\tTest %d:\tShould encode the %s payload exactly.", success, testID, test.name)
			}

			t.Run(test.name, tf)
		}

		for _, data := range []string{`[1,2]`, `"text"`, `{not json`} {
			if _, err := buildPayload(data, "t1", 1700000000); err == nil || !strings.Contains(err.Error(), "JSON object") {
				t.Fatalf("\t%s\tShould refuse %s as data, got %v", failed, data, err)
			}
		}
		t.Logf("\t%s\tShould refuse data that is not a JSON object.", success)
	}
}
