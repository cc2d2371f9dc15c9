package signature_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/ardanlabs/ledger/foundation/blockchain/canonical"
	"github.com/ardanlabs/ledger/foundation/blockchain/signature"
	"github.com/ethereum/go-ethereum/crypto"
)

const (
	pkHexKey    = "fae85851bdf5c9f49923722ce38f3c1defcfd3619ef5453230a58ad805499959"
	otherHexKey = "8dc79feefd3b86e2f9991def0e5ccd9a5128e104682407b308594bc1032ac7f0"
)

// =============================================================================

func Test_Signing(t *testing.T) {
	payload := map[string]any{
		"tx_id":  "t1",
		"course": "Web Programming",
		"term":   "Fall 2025",
	}

	pk, err := crypto.HexToECDSA(pkHexKey)
	if err != nil {
		t.Fatalf("Should be able to generate a private key: %s", err)
	}

	sig, err := signature.Sign(payload, pk)
	if err != nil {
		t.Fatalf("Should be able to sign data: %s", err)
	}

	if !strings.HasPrefix(sig, "0x") || len(sig) != 2+2*crypto.SignatureLength {
		t.Fatalf("Should get back a 0x prefixed 65 byte signature, got %s", sig)
	}

	pub := signature.EncodePublicKey(&pk.PublicKey)

	if err := signature.Verify(payload, sig, pub); err != nil {
		t.Fatalf("Should be able to verify the signature: %s", err)
	}

	// The same logical payload with a different key order must verify.
	reordered, err := canonical.Parse([]byte(`{"term":"Fall 2025","tx_id":"t1","course":"Web Programming"}`))
	if err != nil {
		t.Fatalf("Should be able to parse the payload: %s", err)
	}

	if err := signature.Verify(reordered, sig, pub); err != nil {
		t.Fatalf("Should be able to verify a reordered payload: %s", err)
	}

	decoded, err := signature.DecodePublicKey(pub)
	if err != nil {
		t.Fatalf("Should be able to decode the public key: %s", err)
	}

	if !decoded.Equal(&pk.PublicKey) {
		t.Fatalf("Should get back the same public key.")
	}
}

func Test_VerifyFailures(t *testing.T) {
	payload := map[string]any{"tx_id": "t1", "value": 10}

	pk, err := crypto.HexToECDSA(pkHexKey)
	if err != nil {
		t.Fatalf("Should be able to generate a private key: %s", err)
	}

	other, err := crypto.HexToECDSA(otherHexKey)
	if err != nil {
		t.Fatalf("Should be able to generate a private key: %s", err)
	}

	sig, err := signature.Sign(payload, pk)
	if err != nil {
		t.Fatalf("Should be able to sign data: %s", err)
	}

	pub := signature.EncodePublicKey(&pk.PublicKey)

	// Same R and S with a different trailing recovery byte.
	withRecovery := func(v string) string {
		return sig[:len(sig)-2] + v
	}

	flipped := "01"
	if strings.HasSuffix(sig, "01") {
		flipped = "00"
	}

	if err := signature.Verify(payload, withRecovery(sig[len(sig)-2:]), pub); err != nil {
		t.Fatalf("Should verify the untouched signature: %s", err)
	}

	type table struct {
		name    string
		payload any
		sig     string
		pub     string
	}

	tt := []table{
		{name: "tampered", payload: map[string]any{"tx_id": "t1", "value": 11}, sig: sig, pub: pub},
		{name: "wrong-key", payload: payload, sig: sig, pub: signature.EncodePublicKey(&other.PublicKey)},
		{name: "bad-key-hex", payload: payload, sig: sig, pub: "0xzz"},
		{name: "bad-key-bytes", payload: payload, sig: sig, pub: "0x0401"},
		{name: "no-prefix", payload: payload, sig: strings.TrimPrefix(sig, "0x"), pub: pub},
		{name: "short-sig", payload: payload, sig: sig[:40], pub: pub},
		{name: "empty", payload: payload, sig: "", pub: ""},
		{name: "recovery-27", payload: payload, sig: withRecovery("1b"), pub: pub},
		{name: "recovery-2", payload: payload, sig: withRecovery("02"), pub: pub},
		{name: "recovery-flipped", payload: payload, sig: withRecovery(flipped), pub: pub},
	}

	for _, tst := range tt {
		f := func(t *testing.T) {
			err := signature.Verify(tst.payload, tst.sig, tst.pub)
			if !errors.Is(err, signature.ErrInvalidSignature) {
				t.Fatalf("Should classify the failure as an invalid signature, got %v", err)
			}
		}

		t.Run(tst.name, f)
	}
}

func Test_Hash(t *testing.T) {
	value1 := map[string]any{"name": "Bill", "age": 51}
	value2 := struct {
		Age  int    `json:"age"`
		Name string `json:"name"`
	}{
		Age:  51,
		Name: "Bill",
	}

	h1 := signature.Hash(value1)
	h2 := signature.Hash(value2)

	if len(h1) != 64 {
		t.Fatalf("Should get back a 64 character hash, got %q", h1)
	}

	if h1 != h2 {
		t.Logf("got: %s", h1)
		t.Logf("exp: %s", h2)
		t.Fatalf("Should get back the same hash for the same logical value.")
	}

	if signature.Hash(func() {}) != "" {
		t.Fatalf("Should get back an empty hash for a value that can't be encoded.")
	}
}

func Test_CachedVerifier(t *testing.T) {
	pk, err := crypto.HexToECDSA(pkHexKey)
	if err != nil {
		t.Fatalf("Should be able to generate a private key: %s", err)
	}

	payload, err := canonical.FromAny(map[string]any{"tx_id": "t1"})
	if err != nil {
		t.Fatalf("Should be able to build a payload: %s", err)
	}

	sig, err := signature.Sign(payload, pk)
	if err != nil {
		t.Fatalf("Should be able to sign data: %s", err)
	}
	pub := signature.EncodePublicKey(&pk.PublicKey)

	counter := countingVerifier{next: signature.Secp256k1{}}

	cv, err := signature.NewCachedVerifier(&counter, 16)
	if err != nil {
		t.Fatalf("Should be able to construct a cached verifier: %s", err)
	}

	for range 3 {
		if err := cv.Verify(payload, sig, pub); err != nil {
			t.Fatalf("Should be able to verify the signature: %s", err)
		}
	}

	tampered, _ := canonical.FromAny(map[string]any{"tx_id": "t2"})
	for range 2 {
		if err := cv.Verify(tampered, sig, pub); !errors.Is(err, signature.ErrInvalidSignature) {
			t.Fatalf("Should remember the invalid outcome, got %v", err)
		}
	}

	if counter.calls != 2 {
		t.Fatalf("Should only verify each distinct input once, got %d calls", counter.calls)
	}

	if cv.Len() != 2 {
		t.Fatalf("Should hold two cached outcomes, got %d", cv.Len())
	}
}

// =============================================================================

type countingVerifier struct {
	next  signature.Verifier
	calls int
}

func (cv *countingVerifier) Verify(payload canonical.Value, sig string, pub string) error {
	cv.calls++
	return cv.next.Verify(payload, sig, pub)
}
