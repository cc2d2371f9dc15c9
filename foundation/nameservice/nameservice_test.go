package nameservice_test

import (
	"path/filepath"
	"testing"

	"github.com/ardanlabs/ledger/foundation/blockchain/signature"
	"github.com/ardanlabs/ledger/foundation/nameservice"
	"github.com/ethereum/go-ethereum/crypto"
)

func Test_Lookup(t *testing.T) {
	dir := t.TempDir()

	pk, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("Should be able to generate a key: %s", err)
	}

	if err := crypto.SaveECDSA(filepath.Join(dir, "registrar.ecdsa"), pk); err != nil {
		t.Fatalf("Should be able to save the key: %s", err)
	}

	ns, err := nameservice.New(dir)
	if err != nil {
		t.Fatalf("Should be able to load the name service: %s", err)
	}

	pub := signature.EncodePublicKey(&pk.PublicKey)
	if name := ns.Lookup(pub); name != "registrar" {
		t.Fatalf("Should resolve the key to its file name, got %q", name)
	}

	if name := ns.Lookup("0x04ab"); name != "0x04ab" {
		t.Fatalf("Should return unknown keys unchanged, got %q", name)
	}

	if len(ns.Copy()) != 1 {
		t.Fatalf("Should hold one key, got %d", len(ns.Copy()))
	}

	empty, err := nameservice.New(filepath.Join(dir, "missing"))
	if err != nil || len(empty.Copy()) != 0 {
		t.Fatalf("Should treat a missing folder as empty, got %v", err)
	}
}
