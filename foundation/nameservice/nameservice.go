// Package nameservice reads the accounts folder and creates a name
// service lookup for the public keys that sign ledger transactions.
package nameservice

import (
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"strings"

	"github.com/ardanlabs/ledger/foundation/blockchain/signature"
	"github.com/ethereum/go-ethereum/crypto"
)

// keyExt is the extension of the private key files.
const keyExt = ".ecdsa"

// NameService maintains a map of public keys for name lookup.
type NameService struct {
	keys map[string]string
}

// New constructs a name service with the keys found in the folder. A
// missing folder produces an empty name service.
func New(root string) (*NameService, error) {
	ns := NameService{
		keys: make(map[string]string),
	}

	if _, err := os.Stat(root); errors.Is(err, fs.ErrNotExist) {
		return &ns, nil
	}

	fn := func(fileName string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("walkdir failure: %w", err)
		}

		if d.IsDir() || filepath.Ext(fileName) != keyExt {
			return nil
		}

		privateKey, err := crypto.LoadECDSA(fileName)
		if err != nil {
			return fmt.Errorf("loading %s: %w", fileName, err)
		}

		publicKey := signature.EncodePublicKey(&privateKey.PublicKey)
		ns.keys[publicKey] = strings.TrimSuffix(filepath.Base(fileName), keyExt)

		return nil
	}

	if err := filepath.WalkDir(root, fn); err != nil {
		return nil, fmt.Errorf("walking directory: %w", err)
	}

	return &ns, nil
}

// Lookup returns the name for the specified public key. Unknown keys are
// returned as is.
func (ns *NameService) Lookup(publicKey string) string {
	name, exists := ns.keys[publicKey]
	if !exists {
		return publicKey
	}
	return name
}

// Copy returns a copy of the map of public keys and names.
func (ns *NameService) Copy() map[string]string {
	return maps.Clone(ns.keys)
}
