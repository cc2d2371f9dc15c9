// Package badgerdb implements the ability to read and write the chain to a
// badger key value store.
package badgerdb

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/dgraph-io/badger/v4"
)

// chainKey is the key the chain document is stored under.
var chainKey = []byte("ledger:chain")

// Badger represents the serialization implementation for reading and
// storing the chain as one value in badger. This implements the
// database.Storage interface.
type Badger struct {
	db *badger.DB
}

// New opens or creates the badger store in the specified directory.
func New(dir string) (*Badger, error) {
	opts := badger.DefaultOptions(dir).
		WithSyncWrites(true).
		WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening badger: %w", err)
	}

	return &Badger{db: db}, nil
}

// Close releases the badger store.
func (b *Badger) Close() error {
	return b.db.Close()
}

// Load reads the chain document back from the store. A missing key
// returns no blocks.
func (b *Badger) Load() ([]database.Block, error) {
	var data []byte

	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(chainKey)
		if err != nil {
			return err
		}

		data, err = item.ValueCopy(nil)
		return err
	})

	switch {
	case errors.Is(err, badger.ErrKeyNotFound):
		return nil, nil
	case err != nil:
		return nil, err
	}

	var blocks []database.Block
	if err := json.Unmarshal(data, &blocks); err != nil {
		return nil, fmt.Errorf("%w: %s", database.ErrCorrupt, err)
	}

	return blocks, nil
}

// Save replaces the chain document in a single transaction.
func (b *Badger) Save(blocks []database.Block) error {
	data, err := json.Marshal(blocks)
	if err != nil {
		return err
	}

	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(chainKey, data)
	})
}
