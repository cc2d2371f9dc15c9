// Package database handles all the lower level support for maintaining the
// ledger in memory and persisting it through a storage implementation.
package database

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/ardanlabs/ledger/foundation/blockchain/genesis"
	"github.com/ardanlabs/ledger/foundation/blockchain/signature"
)

// Database manages the in memory copy of the chain and keeps the storage
// in step with it.
type Database struct {
	mu sync.RWMutex

	genesis genesis.Genesis
	blocks  []Block

	storage Storage
}

// New constructs a new database from the chain held in storage. When the
// storage is empty, corrupt, or holds a chain that fails validation, a fresh
// genesis block is created and saved over it.
func New(gen genesis.Genesis, storage Storage, verifier signature.Verifier, evHandler func(v string, args ...any)) (*Database, error) {
	if evHandler == nil {
		evHandler = func(string, ...any) {}
	}

	blocks, err := storage.Load()
	switch {
	case errors.Is(err, ErrCorrupt):
		evHandler("database: New: WARNING: %s: recreating genesis", err)
		blocks = nil

	case err != nil:
		return nil, fmt.Errorf("loading chain: %w", err)
	}

	if len(blocks) > 0 {
		if err := ValidateChain(blocks, gen.Difficulty, verifier); err != nil {
			ce, ok := GetChainError(err)
			if !ok {
				return nil, fmt.Errorf("validating stored chain: %w", err)
			}

			evHandler("database: New: WARNING: stored chain invalid at block %d: %s: recreating genesis", ce.Index, ce.Reason)
			blocks = nil
		}
	}

	if len(blocks) == 0 {
		genesisBlock, err := NewGenesisBlock(gen, evHandler)
		if err != nil {
			return nil, fmt.Errorf("mining genesis: %w", err)
		}

		blocks = []Block{genesisBlock}
		if err := storage.Save(blocks); err != nil {
			return nil, fmt.Errorf("saving genesis: %w", err)
		}

		evHandler("database: New: genesis created: hash[%s]", genesisBlock.BlockHash)
	}

	evHandler("database: New: chain loaded: blocks[%d]", len(blocks))

	db := Database{
		genesis: gen,
		blocks:  blocks,
		storage: storage,
	}

	return &db, nil
}

// Close closes the underlying storage.
func (db *Database) Close() error {
	return db.storage.Close()
}

// Genesis returns the genesis values the database was constructed with.
func (db *Database) Genesis() genesis.Genesis {
	return db.genesis
}

// LatestBlock returns the latest block.
func (db *Database) LatestBlock() Block {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return db.blocks[len(db.blocks)-1]
}

// Length returns the number of blocks in the chain.
func (db *Database) Length() int {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return len(db.blocks)
}

// Blocks returns a copy of the chain.
func (db *Database) Blocks() []Block {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return slices.Clone(db.blocks)
}

// GetBlock returns the block at the specified index.
func (db *Database) GetBlock(index uint64) (Block, bool) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	if index >= uint64(len(db.blocks)) {
		return Block{}, false
	}

	return db.blocks[index], true
}

// QueryByTxID returns the block carrying the specified transaction id.
func (db *Database) QueryByTxID(txID string) (Block, bool) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	for _, b := range db.blocks {
		if id, ok := b.TxID(); ok && id == txID {
			return b, true
		}
	}

	return Block{}, false
}

// TxIDs returns every transaction id recorded in the chain.
func (db *Database) TxIDs() []string {
	db.mu.RLock()
	defer db.mu.RUnlock()

	ids := make([]string, 0, len(db.blocks))
	for _, b := range db.blocks {
		if id, ok := b.TxID(); ok {
			ids = append(ids, id)
		}
	}

	return ids
}

// Append adds a block to the end of the chain. The block is persisted
// before the in memory chain changes so a failed save leaves both intact.
func (db *Database) Append(block Block) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	tail := db.blocks[len(db.blocks)-1]
	if block.Index != tail.Index+1 || block.PreviousHash != tail.BlockHash {
		return fmt.Errorf("block %d does not extend the chain tip %d", block.Index, tail.Index)
	}

	blocks := append(slices.Clip(db.blocks), block)
	if err := db.storage.Save(blocks); err != nil {
		return fmt.Errorf("saving chain: %w", err)
	}

	db.blocks = blocks

	return nil
}

// Replace swaps the entire chain for the specified blocks. The caller is
// responsible for having validated the replacement.
func (db *Database) Replace(blocks []Block) error {
	if len(blocks) == 0 {
		return errors.New("replacement chain is empty")
	}

	blocks = slices.Clone(blocks)

	db.mu.Lock()
	defer db.mu.Unlock()

	if err := db.storage.Save(blocks); err != nil {
		return fmt.Errorf("saving chain: %w", err)
	}

	db.blocks = blocks

	return nil
}
