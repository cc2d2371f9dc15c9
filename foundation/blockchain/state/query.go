package state

import (
	"errors"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
)

// ErrNotFound is returned when a queried block does not exist.
var ErrNotFound = errors.New("not found")

// QueryBlockByTxID returns the block carrying the transaction id.
func (s *State) QueryBlockByTxID(txID string) (database.Block, error) {
	block, exists := s.db.QueryByTxID(txID)
	if !exists {
		return database.Block{}, ErrNotFound
	}

	return block, nil
}

// QueryBlockByIndex returns the block at the index.
func (s *State) QueryBlockByIndex(index uint64) (database.Block, error) {
	block, exists := s.db.GetBlock(index)
	if !exists {
		return database.Block{}, ErrNotFound
	}

	return block, nil
}
