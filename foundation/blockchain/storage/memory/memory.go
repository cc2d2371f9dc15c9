// Package memory implements the ability to read and write the chain to
// memory using a slice.
package memory

import (
	"slices"
	"sync"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
)

// Memory represents the serialization implementation for reading and storing
// the chain in memory using a slice. This implements the database.Storage
// interface.
type Memory struct {
	mu     sync.RWMutex
	blocks []database.Block
	saves  int
}

// New constructs a Memory value for use.
func New() *Memory {
	return &Memory{}
}

// Close in this implementation has nothing to do since everything
// is in memory.
func (m *Memory) Close() error {
	return nil
}

// Load returns a copy of the last saved chain.
func (m *Memory) Load() ([]database.Block, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return slices.Clone(m.blocks), nil
}

// Save stores a copy of the specified chain.
func (m *Memory) Save(blocks []database.Block) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.blocks = slices.Clone(blocks)
	m.saves++

	return nil
}

// Saves returns the number of times the chain has been saved.
func (m *Memory) Saves() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.saves
}
