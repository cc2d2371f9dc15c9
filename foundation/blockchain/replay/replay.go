// Package replay maintains the set of transaction ids already recorded in
// the ledger so a submission can't be admitted twice.
package replay

import (
	"errors"
	"sync"
)

// ErrDuplicate is returned when a transaction id has already been seen.
var ErrDuplicate = errors.New("replay_duplicate")

// Guard represents the set of transaction ids that have been admitted.
type Guard struct {
	mu   sync.RWMutex
	seen map[string]struct{}
}

// New constructs a guard seeded with the specified transaction ids.
func New(txIDs ...string) *Guard {
	g := Guard{
		seen: make(map[string]struct{}, len(txIDs)),
	}

	for _, txID := range txIDs {
		g.seen[txID] = struct{}{}
	}

	return &g
}

// Check returns ErrDuplicate if the transaction id has been seen.
func (g *Guard) Check(txID string) error {
	if g.Contains(txID) {
		return ErrDuplicate
	}

	return nil
}

// Contains reports whether the transaction id has been seen.
func (g *Guard) Contains(txID string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()

	_, exists := g.seen[txID]
	return exists
}

// Register records the transaction id. If it was already recorded the set
// is left unchanged and ErrDuplicate is returned.
func (g *Guard) Register(txID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.seen[txID]; exists {
		return ErrDuplicate
	}

	g.seen[txID] = struct{}{}

	return nil
}

// Merge records every transaction id in the list and returns how many
// were new. Ids are never removed.
func (g *Guard) Merge(txIDs []string) int {
	g.mu.Lock()
	defer g.mu.Unlock()

	var added int
	for _, txID := range txIDs {
		if _, exists := g.seen[txID]; !exists {
			g.seen[txID] = struct{}{}
			added++
		}
	}

	return added
}

// Len returns the number of transaction ids recorded.
func (g *Guard) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return len(g.seen)
}
