// Package consensus implements the longest valid chain rule used to settle
// conflicts between the chains held by different nodes.
package consensus

import (
	"context"
	"sync"
	"time"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/peer"
)

// FetchFunc retrieves the full chain held by a peer.
type FetchFunc func(ctx context.Context, pr peer.Peer) ([]database.Block, error)

// ValidateFunc checks a candidate chain and returns nil when it's valid.
type ValidateFunc func(blocks []database.Block) error

// Candidate represents a chain offered by a peer.
type Candidate struct {
	Peer   peer.Peer
	Blocks []database.Block
}

// =============================================================================

// Collect asks every peer for its chain concurrently. Each request runs
// under its own timeout. Peers that fail or time out are logged and left
// out of the result. Candidates are returned in the order of the peers.
func Collect(ctx context.Context, peers []peer.Peer, fetch FetchFunc, timeout time.Duration, ev func(v string, args ...any)) []Candidate {
	if ev == nil {
		ev = func(string, ...any) {}
	}

	results := make([]*Candidate, len(peers))

	var wg sync.WaitGroup
	wg.Add(len(peers))

	for i, pr := range peers {
		go func() {
			defer wg.Done()

			ctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			blocks, err := fetch(ctx, pr)
			if err != nil {
				ev("consensus: Collect: peer[%s]: WARNING: %s", pr, err)
				return
			}

			ev("consensus: Collect: peer[%s]: length[%d]", pr, len(blocks))
			results[i] = &Candidate{Peer: pr, Blocks: blocks}
		}()
	}

	wg.Wait()

	candidates := make([]Candidate, 0, len(peers))
	for _, c := range results {
		if c != nil {
			candidates = append(candidates, *c)
		}
	}

	return candidates
}

// Select applies the longest valid chain rule. A candidate replaces the
// current best only when it's strictly longer and passes validation, so a
// chain of equal length never wins. The bool is false when no candidate
// beats the local length.
func Select(localLen int, candidates []Candidate, validate ValidateFunc, ev func(v string, args ...any)) (Candidate, bool) {
	if ev == nil {
		ev = func(string, ...any) {}
	}

	bestLen := localLen

	var best Candidate
	var found bool

	for _, c := range candidates {
		if len(c.Blocks) <= bestLen {
			ev("consensus: Select: peer[%s]: length[%d]: not longer than [%d]", c.Peer, len(c.Blocks), bestLen)
			continue
		}

		if err := validate(c.Blocks); err != nil {
			ev("consensus: Select: peer[%s]: REJECTED: %s", c.Peer, err)
			continue
		}

		ev("consensus: Select: peer[%s]: length[%d]: best so far", c.Peer, len(c.Blocks))

		best = c
		bestLen = len(c.Blocks)
		found = true
	}

	return best, found
}
