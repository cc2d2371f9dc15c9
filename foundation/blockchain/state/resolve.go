package state

import (
	"context"
	"fmt"

	"github.com/ardanlabs/ledger/foundation/blockchain/consensus"
	"github.com/ardanlabs/ledger/foundation/blockchain/database"
)

// Resolution describes the outcome of a conflict resolution cycle.
type Resolution struct {
	Replaced bool   `json:"replaced"`
	Length   int    `json:"length"`
	Peer     string `json:"peer,omitempty"`
}

// ResolveConflicts asks every known peer for its chain and adopts the
// longest one that is strictly longer than ours and fully valid. Peers are
// queried outside the lock. Selection, persistence, and the replay guard
// merge happen under it so a submission can't slip in between.
func (s *State) ResolveConflicts(ctx context.Context) (Resolution, error) {
	s.evHandler("state: ResolveConflicts: started")
	defer s.evHandler("state: ResolveConflicts: completed")

	candidates := consensus.Collect(ctx, s.RetrieveKnownPeers(), s.NetRequestPeerChain, s.peerTimeout, s.evHandler)

	s.mu.Lock()
	defer s.mu.Unlock()

	localLen := s.db.Length()

	best, found := consensus.Select(localLen, candidates, s.validateChain, s.evHandler)
	if !found {
		s.evHandler("state: ResolveConflicts: chain is authoritative: length[%d]", localLen)
		return Resolution{Length: localLen}, nil
	}

	if err := s.db.Replace(best.Blocks); err != nil {
		return Resolution{Length: localLen}, fmt.Errorf("persisting chain from %s: %w", best.Peer, err)
	}

	var txIDs []string
	for _, b := range best.Blocks {
		if txID, ok := b.TxID(); ok {
			txIDs = append(txIDs, txID)
		}
	}
	added := s.guard.Merge(txIDs)

	s.evHandler("viewer: chain replaced: peer[%s]: length[%d]: new-txids[%d]", best.Peer, len(best.Blocks), added)

	res := Resolution{
		Replaced: true,
		Length:   len(best.Blocks),
		Peer:     best.Peer.Host,
	}

	return res, nil
}

// validateChain applies the chain rules using this node's difficulty
// and verifier.
func (s *State) validateChain(blocks []database.Block) error {
	return database.ValidateChain(blocks, s.genesis.Difficulty, s.verifier)
}
