package state

import (
	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/genesis"
	"github.com/ardanlabs/ledger/foundation/blockchain/peer"
)

// RetrieveHost returns a copy of host information.
func (s *State) RetrieveHost() string {
	return s.host
}

// RetrieveGenesis returns a copy of the genesis information.
func (s *State) RetrieveGenesis() genesis.Genesis {
	return s.genesis
}

// RetrieveLatestBlock returns a copy the current latest block.
func (s *State) RetrieveLatestBlock() database.Block {
	return s.db.LatestBlock()
}

// RetrieveChain returns a copy of the full chain.
func (s *State) RetrieveChain() []database.Block {
	return s.db.Blocks()
}

// RetrieveKnownPeers retrieves a copy of the known peer list.
func (s *State) RetrieveKnownPeers() []peer.Peer {
	return s.knownPeers.Copy(s.host)
}

// RetrieveStatus returns the status of this node as reported to peers.
func (s *State) RetrieveStatus() peer.PeerStatus {
	blocks := s.db.Blocks()

	return peer.PeerStatus{
		Host:            s.host,
		LatestBlockHash: blocks[len(blocks)-1].BlockHash,
		Length:          len(blocks),
		KnownPeers:      s.knownPeers.Hosts(s.host),
	}
}

// RetrieveSeenTxIDs returns the number of transaction ids held by the
// replay guard.
func (s *State) RetrieveSeenTxIDs() int {
	return s.guard.Len()
}

// HasSeenTxID reports whether the replay guard holds the transaction id.
func (s *State) HasSeenTxID(txID string) bool {
	return s.guard.Contains(txID)
}
