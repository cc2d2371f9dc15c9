// Package state is the core API for the ledger and implements all the
// business rules and processing.
package state

import (
	"errors"
	"sync"
	"time"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/genesis"
	"github.com/ardanlabs/ledger/foundation/blockchain/peer"
	"github.com/ardanlabs/ledger/foundation/blockchain/replay"
	"github.com/ardanlabs/ledger/foundation/blockchain/signature"
)

// defaultPeerTimeout bounds a single request to a peer.
const defaultPeerTimeout = 5 * time.Second

// defaultMaxPeerBytes bounds how much of a peer response is decoded.
const defaultMaxPeerBytes = 64 << 20

// EventHandler defines a function that is called when events
// occur in the processing of persisting blocks.
type EventHandler func(v string, args ...any)

// Worker interface represents the behavior required to be implemented by any
// package providing support for background conflict resolution.
type Worker interface {
	Shutdown()
	SignalResolve()
}

// =============================================================================

// Config represents the configuration required to start
// the ledger node.
type Config struct {
	Host            string
	Storage         database.Storage
	Genesis         genesis.Genesis
	KnownPeers      *peer.PeerSet
	AuthorizedPeers *peer.PeerSet
	PeerTimeout     time.Duration
	MaxPeerBytes    int64
	Verifier        signature.Verifier
	EvHandler       EventHandler
}

// State manages the ledger database.
type State struct {
	mu sync.Mutex

	host         string
	peerTimeout  time.Duration
	maxPeerBytes int64
	evHandler    EventHandler

	knownPeers *peer.PeerSet
	authorized *peer.PeerSet
	genesis    genesis.Genesis
	verifier   signature.Verifier
	db         *database.Database
	guard      *replay.Guard

	Worker Worker
}

// New constructs a new ledger for data management. The chain is loaded
// from storage, or started from genesis, and the replay guard is seeded
// with every transaction id it holds.
func New(cfg Config) (*State, error) {
	if cfg.Storage == nil {
		return nil, errors.New("storage is required")
	}

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	if err := cfg.Genesis.Validate(); err != nil {
		return nil, err
	}

	verifier := cfg.Verifier
	if verifier == nil {
		verifier = signature.Secp256k1{}
	}

	knownPeers := cfg.KnownPeers
	if knownPeers == nil {
		knownPeers = peer.NewPeerSet()
	}

	authorized := cfg.AuthorizedPeers
	if authorized == nil {
		authorized = peer.NewPeerSet()
	}

	peerTimeout := cfg.PeerTimeout
	if peerTimeout <= 0 {
		peerTimeout = defaultPeerTimeout
	}

	maxPeerBytes := cfg.MaxPeerBytes
	if maxPeerBytes <= 0 {
		maxPeerBytes = defaultMaxPeerBytes
	}

	db, err := database.New(cfg.Genesis, cfg.Storage, verifier, ev)
	if err != nil {
		return nil, err
	}

	guard := replay.New(db.TxIDs()...)
	ev("state: New: replay guard seeded: txids[%d]", guard.Len())

	state := State{
		host:         cfg.Host,
		peerTimeout:  peerTimeout,
		maxPeerBytes: maxPeerBytes,
		evHandler:    ev,

		knownPeers: knownPeers,
		authorized: authorized,
		genesis:    cfg.Genesis,
		verifier:   verifier,
		db:         db,
		guard:      guard,
	}

	// The Worker is not set here. The call to worker.Run will assign itself
	// and start everything up and running for the node.

	return &state, nil
}

// Shutdown cleanly brings the node down.
func (s *State) Shutdown() error {
	s.evHandler("state: shutdown: started")
	defer s.evHandler("state: shutdown: completed")

	// Stop all background activity before closing storage.
	if s.Worker != nil {
		s.Worker.Shutdown()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.Close()
}
