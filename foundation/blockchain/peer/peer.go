// Package peer maintains the peer related information such as the set
// of known peers and the hosts allowed to join it.
package peer

import (
	"errors"
	"net/url"
	"sort"
	"strings"
	"sync"
)

// ErrInvalidHost is returned when a peer address has no usable host.
var ErrInvalidHost = errors.New("invalid peer host")

// Peer represents information about a Node in the network.
type Peer struct {
	Host string
}

// New constructs a new peer value.
func New(host string) Peer {
	return Peer{
		Host: host,
	}
}

// Parse normalizes a peer address into a peer. Both "http://host:port/path"
// and "host:port" produce the host "host:port".
func Parse(raw string) (Peer, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Peer{}, ErrInvalidHost
	}

	if strings.Contains(raw, "://") {
		u, err := url.Parse(raw)
		if err != nil || u.Host == "" {
			return Peer{}, ErrInvalidHost
		}
		return New(u.Host), nil
	}

	host, _, _ := strings.Cut(raw, "/")
	if host == "" {
		return Peer{}, ErrInvalidHost
	}

	return New(host), nil
}

// Match validates if the specified host matches this node.
func (p Peer) Match(host string) bool {
	return p.Host == host
}

// String implements the fmt.Stringer interface.
func (p Peer) String() string {
	return p.Host
}

// =============================================================================

// PeerStatus represents information about the status
// of any given peer.
type PeerStatus struct {
	Host            string   `json:"host"`
	LatestBlockHash string   `json:"latest_block_hash"`
	Length          int      `json:"length"`
	KnownPeers      []string `json:"known_peers"`
}

// =============================================================================

// PeerSet represents the data representation to maintain a set of known peers.
type PeerSet struct {
	mu  sync.RWMutex
	set map[Peer]struct{}
}

// NewPeerSet constructs a new info set to manage node peer information.
func NewPeerSet() *PeerSet {
	return &PeerSet{
		set: make(map[Peer]struct{}),
	}
}

// Add adds a new node to the set.
func (ps *PeerSet) Add(peer Peer) bool {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	_, exists := ps.set[peer]
	if !exists {
		ps.set[peer] = struct{}{}
		return true
	}

	return false
}

// Remove removes a node from the set.
func (ps *PeerSet) Remove(peer Peer) {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	delete(ps.set, peer)
}

// Contains reports whether the peer is in the set.
func (ps *PeerSet) Contains(peer Peer) bool {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	_, exists := ps.set[peer]
	return exists
}

// Len returns the number of peers in the set.
func (ps *PeerSet) Len() int {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	return len(ps.set)
}

// Copy returns a list of the known peers, excluding the specified host,
// ordered by host.
func (ps *PeerSet) Copy(host string) []Peer {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	var peers []Peer
	for peer := range ps.set {
		if !peer.Match(host) {
			peers = append(peers, peer)
		}
	}

	sort.Slice(peers, func(i, j int) bool { return peers[i].Host < peers[j].Host })

	return peers
}

// Hosts returns the hosts of the known peers, excluding the specified host.
func (ps *PeerSet) Hosts(host string) []string {
	peers := ps.Copy(host)

	hosts := make([]string, len(peers))
	for i, p := range peers {
		hosts[i] = p.Host
	}

	return hosts
}
