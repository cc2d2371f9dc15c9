package state

import (
	"github.com/ardanlabs/ledger/foundation/blockchain/peer"
)

// Registration reports which of the requested peers were accepted.
type Registration struct {
	Added    []string `json:"added"`
	Known    []string `json:"known"`
	Rejected []string `json:"rejected"`
}

// RegisterPeers normalizes each address and adds it to the known peers if
// it's on the allow-list. An empty allow-list admits nobody. Addresses that
// can't be parsed, that aren't allowed, or that name this node are
// rejected.
func (s *State) RegisterPeers(addresses []string) Registration {
	reg := Registration{
		Added:    []string{},
		Rejected: []string{},
	}

	for _, addr := range addresses {
		pr, err := peer.Parse(addr)
		if err != nil || pr.Match(s.host) || !s.authorized.Contains(pr) {
			s.evHandler("state: RegisterPeers: REJECTED: %q", addr)
			reg.Rejected = append(reg.Rejected, addr)
			continue
		}

		if s.knownPeers.Add(pr) {
			s.evHandler("state: RegisterPeers: added: %s", pr)
			reg.Added = append(reg.Added, pr.Host)
		}
	}

	reg.Known = s.knownPeers.Hosts(s.host)

	return reg
}

// IsAuthorizedPeer reports whether the peer is on the allow-list.
func (s *State) IsAuthorizedPeer(pr peer.Peer) bool {
	return s.authorized.Contains(pr)
}

// AddKnownPeer adds an allowed peer to the known peers. It returns false if
// the peer is not allowed, is this node, or is already known.
func (s *State) AddKnownPeer(pr peer.Peer) bool {
	if pr.Match(s.host) || !s.authorized.Contains(pr) {
		return false
	}

	return s.knownPeers.Add(pr)
}
