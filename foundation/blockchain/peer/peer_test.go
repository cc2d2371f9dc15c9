package peer_test

import (
	"errors"
	"testing"

	"github.com/ardanlabs/ledger/foundation/blockchain/peer"
)

func Test_CRUD(t *testing.T) {
	type table struct {
		name  string
		peers []peer.Peer
	}

	tt := []table{
		{
			name:  "basic",
			peers: []peer.Peer{{Host: "host1"}, {Host: "host2"}, {Host: "host3"}},
		},
	}

	for _, tst := range tt {
		f := func(t *testing.T) {
			ps := peer.NewPeerSet()

			for _, peer := range tst.peers {
				ps.Add(peer)
			}

			if ps.Add(tst.peers[0]) {
				t.Fatalf("Test %s:\tShould not add the same peer twice.", tst.name)
			}

			peers := ps.Copy("")
			if len(peers) != len(tst.peers) {
				t.Logf("Test %s:\tgot: %d", tst.name, len(peers))
				t.Logf("Test %s:\texp: %d", tst.name, len(tst.peers))
				t.Fatalf("Test %s:\tShould get back the right peers.", tst.name)
			}

			peers = ps.Copy("host2")
			if len(peers) != len(tst.peers)-1 {
				t.Logf("Test %s:\tgot: %d", tst.name, len(peers))
				t.Logf("Test %s:\texp: %d", tst.name, len(tst.peers)-1)
				t.Fatalf("Test %s:\tShould get back the right peers.", tst.name)
			}

			ps.Remove(tst.peers[0])
			if ps.Contains(tst.peers[0]) || ps.Len() != len(tst.peers)-1 {
				t.Fatalf("Test %s:\tShould be able to remove a peer.", tst.name)
			}

			hosts := ps.Hosts("")
			if len(hosts) != 2 || hosts[0] != "host2" || hosts[1] != "host3" {
				t.Fatalf("Test %s:\tShould get back sorted hosts, got %v", tst.name, hosts)
			}
		}

		t.Run(tst.name, f)
	}
}

func Test_Parse(t *testing.T) {
	type table struct {
		name string
		raw  string
		host string
		err  error
	}

	tt := []table{
		{name: "url", raw: "http://127.0.0.1:5001", host: "127.0.0.1:5001"},
		{name: "url-path", raw: "https://node.local:8080/v1/chain", host: "node.local:8080"},
		{name: "bare", raw: "127.0.0.1:5002", host: "127.0.0.1:5002"},
		{name: "spaces", raw: "  node:9080 ", host: "node:9080"},
		{name: "empty", raw: "", err: peer.ErrInvalidHost},
		{name: "no-host", raw: "http://", err: peer.ErrInvalidHost},
	}

	for _, tst := range tt {
		f := func(t *testing.T) {
			p, err := peer.Parse(tst.raw)
			if tst.err != nil {
				if !errors.Is(err, tst.err) {
					t.Fatalf("Test %s:\tShould reject %q, got %v", tst.name, tst.raw, err)
				}
				return
			}

			if err != nil {
				t.Fatalf("Test %s:\tShould parse %q: %s", tst.name, tst.raw, err)
			}

			if p.Host != tst.host {
				t.Logf("Test %s:\tgot: %s", tst.name, p.Host)
				t.Logf("Test %s:\texp: %s", tst.name, tst.host)
				t.Fatalf("Test %s:\tShould normalize the host.", tst.name)
			}
		}

		t.Run(tst.name, f)
	}
}
