package worker_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/genesis"
	"github.com/ardanlabs/ledger/foundation/blockchain/peer"
	"github.com/ardanlabs/ledger/foundation/blockchain/state"
	"github.com/ardanlabs/ledger/foundation/blockchain/storage/memory"
	"github.com/ardanlabs/ledger/foundation/blockchain/worker"
	"github.com/ethereum/go-ethereum/crypto"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

const pkHexKey = "fae85851bdf5c9f49923722ce38f3c1defcfd3619ef5453230a58ad805499959"

func Test_Run(t *testing.T) {
	gen := genesis.Genesis{Timestamp: genesis.DefaultTimestamp, Payload: genesis.DefaultPayload, Difficulty: 2}

	nodeA, err := state.New(state.Config{Host: "node-a:9080", Storage: memory.New(), Genesis: gen})
	if err != nil {
		t.Fatalf("\t%s\tShould be able to construct node A: %v", failed, err)
	}
	defer nodeA.Shutdown()

	pk, err := crypto.HexToECDSA(pkHexKey)
	if err != nil {
		t.Fatalf("\t%s\tShould be able to load the private key: %v", failed, err)
	}

	for _, id := range []string{"t1", "t2"} {
		sub, err := database.SignSubmission(map[string]any{"tx_id": id}, pk)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to sign: %v", failed, err)
		}
		if _, err := nodeA.SubmitTransaction(sub); err != nil {
			t.Fatalf("\t%s\tShould be able to submit to node A: %v", failed, err)
		}
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/node/chain":
			json.NewEncoder(w).Encode(nodeA.RetrieveChain())
		case "/v1/node/status":
			json.NewEncoder(w).Encode(peer.PeerStatus{
				Host:       "node-a:9080",
				Length:     len(nodeA.RetrieveChain()),
				KnownPeers: []string{"127.0.0.1:1", "node-x:9080"},
			})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	u, err := url.Parse(srv.URL)
	if err != nil {
		t.Fatalf("\t%s\tShould be able to parse the server url: %v", failed, err)
	}

	known := peer.NewPeerSet()
	known.Add(peer.New(u.Host))

	authorized := peer.NewPeerSet()
	authorized.Add(peer.New(u.Host))
	authorized.Add(peer.New("127.0.0.1:1"))

	nodeB, err := state.New(state.Config{
		Host:            "node-b:9080",
		Storage:         memory.New(),
		Genesis:         gen,
		KnownPeers:      known,
		AuthorizedPeers: authorized,
		PeerTimeout:     time.Second,
	})
	if err != nil {
		t.Fatalf("\t%s\tShould be able to construct node B: %v", failed, err)
	}
	defer nodeB.Shutdown()

	t.Log("Given the need to sync a node with its peers in the background.")
	{
		worker.Run(nodeB, time.Hour, func(v string, args ...any) { t.Logf(v, args...) })

		if nodeB.Worker == nil {
			t.Fatalf("\t%s\tShould register the worker with the state.", failed)
		}
		t.Logf("\t%s\tShould register the worker with the state.", success)

		if got := len(nodeB.RetrieveChain()); got != 3 {
			t.Fatalf("\t%s\tShould adopt node A's chain during the first sync, length %d", failed, got)
		}
		t.Logf("\t%s\tShould adopt node A's chain during the first sync.", success)

		if !known.Contains(peer.New("127.0.0.1:1")) {
			t.Fatalf("\t%s\tShould learn the allowed peers node A knows.", failed)
		}
		if known.Contains(peer.New("node-x:9080")) {
			t.Fatalf("\t%s\tShould not learn peers outside the allow-list.", failed)
		}
		t.Logf("\t%s\tShould only learn allowed peers from node A.", success)

		nodeB.Worker.SignalResolve()
		nodeB.Worker.SignalResolve()
		t.Logf("\t%s\tShould not block when signaling resolution.", success)
	}
}
