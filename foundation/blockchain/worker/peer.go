package worker

import (
	"context"

	"github.com/ardanlabs/ledger/foundation/blockchain/peer"
)

// runPeersOperation asks every known peer for the peers it knows and adds
// the ones this node is allowed to talk to.
func (w *Worker) runPeersOperation() {
	w.evHandler("worker: runPeersOperation: started")
	defer w.evHandler("worker: runPeersOperation: completed")

	for _, pr := range w.state.RetrieveKnownPeers() {

		// Retrieve the status of this peer.
		peerStatus, err := w.state.NetRequestPeerStatus(context.Background(), pr)
		if err != nil {
			w.evHandler("worker: runPeersOperation: queryPeerStatus: %s: ERROR: %s", pr.Host, err)
			continue
		}

		// Add new peers to this nodes list.
		w.addNewPeers(peerStatus.KnownPeers)
	}
}

// addNewPeers takes the list of hosts a peer knows and makes sure the
// allowed ones are included in this node's list of known peers.
func (w *Worker) addNewPeers(hosts []string) {
	for _, host := range hosts {
		pr, err := peer.Parse(host)
		if err != nil {
			continue
		}

		if w.state.AddKnownPeer(pr) {
			w.evHandler("worker: runPeersOperation: addNewPeers: adding peer-node %s", pr)
		}
	}
}
