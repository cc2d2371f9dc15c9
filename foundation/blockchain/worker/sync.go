package worker

import (
	"context"
)

// Sync updates the peer list and then settles conflicts with the chains
// held by the known peers.
func (w *Worker) Sync() {
	w.evHandler("worker: sync: started")
	defer w.evHandler("worker: sync: completed")

	w.runPeersOperation()
	w.runResolveOperation()
}

// runResolveOperation runs one conflict resolution cycle. The cycle is not
// tied to the worker lifetime so a shutdown lets it finish.
func (w *Worker) runResolveOperation() {
	w.evHandler("worker: runResolveOperation: started")
	defer w.evHandler("worker: runResolveOperation: completed")

	res, err := w.state.ResolveConflicts(context.Background())
	if err != nil {
		w.evHandler("worker: runResolveOperation: ERROR: %s", err)
		return
	}

	w.evHandler("worker: runResolveOperation: replaced[%t]: length[%d]", res.Replaced, res.Length)
}
