// Package worker implements peer discovery and conflict resolution for the
// ledger in the background.
package worker

import (
	"sync"
	"time"

	"github.com/ardanlabs/ledger/foundation/blockchain/state"
)

// defaultResolveInterval represents the interval of finding new peer nodes
// and settling conflicts with their chains.
const defaultResolveInterval = time.Minute

// =============================================================================

// Worker manages the background workflows for the ledger.
type Worker struct {
	state     *state.State
	wg        sync.WaitGroup
	ticker    *time.Ticker
	shut      chan struct{}
	resolve   chan bool
	evHandler state.EventHandler
}

// Run creates a worker, registers the worker with the state package, and
// starts up all the background processes. A zero interval uses the
// default of one minute.
func Run(st *state.State, interval time.Duration, evHandler state.EventHandler) {
	if interval <= 0 {
		interval = defaultResolveInterval
	}

	if evHandler == nil {
		evHandler = func(string, ...any) {}
	}

	w := Worker{
		state:     st,
		ticker:    time.NewTicker(interval),
		shut:      make(chan struct{}),
		resolve:   make(chan bool, 1),
		evHandler: evHandler,
	}

	// Register this worker with the state package.
	st.Worker = &w

	// Update this node before starting any support G's.
	w.Sync()

	// Load the set of operations we need to run.
	operations := []func(){
		w.resolveOperations,
	}

	// Set waitgroup to match the number of G's we need for the set
	// of operations we have.
	g := len(operations)
	w.wg.Add(g)

	// We don't want to return until we know all the G's are up and running.
	hasStarted := make(chan bool)

	// Start all the operational G's.
	for _, op := range operations {
		go func(op func()) {
			defer w.wg.Done()
			hasStarted <- true
			op()
		}(op)
	}

	// Wait for the G's to report they are running.
	for range g {
		<-hasStarted
	}
}

// =============================================================================
// These methods implement the state.Worker interface.

// Shutdown terminates the goroutine performing work.
func (w *Worker) Shutdown() {
	w.evHandler("worker: shutdown: started")
	defer w.evHandler("worker: shutdown: completed")

	w.evHandler("worker: shutdown: stop ticker")
	w.ticker.Stop()

	w.evHandler("worker: shutdown: terminate goroutines")
	close(w.shut)
	w.wg.Wait()
}

// SignalResolve starts a resolution cycle. If there is already a signal
// pending in the channel, just return since a cycle will run.
func (w *Worker) SignalResolve() {
	select {
	case w.resolve <- true:
		w.evHandler("worker: SignalResolve: resolve signaled")
	default:
		w.evHandler("worker: SignalResolve: resolve already pending")
	}
}

// =============================================================================

// resolveOperations runs a sync on every tick and a resolution cycle
// whenever one is signaled.
func (w *Worker) resolveOperations() {
	w.evHandler("worker: resolveOperations: G started")
	defer w.evHandler("worker: resolveOperations: G completed")

	for {
		select {
		case <-w.ticker.C:
			if !w.isShutdown() {
				w.Sync()
			}

		case <-w.resolve:
			if !w.isShutdown() {
				w.runResolveOperation()
			}

		case <-w.shut:
			w.evHandler("worker: resolveOperations: received shut signal")
			return
		}
	}
}

// isShutdown is used to test if a shutdown has been signaled.
func (w *Worker) isShutdown() bool {
	select {
	case <-w.shut:
		return true
	default:
		return false
	}
}
