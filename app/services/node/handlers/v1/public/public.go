// Package public maintains the group of handlers for public access.
package public

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/ardanlabs/ledger/business/sys/metrics"
	"github.com/ardanlabs/ledger/business/web/errs"
	"github.com/ardanlabs/ledger/foundation/blockchain/replay"
	"github.com/ardanlabs/ledger/foundation/blockchain/signature"
	"github.com/ardanlabs/ledger/foundation/blockchain/state"
	"github.com/ardanlabs/ledger/foundation/events"
	"github.com/ardanlabs/ledger/foundation/nameservice"
	"github.com/ardanlabs/ledger/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Set of error tags returned to wallets when a submission is refused.
var (
	errInvalidSignature = errors.New("invalid_signature")
	errReplayDuplicate  = errors.New("replay_duplicate")
)

// Handlers manages the set of ledger endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	State *state.State
	NS    *nameservice.NameService
	WS    websocket.Upgrader
	Evts  *events.Events
}

// Events handles a web socket to provide events to a client.
func (h Handlers) Events(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	// Need this to handle CORS on the websocket.
	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	// This upgrades the HTTP connection to a websocket connection.
	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	// This provides a channel for receiving events from the ledger.
	ch := h.Evts.Acquire(v.TraceID)
	defer h.Evts.Release(v.TraceID)

	// Starting a ticker to send a ping message over the websocket.
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	// Block waiting to receive events and send them to the client.
	for {
		select {
		case msg, wd := <-ch:

			// If the channel is closed, release the websocket.
			if !wd {
				return nil
			}

			if err := c.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return err
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}

// SubmitTransaction seals a signed wallet submission into a new block.
func (h Handlers) SubmitTransaction(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var sub submission
	if err := web.Decode(r, &sub); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	h.Log.Infow("submit tran", "traceid", v.TraceID, "payload", sub.Payload)

	blk, err := h.State.SubmitTransaction(sub.toDatabase())
	if err != nil {
		metrics.AddRejected()

		switch {
		case errors.Is(err, state.ErrMissingTxID):
			return errs.NewTrusted(state.ErrMissingTxID, http.StatusBadRequest)
		case errors.Is(err, replay.ErrDuplicate):
			return errs.NewTrusted(errReplayDuplicate, http.StatusForbidden)
		case errors.Is(err, signature.ErrInvalidSignature):
			return errs.NewTrusted(errInvalidSignature, http.StatusUnauthorized)
		}

		return err
	}

	metrics.AddBlocks()

	resp := submitted{
		Status: "block added",
		Block:  blk,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Chain returns the full chain held by this node.
func (h Handlers) Chain(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.State.RetrieveChain(), http.StatusOK)
}

// Blocks returns the chain with each signer resolved to a name.
func (h Handlers) Blocks(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	dbBlocks := h.State.RetrieveChain()

	blocks := make([]block, len(dbBlocks))
	for i, blk := range dbBlocks {
		txID, _ := blk.TxID()

		var signer string
		if blk.PublicKey != nil {
			signer = h.NS.Lookup(*blk.PublicKey)
		}

		blocks[i] = block{
			Index:        blk.Index,
			Timestamp:    blk.Timestamp,
			TxID:         txID,
			Signer:       signer,
			Payload:      blk.Payload,
			PreviousHash: blk.PreviousHash,
			Nonce:        blk.Nonce,
			BlockHash:    blk.BlockHash,
		}
	}

	return web.Respond(ctx, w, blocks, http.StatusOK)
}

// BlockByTxID returns the block carrying the specified transaction id.
func (h Handlers) BlockByTxID(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	txID := web.Param(r, "txid")

	blk, err := h.State.QueryBlockByTxID(txID)
	if err != nil {
		if errors.Is(err, state.ErrNotFound) {
			return errs.NewTrusted(err, http.StatusNotFound)
		}
		return err
	}

	return web.Respond(ctx, w, blk, http.StatusOK)
}

// BlockByIndex returns the block at the specified position in the chain.
func (h Handlers) BlockByIndex(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	index, err := strconv.ParseUint(web.Param(r, "index"), 10, 64)
	if err != nil {
		return errs.NewTrusted(fmt.Errorf("invalid index: %w", err), http.StatusBadRequest)
	}

	blk, err := h.State.QueryBlockByIndex(index)
	if err != nil {
		if errors.Is(err, state.ErrNotFound) {
			return errs.NewTrusted(err, http.StatusNotFound)
		}
		return err
	}

	return web.Respond(ctx, w, blk, http.StatusOK)
}

// Genesis returns the genesis information.
func (h Handlers) Genesis(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	gen := h.State.RetrieveGenesis()
	return web.Respond(ctx, w, gen, http.StatusOK)
}
