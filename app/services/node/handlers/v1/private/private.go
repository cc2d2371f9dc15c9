// Package private maintains the group of handlers for node to node access.
package private

import (
	"context"
	"net/http"

	"github.com/ardanlabs/ledger/business/web/errs"
	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/state"
	"github.com/ardanlabs/ledger/foundation/web"
	"go.uber.org/zap"
)

// Handlers manages the set of node endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	State *state.State
}

// Chain returns the full chain so a peer can run conflict resolution.
func (h Handlers) Chain(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.State.RetrieveChain(), http.StatusOK)
}

// Status returns the current status of the node.
func (h Handlers) Status(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.State.RetrieveStatus(), http.StatusOK)
}

// RegisterPeers adds the allowed peers from the request to the known peers.
func (h Handlers) RegisterPeers(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var req struct {
		Nodes []string `json:"nodes" validate:"required,min=1,dive,required"`
	}
	if err := web.Decode(r, &req); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	reg := h.State.RegisterPeers(req.Nodes)

	h.Log.Infow("register peers", "traceid", v.TraceID, "added", reg.Added, "rejected", reg.Rejected)

	return web.Respond(ctx, w, reg, http.StatusCreated)
}

// Resolve runs a conflict resolution cycle and returns the resulting chain.
func (h Handlers) Resolve(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	// A resolution covers every known peer even if the caller goes away.
	res, err := h.State.ResolveConflicts(context.WithoutCancel(ctx))
	if err != nil {
		return err
	}

	message := "chain is authoritative"
	if res.Replaced {
		message = "chain replaced"
	}

	resp := struct {
		Message    string           `json:"message"`
		Resolution state.Resolution `json:"resolution"`
		Chain      []database.Block `json:"chain"`
	}{
		Message:    message,
		Resolution: res,
		Chain:      h.State.RetrieveChain(),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}
