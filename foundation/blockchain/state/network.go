package state

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/peer"
)

const baseURL = "http://%s/v1/node"

// maxErrorBody caps how much of a failed response is read into an error.
const maxErrorBody = 4 << 10

// NetRequestPeerChain asks the peer for its full chain.
func (s *State) NetRequestPeerChain(ctx context.Context, pr peer.Peer) ([]database.Block, error) {
	s.evHandler("state: NetRequestPeerChain: started: %s", pr)
	defer s.evHandler("state: NetRequestPeerChain: completed: %s", pr)

	url := fmt.Sprintf("%s/chain", fmt.Sprintf(baseURL, pr.Host))

	var blocks []database.Block
	if err := send(ctx, http.MethodGet, url, nil, &blocks, s.maxPeerBytes); err != nil {
		return nil, err
	}

	s.evHandler("state: NetRequestPeerChain: peer-node[%s]: length[%d]", pr, len(blocks))

	return blocks, nil
}

// NetRequestPeerStatus asks the peer for its status which includes the
// peers it knows about. The request is bounded by the peer timeout.
func (s *State) NetRequestPeerStatus(ctx context.Context, pr peer.Peer) (peer.PeerStatus, error) {
	s.evHandler("state: NetRequestPeerStatus: started: %s", pr)
	defer s.evHandler("state: NetRequestPeerStatus: completed: %s", pr)

	ctx, cancel := context.WithTimeout(ctx, s.peerTimeout)
	defer cancel()

	url := fmt.Sprintf("%s/status", fmt.Sprintf(baseURL, pr.Host))

	var ps peer.PeerStatus
	if err := send(ctx, http.MethodGet, url, nil, &ps, s.maxPeerBytes); err != nil {
		return peer.PeerStatus{}, err
	}

	s.evHandler("state: NetRequestPeerStatus: peer-node[%s]: length[%d]: peer-list[%s]", pr, ps.Length, ps.KnownPeers)

	return ps, nil
}

// =============================================================================

// send is a helper function to send an HTTP request to a node. At most
// maxBytes of the response body are decoded.
func send(ctx context.Context, method string, url string, dataSend any, dataRecv any, maxBytes int64) error {
	var body io.Reader

	if dataSend != nil {
		data, err := json.Marshal(dataSend)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return err
	}

	if dataSend != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	if resp.StatusCode != http.StatusOK {
		msg, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		if err != nil {
			return err
		}
		return fmt.Errorf("status %d: %w", resp.StatusCode, errors.New(string(msg)))
	}

	if dataRecv != nil {
		if err := json.NewDecoder(io.LimitReader(resp.Body, maxBytes)).Decode(dataRecv); err != nil {
			return fmt.Errorf("decoding response, limit %d bytes: %w", maxBytes, err)
		}
	}

	return nil
}
