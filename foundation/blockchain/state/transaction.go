package state

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
)

// ErrMissingTxID is returned when a submission payload has no tx_id.
var ErrMissingTxID = errors.New("missing_tx_id")

// SubmitTransaction accepts a signed submission, seals it into a new block,
// and appends the block to the chain. The replay check, signature check,
// mining, and persistence all run inside one critical section so two
// submissions can never extend the same tip.
func (s *State) SubmitTransaction(sub database.Submission) (database.Block, error) {
	txID, ok := sub.TxID()
	if !ok {
		return database.Block{}, ErrMissingTxID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.guard.Check(txID); err != nil {
		s.evHandler("state: SubmitTransaction: tx_id[%s]: REJECTED: %s", txID, err)
		return database.Block{}, err
	}

	if err := sub.Verify(s.verifier); err != nil {
		s.evHandler("state: SubmitTransaction: tx_id[%s]: REJECTED: %s", txID, err)
		return database.Block{}, err
	}

	block := database.NewBlock(s.db.LatestBlock(), sub, time.Now())

	// Sealing is not cancellable so an accepted submission always
	// produces a block.
	if err := block.Mine(context.Background(), s.genesis.Difficulty, s.evHandler); err != nil {
		return database.Block{}, fmt.Errorf("mining block: %w", err)
	}

	if err := s.db.Append(block); err != nil {
		return database.Block{}, fmt.Errorf("persisting block: %w", err)
	}

	if err := s.guard.Register(txID); err != nil {
		return database.Block{}, fmt.Errorf("registering tx_id: %w", err)
	}

	s.evHandler("viewer: block added: blk[%d]: tx_id[%s]: hash[%s]", block.Index, txID, block.BlockHash)

	return block, nil
}
