package database

import (
	"errors"
	"fmt"

	"github.com/ardanlabs/ledger/foundation/blockchain/signature"
)

// Reason identifies which rule a chain broke.
type Reason string

// Set of reasons a chain can be rejected for.
const (
	ReasonEmptyChain     Reason = "empty_chain"
	ReasonBadIndex       Reason = "bad_index"
	ReasonTimeRegression Reason = "time_regression"
	ReasonBadPOW         Reason = "bad_pow"
	ReasonBadDigest      Reason = "bad_digest"
	ReasonBadLink        Reason = "bad_link"
	ReasonDuplicateTxID  Reason = "duplicate_tx_id"
	ReasonBadSignature   Reason = "bad_signature"
)

// ChainError describes the first block that broke a chain rule.
type ChainError struct {
	Reason Reason
	Index  int
	Err    error
}

// Error implements the error interface.
func (ce *ChainError) Error() string {
	if ce.Err == nil {
		return fmt.Sprintf("chain invalid at block %d: %s", ce.Index, ce.Reason)
	}

	return fmt.Sprintf("chain invalid at block %d: %s: %s", ce.Index, ce.Reason, ce.Err)
}

// Unwrap provides access to the underlying error.
func (ce *ChainError) Unwrap() error {
	return ce.Err
}

// GetChainError returns a copy of the chain error from the error chain.
func GetChainError(err error) (*ChainError, bool) {
	var ce *ChainError
	if !errors.As(err, &ce) {
		return nil, false
	}

	return ce, true
}

// =============================================================================

// ValidateChain checks every rule a chain must satisfy and returns a
// ChainError for the first block that breaks one. The checks are applied
// in a fixed order per block so the same chain always reports the same
// reason.
func ValidateChain(blocks []Block, difficulty uint16, verifier signature.Verifier) error {
	if len(blocks) == 0 {
		return &ChainError{Reason: ReasonEmptyChain}
	}

	seen := make(map[string]struct{}, len(blocks))

	for i, b := range blocks {
		if b.Index != uint64(i) {
			return &ChainError{Reason: ReasonBadIndex, Index: i, Err: fmt.Errorf("got %d, exp %d", b.Index, i)}
		}

		if i > 0 && b.Timestamp < blocks[i-1].Timestamp {
			return &ChainError{Reason: ReasonTimeRegression, Index: i, Err: fmt.Errorf("timestamp %d is before parent %d", b.Timestamp, blocks[i-1].Timestamp)}
		}

		if !isHashSolved(difficulty, b.BlockHash) {
			return &ChainError{Reason: ReasonBadPOW, Index: i, Err: fmt.Errorf("hash %q does not meet difficulty %d", b.BlockHash, difficulty)}
		}

		if hash := b.Hash(); hash != b.BlockHash {
			return &ChainError{Reason: ReasonBadDigest, Index: i, Err: fmt.Errorf("got %s, exp %s", b.BlockHash, hash)}
		}

		if i > 0 && b.PreviousHash != blocks[i-1].BlockHash {
			return &ChainError{Reason: ReasonBadLink, Index: i, Err: fmt.Errorf("got %s, exp %s", b.PreviousHash, blocks[i-1].BlockHash)}
		}

		if txID, ok := b.TxID(); ok {
			if _, exists := seen[txID]; exists {
				return &ChainError{Reason: ReasonDuplicateTxID, Index: i, Err: fmt.Errorf("tx_id %q", txID)}
			}
			seen[txID] = struct{}{}
		}

		if err := verifyBlock(i, b, verifier); err != nil {
			return &ChainError{Reason: ReasonBadSignature, Index: i, Err: err}
		}
	}

	return nil
}

// verifyBlock checks the signature carried by a block. Only the block at
// position zero may omit both the signature and the public key.
func verifyBlock(position int, b Block, verifier signature.Verifier) error {
	switch {
	case b.Signature == nil && b.PublicKey == nil:
		if position == 0 {
			return nil
		}
		return ErrAbsentSignature

	case b.Signature == nil || b.PublicKey == nil:
		return ErrAbsentSignature
	}

	return verifier.Verify(b.Payload, *b.Signature, *b.PublicKey)
}
