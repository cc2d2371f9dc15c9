// Package commands contains the functionality for the admin tool.
package commands

import (
	"errors"
	"fmt"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/genesis"
	"github.com/ardanlabs/ledger/foundation/blockchain/signature"
)

// Chain prints every block held by the storage.
func Chain(storage database.Storage) error {
	blocks, err := storage.Load()
	if err != nil {
		return err
	}

	for _, blk := range blocks {
		txID, _ := blk.TxID()
		fmt.Printf("Index: %d  Time: %d  TxID: %s  Nonce: %d  Hash: %s\n",
			blk.Index, blk.Timestamp, txID, blk.Nonce, blk.BlockHash)
	}

	return nil
}

// Verify validates the stored chain with the genesis difficulty.
func Verify(storage database.Storage, gen genesis.Genesis) error {
	blocks, err := storage.Load()
	if err != nil {
		return err
	}

	if err := database.ValidateChain(blocks, gen.Difficulty, signature.Secp256k1{}); err != nil {
		if ce, ok := database.GetChainError(err); ok {
			fmt.Printf("Invalid: block %d: %s\n", ce.Index, ce.Reason)
			return nil
		}
		return err
	}

	fmt.Printf("Valid: %d blocks\n", len(blocks))

	return nil
}

// Tx prints the block carrying the specified tx_id.
func Tx(storage database.Storage, txID string) error {
	if txID == "" {
		return errors.New("tx_id required")
	}

	blocks, err := storage.Load()
	if err != nil {
		return err
	}

	for _, blk := range blocks {
		if id, ok := blk.TxID(); ok && id == txID {
			fmt.Printf("Index: %d  Hash: %s\nPayload: %s\n", blk.Index, blk.BlockHash, blk.Payload)
			return nil
		}
	}

	return fmt.Errorf("tx_id %s not found", txID)
}
