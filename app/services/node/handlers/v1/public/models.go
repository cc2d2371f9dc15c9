package public

import (
	"github.com/ardanlabs/ledger/foundation/blockchain/canonical"
	"github.com/ardanlabs/ledger/foundation/blockchain/database"
)

// submission is what a wallet posts to have a payload sealed into a block.
// Signature and key are checked by the state so a missing one is reported
// as an invalid signature rather than a validation failure.
type submission struct {
	Payload   canonical.Value `json:"payload"`
	Signature *string         `json:"signature"`
	PublicKey *string         `json:"public_key"`
}

func (s submission) toDatabase() database.Submission {
	return database.Submission{
		Payload:   s.Payload,
		Signature: s.Signature,
		PublicKey: s.PublicKey,
	}
}

type submitted struct {
	Status string         `json:"status"`
	Block  database.Block `json:"block"`
}

// block is the block as presented to people, with the signer resolved
// through the name service.
type block struct {
	Index        uint64          `json:"index"`
	Timestamp    int64           `json:"timestamp"`
	TxID         string          `json:"tx_id,omitempty"`
	Signer       string          `json:"signer,omitempty"`
	Payload      canonical.Value `json:"payload"`
	PreviousHash string          `json:"previous_hash"`
	Nonce        uint64          `json:"nonce"`
	BlockHash    string          `json:"block_hash"`
}
