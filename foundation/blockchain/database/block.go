package database

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/ardanlabs/ledger/foundation/blockchain/canonical"
	"github.com/ardanlabs/ledger/foundation/blockchain/genesis"
	"github.com/ardanlabs/ledger/foundation/blockchain/signature"
)

// ErrDifficulty is returned when a difficulty can never be satisfied by a
// block hash.
var ErrDifficulty = errors.New("difficulty exceeds hash length")

// hashLength is the number of hex digits in a block hash.
const hashLength = 64

// =============================================================================

// Block represents one sealed entry in the ledger. A nil Signature or
// PublicKey is the absent marker and encodes as null.
type Block struct {
	Index        uint64          `json:"index"`         // Position of the block in the chain.
	Timestamp    int64           `json:"timestamp"`     // Unix seconds the block was sealed.
	Payload      canonical.Value `json:"payload"`       // Client data carried by the block.
	Signature    *string         `json:"signature"`     // Signature over the payload.
	PublicKey    *string         `json:"public_key"`    // Key the signature verifies against.
	PreviousHash string          `json:"previous_hash"` // Hash of the parent block.
	Nonce        uint64          `json:"nonce"`         // Value identified to solve the hash solution.
	BlockHash    string          `json:"block_hash"`    // Digest of every other field.
}

// NewGenesisBlock constructs and mines the first block of the chain. The
// result only depends on the genesis values so every node produces the
// same block.
func NewGenesisBlock(gen genesis.Genesis, evHandler func(v string, args ...any)) (Block, error) {
	b := Block{
		Index:        0,
		Timestamp:    gen.Timestamp,
		Payload:      canonical.String(gen.Payload),
		PreviousHash: signature.ZeroHash,
	}

	if err := b.Mine(context.Background(), gen.Difficulty, evHandler); err != nil {
		return Block{}, err
	}

	return b, nil
}

// NewBlock constructs the unmined successor of the parent block for the
// submission. The timestamp never goes backwards relative to the parent.
func NewBlock(parent Block, sub Submission, now time.Time) Block {
	return Block{
		Index:        parent.Index + 1,
		Timestamp:    max(now.Unix(), parent.Timestamp),
		Payload:      sub.Payload,
		Signature:    sub.Signature,
		PublicKey:    sub.PublicKey,
		PreviousHash: parent.BlockHash,
	}
}

// Hash returns the digest of the canonical encoding of every field except
// the block hash itself.
func (b Block) Hash() string {
	return signature.HashBytes(canonical.Encode(b.content()))
}

// Mine performs the work of finding the smallest nonce, counting up from
// zero, whose hash satisfies the difficulty. Pointer semantics are being
// used since a nonce is being discovered.
func (b *Block) Mine(ctx context.Context, difficulty uint16, ev func(v string, args ...any)) error {
	if ev == nil {
		ev = func(string, ...any) {}
	}

	if difficulty > hashLength {
		return fmt.Errorf("%w: %d", ErrDifficulty, difficulty)
	}

	ev("database: Mine: MINING: started: blk[%d]", b.Index)
	defer ev("database: Mine: MINING: completed: blk[%d]", b.Index)

	head, tail := b.sealParts()
	buf := make([]byte, 0, len(head)+20+len(tail))

	for nonce := uint64(0); ; nonce++ {
		if nonce > 0 && nonce%1_000_000 == 0 {
			ev("database: Mine: MINING: blk[%d]: attempts[%d]", b.Index, nonce)
		}

		if nonce%1024 == 0 && ctx.Err() != nil {
			ev("database: Mine: MINING: CANCELLED: blk[%d]", b.Index)
			return ctx.Err()
		}

		buf = append(buf[:0], head...)
		buf = strconv.AppendUint(buf, nonce, 10)
		buf = append(buf, tail...)

		hash := signature.HashBytes(buf)
		if !isHashSolved(difficulty, hash) {
			continue
		}

		b.Nonce = nonce
		b.BlockHash = hash

		ev("database: Mine: MINING: SOLVED: blk[%d]: prevBlk[%s]: newBlk[%s]: attempts[%d]", b.Index, b.PreviousHash, hash, nonce+1)

		return nil
	}
}

// TxID returns the transaction id carried by the block payload.
func (b Block) TxID() (string, bool) {
	return TxID(b.Payload)
}

// =============================================================================

// content returns the block as a canonical object without the block hash.
func (b Block) content() canonical.Value {
	return canonical.Object(map[string]canonical.Value{
		"index":         canonical.Uint(b.Index),
		"timestamp":     canonical.Int(b.Timestamp),
		"payload":       b.Payload,
		"signature":     optional(b.Signature),
		"public_key":    optional(b.PublicKey),
		"previous_hash": canonical.String(b.PreviousHash),
		"nonce":         canonical.Uint(b.Nonce),
	})
}

// sealParts splits the canonical encoding around the nonce value so mining
// only has to format the nonce on each attempt. The index and nonce keys
// sort ahead of every other field.
func (b Block) sealParts() (head []byte, tail []byte) {
	index := canonical.Encode(canonical.Object(map[string]canonical.Value{
		"index": canonical.Uint(b.Index),
	}))

	rest := canonical.Encode(b.content().Without("index", "nonce"))

	head = append(index[:len(index)-1:len(index)-1], `,"nonce":`...)
	tail = append([]byte{','}, rest[1:]...)

	return head, tail
}

// isHashSolved checks the hash to make sure it complies with
// the POW rules. We need to match a difficulty number of 0's.
func isHashSolved(difficulty uint16, hash string) bool {
	if len(hash) != hashLength || int(difficulty) > hashLength {
		return false
	}

	return hash[:difficulty] == signature.ZeroHash[:difficulty]
}

func optional(s *string) canonical.Value {
	if s == nil {
		return canonical.Null()
	}

	return canonical.String(*s)
}
