package database_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ardanlabs/ledger/foundation/blockchain/canonical"
	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/genesis"
	"github.com/ardanlabs/ledger/foundation/blockchain/signature"
	"github.com/ardanlabs/ledger/foundation/blockchain/storage/memory"
	"github.com/ethereum/go-ethereum/crypto"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

const (
	pkHexKey   = "fae85851bdf5c9f49923722ce38f3c1defcfd3619ef5453230a58ad805499959"
	difficulty = 2
)

// =============================================================================

func Test_Genesis(t *testing.T) {
	gen := genesis.Default()

	b1, err := database.NewGenesisBlock(gen, nil)
	if err != nil {
		t.Fatalf("\t%s\tShould be able to mine the genesis block: %v", failed, err)
	}
	t.Logf("\t%s\tShould be able to mine the genesis block.", success)

	b2, err := database.NewGenesisBlock(gen, nil)
	if err != nil {
		t.Fatalf("\t%s\tShould be able to mine the genesis block again: %v", failed, err)
	}

	if b1.BlockHash != b2.BlockHash || b1.Nonce != b2.Nonce {
		t.Logf("\t%s\tgot: %s", failed, b2.BlockHash)
		t.Logf("\t%s\texp: %s", failed, b1.BlockHash)
		t.Fatalf("\t%s\tShould produce the same genesis block every time.", failed)
	}
	t.Logf("\t%s\tShould produce the same genesis block every time.", success)

	if !strings.HasPrefix(b1.BlockHash, "0000") {
		t.Fatalf("\t%s\tShould have a hash with four leading zeros, got %s", failed, b1.BlockHash)
	}

	if b1.Index != 0 || b1.Timestamp != genesis.DefaultTimestamp || b1.PreviousHash != signature.ZeroHash {
		t.Fatalf("\t%s\tShould have the fixed genesis header, got %+v", failed, b1)
	}

	if b1.Signature != nil || b1.PublicKey != nil {
		t.Fatalf("\t%s\tShould not carry a signature.", failed)
	}

	if text, _ := b1.Payload.Text(); text != genesis.DefaultPayload {
		t.Fatalf("\t%s\tShould carry the sentinel payload, got %s", failed, b1.Payload)
	}

	if err := database.ValidateChain([]database.Block{b1}, gen.Difficulty, signature.Secp256k1{}); err != nil {
		t.Fatalf("\t%s\tShould validate a genesis only chain: %v", failed, err)
	}
	t.Logf("\t%s\tShould validate a genesis only chain.", success)
}

func Test_Mine(t *testing.T) {
	chain := mineChain(t, submission(t, map[string]any{"tx_id": "t1", "value": 1}))
	b := chain[1]

	if b.BlockHash != b.Hash() {
		t.Fatalf("\t%s\tShould store the digest of the block, got %s exp %s", failed, b.BlockHash, b.Hash())
	}
	t.Logf("\t%s\tShould store the digest of the block.", success)

	// Every smaller nonce must fail the difficulty.
	for n := range b.Nonce {
		probe := b
		probe.Nonce = n
		if strings.HasPrefix(probe.Hash(), "00") {
			t.Fatalf("\t%s\tShould find the smallest nonce, nonce %d also solves", failed, n)
		}
	}
	t.Logf("\t%s\tShould find the smallest nonce.", success)

	stuck := b
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := stuck.Mine(ctx, 64, nil); !errors.Is(err, context.Canceled) {
		t.Fatalf("\t%s\tShould stop mining when cancelled, got %v", failed, err)
	}
	t.Logf("\t%s\tShould stop mining when cancelled.", success)

	if err := stuck.Mine(context.Background(), 65, nil); !errors.Is(err, database.ErrDifficulty) {
		t.Fatalf("\t%s\tShould reject a difficulty longer than the hash, got %v", failed, err)
	}
	t.Logf("\t%s\tShould reject a difficulty longer than the hash.", success)
}

func Test_FieldFlip(t *testing.T) {
	chain := mineChain(t, submission(t, map[string]any{"tx_id": "t1"}))
	b := chain[1]

	other := "0xdead"

	type table struct {
		name   string
		mutate func(b *database.Block)
	}

	tt := []table{
		{name: "index", mutate: func(b *database.Block) { b.Index++ }},
		{name: "timestamp", mutate: func(b *database.Block) { b.Timestamp++ }},
		{name: "payload", mutate: func(b *database.Block) { b.Payload = canonical.String("x") }},
		{name: "signature", mutate: func(b *database.Block) { b.Signature = &other }},
		{name: "signature-absent", mutate: func(b *database.Block) { b.Signature = nil }},
		{name: "public_key", mutate: func(b *database.Block) { b.PublicKey = &other }},
		{name: "previous_hash", mutate: func(b *database.Block) { b.PreviousHash = signature.ZeroHash }},
		{name: "nonce", mutate: func(b *database.Block) { b.Nonce++ }},
	}

	t.Log("Given the need to detect a change to any hashed field.")
	{
		for testID, tst := range tt {
			f := func(t *testing.T) {
				flipped := b
				tst.mutate(&flipped)

				if flipped.Hash() == b.Hash() {
					t.Fatalf("\t%s\tTest %d:\tShould change the digest.", failed, testID)
				}
				t.Logf("\t%s\tTest %d:\tShould change the digest.", success, testID)
			}

			t.Run(tst.name, f)
		}
	}
}

func Test_ValidateChain(t *testing.T) {
	pk, err := crypto.HexToECDSA(pkHexKey)
	if err != nil {
		t.Fatalf("Should be able to generate a private key: %s", err)
	}

	type table struct {
		name   string
		chain  func() []database.Block
		reason database.Reason
		index  int
	}

	tt := []table{
		{
			name:  "valid",
			chain: func() []database.Block { return threeBlocks(t) },
		},
		{
			name:   "empty",
			chain:  func() []database.Block { return nil },
			reason: database.ReasonEmptyChain,
		},
		{
			name: "bad-index",
			chain: func() []database.Block {
				c := threeBlocks(t)
				c[1].Index = 5
				return c
			},
			reason: database.ReasonBadIndex,
			index:  1,
		},
		{
			name: "time-regression",
			chain: func() []database.Block {
				c := threeBlocks(t)
				c[2].Timestamp = c[1].Timestamp - 1
				return c
			},
			reason: database.ReasonTimeRegression,
			index:  2,
		},
		{
			name: "bad-pow",
			chain: func() []database.Block {
				c := threeBlocks(t)
				c[1].BlockHash = "ff" + c[1].BlockHash[2:]
				return c
			},
			reason: database.ReasonBadPOW,
			index:  1,
		},
		{
			name: "bad-digest",
			chain: func() []database.Block {
				c := threeBlocks(t)
				c[2].Payload = canonical.String("tampered")
				return c
			},
			reason: database.ReasonBadDigest,
			index:  2,
		},
		{
			name: "bad-link",
			chain: func() []database.Block {
				c := threeBlocks(t)
				c[2].PreviousHash = signature.ZeroHash
				remine(t, &c[2])
				return c
			},
			reason: database.ReasonBadLink,
			index:  2,
		},
		{
			name: "duplicate-tx-id",
			chain: func() []database.Block {
				return mineChain(t,
					submission(t, map[string]any{"tx_id": "t1", "value": 1}),
					submission(t, map[string]any{"tx_id": "t1", "value": 2}),
				)
			},
			reason: database.ReasonDuplicateTxID,
			index:  2,
		},
		{
			name: "bad-signature",
			chain: func() []database.Block {
				sub := submission(t, map[string]any{"tx_id": "t1"})
				sub.Payload = canonical.Object(map[string]canonical.Value{"tx_id": canonical.String("t2")})
				return mineChain(t, sub)
			},
			reason: database.ReasonBadSignature,
			index:  1,
		},
		{
			name: "absent-signature",
			chain: func() []database.Block {
				sub := submission(t, map[string]any{"tx_id": "t1"})
				sub.Signature = nil
				sub.PublicKey = nil
				return mineChain(t, sub)
			},
			reason: database.ReasonBadSignature,
			index:  1,
		},
		{
			name: "signed-by-other",
			chain: func() []database.Block {
				sub := submission(t, map[string]any{"tx_id": "t1"})
				pub := signature.EncodePublicKey(&pk.PublicKey)
				other, _ := crypto.GenerateKey()
				wrong := signature.EncodePublicKey(&other.PublicKey)
				if pub == wrong {
					t.Fatal("Should generate a distinct key.")
				}
				sub.PublicKey = &wrong
				return mineChain(t, sub)
			},
			reason: database.ReasonBadSignature,
			index:  1,
		},
	}

	t.Log("Given the need to validate a chain.")
	{
		for testID, tst := range tt {
			f := func(t *testing.T) {
				err := database.ValidateChain(tst.chain(), difficulty, signature.Secp256k1{})

				if tst.reason == "" {
					if err != nil {
						t.Fatalf("\t%s\tTest %d:\tShould accept the chain: %v", failed, testID, err)
					}
					t.Logf("\t%s\tTest %d:\tShould accept the chain.", success, testID)
					return
				}

				ce, ok := database.GetChainError(err)
				if !ok {
					t.Fatalf("\t%s\tTest %d:\tShould get back a chain error, got %v", failed, testID, err)
				}

				if ce.Reason != tst.reason || ce.Index != tst.index {
					t.Logf("\t%s\tTest %d:\tgot: %s at %d", failed, testID, ce.Reason, ce.Index)
					t.Logf("\t%s\tTest %d:\texp: %s at %d", failed, testID, tst.reason, tst.index)
					t.Fatalf("\t%s\tTest %d:\tShould reject the chain for the right reason.", failed, testID)
				}
				t.Logf("\t%s\tTest %d:\tShould reject the chain for the right reason: %s", success, testID, err)
			}

			t.Run(tst.name, f)
		}
	}
}

func Test_Database(t *testing.T) {
	gen := genesis.Default()
	gen.Difficulty = difficulty

	store := memory.New()

	db, err := database.New(gen, store, signature.Secp256k1{}, nil)
	if err != nil {
		t.Fatalf("\t%s\tShould be able to open the database: %v", failed, err)
	}
	t.Logf("\t%s\tShould be able to open the database.", success)

	if db.Length() != 1 || store.Saves() != 1 {
		t.Fatalf("\t%s\tShould create and save the genesis block, got length %d saves %d", failed, db.Length(), store.Saves())
	}
	t.Logf("\t%s\tShould create and save the genesis block.", success)

	sub := submission(t, map[string]any{"tx_id": "t1", "room": "A3"})
	b := database.NewBlock(db.LatestBlock(), sub, time.Now())
	if err := b.Mine(context.Background(), gen.Difficulty, nil); err != nil {
		t.Fatalf("\t%s\tShould be able to mine a block: %v", failed, err)
	}

	if err := db.Append(b); err != nil {
		t.Fatalf("\t%s\tShould be able to append a block: %v", failed, err)
	}
	t.Logf("\t%s\tShould be able to append a block.", success)

	if err := db.Append(b); err == nil {
		t.Fatalf("\t%s\tShould reject a block that does not extend the tip.", failed)
	}
	t.Logf("\t%s\tShould reject a block that does not extend the tip.", success)

	found, exists := db.QueryByTxID("t1")
	if !exists || found.BlockHash != b.BlockHash {
		t.Fatalf("\t%s\tShould be able to find the block by tx_id.", failed)
	}

	if ids := db.TxIDs(); len(ids) != 1 || ids[0] != "t1" {
		t.Fatalf("\t%s\tShould list the recorded tx_ids, got %v", failed, ids)
	}

	// Reopen from the same storage.
	db2, err := database.New(gen, store, signature.Secp256k1{}, nil)
	if err != nil {
		t.Fatalf("\t%s\tShould be able to reopen the database: %v", failed, err)
	}

	if db2.Length() != 2 || db2.LatestBlock().BlockHash != b.BlockHash {
		t.Fatalf("\t%s\tShould restore the persisted chain, got length %d", failed, db2.Length())
	}
	t.Logf("\t%s\tShould restore the persisted chain.", success)

	// A persisted chain that no longer validates is replaced by genesis.
	blocks := db2.Blocks()
	blocks[1].Payload = canonical.String("tampered")
	store.Save(blocks)

	var warned bool
	ev := func(v string, args ...any) {
		if strings.Contains(v, "stored chain invalid") {
			warned = true
		}
	}

	db3, err := database.New(gen, store, signature.Secp256k1{}, ev)
	if err != nil {
		t.Fatalf("\t%s\tShould recover from an invalid stored chain: %v", failed, err)
	}

	if db3.Length() != 1 || db3.Blocks()[0].BlockHash != db.Blocks()[0].BlockHash {
		t.Fatalf("\t%s\tShould start over from genesis, got length %d", failed, db3.Length())
	}

	if stored, _ := store.Load(); len(stored) != 1 {
		t.Fatalf("\t%s\tShould save genesis over the invalid chain, got %d blocks", failed, len(stored))
	}

	if !warned {
		t.Fatalf("\t%s\tShould report the invalid stored chain.", failed)
	}
	t.Logf("\t%s\tShould recover from an invalid stored chain.", success)
}

func Test_CorruptStorage(t *testing.T) {
	gen := genesis.Default()
	gen.Difficulty = difficulty

	store := corruptStorage{}

	db, err := database.New(gen, &store, signature.Secp256k1{}, nil)
	if err != nil {
		t.Fatalf("\t%s\tShould recover from a corrupt store: %v", failed, err)
	}

	if db.Length() != 1 || len(store.saved) != 1 {
		t.Fatalf("\t%s\tShould start over from genesis, got length %d", failed, db.Length())
	}
	t.Logf("\t%s\tShould start over from genesis.", success)

	store.fail = errors.New("disk on fire")
	if _, err := database.New(gen, &store, signature.Secp256k1{}, nil); err == nil {
		t.Fatalf("\t%s\tShould fail when storage can't be read.", failed)
	}
	t.Logf("\t%s\tShould fail when storage can't be read.", success)
}

// =============================================================================

type corruptStorage struct {
	fail  error
	saved []database.Block
}

func (cs *corruptStorage) Load() ([]database.Block, error) {
	if cs.fail != nil {
		return nil, cs.fail
	}
	return nil, database.ErrCorrupt
}

func (cs *corruptStorage) Save(blocks []database.Block) error {
	cs.saved = blocks
	return nil
}

func (cs *corruptStorage) Close() error {
	return nil
}

func submission(t *testing.T, payload map[string]any) database.Submission {
	t.Helper()

	pk, err := crypto.HexToECDSA(pkHexKey)
	if err != nil {
		t.Fatalf("Should be able to generate a private key: %s", err)
	}

	sub, err := database.SignSubmission(payload, pk)
	if err != nil {
		t.Fatalf("Should be able to sign the payload: %s", err)
	}

	return sub
}

// mineChain builds a chain from the submissions without applying any
// admission checks.
func mineChain(t *testing.T, subs ...database.Submission) []database.Block {
	t.Helper()

	gen := genesis.Default()
	gen.Difficulty = difficulty

	genesisBlock, err := database.NewGenesisBlock(gen, nil)
	if err != nil {
		t.Fatalf("Should be able to mine the genesis block: %s", err)
	}

	chain := []database.Block{genesisBlock}
	for _, sub := range subs {
		b := database.NewBlock(chain[len(chain)-1], sub, time.Now())
		remine(t, &b)
		chain = append(chain, b)
	}

	return chain
}

func threeBlocks(t *testing.T) []database.Block {
	return mineChain(t,
		submission(t, map[string]any{"tx_id": "t1", "value": 1}),
		submission(t, map[string]any{"tx_id": "t2", "value": 2}),
	)
}

func remine(t *testing.T, b *database.Block) {
	t.Helper()

	if err := b.Mine(context.Background(), difficulty, nil); err != nil {
		t.Fatalf("Should be able to mine the block: %s", err)
	}
}
