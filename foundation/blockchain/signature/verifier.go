package signature

import (
	"encoding/hex"

	"github.com/ardanlabs/ledger/foundation/blockchain/canonical"
	"github.com/ethereum/go-ethereum/crypto"
	lru "github.com/hashicorp/golang-lru/v2"
)

// Verifier interface represents the behavior required to check the signature
// attached to a block payload.
type Verifier interface {
	Verify(payload canonical.Value, sigHex string, publicKeyHex string) error
}

// Secp256k1 verifies signatures with no caching.
type Secp256k1 struct{}

// Verify implements the Verifier interface.
func (Secp256k1) Verify(payload canonical.Value, sigHex string, publicKeyHex string) error {
	return Verify(payload, sigHex, publicKeyHex)
}

// =============================================================================

// CachedVerifier remembers the outcome of recent verifications. Peer chains
// mostly repeat blocks this node has already audited, so a resolution cycle
// can skip the elliptic curve work for those blocks.
type CachedVerifier struct {
	next    Verifier
	results *lru.Cache[string, error]
}

// NewCachedVerifier constructs a verifier that keeps up to size outcomes.
func NewCachedVerifier(next Verifier, size int) (*CachedVerifier, error) {
	results, err := lru.New[string, error](size)
	if err != nil {
		return nil, err
	}

	cv := CachedVerifier{
		next:    next,
		results: results,
	}

	return &cv, nil
}

// Verify implements the Verifier interface.
func (cv *CachedVerifier) Verify(payload canonical.Value, sigHex string, publicKeyHex string) error {
	key := cacheKey(payload, sigHex, publicKeyHex)

	if err, exists := cv.results.Get(key); exists {
		return err
	}

	err := cv.next.Verify(payload, sigHex, publicKeyHex)
	cv.results.Add(key, err)

	return err
}

// Len returns the number of outcomes held in the cache.
func (cv *CachedVerifier) Len() int {
	return cv.results.Len()
}

// cacheKey binds the signature, key, and payload together. Encoding them as
// one canonical array keeps the parts delimited.
func cacheKey(payload canonical.Value, sigHex string, publicKeyHex string) string {
	data := canonical.Encode(canonical.Array(
		canonical.String(sigHex),
		canonical.String(publicKeyHex),
		payload,
	))

	return hex.EncodeToString(crypto.Keccak256(data))
}
