// Package signature provides helper functions for handling the blockchain
// signature needs.
package signature

import (
	"bytes"
	"crypto/ecdsa"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/ardanlabs/ledger/foundation/blockchain/canonical"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// ZeroHash represents a hash code of zeros. It is the previous hash of
// the genesis block.
const ZeroHash string = "0000000000000000000000000000000000000000000000000000000000000000"

// ErrInvalidSignature is returned when a signature can't be verified
// against the payload and public key provided.
var ErrInvalidSignature = errors.New("invalid signature")

// stampPrefix is mixed into every signed digest so a signature produced for
// the ledger can't be replayed as an Ethereum personal message.
const stampPrefix = "\x19Ledger Signed Message:\n32"

// =============================================================================

// Hash returns the hex encoded sha256 of the canonical encoding of the
// value. An empty string is returned if the value can't be encoded.
func Hash(value any) string {
	data, err := canonical.Marshal(value)
	if err != nil {
		return ""
	}

	return HashBytes(data)
}

// HashBytes returns the hex encoded sha256 of the data.
func HashBytes(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// Sign uses the specified private key to sign the canonical encoding of
// the payload. The signature is returned as a 0x prefixed hex string.
func Sign(payload any, privateKey *ecdsa.PrivateKey) (string, error) {
	data, err := stamp(payload)
	if err != nil {
		return "", err
	}

	sig, err := crypto.Sign(data, privateKey)
	if err != nil {
		return "", err
	}

	return hexutil.Encode(sig), nil
}

// Verify checks the signature was produced over the canonical encoding of
// the payload by the owner of the public key. Malformed keys and signatures
// are reported as invalid signatures.
func Verify(payload any, sigHex string, publicKeyHex string) error {
	publicKey, err := hexutil.Decode(publicKeyHex)
	if err != nil {
		return fmt.Errorf("%w: decoding public key: %s", ErrInvalidSignature, err)
	}

	if _, err := crypto.UnmarshalPubkey(publicKey); err != nil {
		return fmt.Errorf("%w: parsing public key: %s", ErrInvalidSignature, err)
	}

	sig, err := hexutil.Decode(sigHex)
	if err != nil {
		return fmt.Errorf("%w: decoding signature: %s", ErrInvalidSignature, err)
	}

	if len(sig) != crypto.SignatureLength {
		return fmt.Errorf("%w: signature length %d, exp %d", ErrInvalidSignature, len(sig), crypto.SignatureLength)
	}

	if v := sig[crypto.RecoveryIDOffset]; v > 1 {
		return fmt.Errorf("%w: recovery id %d, exp 0 or 1", ErrInvalidSignature, v)
	}

	data, err := stamp(payload)
	if err != nil {
		return fmt.Errorf("%w: encoding payload: %s", ErrInvalidSignature, err)
	}

	// VerifySignature wants the 64 byte [R|S] form and rejects high S values.
	if !crypto.VerifySignature(publicKey, data, sig[:crypto.RecoveryIDOffset]) {
		return ErrInvalidSignature
	}

	// The recovery id must be the one that yields this key, so every
	// payload and key pair has a single accepted signature string.
	recovered, err := crypto.Ecrecover(data, sig)
	if err != nil || !bytes.Equal(recovered, publicKey) {
		return fmt.Errorf("%w: recovery id %d does not match the public key", ErrInvalidSignature, sig[crypto.RecoveryIDOffset])
	}

	return nil
}

// EncodePublicKey returns the 0x prefixed hex form of the uncompressed
// public key.
func EncodePublicKey(publicKey *ecdsa.PublicKey) string {
	return hexutil.Encode(crypto.FromECDSAPub(publicKey))
}

// DecodePublicKey parses the 0x prefixed hex form of a public key.
func DecodePublicKey(publicKeyHex string) (*ecdsa.PublicKey, error) {
	data, err := hexutil.Decode(publicKeyHex)
	if err != nil {
		return nil, err
	}

	return crypto.UnmarshalPubkey(data)
}

// =============================================================================

// stamp returns a hash of 32 bytes that represents the canonical encoding
// of the payload with the ledger stamp embedded into the final hash.
func stamp(payload any) ([]byte, error) {
	v, err := canonical.Marshal(payload)
	if err != nil {
		return nil, err
	}

	// Hash the data into a 32 byte array. This will provide a data length
	// consistency with all data.
	txHash := crypto.Keccak256(v)

	return crypto.Keccak256([]byte(stampPrefix), txHash), nil
}
