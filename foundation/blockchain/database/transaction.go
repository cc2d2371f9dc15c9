package database

import (
	"crypto/ecdsa"
	"errors"
	"fmt"

	"github.com/ardanlabs/ledger/foundation/blockchain/canonical"
	"github.com/ardanlabs/ledger/foundation/blockchain/signature"
)

// txIDKey is the payload field carrying the client supplied transaction id.
const txIDKey = "tx_id"

// ErrAbsentSignature is returned when a submission arrives without a
// signature or public key.
var ErrAbsentSignature = errors.New("signature or public key absent")

// =============================================================================

// Submission is the signed payload a client provides for inclusion into
// the ledger.
type Submission struct {
	Payload   canonical.Value `json:"payload"`
	Signature *string         `json:"signature"`
	PublicKey *string         `json:"public_key"`
}

// SignSubmission uses the specified private key to sign the payload and
// returns the submission ready to be sent to a node.
func SignSubmission(payload any, privateKey *ecdsa.PrivateKey) (Submission, error) {
	v, err := canonical.FromAny(payload)
	if err != nil {
		return Submission{}, fmt.Errorf("encoding payload: %w", err)
	}

	sig, err := signature.Sign(v, privateKey)
	if err != nil {
		return Submission{}, err
	}

	pub := signature.EncodePublicKey(&privateKey.PublicKey)

	sub := Submission{
		Payload:   v,
		Signature: &sig,
		PublicKey: &pub,
	}

	return sub, nil
}

// TxID returns the transaction id carried by the payload.
func (s Submission) TxID() (string, bool) {
	return TxID(s.Payload)
}

// Verify checks the submission carries a signature over the payload that
// verifies against its public key.
func (s Submission) Verify(verifier signature.Verifier) error {
	if s.Signature == nil || s.PublicKey == nil {
		return fmt.Errorf("%w: %w", signature.ErrInvalidSignature, ErrAbsentSignature)
	}

	return verifier.Verify(s.Payload, *s.Signature, *s.PublicKey)
}

// =============================================================================

// TxID extracts the transaction id from a payload. Only a non-empty string
// stored under the tx_id key of an object payload counts.
func TxID(payload canonical.Value) (string, bool) {
	field, exists := payload.Field(txIDKey)
	if !exists {
		return "", false
	}

	txID, ok := field.Text()
	if !ok || txID == "" {
		return "", false
	}

	return txID, true
}
