// Package integrity checks the structural shape of encapsulated keys before
// a message is accepted by the relay.
//
// Only the length is verified. Whether the ciphertext actually decapsulates
// is for the receiving client to find out.
package integrity

import (
	"encoding/base64"

	"pq-messenger/errors"
)

// CiphertextSizer is satisfied by *kem.Encapsulator.
type CiphertextSizer interface {
	ExpectedCiphertextLength(publicKey []byte) (int, error)
}

type Gate struct {
	sizer CiphertextSizer
}

func NewGate(sizer CiphertextSizer) *Gate {
	return &Gate{sizer: sizer}
}

// Validate decodes the base64 encapsulated key and checks it against the
// recipient's parameter set. The decoded bytes are returned on success.
func (g *Gate) Validate(encapsulatedKey string, recipientPublicKey []byte) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(encapsulatedKey)
	if err != nil {
		return nil, &errors.DecodingError{Field: "encrypted_key", Err: err}
	}
	if err := g.ValidateBytes(raw, recipientPublicKey); err != nil {
		return nil, err
	}
	return raw, nil
}

// ValidateBytes checks an already decoded encapsulated key.
func (g *Gate) ValidateBytes(encapsulatedKey, recipientPublicKey []byte) error {
	expected, err := g.sizer.ExpectedCiphertextLength(recipientPublicKey)
	if err != nil {
		return err
	}
	if len(encapsulatedKey) != expected {
		return &errors.LengthMismatchError{Expected: expected, Actual: len(encapsulatedKey)}
	}
	return nil
}
