// Package kem wraps post-quantum key encapsulation primitives behind a single
// canonical contract.
//
// Primitives disagree on the order of the two encapsulation outputs: some
// return (ciphertext, sharedSecret), others (sharedSecret, ciphertext). The
// Encapsulator hides this by ordering the pair by length.
package kem

import (
	"fmt"
	"strings"

	"pq-messenger/errors"
)

// DefaultScheme produces 768 byte ciphertexts and 32 byte shared secrets.
const DefaultScheme = "Kyber512"

// Primitive is the raw KEM. The order of the values returned by Encapsulate
// is not part of the contract.
type Primitive interface {
	Name() string
	GenerateKeyPair() (publicKey, privateKey []byte, err error)
	Encapsulate(publicKey []byte) (a, b []byte, err error)
	Decapsulate(privateKey, ciphertext []byte) (sharedSecret []byte, err error)
}

// NewPrimitive resolves a scheme name. Names are case-insensitive.
func NewPrimitive(name string) (Primitive, error) {
	switch strings.ToLower(name) {
	case "":
		return NewCirclPrimitive(DefaultScheme)
	case strings.ToLower(filippoMLKEM768Name):
		return MLKEM768{}, nil
	case strings.ToLower(xwingName):
		return XWing{}, nil
	}
	p, err := NewCirclPrimitive(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", errors.ErrUnknownScheme, name)
	}
	return p, nil
}

// swapped reverses the output order of the wrapped primitive.
type swapped struct {
	Primitive
}

// Swapped returns a primitive emitting (sharedSecret, ciphertext).
func Swapped(p Primitive) Primitive {
	return swapped{Primitive: p}
}

func (s swapped) Encapsulate(publicKey []byte) ([]byte, []byte, error) {
	a, b, err := s.Primitive.Encapsulate(publicKey)
	return b, a, err
}
