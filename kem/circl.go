package kem

import (
	"fmt"

	circlkem "github.com/cloudflare/circl/kem"
	"github.com/cloudflare/circl/kem/schemes"
)

// CirclPrimitive adapts any scheme registered in circl.
type CirclPrimitive struct {
	scheme circlkem.Scheme
}

// NewCirclPrimitive looks name up in circl's scheme registry.
func NewCirclPrimitive(name string) (*CirclPrimitive, error) {
	scheme := schemes.ByName(name)
	if scheme == nil {
		return nil, fmt.Errorf("circl: no scheme named %q", name)
	}
	return &CirclPrimitive{scheme: scheme}, nil
}

func (c *CirclPrimitive) Name() string { return c.scheme.Name() }

func (c *CirclPrimitive) GenerateKeyPair() ([]byte, []byte, error) {
	pk, sk, err := c.scheme.GenerateKeyPair()
	if err != nil {
		return nil, nil, err
	}
	pkBytes, err := pk.MarshalBinary()
	if err != nil {
		return nil, nil, err
	}
	skBytes, err := sk.MarshalBinary()
	if err != nil {
		return nil, nil, err
	}
	return pkBytes, skBytes, nil
}

func (c *CirclPrimitive) Encapsulate(publicKey []byte) ([]byte, []byte, error) {
	pk, err := c.scheme.UnmarshalBinaryPublicKey(publicKey)
	if err != nil {
		return nil, nil, err
	}
	return c.scheme.Encapsulate(pk)
}

func (c *CirclPrimitive) Decapsulate(privateKey, ciphertext []byte) ([]byte, error) {
	sk, err := c.scheme.UnmarshalBinaryPrivateKey(privateKey)
	if err != nil {
		return nil, err
	}
	return c.scheme.Decapsulate(sk, ciphertext)
}
