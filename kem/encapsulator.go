package kem

import (
	"fmt"
	"log/slog"
	"sync"

	"pq-messenger/domain"
	"pq-messenger/errors"
)

// Encapsulator exposes the canonical (ciphertext, sharedSecret) pair for a
// configured primitive.
//
// Canonicalization relies on the ciphertext being strictly longer than the
// shared secret, which holds for every supported parameter set. The
// constructor checks this once and refuses primitives that violate it.
type Encapsulator struct {
	primitive Primitive
	log       *slog.Logger

	// ciphertext length per lengthKey
	lengths sync.Map
}

// lengthKey scopes a cached ciphertext length to the public key size it was
// measured with, so a key of another parameter set never hits the cache.
type lengthKey struct {
	scheme       string
	publicKeyLen int
}

// NewEncapsulator probes the primitive with a throwaway keypair and fails
// fast when the two outputs cannot be told apart by length.
func NewEncapsulator(log *slog.Logger, primitive Primitive) (*Encapsulator, error) {
	e := &Encapsulator{primitive: primitive, log: log}
	pk, _, err := primitive.GenerateKeyPair()
	if err != nil {
		return nil, &errors.GenerationError{Op: "probe keypair", Err: err}
	}
	result, err := e.Encapsulate(pk)
	if err != nil {
		return nil, err
	}
	e.lengths.Store(lengthKey{primitive.Name(), len(pk)}, len(result.Ciphertext))
	log.Info("KEM scheme configured",
		"scheme", primitive.Name(),
		"ciphertext_len", len(result.Ciphertext),
		"shared_secret_len", len(result.SharedSecret))
	return e, nil
}

// Scheme names the configured primitive, as stored on every keypair.
func (e *Encapsulator) Scheme() string { return e.primitive.Name() }

// GenerateKeyPair returns a fresh keypair for the configured scheme. Both
// halves are returned together or not at all.
func (e *Encapsulator) GenerateKeyPair() (publicKey, privateKey []byte, err error) {
	pk, sk, err := e.primitive.GenerateKeyPair()
	if err != nil {
		return nil, nil, &errors.GenerationError{Op: "keypair generation", Err: err}
	}
	if len(pk) == 0 || len(sk) == 0 {
		return nil, nil, &errors.GenerationError{Op: "keypair generation", Err: fmt.Errorf("empty key material")}
	}
	return pk, sk, nil
}

// Encapsulate draws a new shared secret for publicKey.
func (e *Encapsulator) Encapsulate(publicKey []byte) (domain.EncapsulationResult, error) {
	a, b, err := e.primitive.Encapsulate(publicKey)
	if err != nil {
		return domain.EncapsulationResult{}, &errors.GenerationError{Op: "encapsulation", Err: err}
	}
	return canonicalize(a, b)
}

// Decapsulate recovers the shared secret. The relay never calls it; receiving
// clients and tests do.
func (e *Encapsulator) Decapsulate(privateKey, ciphertext []byte) ([]byte, error) {
	ss, err := e.primitive.Decapsulate(privateKey, ciphertext)
	if err != nil {
		return nil, &errors.GenerationError{Op: "decapsulation", Err: err}
	}
	return ss, nil
}

// ExpectedCiphertextLength returns the ciphertext size for the parameter set
// of publicKey. The size does not depend on the random draw, so the first
// measurement is cached per scheme and public key size. A public key the
// configured scheme cannot use is a GenerationError.
func (e *Encapsulator) ExpectedCiphertextLength(publicKey []byte) (int, error) {
	key := lengthKey{e.primitive.Name(), len(publicKey)}
	if n, ok := e.lengths.Load(key); ok {
		return n.(int), nil
	}
	result, err := e.Encapsulate(publicKey)
	if err != nil {
		return 0, err
	}
	n, _ := e.lengths.LoadOrStore(key, len(result.Ciphertext))
	return n.(int), nil
}

// canonicalize assigns the longer output to the ciphertext.
func canonicalize(a, b []byte) (domain.EncapsulationResult, error) {
	switch {
	case len(a) > len(b):
		return domain.EncapsulationResult{Ciphertext: a, SharedSecret: b}, nil
	case len(b) > len(a):
		return domain.EncapsulationResult{Ciphertext: b, SharedSecret: a}, nil
	default:
		return domain.EncapsulationResult{}, fmt.Errorf("%w: both outputs are %d bytes",
			errors.ErrAmbiguousScheme, len(a))
	}
}
