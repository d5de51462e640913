// Package domain contains core concepts of the relay.
// This file defines KEM key material.
// No runtime, network, or storage logic should be added here.
package domain

import "time"

// KeyPair is generated once per username. It is only replaced when it no
// longer matches the configured scheme.
type KeyPair struct {
	Username   string
	Scheme     string
	PublicKey  []byte
	PrivateKey []byte
	CreatedAt  time.Time
}

// Complete reports whether both halves are present.
func (k KeyPair) Complete() bool {
	return len(k.PublicKey) > 0 && len(k.PrivateKey) > 0
}

// EncapsulationResult is the canonical output of one encapsulation.
type EncapsulationResult struct {
	Ciphertext   []byte
	SharedSecret []byte
}
