package kem

import (
	"filippo.io/mlkem768"
	"filippo.io/mlkem768/xwing"
)

const (
	filippoMLKEM768Name = "mlkem768-filippo"
	xwingName           = "X-Wing"
)

// MLKEM768 uses filippo.io/mlkem768. Private keys are stored as the 64 byte
// "d || z" seed.
type MLKEM768 struct{}

func (MLKEM768) Name() string { return filippoMLKEM768Name }

func (MLKEM768) GenerateKeyPair() ([]byte, []byte, error) {
	dk, err := mlkem768.GenerateKey()
	if err != nil {
		return nil, nil, err
	}
	return dk.EncapsulationKey(), dk.Bytes(), nil
}

func (MLKEM768) Encapsulate(publicKey []byte) ([]byte, []byte, error) {
	return mlkem768.Encapsulate(publicKey)
}

func (MLKEM768) Decapsulate(privateKey, ciphertext []byte) ([]byte, error) {
	dk, err := mlkem768.NewKeyFromSeed(privateKey)
	if err != nil {
		return nil, err
	}
	return mlkem768.Decapsulate(dk, ciphertext)
}

// XWing is the X25519 + ML-KEM-768 hybrid. Private keys are 32 byte seeds.
type XWing struct{}

func (XWing) Name() string { return xwingName }

func (XWing) GenerateKeyPair() ([]byte, []byte, error) {
	dk, err := xwing.GenerateKey()
	if err != nil {
		return nil, nil, err
	}
	return dk.EncapsulationKey(), dk.Bytes(), nil
}

func (XWing) Encapsulate(publicKey []byte) ([]byte, []byte, error) {
	return xwing.Encapsulate(publicKey)
}

func (XWing) Decapsulate(privateKey, ciphertext []byte) ([]byte, error) {
	dk, err := xwing.NewKeyFromSeed(privateKey)
	if err != nil {
		return nil, err
	}
	return xwing.Decapsulate(dk, ciphertext)
}
