package kem

import (
	"bytes"
	"fmt"
	"log/slog"
	"testing"

	"pq-messenger/errors"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

// fixedPrimitive returns outputs of configurable sizes.
type fixedPrimitive struct {
	ctLen, ssLen int
	keygenErr    error
}

func (f fixedPrimitive) Name() string { return fmt.Sprintf("fixed-%d-%d", f.ctLen, f.ssLen) }

func (f fixedPrimitive) GenerateKeyPair() ([]byte, []byte, error) {
	if f.keygenErr != nil {
		return nil, nil, f.keygenErr
	}
	return []byte("pk"), []byte("sk"), nil
}

func (f fixedPrimitive) Encapsulate([]byte) ([]byte, []byte, error) {
	return bytes.Repeat([]byte{1}, f.ctLen), bytes.Repeat([]byte{2}, f.ssLen), nil
}

func (f fixedPrimitive) Decapsulate([]byte, []byte) ([]byte, error) {
	return bytes.Repeat([]byte{2}, f.ssLen), nil
}

func TestEncapsulator_Kyber512_Lengths(t *testing.T) {
	req := require.New(t)
	primitive, err := NewPrimitive(DefaultScheme)
	req.NoError(err)
	enc, err := NewEncapsulator(logs.GetLoggerFromLevel(slog.LevelDebug), primitive)
	req.NoError(err)

	pk, sk, err := enc.GenerateKeyPair()
	req.NoError(err)

	expected, err := enc.ExpectedCiphertextLength(pk)
	req.NoError(err)
	req.Equal(768, expected)

	// The length must not depend on the random draw
	for i := 0; i < 20; i++ {
		result, err := enc.Encapsulate(pk)
		req.NoError(err)
		req.Len(result.Ciphertext, expected)
		req.Len(result.SharedSecret, 32)

		recovered, err := enc.Decapsulate(sk, result.Ciphertext)
		req.NoError(err)
		req.Equal(result.SharedSecret, recovered)
	}
}

func TestEncapsulator_Canonicalizes_Swapped_Output(t *testing.T) {
	req := require.New(t)
	primitive, err := NewPrimitive(DefaultScheme)
	req.NoError(err)
	enc, err := NewEncapsulator(logs.GetLoggerFromLevel(slog.LevelDebug), Swapped(primitive))
	req.NoError(err)

	pk, sk, err := enc.GenerateKeyPair()
	req.NoError(err)
	result, err := enc.Encapsulate(pk)
	req.NoError(err)
	req.Len(result.Ciphertext, 768)
	req.Len(result.SharedSecret, 32)

	recovered, err := enc.Decapsulate(sk, result.Ciphertext)
	req.NoError(err)
	req.Equal(result.SharedSecret, recovered)
}

func TestEncapsulator_Rejects_Equal_Lengths(t *testing.T) {
	req := require.New(t)
	_, err := NewEncapsulator(logs.GetLoggerFromLevel(slog.LevelDebug), fixedPrimitive{ctLen: 32, ssLen: 32})
	req.ErrorIs(err, errors.ErrAmbiguousScheme)
}

func TestEncapsulator_Keygen_Failure_Is_Generation_Error(t *testing.T) {
	req := require.New(t)
	_, err := NewEncapsulator(logs.GetLoggerFromLevel(slog.LevelDebug),
		fixedPrimitive{ctLen: 768, ssLen: 32, keygenErr: errors.New("entropy exhausted")})
	req.ErrorIs(err, errors.ErrGeneration)
}

func TestEncapsulator_Invalid_PublicKey(t *testing.T) {
	req := require.New(t)
	primitive, err := NewPrimitive(DefaultScheme)
	req.NoError(err)
	enc, err := NewEncapsulator(logs.GetLoggerFromLevel(slog.LevelDebug), primitive)
	req.NoError(err)

	_, err = enc.Encapsulate([]byte("too short"))
	req.ErrorIs(err, errors.ErrGeneration)
}

func TestNewPrimitive(t *testing.T) {
	tests := []struct {
		name     string
		scheme   string
		ctLen    int
		sharedSS int
	}{
		{"default", "", 768, 32},
		{"kyber512", "kyber512", 768, 32},
		{"kyber768", "Kyber768", 1088, 32},
		{"ml-kem-1024", "ML-KEM-1024", 1568, 32},
		{"filippo mlkem768", "mlkem768-filippo", 1088, 32},
		{"x-wing", "X-Wing", 1120, 32},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			primitive, err := NewPrimitive(tt.scheme)
			req.NoError(err)
			enc, err := NewEncapsulator(logs.GetLoggerFromLevel(slog.LevelError), primitive)
			req.NoError(err)

			pk, sk, err := enc.GenerateKeyPair()
			req.NoError(err)
			result, err := enc.Encapsulate(pk)
			req.NoError(err)
			req.Len(result.Ciphertext, tt.ctLen)
			req.Len(result.SharedSecret, tt.sharedSS)

			recovered, err := enc.Decapsulate(sk, result.Ciphertext)
			req.NoError(err)
			req.Equal(result.SharedSecret, recovered)
		})
	}

	t.Run("unknown scheme", func(t *testing.T) {
		_, err := NewPrimitive("rot13")
		require.ErrorIs(t, err, errors.ErrUnknownScheme)
	})
}
