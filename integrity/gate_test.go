package integrity

import (
	"encoding/base64"
	"log/slog"
	"testing"

	"pq-messenger/errors"
	"pq-messenger/kem"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

func newGate(t *testing.T) (*Gate, *kem.Encapsulator, []byte) {
	t.Helper()
	primitive, err := kem.NewPrimitive(kem.DefaultScheme)
	require.NoError(t, err)
	enc, err := kem.NewEncapsulator(logs.GetLoggerFromLevel(slog.LevelError), primitive)
	require.NoError(t, err)
	pk, _, err := enc.GenerateKeyPair()
	require.NoError(t, err)
	return NewGate(enc), enc, pk
}

func TestGate_Accepts_Real_Ciphertext(t *testing.T) {
	req := require.New(t)
	gate, enc, pk := newGate(t)

	result, err := enc.Encapsulate(pk)
	req.NoError(err)

	raw, err := gate.Validate(base64.StdEncoding.EncodeToString(result.Ciphertext), pk)
	req.NoError(err)
	req.Equal(result.Ciphertext, raw)
}

func TestGate_Length_Mismatch(t *testing.T) {
	gate, _, pk := newGate(t)

	for _, size := range []int{0, 1, 32, 700, 767, 769, 1088} {
		req := require.New(t)
		_, err := gate.Validate(base64.StdEncoding.EncodeToString(make([]byte, size)), pk)
		req.ErrorIs(err, errors.ErrLengthMismatch)

		var mismatch *errors.LengthMismatchError
		req.True(errors.As(err, &mismatch))
		req.Equal(768, mismatch.Expected)
		req.Equal(size, mismatch.Actual)
	}
}

func TestGate_Concrete_Scenario(t *testing.T) {
	req := require.New(t)
	gate, _, pk := newGate(t)

	err := gate.ValidateBytes(make([]byte, 700), pk)
	req.Equal(&errors.LengthMismatchError{Expected: 768, Actual: 700}, err)

	req.NoError(gate.ValidateBytes(make([]byte, 768), pk))
}

func TestGate_Invalid_Base64(t *testing.T) {
	req := require.New(t)
	gate, _, pk := newGate(t)

	_, err := gate.Validate("not*base64!", pk)
	req.ErrorIs(err, errors.ErrDecoding)
	req.False(errors.Is(err, errors.ErrLengthMismatch))
}
