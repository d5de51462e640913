package services

import (
	"context"
	"log/slog"
	"testing"

	"pq-messenger/domain"
	"pq-messenger/errors"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

type brokenEncapsulator struct{}

func (brokenEncapsulator) Encapsulate([]byte) (domain.EncapsulationResult, error) {
	return domain.EncapsulationResult{}, &errors.GenerationError{Op: "encapsulation", Err: errors.New("boom")}
}

func TestKeyService_EnsureKeys_And_Encapsulate(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	f := newRelayFixture(t, badgerMessages(t))
	svc := NewKeyService(logs.GetLoggerFromLevel(slog.LevelDebug), f.keys, f.enc)

	ensured, err := svc.EnsureKeys(ctx, []string{"alice", "", "bob", "alice"})
	req.NoError(err)
	req.Equal([]string{"alice", "", "bob", "alice"}, ensured)

	pk, err := svc.PublicKey(ctx, "alice")
	req.NoError(err)

	result, err := svc.EncapsulateFor(ctx, "alice")
	req.NoError(err)
	req.Len(result.Ciphertext, 768)
	req.Len(result.SharedSecret, 32)

	keyPair, err := f.keys.KeyPair(ctx, "alice")
	req.NoError(err)
	req.Equal(pk, keyPair.PublicKey)
	recovered, err := f.enc.Decapsulate(keyPair.PrivateKey, result.Ciphertext)
	req.NoError(err)
	req.Equal(result.SharedSecret, recovered)
}

func TestKeyService_Encapsulation_Failure(t *testing.T) {
	f := newRelayFixture(t, badgerMessages(t))
	svc := NewKeyService(logs.GetLoggerFromLevel(slog.LevelDebug), f.keys, brokenEncapsulator{})

	_, err := svc.EncapsulateFor(context.Background(), "alice")
	require.ErrorIs(t, err, errors.ErrGeneration)
}
