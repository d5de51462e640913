package services

import (
	"context"
	"log/slog"

	"pq-messenger/domain"
	"pq-messenger/observability"

	"golang.org/x/sync/errgroup"
)

// maxParallelKeygen bounds CPU spent on one batch of key provisioning.
const maxParallelKeygen = 4

type IKeyService interface {
	EnsureKeys(ctx context.Context, usernames []string) ([]string, error)
	PublicKey(ctx context.Context, username string) ([]byte, error)
	EncapsulateFor(ctx context.Context, username string) (domain.EncapsulationResult, error)
}

// KeyStore is satisfied by *keystore.KeyStore.
type KeyStore interface {
	EnsureKeyPair(ctx context.Context, username string) error
	GetPublicKey(ctx context.Context, username string) ([]byte, error)
}

// Encapsulator is satisfied by *kem.Encapsulator.
type Encapsulator interface {
	Encapsulate(publicKey []byte) (domain.EncapsulationResult, error)
}

type KeyService struct {
	log          *slog.Logger
	keys         KeyStore
	encapsulator Encapsulator
}

func NewKeyService(log *slog.Logger, keys KeyStore, encapsulator Encapsulator) *KeyService {
	return &KeyService{log: log, keys: keys, encapsulator: encapsulator}
}

// EnsureKeys provisions every non-empty username of the batch and echoes the
// batch back.
func (s *KeyService) EnsureKeys(ctx context.Context, usernames []string) ([]string, error) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelKeygen)
	for _, username := range usernames {
		if username == "" {
			continue
		}
		g.Go(func() error {
			return s.keys.EnsureKeyPair(gctx, username)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return usernames, nil
}

func (s *KeyService) PublicKey(ctx context.Context, username string) ([]byte, error) {
	return s.keys.GetPublicKey(ctx, username)
}

// EncapsulateFor draws a fresh shared secret for username's public key.
func (s *KeyService) EncapsulateFor(ctx context.Context, username string) (domain.EncapsulationResult, error) {
	publicKey, err := s.keys.GetPublicKey(ctx, username)
	if err != nil {
		return domain.EncapsulationResult{}, err
	}
	result, err := s.encapsulator.Encapsulate(publicKey)
	if err != nil {
		s.log.Error("Encapsulation failed", "username", username, "error", err)
		return domain.EncapsulationResult{}, err
	}
	observability.Encapsulations.Inc()
	s.log.Debug("Encapsulated key issued",
		"username", username,
		"ciphertext_len", len(result.Ciphertext),
		"shared_secret_len", len(result.SharedSecret))
	return result, nil
}
