// Package keystore owns the username to KEM keypair mapping.
//
// A keypair is generated at most once per username. Concurrent requests for
// the same username are collapsed into a single generation, and the backing
// repository refuses to overwrite an existing entry, so every caller observes
// the same keypair. The only exception is a stored keypair that cannot be
// used with the configured scheme (another scheme, or a missing half): it is
// replaced once, with a warning.
package keystore

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"pq-messenger/domain"
	"pq-messenger/errors"
	"pq-messenger/observability"
	"pq-messenger/repositories"

	"golang.org/x/sync/singleflight"
)

// Policy decides which usernames may receive a keypair.
type Policy int

const (
	// PolicyLazy provisions any non-empty username on first use.
	PolicyLazy Policy = iota
	// PolicyRegistered only provisions usernames known to the credential store.
	PolicyRegistered
)

// ParsePolicy reads the KEY_PROVISIONING value; empty means lazy.
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "", "lazy":
		return PolicyLazy, nil
	case "registered":
		return PolicyRegistered, nil
	}
	return PolicyLazy, fmt.Errorf("unknown key provisioning policy %q", s)
}

// KeyGenerator is satisfied by *kem.Encapsulator.
type KeyGenerator interface {
	Scheme() string
	GenerateKeyPair() (publicKey, privateKey []byte, err error)
}

type KeyStore struct {
	log        *slog.Logger
	generator  KeyGenerator
	repository repositories.IKeyPairRepository
	users      repositories.IUserRepository
	policy     Policy
	group      singleflight.Group
}

type Option func(*KeyStore)

// WithRegisteredUsers switches to PolicyRegistered, checking against users.
func WithRegisteredUsers(users repositories.IUserRepository) Option {
	return func(k *KeyStore) {
		k.users = users
		k.policy = PolicyRegistered
	}
}

func New(log *slog.Logger, generator KeyGenerator, repository repositories.IKeyPairRepository, opts ...Option) *KeyStore {
	k := &KeyStore{log: log, generator: generator, repository: repository, policy: PolicyLazy}
	for _, opt := range opts {
		opt(k)
	}
	return k
}

// EnsureKeyPair provisions a keypair for username if none exists.
func (k *KeyStore) EnsureKeyPair(ctx context.Context, username string) error {
	_, err := k.KeyPair(ctx, username)
	return err
}

// GetPublicKey returns the public key of username, provisioning it first
// when needed.
func (k *KeyStore) GetPublicKey(ctx context.Context, username string) ([]byte, error) {
	keyPair, err := k.KeyPair(ctx, username)
	if err != nil {
		return nil, err
	}
	return keyPair.PublicKey, nil
}

// KeyPair returns the complete keypair of username, provisioning it first
// when needed.
func (k *KeyStore) KeyPair(ctx context.Context, username string) (domain.KeyPair, error) {
	if username == "" {
		return domain.KeyPair{}, fmt.Errorf("%w: empty username", errors.ErrInvalidRequest)
	}
	keyPair, err := k.repository.GetKeyPair(ctx, username)
	if err == nil && k.usable(keyPair) {
		return keyPair, nil
	}
	if err != nil && !errors.Is(err, errors.ErrNotFound) {
		return domain.KeyPair{}, err
	}

	// The flight is shared, so one caller going away must not fail the others.
	flightCtx := context.WithoutCancel(ctx)
	v, err, shared := k.group.Do(username, func() (interface{}, error) {
		return k.provision(flightCtx, username)
	})
	if err != nil {
		return domain.KeyPair{}, err
	}
	if shared {
		k.log.Debug("Keypair generation shared between concurrent callers", "username", username)
	}
	return v.(domain.KeyPair), nil
}

// usable reports whether keyPair can serve the configured scheme.
func (k *KeyStore) usable(keyPair domain.KeyPair) bool {
	return keyPair.Complete() && keyPair.Scheme == k.generator.Scheme()
}

func (k *KeyStore) provision(ctx context.Context, username string) (domain.KeyPair, error) {
	// Another flight may have finished between the lookup and Do.
	existing, err := k.repository.GetKeyPair(ctx, username)
	switch {
	case err == nil && k.usable(existing):
		return existing, nil
	case err != nil && !errors.Is(err, errors.ErrNotFound):
		return domain.KeyPair{}, err
	}
	stale := err == nil

	if k.policy == PolicyRegistered {
		if _, err := k.users.GetUserByUsername(ctx, username); err != nil {
			return domain.KeyPair{}, err
		}
	}

	publicKey, privateKey, err := k.generator.GenerateKeyPair()
	if err != nil {
		k.log.Error("Keypair generation failed", "username", username, "error", err)
		return domain.KeyPair{}, err
	}
	candidate := domain.KeyPair{
		Username:   username,
		Scheme:     k.generator.Scheme(),
		PublicKey:  publicKey,
		PrivateKey: privateKey,
		CreatedAt:  time.Now().UTC(),
	}
	var stored domain.KeyPair
	if stale {
		k.log.Warn("Replacing unusable keypair",
			"username", username,
			"stored_scheme", existing.Scheme,
			"configured_scheme", candidate.Scheme,
			"complete", existing.Complete())
		stored, err = k.repository.Replace(ctx, existing, candidate)
	} else {
		stored, err = k.repository.CreateIfAbsent(ctx, candidate)
	}
	if err != nil {
		return domain.KeyPair{}, fmt.Errorf("storing keypair: %w", err)
	}
	if !k.usable(stored) {
		return domain.KeyPair{}, &errors.GenerationError{
			Op:  "keypair provisioning",
			Err: fmt.Errorf("stored keypair of %q is unusable with scheme %s", username, candidate.Scheme),
		}
	}
	if string(stored.PublicKey) == string(candidate.PublicKey) {
		observability.KeyPairsGenerated.Inc()
		k.log.Info("Keypair provisioned", "username", username, "scheme", stored.Scheme)
	}
	return stored, nil
}
