//go:generate go run go.uber.org/mock/mockgen -source=keypair.go -destination=../mocks/mock_keypair_repository.go -package=mocks
package repositories

import (
	"bytes"
	"context"
	"sync"

	"pq-messenger/domain"
	"pq-messenger/errors"

	"github.com/dgraph-io/badger/v4"
)

const keyPairPrefix = "keypair:"

// IKeyPairRepository stores KEM keypairs. CreateIfAbsent is atomic: when a
// keypair already exists for the username it is returned unchanged and the
// candidate is discarded. Replace swaps stale for fresh only while stale is
// still the stored keypair, otherwise it returns whatever is stored.
type IKeyPairRepository interface {
	GetKeyPair(ctx context.Context, username string) (domain.KeyPair, error)
	CreateIfAbsent(ctx context.Context, keyPair domain.KeyPair) (domain.KeyPair, error)
	Replace(ctx context.Context, stale, fresh domain.KeyPair) (domain.KeyPair, error)
}

// KeyPairRepository keeps keypairs in BadgerDB so they survive restarts.
type KeyPairRepository struct {
	db *badger.DB
}

func NewKeyPairRepository(db *badger.DB) *KeyPairRepository {
	return &KeyPairRepository{db: db}
}

func (k *KeyPairRepository) GetKeyPair(_ context.Context, username string) (domain.KeyPair, error) {
	var keyPair domain.KeyPair
	err := k.db.View(func(txn *badger.Txn) error {
		var err error
		keyPair, err = getKeyPair(txn, username)
		return err
	})
	return keyPair, err
}

// CreateIfAbsent relies on Badger's optimistic transactions: if a concurrent
// writer committed the same key first, the commit fails with ErrConflict and
// the winner's keypair is read back.
func (k *KeyPairRepository) CreateIfAbsent(ctx context.Context, keyPair domain.KeyPair) (domain.KeyPair, error) {
	stored := keyPair
	err := k.db.Update(func(txn *badger.Txn) error {
		existing, err := getKeyPair(txn, keyPair.Username)
		switch {
		case err == nil:
			stored = existing
			return nil
		case !errors.Is(err, errors.ErrNotFound):
			return err
		}
		return txn.Set([]byte(keyPairPrefix+keyPair.Username), marshalKeyPair(keyPair))
	})
	if errors.Is(err, badger.ErrConflict) {
		return k.GetKeyPair(ctx, keyPair.Username)
	}
	if err != nil {
		return domain.KeyPair{}, err
	}
	return stored, nil
}

func (k *KeyPairRepository) Replace(ctx context.Context, stale, fresh domain.KeyPair) (domain.KeyPair, error) {
	stored := fresh
	err := k.db.Update(func(txn *badger.Txn) error {
		existing, err := getKeyPair(txn, fresh.Username)
		switch {
		case err == nil && !sameKeyPair(existing, stale):
			stored = existing
			return nil
		case err != nil && !errors.Is(err, errors.ErrNotFound):
			return err
		}
		return txn.Set([]byte(keyPairPrefix+fresh.Username), marshalKeyPair(fresh))
	})
	if errors.Is(err, badger.ErrConflict) {
		return k.GetKeyPair(ctx, fresh.Username)
	}
	if err != nil {
		return domain.KeyPair{}, err
	}
	return stored, nil
}

func sameKeyPair(a, b domain.KeyPair) bool {
	return a.Scheme == b.Scheme &&
		bytes.Equal(a.PublicKey, b.PublicKey) &&
		bytes.Equal(a.PrivateKey, b.PrivateKey)
}

func getKeyPair(txn *badger.Txn, username string) (domain.KeyPair, error) {
	item, err := txn.Get([]byte(keyPairPrefix + username))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return domain.KeyPair{}, &errors.NotFoundError{Username: username}
	}
	if err != nil {
		return domain.KeyPair{}, err
	}
	value, err := item.ValueCopy(nil)
	if err != nil {
		return domain.KeyPair{}, err
	}
	return unmarshalKeyPair(value)
}

// InMemoryKeyPairRepository loses every keypair when the process exits.
type InMemoryKeyPairRepository struct {
	mu       sync.RWMutex
	keyPairs map[string]domain.KeyPair
}

func NewInMemoryKeyPairRepository() *InMemoryKeyPairRepository {
	return &InMemoryKeyPairRepository{keyPairs: make(map[string]domain.KeyPair)}
}

func (m *InMemoryKeyPairRepository) GetKeyPair(_ context.Context, username string) (domain.KeyPair, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keyPair, ok := m.keyPairs[username]
	if !ok {
		return domain.KeyPair{}, &errors.NotFoundError{Username: username}
	}
	return keyPair, nil
}

func (m *InMemoryKeyPairRepository) CreateIfAbsent(_ context.Context, keyPair domain.KeyPair) (domain.KeyPair, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.keyPairs[keyPair.Username]; ok {
		return existing, nil
	}
	m.keyPairs[keyPair.Username] = keyPair
	return keyPair, nil
}

func (m *InMemoryKeyPairRepository) Replace(_ context.Context, stale, fresh domain.KeyPair) (domain.KeyPair, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.keyPairs[fresh.Username]; ok && !sameKeyPair(existing, stale) {
		return existing, nil
	}
	m.keyPairs[fresh.Username] = fresh
	return fresh, nil
}
