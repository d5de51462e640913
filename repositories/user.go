//go:generate go run go.uber.org/mock/mockgen -source=user.go -destination=../mocks/mock_user_repository.go -package=mocks
package repositories

import (
	"context"
	"strings"
	"time"

	"pq-messenger/domain"
	"pq-messenger/errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

const userPrefix = "user:"

type IUserRepository interface {
	CreateUser(ctx context.Context, username, hashedPassword string) (string, error)
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)
	FindUserFold(ctx context.Context, username string) (domain.User, error)
}

type UserRepository struct {
	db *badger.DB
}

func NewUserRepository(db *badger.DB) IUserRepository {
	return &UserRepository{db: db}
}

// CreateUser persists the user in BadgerDB and returns the generated id.
// The existence check and the write share one transaction.
func (u UserRepository) CreateUser(_ context.Context, username, hashedPassword string) (string, error) {
	user := domain.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: hashedPassword,
		CreatedAt:    time.Now().UTC(),
	}
	err := u.db.Update(func(txn *badger.Txn) error {
		key := []byte(userPrefix + username)
		if _, err := txn.Get(key); err == nil {
			return errors.ErrUserAlreadyExists
		}
		return txn.Set(key, marshalUser(user))
	})
	if err != nil {
		return "", err
	}
	return user.ID, nil
}

func (u UserRepository) GetUserByUsername(_ context.Context, username string) (domain.User, error) {
	var user domain.User
	err := u.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(userPrefix + username))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			user, err = unmarshalUser(val)
			return err
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return domain.User{}, &errors.NotFoundError{Username: username}
	}
	return user, err
}

// FindUserFold looks a user up ignoring case.
func (u UserRepository) FindUserFold(ctx context.Context, username string) (domain.User, error) {
	if user, err := u.GetUserByUsername(ctx, username); err == nil {
		return user, nil
	}
	var found *domain.User
	err := u.db.View(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		options.PrefetchValues = false
		it := txn.NewIterator(options)
		defer it.Close()

		prefix := []byte(userPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			name := strings.TrimPrefix(string(it.Item().Key()), userPrefix)
			if !strings.EqualFold(name, username) {
				continue
			}
			return it.Item().Value(func(val []byte) error {
				user, err := unmarshalUser(val)
				found = &user
				return err
			})
		}
		return nil
	})
	if err != nil {
		return domain.User{}, err
	}
	if found == nil {
		return domain.User{}, &errors.NotFoundError{Username: username}
	}
	return *found, nil
}
