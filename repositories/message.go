//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_repository.go -package=mocks
package repositories

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"sort"

	"pq-messenger/domain"

	"github.com/dgraph-io/badger/v4"
)

const messagePrefix = "msg:"

// IMessageRepository is the append-only message log.
type IMessageRepository interface {
	StoreMessage(ctx context.Context, message domain.Message) error
	GetConversation(ctx context.Context, userA, userB string) ([]domain.Message, error)
	GetMessagesInvolving(ctx context.Context, username string) ([]domain.Message, error)
}

type MessageRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewMessageRepository(db *badger.DB, log *slog.Logger) MessageRepository {
	return MessageRepository{db: db, log: log}
}

// conversationPrefix is identical for (a, b) and (b, a). Usernames are
// base64url encoded so they can never contain the ':' separator.
func conversationPrefix(userA, userB string) string {
	a := base64.RawURLEncoding.EncodeToString([]byte(userA))
	b := base64.RawURLEncoding.EncodeToString([]byte(userB))
	if b < a {
		a, b = b, a
	}
	return fmt.Sprintf("%s%s:%s:", messagePrefix, a, b)
}

// StoreMessage persists a message in BadgerDB.
// The key is formatted as "msg:{pair}:{timestamp_padded}:{uuid}" to:
//  1. Group both directions of a conversation under one prefix.
//  2. Keep chronological order through 19-digit zero padding.
//  3. Break ties on identical timestamps by the message id.
func (m MessageRepository) StoreMessage(_ context.Context, message domain.Message) error {
	key := fmt.Sprintf("%s%019d:%s",
		conversationPrefix(message.Sender, message.Recipient),
		message.Timestamp.UnixNano(),
		message.ID,
	)
	return m.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), marshalMessage(message))
	})
}

// GetConversation returns every message exchanged between the two users,
// oldest first.
func (m MessageRepository) GetConversation(_ context.Context, userA, userB string) ([]domain.Message, error) {
	messages, err := m.scan([]byte(conversationPrefix(userA, userB)), nil)
	if err != nil {
		return nil, err
	}
	m.log.Debug("Conversation loaded", "user_a", userA, "user_b", userB, "count", len(messages))
	return messages, nil
}

// GetMessagesInvolving scans the whole log. Results are sorted by timestamp
// across conversations.
func (m MessageRepository) GetMessagesInvolving(_ context.Context, username string) ([]domain.Message, error) {
	messages, err := m.scan([]byte(messagePrefix), func(message domain.Message) bool {
		return message.Involves(username)
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].Timestamp.Before(messages[j].Timestamp)
	})
	return messages, nil
}

func (m MessageRepository) scan(prefix []byte, keep func(domain.Message) bool) ([]domain.Message, error) {
	messages := make([]domain.Message, 0)
	err := m.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			value, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			message, err := unmarshalMessage(value)
			if err != nil {
				return fmt.Errorf("corrupted message %s: %w", it.Item().Key(), err)
			}
			if keep == nil || keep(message) {
				messages = append(messages, message)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return messages, nil
}
