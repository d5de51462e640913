package repositories

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"pq-messenger/domain"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"
)

func TestScanRecords(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	db := openBadger(t)

	messages := NewMessageRepository(db, slog.Default())
	req.NoError(messages.StoreMessage(ctx, newMessage("alice", "bob", "eA==", time.Now())))
	_, err := NewUserRepository(db).CreateUser(ctx, "alice", "hash")
	req.NoError(err)
	req.NoError(db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(userPrefix+"broken"), []byte{0xff})
	}))

	records, err := ScanRecords(db, messagePrefix)
	req.NoError(err)
	req.Len(records, 1)
	req.IsType(domain.Message{}, records[0].Value)

	records, err = ScanRecords(db, userPrefix)
	req.NoError(err)
	req.Len(records, 2)
	req.Equal("user:alice", records[0].Key)
	req.NoError(records[0].Err)
	req.Error(records[1].Err)
}
