package services

import (
	"context"
	"encoding/base64"
	"log/slog"
	"testing"

	"pq-messenger/domain"
	"pq-messenger/errors"
	"pq-messenger/integrity"
	"pq-messenger/kem"
	"pq-messenger/keystore"
	"pq-messenger/mocks"
	"pq-messenger/repositories"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type relayFixture struct {
	relay *RelayService
	keys  *keystore.KeyStore
	enc   *kem.Encapsulator
}

func newRelayFixture(t *testing.T, repository repositories.IMessageRepository) relayFixture {
	t.Helper()
	log := logs.GetLoggerFromLevel(slog.LevelError)
	primitive, err := kem.NewPrimitive(kem.DefaultScheme)
	require.NoError(t, err)
	enc, err := kem.NewEncapsulator(log, primitive)
	require.NoError(t, err)
	keys := keystore.New(log, enc, repositories.NewInMemoryKeyPairRepository())
	return relayFixture{
		relay: NewRelayService(log, repository, keys, integrity.NewGate(enc)),
		keys:  keys,
		enc:   enc,
	}
}

func badgerMessages(t *testing.T) repositories.IMessageRepository {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return repositories.NewMessageRepository(db, logs.GetLoggerFromLevel(slog.LevelError))
}

// submitValid encapsulates for the recipient like a client would.
func (f relayFixture) submitValid(t *testing.T, sender, recipient, text string) domain.Message {
	t.Helper()
	ctx := context.Background()
	pk, err := f.keys.GetPublicKey(ctx, recipient)
	require.NoError(t, err)
	result, err := f.enc.Encapsulate(pk)
	require.NoError(t, err)

	cmd := SubmitCommand{
		Sender:          sender,
		Recipient:       recipient,
		Payload:         base64.StdEncoding.EncodeToString([]byte(text)),
		EncapsulatedKey: base64.StdEncoding.EncodeToString(result.Ciphertext),
	}
	id, err := f.relay.Submit(ctx, cmd)
	require.NoError(t, err)
	return domain.Message{ID: id, Sender: sender, Recipient: recipient, Payload: cmd.Payload, EncapsulatedKey: cmd.EncapsulatedKey}
}

func TestRelay_Round_Trip(t *testing.T) {
	req := require.New(t)
	f := newRelayFixture(t, badgerMessages(t))

	sent := f.submitValid(t, "alice", "bob", "hello bob")

	history, err := f.relay.History(context.Background(), "alice", "bob")
	req.NoError(err)
	req.Len(history, 1)
	req.Equal(sent.ID, history[0].ID)
	req.Equal(sent.Payload, history[0].Payload)
	req.Equal(sent.EncapsulatedKey, history[0].EncapsulatedKey)
	req.False(history[0].Timestamp.IsZero())

	// The stored encapsulated key still decapsulates for the recipient
	keyPair, err := f.keys.KeyPair(context.Background(), "bob")
	req.NoError(err)
	ct, err := base64.StdEncoding.DecodeString(history[0].EncapsulatedKey)
	req.NoError(err)
	_, err = f.enc.Decapsulate(keyPair.PrivateKey, ct)
	req.NoError(err)
}

func TestRelay_Ordering_With_Interleaved_Pairs(t *testing.T) {
	req := require.New(t)
	f := newRelayFixture(t, badgerMessages(t))

	first := f.submitValid(t, "alice", "bob", "1")
	f.submitValid(t, "carol", "dave", "noise")
	second := f.submitValid(t, "bob", "alice", "2")
	f.submitValid(t, "dave", "carol", "noise")
	third := f.submitValid(t, "alice", "bob", "3")

	history, err := f.relay.History(context.Background(), "bob", "alice")
	req.NoError(err)
	req.Len(history, 3)
	req.Equal(first.ID, history[0].ID)
	req.Equal(second.ID, history[1].ID)
	req.Equal(third.ID, history[2].ID)
	req.True(history[0].Timestamp.Before(history[1].Timestamp))
	req.True(history[1].Timestamp.Before(history[2].Timestamp))
}

func TestRelay_Contacts(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	f := newRelayFixture(t, badgerMessages(t))

	f.submitValid(t, "A", "B", "x")
	f.submitValid(t, "B", "A", "y")
	f.submitValid(t, "C", "A", "z")
	f.submitValid(t, "A", "C", "w")

	contacts, err := f.relay.ContactsOf(ctx, "A")
	req.NoError(err)
	req.Equal([]string{"B", "C"}, contacts)

	contacts, err = f.relay.ContactsOf(ctx, "B")
	req.NoError(err)
	req.Equal([]string{"A"}, contacts)

	contacts, err = f.relay.ContactsOf(ctx, "nobody")
	req.NoError(err)
	req.Empty(contacts)
}

func TestRelay_Concrete_768_Scenario(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	f := newRelayFixture(t, badgerMessages(t))

	payload := base64.StdEncoding.EncodeToString([]byte("ciphertext"))

	_, err := f.relay.Submit(ctx, SubmitCommand{
		Sender:          "alice",
		Recipient:       "bob",
		Payload:         payload,
		EncapsulatedKey: base64.StdEncoding.EncodeToString(make([]byte, 700)),
	})
	var mismatch *errors.LengthMismatchError
	req.True(errors.As(err, &mismatch))
	req.Equal(768, mismatch.Expected)
	req.Equal(700, mismatch.Actual)

	valid := make([]byte, 768)
	for i := range valid {
		valid[i] = byte(i)
	}
	_, err = f.relay.Submit(ctx, SubmitCommand{
		Sender:          "alice",
		Recipient:       "bob",
		Payload:         payload,
		EncapsulatedKey: base64.StdEncoding.EncodeToString(valid),
	})
	req.NoError(err)

	history, err := f.relay.History(ctx, "alice", "bob")
	req.NoError(err)
	req.Len(history, 1, "the rejected submission must not be persisted")
	decoded, err := base64.StdEncoding.DecodeString(history[0].EncapsulatedKey)
	req.NoError(err)
	req.Equal(valid, decoded)
}

func TestRelay_Rejections_Never_Reach_Storage(t *testing.T) {
	ctrl := gomock.NewController(t)
	repository := mocks.NewMockIMessageRepository(ctrl)
	repository.EXPECT().StoreMessage(gomock.Any(), gomock.Any()).Times(0)
	f := newRelayFixture(t, repository)
	ctx := context.Background()

	tests := []struct {
		name string
		cmd  SubmitCommand
		want error
	}{
		{"missing sender", SubmitCommand{Recipient: "bob", Payload: "eA==", EncapsulatedKey: "eA=="}, errors.ErrInvalidRequest},
		{"payload not base64", SubmitCommand{Sender: "alice", Recipient: "bob", Payload: "%%%", EncapsulatedKey: "eA=="}, errors.ErrDecoding},
		{"key not base64", SubmitCommand{Sender: "alice", Recipient: "bob", Payload: "eA==", EncapsulatedKey: "%%%"}, errors.ErrDecoding},
		{"key too short", SubmitCommand{Sender: "alice", Recipient: "bob", Payload: "eA==", EncapsulatedKey: "eA=="}, errors.ErrLengthMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.relay.Submit(ctx, tt.cmd)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestRelay_Storage_Failure_Is_Reported(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	repository := mocks.NewMockIMessageRepository(ctrl)
	repository.EXPECT().StoreMessage(gomock.Any(), gomock.Any()).Return(errors.New("disk full")).Times(1)
	f := newRelayFixture(t, repository)

	pk, err := f.keys.GetPublicKey(context.Background(), "bob")
	req.NoError(err)
	result, err := f.enc.Encapsulate(pk)
	req.NoError(err)

	_, err = f.relay.Submit(context.Background(), SubmitCommand{
		Sender:          "alice",
		Recipient:       "bob",
		Payload:         "eA==",
		EncapsulatedKey: base64.StdEncoding.EncodeToString(result.Ciphertext),
	})
	req.ErrorContains(err, "disk full")
}
