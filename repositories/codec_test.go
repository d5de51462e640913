package repositories

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"

	"pq-messenger/domain"
)

func TestUnmarshalMessage_Skips_Unknown_Fields(t *testing.T) {
	req := require.New(t)
	message := domain.Message{
		ID:              uuid.Must(uuid.NewV7()),
		Sender:          "alice",
		Recipient:       "bob",
		Payload:         "cGF5bG9hZA==",
		EncapsulatedKey: "a2V5",
		Timestamp:       time.Unix(0, 1_700_000_000_123_456_789).UTC(),
	}
	raw := marshalMessage(message)
	// A field written by a newer version
	raw = protowire.AppendTag(raw, 42, protowire.Fixed64Type)
	raw = protowire.AppendFixed64(raw, 7)

	decoded, err := unmarshalMessage(raw)
	req.NoError(err)
	req.Equal(message, decoded)
}

func TestUnmarshalMessage_Truncated(t *testing.T) {
	raw := marshalMessage(domain.Message{ID: uuid.New(), Sender: "alice"})
	_, err := unmarshalMessage(raw[:len(raw)-3])
	require.Error(t, err)
}
