package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMessage_Counterpart(t *testing.T) {
	req := require.New(t)
	m := Message{Sender: "alice", Recipient: "bob"}

	req.True(m.Involves("alice"))
	req.True(m.Involves("bob"))
	req.False(m.Involves("carol"))
	req.Equal("bob", m.Counterpart("alice"))
	req.Equal("alice", m.Counterpart("bob"))
}

func TestKeyPair_Complete(t *testing.T) {
	req := require.New(t)
	req.False(KeyPair{PublicKey: []byte{1}}.Complete())
	req.False(KeyPair{PrivateKey: []byte{1}}.Complete())
	req.True(KeyPair{PublicKey: []byte{1}, PrivateKey: []byte{2}}.Complete())
}
