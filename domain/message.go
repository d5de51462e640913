// Package domain contains core concepts of the relay.
// This file defines Message records and related rules.
// Messages are immutable once appended to the log.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Message is an opaque relayed message. Payload and EncapsulatedKey stay in
// their base64 transport encoding, the relay never interprets them.
type Message struct {
	ID              uuid.UUID
	Sender          string
	Recipient       string
	Payload         string
	EncapsulatedKey string
	Timestamp       time.Time
}

// Involves reports whether username is one of the two parties.
func (m Message) Involves(username string) bool {
	return m.Sender == username || m.Recipient == username
}

// Counterpart returns the other party of the message as seen by username.
func (m Message) Counterpart(username string) string {
	if m.Sender == username {
		return m.Recipient
	}
	return m.Sender
}
