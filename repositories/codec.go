package repositories

import (
	"bytes"
	"time"

	"pq-messenger/domain"

	"github.com/google/uuid"
	"google.golang.org/protobuf/encoding/protowire"
)

// Values are stored in protobuf wire format so records stay forward
// compatible: unknown field numbers are skipped on read.

const (
	messageID protowire.Number = iota + 1
	messageSender
	messageRecipient
	messagePayload
	messageEncapsulatedKey
	messageAt
)

const (
	userID protowire.Number = iota + 1
	userUsername
	userPasswordHash
	userCreatedAt
)

const (
	keyPairUsername protowire.Number = iota + 1
	keyPairScheme
	keyPairPublicKey
	keyPairPrivateKey
	keyPairCreatedAt
)

func appendBytesField(b []byte, num protowire.Number, v []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, v)
}

func appendStringField(b []byte, num protowire.Number, v string) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, v)
}

func appendTimeField(b []byte, num protowire.Number, t time.Time) []byte {
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, uint64(t.UnixNano()))
}

// walkFields calls visit for every length-delimited or varint field.
// Other wire types are skipped.
func walkFields(b []byte, visit func(num protowire.Number, value []byte, varint uint64)) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]
		switch typ {
		case protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			visit(num, v, 0)
			b = b[n:]
		case protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			visit(num, nil, v)
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			b = b[n:]
		}
	}
	return nil
}

func marshalMessage(m domain.Message) []byte {
	var b []byte
	b = appendStringField(b, messageID, m.ID.String())
	b = appendStringField(b, messageSender, m.Sender)
	b = appendStringField(b, messageRecipient, m.Recipient)
	b = appendStringField(b, messagePayload, m.Payload)
	b = appendStringField(b, messageEncapsulatedKey, m.EncapsulatedKey)
	return appendTimeField(b, messageAt, m.Timestamp)
}

func unmarshalMessage(b []byte) (domain.Message, error) {
	var m domain.Message
	var rawID string
	err := walkFields(b, func(num protowire.Number, value []byte, varint uint64) {
		switch num {
		case messageID:
			rawID = string(value)
		case messageSender:
			m.Sender = string(value)
		case messageRecipient:
			m.Recipient = string(value)
		case messagePayload:
			m.Payload = string(value)
		case messageEncapsulatedKey:
			m.EncapsulatedKey = string(value)
		case messageAt:
			m.Timestamp = time.Unix(0, int64(varint)).UTC()
		}
	})
	if err != nil {
		return domain.Message{}, err
	}
	parsedID, err := uuid.Parse(rawID)
	if err != nil {
		return domain.Message{}, err
	}
	m.ID = parsedID
	return m, nil
}

func marshalUser(u domain.User) []byte {
	var b []byte
	b = appendStringField(b, userID, u.ID)
	b = appendStringField(b, userUsername, u.Username)
	b = appendStringField(b, userPasswordHash, u.PasswordHash)
	return appendTimeField(b, userCreatedAt, u.CreatedAt)
}

func unmarshalUser(b []byte) (domain.User, error) {
	var u domain.User
	err := walkFields(b, func(num protowire.Number, value []byte, varint uint64) {
		switch num {
		case userID:
			u.ID = string(value)
		case userUsername:
			u.Username = string(value)
		case userPasswordHash:
			u.PasswordHash = string(value)
		case userCreatedAt:
			u.CreatedAt = time.Unix(0, int64(varint)).UTC()
		}
	})
	return u, err
}

func marshalKeyPair(k domain.KeyPair) []byte {
	var b []byte
	b = appendStringField(b, keyPairUsername, k.Username)
	b = appendStringField(b, keyPairScheme, k.Scheme)
	b = appendBytesField(b, keyPairPublicKey, k.PublicKey)
	b = appendBytesField(b, keyPairPrivateKey, k.PrivateKey)
	return appendTimeField(b, keyPairCreatedAt, k.CreatedAt)
}

func unmarshalKeyPair(b []byte) (domain.KeyPair, error) {
	var k domain.KeyPair
	err := walkFields(b, func(num protowire.Number, value []byte, varint uint64) {
		switch num {
		case keyPairUsername:
			k.Username = string(value)
		case keyPairScheme:
			k.Scheme = string(value)
		case keyPairPublicKey:
			k.PublicKey = bytes.Clone(value)
		case keyPairPrivateKey:
			k.PrivateKey = bytes.Clone(value)
		case keyPairCreatedAt:
			k.CreatedAt = time.Unix(0, int64(varint)).UTC()
		}
	})
	return k, err
}
