package services

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"pq-messenger/domain"
	"pq-messenger/errors"
	"pq-messenger/integrity"
	"pq-messenger/observability"
	"pq-messenger/repositories"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

type SubmitCommand struct {
	Sender          string `validate:"required,max=64"`
	Recipient       string `validate:"required,max=64"`
	Payload         string `validate:"required"`
	EncapsulatedKey string `validate:"required"`
}

type IRelayService interface {
	Submit(ctx context.Context, cmd SubmitCommand) (uuid.UUID, error)
	History(ctx context.Context, userA, userB string) ([]domain.Message, error)
	ContactsOf(ctx context.Context, username string) ([]string, error)
}

// PublicKeyProvider is satisfied by *keystore.KeyStore.
type PublicKeyProvider interface {
	GetPublicKey(ctx context.Context, username string) ([]byte, error)
}

type RelayService struct {
	log        *slog.Logger
	repository repositories.IMessageRepository
	keys       PublicKeyProvider
	gate       *integrity.Gate
	validator  *validator.Validate
	clock      *clock
}

func NewRelayService(log *slog.Logger, repository repositories.IMessageRepository,
	keys PublicKeyProvider, gate *integrity.Gate) *RelayService {
	return &RelayService{
		log:        log,
		repository: repository,
		keys:       keys,
		gate:       gate,
		validator:  validator.New(),
		clock:      newClock(time.Now),
	}
}

// Submit validates the encapsulated key against the recipient's current
// public key and appends the message with a server timestamp. Nothing is
// written when any check fails.
func (s *RelayService) Submit(ctx context.Context, cmd SubmitCommand) (uuid.UUID, error) {
	if err := s.validator.Struct(cmd); err != nil {
		observability.MessagesSubmitted.WithLabelValues("invalid").Inc()
		return uuid.Nil, fmt.Errorf("%w: %v", errors.ErrInvalidRequest, err)
	}
	if _, err := base64.StdEncoding.DecodeString(cmd.Payload); err != nil {
		observability.MessagesSubmitted.WithLabelValues("decoding").Inc()
		return uuid.Nil, &errors.DecodingError{Field: "message", Err: err}
	}

	publicKey, err := s.keys.GetPublicKey(ctx, cmd.Recipient)
	if err != nil {
		observability.MessagesSubmitted.WithLabelValues("error").Inc()
		return uuid.Nil, fmt.Errorf("recipient key: %w", err)
	}
	raw, err := s.gate.Validate(cmd.EncapsulatedKey, publicKey)
	if err != nil {
		observability.MessagesSubmitted.WithLabelValues(outcome(err)).Inc()
		s.log.Debug("Submission rejected",
			"sender", cmd.Sender,
			"recipient", cmd.Recipient,
			"error", err)
		return uuid.Nil, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return uuid.Nil, err
	}
	message := domain.Message{
		ID:              id,
		Sender:          cmd.Sender,
		Recipient:       cmd.Recipient,
		Payload:         cmd.Payload,
		EncapsulatedKey: cmd.EncapsulatedKey,
		Timestamp:       s.clock.Next(),
	}
	if err := s.repository.StoreMessage(ctx, message); err != nil {
		observability.MessagesSubmitted.WithLabelValues("error").Inc()
		return uuid.Nil, fmt.Errorf("storing message: %w", err)
	}

	observability.MessagesSubmitted.WithLabelValues("accepted").Inc()
	s.log.Debug("Message relayed",
		"id", id,
		"sender", cmd.Sender,
		"recipient", cmd.Recipient,
		"ciphertext_len", len(raw))
	return id, nil
}

// History returns the conversation between the two users, oldest first.
// Each call re-reads the log.
func (s *RelayService) History(ctx context.Context, userA, userB string) ([]domain.Message, error) {
	messages, err := s.repository.GetConversation(ctx, userA, userB)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(messages, func(i, j int) bool {
		if messages[i].Timestamp.Equal(messages[j].Timestamp) {
			return messages[i].ID.String() < messages[j].ID.String()
		}
		return messages[i].Timestamp.Before(messages[j].Timestamp)
	})
	return messages, nil
}

// ContactsOf lists, once each, every user that exchanged a message with
// username.
func (s *RelayService) ContactsOf(ctx context.Context, username string) ([]string, error) {
	messages, err := s.repository.GetMessagesInvolving(ctx, username)
	if err != nil {
		return nil, err
	}
	contacts := lo.Uniq(lo.FilterMap(messages, func(m domain.Message, _ int) (string, bool) {
		other := m.Counterpart(username)
		return other, m.Involves(username) && other != username
	}))
	sort.Strings(contacts)
	return contacts, nil
}

func outcome(err error) string {
	switch {
	case errors.Is(err, errors.ErrDecoding):
		return "decoding"
	case errors.Is(err, errors.ErrLengthMismatch):
		return "length_mismatch"
	default:
		return "error"
	}
}
