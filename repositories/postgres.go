package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"pq-messenger/domain"
	"pq-messenger/errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS users (
	id         UUID PRIMARY KEY,
	username   VARCHAR(64) UNIQUE NOT NULL,
	password   VARCHAR(256) NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS messages (
	id            UUID PRIMARY KEY,
	sender        VARCHAR(64) NOT NULL,
	recipient     VARCHAR(64) NOT NULL,
	message       TEXT NOT NULL,
	encrypted_key TEXT NOT NULL,
	timestamp     TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS messages_pair_ts ON messages (sender, recipient, timestamp);
`

const uniqueViolation = "23505"

// PostgresStore implements the message log and the credential store on
// PostgreSQL, using a users table and a messages table.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects and creates the tables when missing.
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	if !strings.Contains(databaseURL, "sslmode=") {
		separator := "?"
		if strings.Contains(databaseURL, "?") {
			separator = "&"
		}
		databaseURL += separator + "sslmode=require"
	}
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("schema creation failed: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

func (s *PostgresStore) StoreMessage(ctx context.Context, message domain.Message) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO messages (id, sender, recipient, message, encrypted_key, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, message.ID, message.Sender, message.Recipient, message.Payload, message.EncapsulatedKey, message.Timestamp)
	return err
}

func (s *PostgresStore) GetConversation(ctx context.Context, userA, userB string) ([]domain.Message, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, sender, recipient, message, encrypted_key, timestamp
		FROM messages
		WHERE (sender = $1 AND recipient = $2) OR (sender = $2 AND recipient = $1)
		ORDER BY timestamp, id
	`, userA, userB)
	if err != nil {
		return nil, err
	}
	return collectMessages(rows)
}

func (s *PostgresStore) GetMessagesInvolving(ctx context.Context, username string) ([]domain.Message, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, sender, recipient, message, encrypted_key, timestamp
		FROM messages
		WHERE sender = $1 OR recipient = $1
		ORDER BY timestamp, id
	`, username)
	if err != nil {
		return nil, err
	}
	return collectMessages(rows)
}

func collectMessages(rows pgx.Rows) ([]domain.Message, error) {
	defer rows.Close()
	messages := make([]domain.Message, 0)
	for rows.Next() {
		var m domain.Message
		if err := rows.Scan(&m.ID, &m.Sender, &m.Recipient, &m.Payload, &m.EncapsulatedKey, &m.Timestamp); err != nil {
			return nil, err
		}
		m.Timestamp = m.Timestamp.UTC()
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

func (s *PostgresStore) CreateUser(ctx context.Context, username, hashedPassword string) (string, error) {
	id := uuid.New()
	_, err := s.pool.Exec(ctx, `
		INSERT INTO users (id, username, password, created_at) VALUES ($1, $2, $3, $4)
	`, id, username, hashedPassword, time.Now().UTC())
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return "", errors.ErrUserAlreadyExists
	}
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

func (s *PostgresStore) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	return s.queryUser(ctx, username, `
		SELECT id, username, password, created_at FROM users WHERE username = $1
	`)
}

func (s *PostgresStore) FindUserFold(ctx context.Context, username string) (domain.User, error) {
	return s.queryUser(ctx, username, `
		SELECT id, username, password, created_at FROM users WHERE lower(username) = lower($1) LIMIT 1
	`)
}

func (s *PostgresStore) queryUser(ctx context.Context, username, query string) (domain.User, error) {
	var user domain.User
	var id uuid.UUID
	err := s.pool.QueryRow(ctx, query, username).Scan(&id, &user.Username, &user.PasswordHash, &user.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, &errors.NotFoundError{Username: username}
	}
	if err != nil {
		return domain.User{}, err
	}
	user.ID = id.String()
	return user, nil
}
