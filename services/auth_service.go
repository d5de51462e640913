package services

import (
	"context"
	"fmt"
	"log/slog"

	"pq-messenger/auth"
	"pq-messenger/errors"
	"pq-messenger/repositories"
)

type IAuthService interface {
	Register(ctx context.Context, username, password string) error
	Login(ctx context.Context, username, password string) (Token, error)
	Verify(ctx context.Context, username, password string) (bool, error)
	Lookup(ctx context.Context, username string) (string, error)
}

type Token string

func (t Token) String() string {
	return string(t)
}

// KeyProvisioner is satisfied by *keystore.KeyStore.
type KeyProvisioner interface {
	EnsureKeyPair(ctx context.Context, username string) error
}

type AuthService struct {
	log            *slog.Logger
	userRepository repositories.IUserRepository
	tokens         *auth.TokenIssuer
	keys           KeyProvisioner
}

func NewAuthService(log *slog.Logger, repo repositories.IUserRepository,
	tokens *auth.TokenIssuer, keys KeyProvisioner) *AuthService {
	return &AuthService{log: log, userRepository: repo, tokens: tokens, keys: keys}
}

func (s *AuthService) Register(ctx context.Context, username, password string) error {
	// Checked before any expensive hashing.
	if err := auth.ValidateRegister(auth.RegisterRequest{Username: username, Password: password}); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrInvalidRequest, err)
	}

	hashedPassword, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hashing failed: %w", err)
	}

	// Will propagate ErrUserAlreadyExists if the username is taken
	if _, err = s.userRepository.CreateUser(ctx, username, hashedPassword); err != nil {
		return err
	}
	s.log.Info("User registered", "username", username)
	return nil
}

// Login checks the credentials, makes sure the user owns a keypair and
// issues a capability token.
func (s *AuthService) Login(ctx context.Context, username, password string) (Token, error) {
	user, err := s.userRepository.GetUserByUsername(ctx, username)
	if err != nil {
		// Generic error to prevent user enumeration attacks
		return "", errors.ErrInvalidCredentials
	}
	match, err := auth.ComparePassword(password, user.PasswordHash)
	if err != nil || !match {
		return "", errors.ErrInvalidCredentials
	}

	if err := s.keys.EnsureKeyPair(ctx, username); err != nil {
		return "", err
	}

	token, err := s.tokens.GenerateToken(user.ID, user.Username)
	if err != nil {
		return "", errors.ErrTokenGeneration
	}
	return Token(token), nil
}

// Verify is the credential check used by collaborators that only need a yes
// or no answer.
func (s *AuthService) Verify(ctx context.Context, username, password string) (bool, error) {
	user, err := s.userRepository.GetUserByUsername(ctx, username)
	if errors.Is(err, errors.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return auth.ComparePassword(password, user.PasswordHash)
}

// Lookup resolves username ignoring case and returns the stored spelling.
func (s *AuthService) Lookup(ctx context.Context, username string) (string, error) {
	user, err := s.userRepository.FindUserFold(ctx, username)
	if err != nil {
		return "", err
	}
	return user.Username, nil
}
