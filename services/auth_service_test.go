package services

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"pq-messenger/auth"
	"pq-messenger/domain"
	"pq-messenger/errors"
	"pq-messenger/mocks"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type recordingProvisioner struct {
	ensured []string
	err     error
}

func (r *recordingProvisioner) EnsureKeyPair(_ context.Context, username string) error {
	r.ensured = append(r.ensured, username)
	return r.err
}

func TestAuthService_Register(t *testing.T) {
	ctrl := gomock.NewController(t)
	ctx := context.Background()

	mockRepo := mocks.NewMockIUserRepository(ctrl)
	svc := NewAuthService(logs.GetLoggerFromLevel(slog.LevelDebug), mockRepo,
		auth.NewTokenIssuer("secret", time.Hour), &recordingProvisioner{})

	t.Run("should register successfully when input is valid", func(t *testing.T) {
		req := require.New(t)

		// Expect CreateUser to be called with a hashed password (not the plain one)
		mockRepo.EXPECT().
			CreateUser(gomock.Any(), "alice", gomock.Not("s3cret-pass")).
			Return("user-uuid", nil).
			Times(1)

		req.NoError(svc.Register(ctx, "alice", "s3cret-pass"))
	})

	t.Run("should fail when password is too short", func(t *testing.T) {
		req := require.New(t)

		// Repository should NEVER be called
		mockRepo.EXPECT().CreateUser(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		err := svc.Register(ctx, "alice", "short")
		req.ErrorIs(err, errors.ErrInvalidRequest)
	})

	t.Run("should fail when user already exists in repository", func(t *testing.T) {
		mockRepo.EXPECT().
			CreateUser(gomock.Any(), "bob", gomock.Any()).
			Return("", errors.ErrUserAlreadyExists).
			Times(1)

		err := svc.Register(ctx, "bob", "s3cret-pass")
		require.ErrorIs(t, err, errors.ErrUserAlreadyExists)
	})
}

func TestAuthService_Login(t *testing.T) {
	ctrl := gomock.NewController(t)
	ctx := context.Background()

	mockRepo := mocks.NewMockIUserRepository(ctrl)
	tokens := auth.NewTokenIssuer("secret", time.Hour)
	keys := &recordingProvisioner{}
	svc := NewAuthService(logs.GetLoggerFromLevel(slog.LevelDebug), mockRepo, tokens, keys)

	hashedPassword, err := auth.HashPassword("s3cret-pass")
	require.NoError(t, err)
	storedUser := domain.User{ID: "uuid-123", Username: "alice", PasswordHash: hashedPassword}

	t.Run("should login, provision keys and issue a token", func(t *testing.T) {
		req := require.New(t)
		mockRepo.EXPECT().GetUserByUsername(gomock.Any(), "alice").Return(storedUser, nil).Times(1)

		token, err := svc.Login(ctx, "alice", "s3cret-pass")
		req.NoError(err)
		req.Equal([]string{"alice"}, keys.ensured)

		claims, err := tokens.ValidateToken(token.String())
		req.NoError(err)
		req.Equal("alice", claims.Username)
		req.Equal("uuid-123", claims.Subject)
	})

	t.Run("should return invalid credentials on wrong password", func(t *testing.T) {
		mockRepo.EXPECT().GetUserByUsername(gomock.Any(), "alice").Return(storedUser, nil).Times(1)

		_, err := svc.Login(ctx, "alice", "wrong-password")
		require.ErrorIs(t, err, errors.ErrInvalidCredentials)
	})

	t.Run("should return invalid credentials when user is not found", func(t *testing.T) {
		mockRepo.EXPECT().
			GetUserByUsername(gomock.Any(), "ghost").
			Return(domain.User{}, &errors.NotFoundError{Username: "ghost"}).
			Times(1)

		_, err := svc.Login(ctx, "ghost", "anything")
		require.ErrorIs(t, err, errors.ErrInvalidCredentials)
	})
}

func TestAuthService_Verify_And_Lookup(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	ctx := context.Background()

	mockRepo := mocks.NewMockIUserRepository(ctrl)
	svc := NewAuthService(logs.GetLoggerFromLevel(slog.LevelDebug), mockRepo,
		auth.NewTokenIssuer("secret", time.Hour), &recordingProvisioner{})

	hashedPassword, err := auth.HashPassword("s3cret-pass")
	req.NoError(err)
	mockRepo.EXPECT().
		GetUserByUsername(gomock.Any(), "alice").
		Return(domain.User{Username: "alice", PasswordHash: hashedPassword}, nil).
		Times(2)
	mockRepo.EXPECT().
		GetUserByUsername(gomock.Any(), "ghost").
		Return(domain.User{}, &errors.NotFoundError{Username: "ghost"}).
		Times(1)
	mockRepo.EXPECT().
		FindUserFold(gomock.Any(), "ALICE").
		Return(domain.User{Username: "alice"}, nil).
		Times(1)

	ok, err := svc.Verify(ctx, "alice", "s3cret-pass")
	req.NoError(err)
	req.True(ok)

	ok, err = svc.Verify(ctx, "alice", "nope-nope")
	req.NoError(err)
	req.False(ok)

	ok, err = svc.Verify(ctx, "ghost", "s3cret-pass")
	req.NoError(err)
	req.False(ok)

	name, err := svc.Lookup(ctx, "ALICE")
	req.NoError(err)
	req.Equal("alice", name)
}
