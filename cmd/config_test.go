package main

import (
	"os"
	"testing"
	"time"

	"github.com/Netflix/go-env"
	"github.com/stretchr/testify/require"
)

func TestConfig_Defaults(t *testing.T) {
	req := require.New(t)
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("ALLOWED_ORIGINS", "http://localhost:3000, https://chat.example.org,")

	var config Config
	_, err := env.UnmarshalFromEnviron(&config)
	req.NoError(err)

	req.Equal("Kyber512", config.KEMScheme)
	req.Equal("lazy", config.KeyProvisioning)
	req.Equal("badger", config.StorageDriver)
	req.Equal(8080, config.Port)
	req.Equal(24*time.Hour, config.AuthTokenDuration)
	req.False(config.RequireAuth)
	req.Equal([]string{"http://localhost:3000", "https://chat.example.org"}, config.Origins())
}

func TestConfig_Missing_Secret(t *testing.T) {
	t.Setenv("LOG_LEVEL", "INFO")
	t.Setenv("JWT_SECRET", "unused")
	require.NoError(t, os.Unsetenv("JWT_SECRET"))

	var config Config
	_, err := env.UnmarshalFromEnviron(&config)
	require.Error(t, err)
}
