package main

import (
	"strings"
	"time"

	"github.com/samber/lo"
)

type Config struct {
	LogLevel            string        `env:"LOG_LEVEL,required=true"`
	Host                string        `env:"HOST,default=localhost"`
	Port                int           `env:"PORT,default=8080"`
	StorageDriver       string        `env:"STORAGE_DRIVER,default=badger"`
	BadgerFilepath      string        `env:"BADGER_FILEPATH,default=./data/badger"`
	DatabaseURL         string        `env:"DATABASE_URL"`
	KEMScheme           string        `env:"KEM_SCHEME,default=Kyber512"`
	KeyProvisioning     string        `env:"KEY_PROVISIONING,default=lazy"`
	JWTSecret           string        `env:"JWT_SECRET,required=true"`
	AuthTokenDuration   time.Duration `env:"AUTH_TOKEN_DURATION,default=24h"`
	RequireAuth         bool          `env:"REQUIRE_AUTH,default=false"`
	PresenceBufferSize  int           `env:"PRESENCE_BUFFER_SIZE,default=8"`
	AllowedOrigins      string        `env:"ALLOWED_ORIGINS,default=*"`
	StatsInterval       time.Duration `env:"STATS_INTERVAL,default=15s"`
	RestartInterval     time.Duration `env:"RESTART_INTERVAL,default=1s"`
	ShutdownGracePeriod time.Duration `env:"SHUTDOWN_GRACE_PERIOD,default=10s"`
}

// Origins splits the comma separated ALLOWED_ORIGINS list.
func (c Config) Origins() []string {
	return lo.Compact(lo.Map(strings.Split(c.AllowedOrigins, ","), func(o string, _ int) string {
		return strings.TrimSpace(o)
	}))
}
