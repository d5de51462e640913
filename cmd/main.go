package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pq-messenger/api"
	"pq-messenger/auth"
	"pq-messenger/integrity"
	"pq-messenger/kem"
	"pq-messenger/keystore"
	"pq-messenger/presence"
	"pq-messenger/repositories"
	"pq-messenger/runtime/workers"
	"pq-messenger/services"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

type stores struct {
	messages repositories.IMessageRepository
	users    repositories.IUserRepository
}

// run wires every component and owns the server lifecycle so that deferred
// cleanup runs before the process exits.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if config.JWTSecret == "" {
		return errors.New("config error: JWT_SECRET must not be empty")
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. KEM scheme, probed once so a broken parameter set never serves
	primitive, err := kem.NewPrimitive(config.KEMScheme)
	if err != nil {
		return fmt.Errorf("kem scheme: %w", err)
	}
	encapsulator, err := kem.NewEncapsulator(log, primitive)
	if err != nil {
		return fmt.Errorf("kem scheme %q: %w", config.KEMScheme, err)
	}
	policy, err := keystore.ParsePolicy(config.KeyProvisioning)
	if err != nil {
		return err
	}

	// 3. Storage. Keypairs always live in Badger, next to the process.
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.WARNING))
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	st, closeStores, err := openStores(ctx, log, config, db)
	if err != nil {
		return err
	}
	defer closeStores()

	var opts []keystore.Option
	if policy == keystore.PolicyRegistered {
		opts = append(opts, keystore.WithRegisteredUsers(st.users))
	}
	keys := keystore.New(log, encapsulator, repositories.NewKeyPairRepository(db), opts...)

	// 4. Services
	tokens := auth.NewTokenIssuer(config.JWTSecret, config.AuthTokenDuration)
	tracker := presence.NewTracker(log)
	handler := api.NewHandler(log,
		services.NewKeyService(log, keys, encapsulator),
		services.NewRelayService(log, st.messages, keys, integrity.NewGate(encapsulator)),
		services.NewAuthService(log, st.users, tokens, keys),
		tracker,
		api.Options{Scheme: encapsulator.Scheme(), PresenceBuffer: config.PresenceBufferSize},
	)

	// 5. Background workers
	sup := workers.NewSupervisor(log, config.RestartInterval)
	sup.Add(workers.NewProcessStatsWorker(log, config.StatsInterval))
	supervisorDone := make(chan struct{})
	go func() {
		sup.Run(ctx)
		close(supervisorDone)
	}()

	// 6. HTTP server. No write timeout: presence streams stay open.
	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	server := &http.Server{
		Addr: address,
		Handler: api.NewRouter(log, handler, tokens, api.RouterConfig{
			AllowedOrigins: config.Origins(),
			RequireAuth:    config.RequireAuth,
		}),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}

	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server",
			"address", address,
			"scheme", encapsulator.Scheme(),
			"storage", config.StorageDriver,
			"at", time.Now().UTC())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// 7. Wait for Stop or Error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err := <-errChan:
		sup.Stop()
		return err
	}

	// 8. Final Cleanup
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownGracePeriod)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn("HTTP server shutdown incomplete", "error", err)
	}
	sup.Stop()
	<-supervisorDone
	log.Info("Program stopped cleanly")
	return nil
}

// openStores picks the message log and credential store backend.
func openStores(ctx context.Context, log *slog.Logger, config Config, db *badger.DB) (stores, func(), error) {
	switch config.StorageDriver {
	case "", "badger":
		return stores{
			messages: repositories.NewMessageRepository(db, log),
			users:    repositories.NewUserRepository(db),
		}, func() {}, nil
	case "postgres":
		if config.DatabaseURL == "" {
			return stores{}, nil, errors.New("DATABASE_URL is required with STORAGE_DRIVER=postgres")
		}
		pg, err := repositories.NewPostgresStore(ctx, config.DatabaseURL)
		if err != nil {
			return stores{}, nil, fmt.Errorf("postgres: %w", err)
		}
		log.Info("Using PostgreSQL message log and credential store")
		return stores{messages: pg, users: pg}, func() {
			log.Info("Closing PostgreSQL pool...")
			pg.Close()
		}, nil
	default:
		return stores{}, nil, fmt.Errorf("unknown STORAGE_DRIVER %q", config.StorageDriver)
	}
}
