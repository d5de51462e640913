// Package api exposes the relay over HTTP.
package api

import (
	"log/slog"
	"net/http"

	"pq-messenger/api/middleware"
	"pq-messenger/auth"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// maxBodyBytes bounds one request. Payloads are short chat messages.
const maxBodyBytes = 256 * 1024

type RouterConfig struct {
	AllowedOrigins []string
	// RequireAuth rejects relay requests that carry no login token.
	RequireAuth bool
}

// NewRouter creates and configures the HTTP router.
func NewRouter(log *slog.Logger, h *Handler, tokens *auth.TokenIssuer, cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Metrics middleware (first to capture all requests)
	r.Use(middleware.Metrics)

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(log))
	r.Use(chimw.Recoverer)
	r.Use(middleware.MaxBodySize(maxBodyBytes))

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/health", h.Health)

	// Credential store
	r.Post("/register", h.Register)
	r.Post("/login", h.Login)
	r.Get("/users/{username}", h.User)

	// Key material and relay
	r.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(tokens, cfg.RequireAuth))

		r.Post("/ensure-keys", h.EnsureKeys)
		r.Get("/key/{username}", h.PublicKey)
		r.Post("/encrypt-key", h.EncryptKey)
		r.Post("/send", h.Send)
		r.Get("/chat/{user1}/{user2}", h.Chat)
		r.Get("/contacts/{username}", h.Contacts)
		r.Get("/presence/{username}", h.Presence)
	})

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("Quantum-Resistant Messaging Server Running"))
	})

	return r
}
