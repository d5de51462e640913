package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"pq-messenger/contract"
	"pq-messenger/errors"
	"pq-messenger/services"
)

// PresenceTracker is satisfied by *presence.Tracker.
type PresenceTracker interface {
	Connect(ctx context.Context, username, connectionID string, sink contract.EventSink)
	Disconnect(ctx context.Context, connectionID string)
	Online() []string
}

// Handler contains shared dependencies for all HTTP handlers.
type Handler struct {
	log            *slog.Logger
	keys           services.IKeyService
	relay          services.IRelayService
	users          services.IAuthService
	presence       PresenceTracker
	scheme         string
	presenceBuffer int
}

type Options struct {
	// Scheme is reported by /health.
	Scheme string
	// PresenceBuffer is the per-connection event buffer of the SSE stream.
	PresenceBuffer int
}

func NewHandler(log *slog.Logger, keys services.IKeyService, relay services.IRelayService,
	users services.IAuthService, presence PresenceTracker, opts Options) *Handler {
	return &Handler{
		log:            log,
		keys:           keys,
		relay:          relay,
		users:          users,
		presence:       presence,
		scheme:         opts.Scheme,
		presenceBuffer: opts.PresenceBuffer,
	}
}

// JSON sends a JSON response with the given status code.
func (h *Handler) JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Warn("Response not written", "error", err)
	}
}

// Error sends a JSON error body with the given status code.
func (h *Handler) Error(w http.ResponseWriter, status int, message string) {
	h.JSON(w, status, map[string]string{"error": message})
}

// Fail maps err to its status. Length mismatches also carry both lengths so
// the client can tell which parameter set the server expects.
func (h *Handler) Fail(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.MapToHTTPStatus(err)

	var mismatch *errors.LengthMismatchError
	if errors.As(err, &mismatch) {
		h.JSON(w, status, map[string]any{
			"error":    mismatch.Error(),
			"expected": mismatch.Expected,
			"actual":   mismatch.Actual,
		})
		return
	}

	if status >= http.StatusInternalServerError {
		h.log.Error("Request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err)
		h.Error(w, status, "internal server error")
		return
	}
	h.Error(w, status, err.Error())
}

func (h *Handler) decode(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errors.ErrInvalidRequest
	}
	return nil
}
