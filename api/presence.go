package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"pq-messenger/domain/event"
	"pq-messenger/errors"
	"pq-messenger/presence"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// keepAliveInterval keeps idle proxies from closing quiet streams.
const keepAliveInterval = 25 * time.Second

// Presence holds a server-sent events stream open for username. The
// connection counts as online until the client goes away.
func (h *Handler) Presence(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	if err := authorize(r, username); err != nil {
		h.Fail(w, r, err)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		h.Fail(w, r, errors.New("streaming unsupported"))
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	connectionID := uuid.NewString()
	sink := presence.NewChannelSink(h.presenceBuffer)
	h.presence.Connect(r.Context(), username, connectionID, sink)
	defer h.presence.Disconnect(context.WithoutCancel(r.Context()), connectionID)

	keepAlive := time.NewTicker(keepAliveInterval)
	defer keepAlive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-keepAlive.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
			flusher.Flush()
		case e := <-sink.Events:
			if err := writeEvent(w, e); err != nil {
				h.log.Debug("Presence stream closed", "username", username, "error", err)
				return
			}
			flusher.Flush()
		}
	}
}

func writeEvent(w http.ResponseWriter, e event.DomainEvent) error {
	var data any
	switch evt := e.(type) {
	case event.OnlineUsersUpdated:
		data = evt.Usernames
	default:
		data = evt
	}
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", e.Name(), payload)
	return err
}
