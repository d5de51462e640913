package api

import (
	"net/http"
	"time"

	"pq-messenger/observability"
)

type healthResponse struct {
	Status      string                      `json:"status"`
	Scheme      string                      `json:"scheme"`
	OnlineUsers int                         `json:"online_users"`
	Process     *observability.ProcessStats `json:"process,omitempty"`
	Timestamp   string                      `json:"timestamp"`
}

// Health reports liveness. Process stats are best effort and omitted when
// the platform does not expose them.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status:      "ok",
		Scheme:      h.scheme,
		OnlineUsers: len(h.presence.Online()),
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
	}
	if stats, err := observability.SelfStats(); err == nil {
		resp.Process = &stats
	} else {
		h.log.Debug("Process stats unavailable", "error", err)
	}
	h.JSON(w, http.StatusOK, resp)
}
