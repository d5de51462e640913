package api

import (
	"net/http"
	"time"

	"pq-messenger/api/middleware"
	"pq-messenger/domain"
	"pq-messenger/errors"
	"pq-messenger/services"

	"github.com/go-chi/chi/v5"
	"github.com/samber/lo"
)

type sendRequest struct {
	Sender       string `json:"sender"`
	Recipient    string `json:"recipient"`
	Message      string `json:"message"`
	EncryptedKey string `json:"encrypted_key"`
}

type sendResponse struct {
	Status string `json:"status"`
	ID     string `json:"id"`
}

type messageResponse struct {
	ID           string `json:"id"`
	Sender       string `json:"sender"`
	Recipient    string `json:"recipient"`
	Message      string `json:"message"`
	EncryptedKey string `json:"encrypted_key"`
	Timestamp    string `json:"timestamp"`
}

func (h *Handler) Send(w http.ResponseWriter, r *http.Request) {
	var req sendRequest
	if err := h.decode(r, &req); err != nil {
		h.Fail(w, r, err)
		return
	}
	if err := authorize(r, req.Sender); err != nil {
		h.Fail(w, r, err)
		return
	}

	id, err := h.relay.Submit(r.Context(), services.SubmitCommand{
		Sender:          req.Sender,
		Recipient:       req.Recipient,
		Payload:         req.Message,
		EncapsulatedKey: req.EncryptedKey,
	})
	if err != nil {
		h.Fail(w, r, err)
		return
	}
	h.JSON(w, http.StatusOK, sendResponse{Status: "Message sent", ID: id.String()})
}

func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	user1, user2 := chi.URLParam(r, "user1"), chi.URLParam(r, "user2")
	if err := authorize(r, user1, user2); err != nil {
		h.Fail(w, r, err)
		return
	}

	messages, err := h.relay.History(r.Context(), user1, user2)
	if err != nil {
		h.Fail(w, r, err)
		return
	}
	h.JSON(w, http.StatusOK, lo.Map(messages, func(m domain.Message, _ int) messageResponse {
		return messageResponse{
			ID:           m.ID.String(),
			Sender:       m.Sender,
			Recipient:    m.Recipient,
			Message:      m.Payload,
			EncryptedKey: m.EncapsulatedKey,
			Timestamp:    m.Timestamp.UTC().Format(time.RFC3339Nano),
		}
	}))
}

func (h *Handler) Contacts(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	if err := authorize(r, username); err != nil {
		h.Fail(w, r, err)
		return
	}

	contacts, err := h.relay.ContactsOf(r.Context(), username)
	if err != nil {
		h.Fail(w, r, err)
		return
	}
	if contacts == nil {
		contacts = []string{}
	}
	h.JSON(w, http.StatusOK, contacts)
}

// authorize only applies to authenticated callers: the verified identity must
// be one of the usernames the request acts for.
func authorize(r *http.Request, allowed ...string) error {
	identity, ok := middleware.Identity(r.Context())
	if !ok || lo.Contains(allowed, identity) {
		return nil
	}
	return errors.ErrIdentityMismatch
}
