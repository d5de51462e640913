package api

import (
	"encoding/base64"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type ensureKeysRequest struct {
	Usernames []string `json:"usernames"`
}

type ensureKeysResponse struct {
	Status  string   `json:"status"`
	Ensured []string `json:"ensured"`
}

// EnsureKeys provisions keypairs for a batch of usernames. An empty body is
// an empty batch.
func (h *Handler) EnsureKeys(w http.ResponseWriter, r *http.Request) {
	var req ensureKeysRequest
	if r.ContentLength != 0 {
		if err := h.decode(r, &req); err != nil {
			h.Fail(w, r, err)
			return
		}
	}

	ensured, err := h.keys.EnsureKeys(r.Context(), req.Usernames)
	if err != nil {
		h.Fail(w, r, err)
		return
	}
	if ensured == nil {
		ensured = []string{}
	}
	h.JSON(w, http.StatusOK, ensureKeysResponse{Status: "ok", Ensured: ensured})
}

type publicKeyResponse struct {
	PublicKey string `json:"public_key"`
}

func (h *Handler) PublicKey(w http.ResponseWriter, r *http.Request) {
	publicKey, err := h.keys.PublicKey(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		h.Fail(w, r, err)
		return
	}
	h.JSON(w, http.StatusOK, publicKeyResponse{PublicKey: base64.StdEncoding.EncodeToString(publicKey)})
}

type encryptKeyRequest struct {
	Username string `json:"username"`
}

type encryptKeyResponse struct {
	EncryptedKey string `json:"encrypted_key"`
	SharedKey    string `json:"shared_key"`
}

// EncryptKey encapsulates a fresh shared secret for username and returns both
// halves. The shared secret leaves the server in this response only.
func (h *Handler) EncryptKey(w http.ResponseWriter, r *http.Request) {
	var req encryptKeyRequest
	if err := h.decode(r, &req); err != nil || req.Username == "" {
		h.Error(w, http.StatusBadRequest, "Missing username")
		return
	}

	result, err := h.keys.EncapsulateFor(r.Context(), req.Username)
	if err != nil {
		h.Fail(w, r, err)
		return
	}
	h.JSON(w, http.StatusOK, encryptKeyResponse{
		EncryptedKey: base64.StdEncoding.EncodeToString(result.Ciphertext),
		SharedKey:    base64.StdEncoding.EncodeToString(result.SharedSecret),
	})
}
