package api

import (
	"net/http"

	"pq-messenger/errors"

	"github.com/go-chi/chi/v5"
)

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Message  string `json:"message"`
	Username string `json:"username"`
	Token    string `json:"token"`
}

type userResponse struct {
	Exists   bool   `json:"exists"`
	Username string `json:"username"`
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := h.decode(r, &req); err != nil || req.Username == "" || req.Password == "" {
		h.Error(w, http.StatusBadRequest, "Username and password required")
		return
	}

	if err := h.users.Register(r.Context(), req.Username, req.Password); err != nil {
		if errors.Is(err, errors.ErrUserAlreadyExists) {
			h.Error(w, http.StatusConflict, "Username already exists")
			return
		}
		h.Fail(w, r, err)
		return
	}
	h.JSON(w, http.StatusOK, map[string]string{"message": "User registered"})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := h.decode(r, &req); err != nil {
		h.Fail(w, r, err)
		return
	}

	token, err := h.users.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, errors.ErrInvalidCredentials) {
			h.Error(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		h.Fail(w, r, err)
		return
	}
	h.JSON(w, http.StatusOK, loginResponse{
		Message:  "Login successful",
		Username: req.Username,
		Token:    token.String(),
	})
}

// User answers whether a username is registered, ignoring case, and returns
// its stored spelling.
func (h *Handler) User(w http.ResponseWriter, r *http.Request) {
	username, err := h.users.Lookup(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			h.Error(w, http.StatusNotFound, "User not found")
			return
		}
		h.Fail(w, r, err)
		return
	}
	h.JSON(w, http.StatusOK, userResponse{Exists: true, Username: username})
}
