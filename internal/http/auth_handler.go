package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/MusclesGloves/storefront/internal/api"
	"github.com/MusclesGloves/storefront/internal/session"
)

// AuthAPI is the slice of the backend client the auth handlers need.
type AuthAPI interface {
	Login(ctx context.Context, username, password string) (string, error)
	Register(ctx context.Context, username, password string, admin bool) (string, error)
}

type AuthHandler struct {
	api      AuthAPI
	sessions *session.Resolver
}

func NewAuthHandler(authAPI AuthAPI, sessions *session.Resolver) *AuthHandler {
	return &AuthHandler{
		api:      authAPI,
		sessions: sessions,
	}
}

type LoginRequestDTO struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type RegisterRequestDTO struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Admin    bool   `json:"admin"`
}

type SessionResponseDTO struct {
	State    string   `json:"state"`
	Username string   `json:"username,omitempty"`
	Roles    []string `json:"roles"`
	Admin    bool     `json:"admin"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Username == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "missing_credentials", "username and password are required")
		return
	}

	// A failed login leaves the token unset.
	token, err := h.api.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		respondAuthError(w, err)
		return
	}

	h.sessions.Login(r.Context(), token)
	respondJSON(w, http.StatusOK, h.sessionDTO())
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Username == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "missing_credentials", "username and password are required")
		return
	}

	token, err := h.api.Register(r.Context(), req.Username, req.Password, req.Admin)
	if err != nil {
		respondAuthError(w, err)
		return
	}

	h.sessions.Login(r.Context(), token)
	respondJSON(w, http.StatusCreated, h.sessionDTO())
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.Logout(r.Context())
	respondJSON(w, http.StatusOK, h.sessionDTO())
}

func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.sessionDTO())
}

func (h *AuthHandler) sessionDTO() SessionResponseDTO {
	dto := SessionResponseDTO{
		State: string(h.sessions.State()),
		Roles: h.sessions.Roles(),
		Admin: h.sessions.IsAdmin(),
	}
	if dto.Roles == nil {
		dto.Roles = []string{}
	}
	if user := h.sessions.User(); user != nil {
		dto.Username = user.Username
	}
	return dto
}

// respondAuthError forwards the backend's status and message when the
// failure came from the backend, and reports a generic upstream error
// otherwise.
func respondAuthError(w http.ResponseWriter, err error) {
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		msg := apiErr.Message
		if msg == "" {
			msg = "authentication failed"
		}
		respondError(w, apiErr.Status, "auth_failed", msg)
		return
	}
	respondError(w, http.StatusBadGateway, "backend_unreachable", "authentication service unreachable")
}
