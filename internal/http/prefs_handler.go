package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/MusclesGloves/storefront/internal/storage"
)

const themeKey = "theme"

// PrefsHandler stores UI-only preferences in the same KV slots the rest of
// the storefront persists to.
type PrefsHandler struct {
	store storage.Store
}

func NewPrefsHandler(store storage.Store) *PrefsHandler {
	return &PrefsHandler{store: store}
}

type ThemeDTO struct {
	Theme string `json:"theme"`
}

func (h *PrefsHandler) GetTheme(w http.ResponseWriter, r *http.Request) {
	theme, err := h.store.Get(r.Context(), themeKey)
	if errors.Is(err, storage.ErrNotFound) {
		respondJSON(w, http.StatusOK, ThemeDTO{Theme: "light"})
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "storage_error", "could not read theme")
		return
	}
	respondJSON(w, http.StatusOK, ThemeDTO{Theme: theme})
}

func (h *PrefsHandler) SetTheme(w http.ResponseWriter, r *http.Request) {
	var req ThemeDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Theme == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "theme is required")
		return
	}

	if err := h.store.Set(r.Context(), themeKey, req.Theme); err != nil {
		respondError(w, http.StatusInternalServerError, "storage_error", "could not save theme")
		return
	}
	respondJSON(w, http.StatusOK, req)
}
