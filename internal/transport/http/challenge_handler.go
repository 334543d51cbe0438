package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"globetrotter-service/internal/app"
)

type ChallengeHandler struct {
	service *app.ChallengeService
}

func NewChallengeHandler(service *app.ChallengeService) *ChallengeHandler {
	return &ChallengeHandler{service: service}
}

func (h *ChallengeHandler) Create(w http.ResponseWriter, r *http.Request) {
	c, err := h.service.Create(r.Context(), UserID(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	ok(w, http.StatusCreated, map[string]any{"challenge": c})
}

func (h *ChallengeHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.service.Get(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	ok(w, http.StatusOK, map[string]any{"challenge": c})
}

func (h *ChallengeHandler) Join(w http.ResponseWriter, r *http.Request) {
	c, err := h.service.Join(r.Context(), chi.URLParam(r, "code"), UserID(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	ok(w, http.StatusOK, map[string]any{"message": "Successfully joined the challenge", "challenge": c})
}

func (h *ChallengeHandler) UpdateScore(w http.ResponseWriter, r *http.Request) {
	c, err := h.service.UpdateScore(r.Context(), chi.URLParam(r, "code"), UserID(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	ok(w, http.StatusOK, map[string]any{"message": "Challenge score updated", "challenge": c})
}
