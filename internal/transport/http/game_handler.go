package http

import (
	"net/http"

	"globetrotter-service/internal/app"
)

type GameHandler struct {
	service *app.GameService
}

func NewGameHandler(service *app.GameService) *GameHandler {
	return &GameHandler{service: service}
}

type answerRequest struct {
	DestinationID string `json:"destinationId"`
	Answer        string `json:"answer"`
}

func (h *GameHandler) Question(w http.ResponseWriter, r *http.Request) {
	q, err := h.service.NextQuestion(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	ok(w, http.StatusOK, map[string]any{"question": q})
}

func (h *GameHandler) Answer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	result, err := h.service.SubmitAnswer(r.Context(), UserID(r.Context()), req.DestinationID, req.Answer)
	if err != nil {
		writeError(w, r, err)
		return
	}
	ok(w, http.StatusOK, map[string]any{"result": result})
}

func (h *GameHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context(), UserID(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	ok(w, http.StatusOK, map[string]any{"stats": stats})
}

func (h *GameHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.Leaderboard(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	ok(w, http.StatusOK, map[string]any{"leaderboard": entries})
}
