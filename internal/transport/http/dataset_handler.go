package http

import (
	"errors"
	"fmt"
	"net/http"

	"globetrotter-service/internal/app"
	"globetrotter-service/internal/domain"
)

// DatasetHandler exposes catalog administration.
type DatasetHandler struct {
	service *app.CatalogService
}

func NewDatasetHandler(service *app.CatalogService) *DatasetHandler {
	return &DatasetHandler{service: service}
}

type expandRequest struct {
	Count int `json:"count"`
}

type destinationSummary struct {
	Name      string           `json:"name"`
	Continent domain.Continent `json:"continent"`
	Country   string           `json:"country"`
}

func (h *DatasetHandler) Seed(w http.ResponseWriter, r *http.Request) {
	n, err := h.service.Seed(r.Context())
	if errors.Is(err, domain.ErrCatalogSeeded) {
		writeJSON(w, http.StatusBadRequest, errorBody{Message: "Database already seeded", Count: &n})
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	ok(w, http.StatusCreated, map[string]any{"message": "Initial destinations seeded successfully", "count": n})
}

func (h *DatasetHandler) Expand(w http.ResponseWriter, r *http.Request) {
	var req expandRequest
	if err := decodeOptionalJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	res, err := h.service.Expand(r.Context(), req.Count)
	if err != nil {
		writeError(w, r, err)
		return
	}
	summaries := make([]destinationSummary, 0, len(res.Inserted))
	for _, d := range res.Inserted {
		summaries = append(summaries, destinationSummary{Name: d.Name, Continent: d.Continent, Country: d.Country})
	}
	ok(w, http.StatusCreated, map[string]any{
		"message":      fmt.Sprintf("Successfully added %d new destinations", len(res.Inserted)),
		"count":        len(res.Inserted),
		"discarded":    res.Discarded,
		"destinations": summaries,
	})
}

func (h *DatasetHandler) List(w http.ResponseWriter, r *http.Request) {
	destinations, err := h.service.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	ok(w, http.StatusOK, map[string]any{"count": len(destinations), "destinations": destinations})
}

func (h *DatasetHandler) Add(w http.ResponseWriter, r *http.Request) {
	var d domain.Destination
	if err := decodeJSON(r, &d); err != nil {
		writeError(w, r, err)
		return
	}
	added, err := h.service.Add(r.Context(), d)
	if err != nil {
		writeError(w, r, err)
		return
	}
	ok(w, http.StatusCreated, map[string]any{"destination": added})
}
