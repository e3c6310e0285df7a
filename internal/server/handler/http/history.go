package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/atinyakov/QRKeeper/internal/models"
	"github.com/atinyakov/QRKeeper/internal/render"
	"github.com/atinyakov/QRKeeper/internal/service"
)

// HistoryService defines the history operations required by the
// HistoryHandler.
type HistoryService interface {
	Save(ctx context.Context, rec models.Record, settings models.RenderSettings, title string) (models.SavedEntry, error)
	List(ctx context.Context) ([]models.SavedEntry, error)
	Get(ctx context.Context, id string) (models.SavedEntry, error)
	Load(ctx context.Context, id string) (models.Record, models.RenderSettings, error)
	Delete(ctx context.Context, id string) error
	Replace(ctx context.Context, entries []models.SavedEntry) error
}

// HistoryHandler handles the saved-code history endpoints.
type HistoryHandler struct {
	HistoryService HistoryService
	Logger         *zap.Logger
}

type saveRequest struct {
	Record   models.Envelope       `json:"record"`
	Settings models.RenderSettings `json:"settings"`
	Title    string                `json:"title"`
}

type entryResponse struct {
	Entry  models.SavedEntry `json:"entry"`
	Record models.Envelope   `json:"record"`
}

func (h *HistoryHandler) internalError(w http.ResponseWriter, msg string, err error) {
	internalError(h.Logger, w, msg, err)
}

// List handles GET /api/history and GET /api/entries.
func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	entries, err := h.HistoryService.List(r.Context())
	if err != nil {
		h.internalError(w, "list history", err)
		return
	}
	if entries == nil {
		entries = []models.SavedEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

// Create handles POST /api/history.
// It expects {"record", "settings", "title"} and responds 201 with the
// stored entry.
func (h *HistoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req saveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Record.Record == nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	entry, err := h.HistoryService.Save(r.Context(), req.Record.Record, req.Settings, req.Title)
	switch {
	case err == nil:
		writeJSON(w, http.StatusCreated, entry)
	case errors.Is(err, models.ErrRequiredField),
		errors.Is(err, models.ErrUnknownType),
		errors.Is(err, render.ErrPayloadTooLong):
		writeError(w, err)
	default:
		h.internalError(w, "save history entry", err)
	}
}

// Get handles GET /api/history/{id}.
// It responds with the entry and its payload decoded back into a record.
func (h *HistoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	entry, err := h.HistoryService.Get(r.Context(), id)
	if err != nil {
		h.notFoundOr(w, "get history entry", err)
		return
	}
	rec, _, err := h.HistoryService.Load(r.Context(), id)
	if err != nil {
		h.notFoundOr(w, "load history entry", err)
		return
	}
	writeJSON(w, http.StatusOK, entryResponse{Entry: entry, Record: models.Envelope{Record: rec}})
}

// Delete handles DELETE /api/history/{id}.
func (h *HistoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.HistoryService.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.notFoundOr(w, "delete history entry", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Replace handles PUT /api/entries, overwriting the whole history.
func (h *HistoryHandler) Replace(w http.ResponseWriter, r *http.Request) {
	var entries []models.SavedEntry
	if err := json.NewDecoder(r.Body).Decode(&entries); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if entries == nil {
		entries = []models.SavedEntry{}
	}
	err := h.HistoryService.Replace(r.Context(), entries)
	switch {
	case err == nil:
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, service.ErrInvalidEntry):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		h.internalError(w, "replace history", err)
	}
}

func (h *HistoryHandler) notFoundOr(w http.ResponseWriter, msg string, err error) {
	switch {
	case errors.Is(err, service.ErrEntryNotFound):
		http.Error(w, "entry not found", http.StatusNotFound)
	case errors.Is(err, models.ErrUnknownType):
		writeError(w, err)
	default:
		h.internalError(w, msg, err)
	}
}
