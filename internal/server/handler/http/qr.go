// Package http provides HTTP handlers for payload encoding, QR code
// rendering and the saved-code history.
package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/atinyakov/QRKeeper/internal/export"
	"github.com/atinyakov/QRKeeper/internal/models"
	"github.com/atinyakov/QRKeeper/internal/payload"
	"github.com/atinyakov/QRKeeper/internal/render"
)

// PayloadCodec converts records to and from their scannable payloads.
type PayloadCodec interface {
	Encode(r models.Record) string
	Decode(t models.ContentType, payload string) (models.Record, error)
}

// QRExporter renders a record into an image file.
type QRExporter interface {
	Export(rec models.Record, s models.RenderSettings, f export.Format) (export.File, error)
}

// QRHandler handles payload and image requests.
type QRHandler struct {
	Codec    PayloadCodec
	Exporter QRExporter
	Logger   *zap.Logger
}

type decodeRequest struct {
	Type    models.ContentType `json:"type"`
	Payload string             `json:"payload"`
}

type qrRequest struct {
	Record   models.Envelope       `json:"record"`
	Settings models.RenderSettings `json:"settings"`
}

// Encode handles POST /api/payload/encode.
// It expects a record envelope and responds with {"payload": "..."}.
func (h *QRHandler) Encode(w http.ResponseWriter, r *http.Request) {
	var env models.Envelope
	if err := json.NewDecoder(r.Body).Decode(&env); err != nil || env.Record == nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if err := payload.Validate(env.Record); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"payload": h.Codec.Encode(env.Record)})
}

// Decode handles POST /api/payload/decode.
// It expects {"type", "payload"} and responds with the record envelope.
func (h *QRHandler) Decode(w http.ResponseWriter, r *http.Request) {
	var req decodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	rec, err := h.Codec.Decode(req.Type, req.Payload)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, models.Envelope{Record: rec})
}

// QR handles POST /api/qr?format=png|svg.
// It renders the record with the given settings and responds with the image
// as an attachment named after the record.
func (h *QRHandler) QR(w http.ResponseWriter, r *http.Request) {
	format := export.FormatPNG
	if q := r.URL.Query().Get("format"); q != "" {
		f, err := export.ParseFormat(q)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		format = f
	}

	var req qrRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Record.Record == nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if err := payload.Validate(req.Record.Record); err != nil {
		writeError(w, err)
		return
	}

	file, err := h.Exporter.Export(req.Record.Record, req.Settings, format)
	if err != nil {
		if _, ok := clientStatus(err); !ok {
			internalError(h.Logger, w, "render qr code", err)
			return
		}
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", file.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Name))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(file.Data)
}

// clientStatus maps errors caused by the request onto status codes.
func clientStatus(err error) (int, bool) {
	switch {
	case errors.Is(err, models.ErrRequiredField),
		errors.Is(err, render.ErrPayloadTooLong):
		return http.StatusUnprocessableEntity, true
	case errors.Is(err, models.ErrUnknownType),
		errors.Is(err, render.ErrInvalidColor),
		errors.Is(err, export.ErrUnknownFormat):
		return http.StatusBadRequest, true
	}
	return 0, false
}

// writeError maps domain errors onto status codes.
func writeError(w http.ResponseWriter, err error) {
	if status, ok := clientStatus(err); ok {
		http.Error(w, err.Error(), status)
		return
	}
	http.Error(w, "internal error", http.StatusInternalServerError)
}

func internalError(log *zap.Logger, w http.ResponseWriter, msg string, err error) {
	if log == nil {
		log = zap.NewNop()
	}
	log.Error(msg, zap.Error(err))
	http.Error(w, "internal error", http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
