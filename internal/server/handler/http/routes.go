package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/atinyakov/QRKeeper/internal/middleware"
)

// NewRouter constructs the QRKeeper API handler.
//
// Routes:
//
//	POST   /api/payload/encode → qrHandler.Encode
//	POST   /api/payload/decode → qrHandler.Decode
//	POST   /api/qr             → qrHandler.QR
//	GET    /api/history        → historyHandler.List
//	POST   /api/history        → historyHandler.Create
//	GET    /api/history/{id}   → historyHandler.Get
//	DELETE /api/history/{id}   → historyHandler.Delete
//	GET    /api/entries        → historyHandler.List
//	PUT    /api/entries        → historyHandler.Replace
//
// Requests with a body must be application/json. Every request is logged.
func NewRouter(
	qrHandler *QRHandler,
	historyHandler *HistoryHandler,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(middleware.WithRequestLogging(logger))
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.AllowContentType("application/json"))

	r.Route("/api", func(r chi.Router) {
		r.Post("/payload/encode", qrHandler.Encode)
		r.Post("/payload/decode", qrHandler.Decode)
		r.Post("/qr", qrHandler.QR)

		r.Route("/history", func(r chi.Router) {
			r.Get("/", historyHandler.List)
			r.Post("/", historyHandler.Create)
			r.Get("/{id}", historyHandler.Get)
			r.Delete("/{id}", historyHandler.Delete)
		})

		r.Get("/entries", historyHandler.List)
		r.Put("/entries", historyHandler.Replace)
	})

	return r
}
