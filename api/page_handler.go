package api

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/words-blog/database"
)

type pageHandler struct {
	responder   Responder
	logger      zerolog.Logger
	db          database.Database
	startupTime time.Time
}

func newPageHandler(responder func(zerolog.Logger) Responder, db database.Database, startupTime time.Time) pageHandler {
	logger := log.With().Str("handlerName", "pageHandler").Logger()
	return pageHandler{
		responder:   responder(logger),
		logger:      logger,
		db:          db,
		startupTime: startupTime,
	}
}

// static renders a page that needs no data.
func (h pageHandler) static(page, title string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.responder.Render(w, r, http.StatusOK, page, pageData{Title: title})
	}
}

func (h pageHandler) healthz() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := h.db.Ping(ctx); err != nil {
			h.logger.Error().Err(err).Msg("database ping failed")
			h.responder.WriteJSON(w, http.StatusServiceUnavailable, healthResponse{
				Status: "unavailable",
				Error:  "database unreachable",
			})
			return
		}

		h.responder.WriteJSON(w, http.StatusOK, healthResponse{
			Status: "ok",
			Uptime: time.Since(h.startupTime).Round(time.Second).String(),
		})
	}
}

func (h pageHandler) notFound() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.responder.Render(w, r, http.StatusNotFound, "error", errorPage(http.StatusNotFound, ""))
	}
}

func (h pageHandler) methodNotAllowed() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.responder.Render(w, r, http.StatusMethodNotAllowed, "error", errorPage(http.StatusMethodNotAllowed, ""))
	}
}
