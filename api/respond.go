package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/rpupo63/words-blog/errs"
)

type Responder struct {
	logger   zerolog.Logger
	pages    map[string]*template.Template
	sessions *sessionStore
}

func NewResponder(logger zerolog.Logger, pages map[string]*template.Template, sessions *sessionStore) Responder {
	return Responder{logger: logger, pages: pages, sessions: sessions}
}

// Render executes page inside the base layout and writes it with status.
// Pending flashes are consumed and the session cookie is refreshed.
func (r Responder) Render(w http.ResponseWriter, req *http.Request, status int, page string, data pageData) {
	tmpl, ok := r.pages[page]
	if !ok {
		r.logger.Error().Str("page", page).Msg("unknown page template")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	sess := sessionFromRequest(req)
	data.Path = req.URL.Path
	data.LoggedIn = sess.loggedIn()
	data.Flashes = sess.popFlashes()

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base", data); err != nil {
		r.logger.Error().Err(err).Str("page", page).Msg("error rendering template")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	r.saveSession(w, sess)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		r.logger.Error().Err(err).Msg("error writing response")
	}
}

// Redirect saves the session and sends a 302 to url.
func (r Responder) Redirect(w http.ResponseWriter, req *http.Request, url string) {
	r.saveSession(w, sessionFromRequest(req))
	http.Redirect(w, req, url, http.StatusFound)
}

func (r Responder) saveSession(w http.ResponseWriter, sess *session) {
	if r.sessions == nil {
		return
	}
	if err := r.sessions.save(w, sess); err != nil {
		r.logger.Error().Err(err).Msg("error saving session")
	}
}

func (r Responder) WriteJSON(w http.ResponseWriter, status int, data any) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		r.logger.Error().Err(err).Msg("error marshaling response data")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write(jsonData); err != nil {
		r.logger.Error().Err(err).Msg("error writing response")
	}
}

// WriteError renders the error page. ApiErrs keep their status; anything
// else is logged and shown as a 500.
func (r Responder) WriteError(w http.ResponseWriter, req *http.Request, err error) {
	var apiErr *errs.ApiErr
	if !errors.As(err, &apiErr) {
		r.logger.Error().Err(err).Str("path", req.URL.Path).Msg("unexpected error")
		r.Render(w, req, http.StatusInternalServerError, "error", errorPage(http.StatusInternalServerError, ""))
		return
	}

	if apiErr.StatusCode >= http.StatusInternalServerError {
		r.logger.Error().Str("error", apiErr.GetFullError()).Str("path", req.URL.Path).Msg("request failed")
		r.Render(w, req, apiErr.StatusCode, "error", errorPage(apiErr.StatusCode, ""))
		return
	}

	r.Render(w, req, apiErr.StatusCode, "error", errorPage(apiErr.StatusCode, apiErr.Message()))
}

func errorPage(status int, message string) pageData {
	if message == "" {
		switch status {
		case http.StatusNotFound:
			message = "The page you are looking for does not exist."
		case http.StatusMethodNotAllowed:
			message = "That method is not allowed here."
		default:
			message = "Something went wrong on our end. Please try again later."
		}
	}
	return pageData{
		Title:      http.StatusText(status),
		StatusCode: status,
		Message:    message,
	}
}
