package api

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/rpupo63/words-blog/errs"
	"github.com/rpupo63/words-blog/forms"
)

type authHandler struct {
	responder     Responder
	logger        zerolog.Logger
	adminPassword string
}

func newAuthHandler(responder func(zerolog.Logger) Responder, adminPassword string) authHandler {
	logger := log.With().Str("handlerName", "authHandler").Logger()
	return authHandler{
		responder:     responder(logger),
		logger:        logger,
		adminPassword: adminPassword,
	}
}

// checkPassword compares against a bcrypt hash when the configured
// password is one, and in constant time otherwise.
func (h authHandler) checkPassword(given string) error {
	var ok bool
	if strings.HasPrefix(h.adminPassword, "$2") {
		ok = bcrypt.CompareHashAndPassword([]byte(h.adminPassword), []byte(given)) == nil
	} else {
		ok = subtle.ConstantTimeCompare([]byte(h.adminPassword), []byte(given)) == 1
	}
	if !ok {
		return errs.NewIncorrectPasswordError()
	}
	return nil
}

func (h authHandler) loginForm() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.responder.Render(w, r, http.StatusOK, "login", pageData{
			Title: "Log in",
			Next:  r.URL.Query().Get("next"),
		})
	}
}

func (h authHandler) login() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var form forms.LoginForm
		if err := forms.Decode(r, &form); err != nil {
			h.responder.WriteError(w, r, err)
			return
		}

		next := form.Next
		if next == "" {
			next = r.URL.Query().Get("next")
		}
		data := pageData{Title: "Log in", Next: next}

		if fieldErrors := forms.Validate(form); fieldErrors.Any() {
			data.Errors = fieldErrors
			h.responder.Render(w, r, http.StatusBadRequest, "login", data)
			return
		}

		sess := sessionFromRequest(r)
		if err := h.checkPassword(form.Password); err != nil {
			h.logger.Warn().Err(err).Str("remote_addr", r.RemoteAddr).Msg("failed login attempt")
			sess.flash("danger", "Incorrect password.")
			h.responder.Render(w, r, errs.StatusCode(err), "login", data)
			return
		}

		sess.login()
		sess.flash("success", "You are now logged in.")
		h.responder.Redirect(w, r, safeNext(next))
	}
}

func (h authHandler) logoutConfirm() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.responder.Render(w, r, http.StatusOK, "logout", pageData{Title: "Log out"})
	}
}

func (h authHandler) logout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionFromRequest(r).clear()
		h.responder.Redirect(w, r, "/login/")
	}
}
