package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/rpupo63/words-blog/config"
)

const sessionCookieName = "session"

type flash struct {
	Category string `json:"category"`
	Message  string `json:"message"`
}

// sessionClaims is everything the client holds between requests.
type sessionClaims struct {
	LoggedIn  bool    `json:"logged_in,omitempty"`
	Permanent bool    `json:"_permanent,omitempty"`
	Flashes   []flash `json:"_flashes,omitempty"`
	jwt.RegisteredClaims
}

// session is the per-request view of the session cookie. Changes are
// written back by the Responder before the response is sent.
type session struct {
	claims     sessionClaims
	modified   bool
	fromCookie bool
}

func (s *session) loggedIn() bool {
	return s.claims.LoggedIn
}

func (s *session) login() {
	s.claims.LoggedIn = true
	s.claims.Permanent = true
	s.modified = true
}

func (s *session) clear() {
	s.claims = sessionClaims{}
	s.modified = true
}

func (s *session) flash(category, message string) {
	s.claims.Flashes = append(s.claims.Flashes, flash{Category: category, Message: message})
	s.modified = true
}

func (s *session) popFlashes() []flash {
	if len(s.claims.Flashes) == 0 {
		return nil
	}
	flashes := s.claims.Flashes
	s.claims.Flashes = nil
	s.modified = true
	return flashes
}

func (s *session) empty() bool {
	return !s.claims.LoggedIn && len(s.claims.Flashes) == 0
}

// Authenticator decides whether a request belongs to the admin.
type Authenticator interface {
	IsAuthenticated(r *http.Request) bool
}

// sessionStore signs sessions as HS256 JWTs kept in an HttpOnly cookie.
type sessionStore struct {
	secret   []byte
	lifetime time.Duration
	secure   bool
	now      func() time.Time
}

func newSessionStore(cfg config.Config) *sessionStore {
	return &sessionStore{
		secret:   []byte(cfg.SecretKey),
		lifetime: cfg.SessionLifetime,
		secure:   cfg.SecureCookies,
		now:      time.Now,
	}
}

// load reads the session cookie. A missing, tampered or expired cookie
// yields an empty session.
func (s *sessionStore) load(r *http.Request) *session {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil || cookie.Value == "" {
		return &session{}
	}

	var claims sessionClaims
	token, err := jwt.ParseWithClaims(cookie.Value, &claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		return &session{fromCookie: true}
	}
	return &session{claims: claims, fromCookie: true}
}

// save writes sess back to the client when it changed during the request.
func (s *sessionStore) save(w http.ResponseWriter, sess *session) error {
	if sess == nil || !sess.modified {
		return nil
	}
	defer func() { sess.modified = false }()

	cookie := &http.Cookie{
		Name:     sessionCookieName,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	}

	if sess.empty() {
		if sess.fromCookie {
			cookie.MaxAge = -1
			http.SetCookie(w, cookie)
		}
		return nil
	}

	now := s.now()
	claims := sess.claims
	claims.RegisteredClaims = jwt.RegisteredClaims{
		ID:       uuid.NewString(),
		IssuedAt: jwt.NewNumericDate(now),
	}
	if claims.Permanent {
		expires := now.Add(s.lifetime)
		claims.ExpiresAt = jwt.NewNumericDate(expires)
		cookie.Expires = expires
		cookie.MaxAge = int(s.lifetime.Seconds())
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return fmt.Errorf("sign session: %w", err)
	}
	cookie.Value = signed
	http.SetCookie(w, cookie)
	return nil
}

// middleware attaches the request's session to its context.
func (s *sessionStore) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := s.load(r)
		next.ServeHTTP(w, r.WithContext(ctxWithSession(r.Context(), sess)))
	})
}

func (s *sessionStore) IsAuthenticated(r *http.Request) bool {
	if sess, ok := ctxGetSession(r.Context()); ok {
		return sess.loggedIn()
	}
	return s.load(r).loggedIn()
}
