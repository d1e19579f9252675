package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func testSessionStore(secret string) *sessionStore {
	return &sessionStore{
		secret:   []byte(secret),
		lifetime: 31 * 24 * time.Hour,
		now:      time.Now,
	}
}

// roundTrip saves sess with store and returns a request carrying the resulting cookie.
func roundTrip(t *testing.T, store *sessionStore, sess *session) (*http.Request, *http.Cookie) {
	t.Helper()
	rec := httptest.NewRecorder()
	if err := store.save(rec, sess); err != nil {
		t.Fatalf("save() error = %v", err)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("save() set %d cookies, want 1", len(cookies))
	}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	return req, cookies[0]
}

func TestSessionLoginRoundTrip(t *testing.T) {
	store := testSessionStore("secret")
	sess := &session{}
	sess.login()

	req, cookie := roundTrip(t, store, sess)

	if cookie.Name != sessionCookieName || !cookie.HttpOnly {
		t.Errorf("cookie = %+v", cookie)
	}
	if cookie.MaxAge != int((31 * 24 * time.Hour).Seconds()) {
		t.Errorf("MaxAge = %d, want 31 days", cookie.MaxAge)
	}
	if !store.load(req).loggedIn() {
		t.Error("loaded session should be logged in")
	}
}

func TestSessionWrongSecretIsIgnored(t *testing.T) {
	sess := &session{}
	sess.login()
	req, _ := roundTrip(t, testSessionStore("other-secret"), sess)

	if testSessionStore("secret").load(req).loggedIn() {
		t.Error("a session signed with another key must not be trusted")
	}
}

func TestSessionExpired(t *testing.T) {
	store := testSessionStore("secret")
	sess := &session{}
	sess.login()
	req, _ := roundTrip(t, store, sess)

	store.now = func() time.Time { return time.Now().Add(32 * 24 * time.Hour) }
	if store.load(req).loggedIn() {
		t.Error("an expired session must not be trusted")
	}
}

func TestSessionGarbageCookie(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "not-a-token"})

	sess := testSessionStore("secret").load(req)
	if sess.loggedIn() || len(sess.claims.Flashes) != 0 {
		t.Errorf("garbage cookie produced %+v", sess.claims)
	}
}

func TestSessionFlashes(t *testing.T) {
	store := testSessionStore("secret")
	sess := &session{}
	sess.flash("success", "You are now logged in.")

	req, cookie := roundTrip(t, store, sess)
	if cookie.MaxAge != 0 {
		t.Errorf("MaxAge = %d, a non-permanent session is a browser-session cookie", cookie.MaxAge)
	}

	loaded := store.load(req)
	flashes := loaded.popFlashes()
	if len(flashes) != 1 || flashes[0].Category != "success" || flashes[0].Message != "You are now logged in." {
		t.Fatalf("popFlashes() = %+v", flashes)
	}
	if loaded.popFlashes() != nil {
		t.Error("flashes should only be returned once")
	}

	rec := httptest.NewRecorder()
	if err := store.save(rec, loaded); err != nil {
		t.Fatalf("save() error = %v", err)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].MaxAge >= 0 {
		t.Errorf("emptied session should expire the cookie, got %+v", cookies)
	}
}

func TestSessionClear(t *testing.T) {
	store := testSessionStore("secret")
	sess := &session{}
	sess.login()
	req, _ := roundTrip(t, store, sess)

	loaded := store.load(req)
	loaded.clear()
	rec := httptest.NewRecorder()
	if err := store.save(rec, loaded); err != nil {
		t.Fatalf("save() error = %v", err)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].MaxAge >= 0 {
		t.Errorf("cleared session should expire the cookie, got %+v", cookies)
	}
}

func TestSessionUnmodifiedIsNotWritten(t *testing.T) {
	rec := httptest.NewRecorder()
	if err := testSessionStore("secret").save(rec, &session{}); err != nil {
		t.Fatalf("save() error = %v", err)
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Error("an untouched session should not set a cookie")
	}
}
