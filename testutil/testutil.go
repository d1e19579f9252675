package testutil

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rpupo63/words-blog/config"
	"github.com/rpupo63/words-blog/database"
	"github.com/rpupo63/words-blog/models"
)

// TestPassword is the admin password in TestConfig.
const TestPassword = "correct-horse"

// TestConfig returns a configuration backed by a private in-memory sqlite database.
func TestConfig() config.Config {
	return config.Config{
		Port:            "0",
		DBType:          config.DBTypeSQLite,
		DatabaseURL:     "file:" + uuid.NewString() + "?mode=memory&cache=shared",
		AdminPassword:   TestPassword,
		SecretKey:       "test-secret-key",
		SessionLifetime: 31 * 24 * time.Hour,
		ReadTimeout:     5 * time.Second,
		WriteTimeout:    5 * time.Second,
		IdleTimeout:     5 * time.Second,
		ShutdownTimeout: 5 * time.Second,
		LogLevel:        "error",
		LogFormat:       "console",
	}
}

// SetupTestDB opens and migrates the database described by cfg. The
// connection is closed when the test finishes.
func SetupTestDB(t *testing.T, cfg config.Config) database.Database {
	t.Helper()
	return database.New(OpenTestDB(t, cfg))
}

// OpenTestDB is SetupTestDB for tests that need the gorm handle itself.
func OpenTestDB(t *testing.T, cfg config.Config) *gorm.DB {
	t.Helper()

	db, err := database.Open(cfg)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	if err := models.Migrate(db); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	return db
}

// CreateTestPost inserts a post directly, creating its category when category is not empty.
func CreateTestPost(t *testing.T, db database.Database, title, slug, category string) *models.Post {
	t.Helper()
	ctx := context.Background()

	post := &models.Post{
		Title:    title,
		Subtitle: "A subtitle",
		Date:     "January 02, 2024",
		Body:     "<p>Body of " + title + "</p>",
		Author:   "Test Author",
		Slug:     slug,
	}
	if category != "" {
		c, err := db.CategoryRepo().Upsert(ctx, category)
		if err != nil {
			t.Fatalf("Failed to create test category: %v", err)
		}
		post.CategoryID = &c.ID
		post.Category = c
	}
	if err := db.PostRepo().Add(ctx, post); err != nil {
		t.Fatalf("Failed to create test post: %v", err)
	}
	return post
}

// PostForm builds a form-encoded POST request.
func PostForm(path string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

// WithCookies copies every cookie set on w onto req.
func WithCookies(req *http.Request, w *httptest.ResponseRecorder) *http.Request {
	for _, c := range w.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertPermanentRedirect checks for a 308 to location.
func AssertPermanentRedirect(t *testing.T, w *httptest.ResponseRecorder, location string) {
	t.Helper()
	if w.Code != http.StatusPermanentRedirect {
		t.Fatalf("Expected status 308, got %d. Body: %s", w.Code, w.Body.String())
	}
	if got := w.Header().Get("Location"); got != location {
		t.Errorf("Expected redirect to %q, got %q", location, got)
	}
}

// AssertRedirect checks for a 302 to location.
func AssertRedirect(t *testing.T, w *httptest.ResponseRecorder, location string) {
	t.Helper()
	if w.Code != http.StatusFound {
		t.Fatalf("Expected status 302, got %d. Body: %s", w.Code, w.Body.String())
	}
	if got := w.Header().Get("Location"); got != location {
		t.Errorf("Expected redirect to %q, got %q", location, got)
	}
}

// AssertContains checks that the response body contains want.
func AssertContains(t *testing.T, w *httptest.ResponseRecorder, want string) {
	t.Helper()
	if !strings.Contains(w.Body.String(), want) {
		t.Errorf("Expected body to contain %q. Body: %s", want, w.Body.String())
	}
}
