package database_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rpupo63/words-blog/database"
	"github.com/rpupo63/words-blog/errs"
	"github.com/rpupo63/words-blog/models"
	"github.com/rpupo63/words-blog/testutil"
)

func TestPostRepoFindBySlug(t *testing.T) {
	db := testutil.SetupTestDB(t, testutil.TestConfig())
	ctx := context.Background()
	created := testutil.CreateTestPost(t, db, "Hello", "hello-world", "Life")

	post, err := db.PostRepo().FindBySlug(ctx, "hello-world")
	if err != nil {
		t.Fatalf("FindBySlug() error = %v", err)
	}
	if post.ID != created.ID {
		t.Errorf("ID = %d, want %d", post.ID, created.ID)
	}
	if post.CategoryName() != "Life" {
		t.Errorf("CategoryName() = %q, want Life", post.CategoryName())
	}

	_, err = db.PostRepo().FindBySlug(ctx, "missing")
	if !errs.IsNotFound(err) {
		t.Errorf("FindBySlug(missing) error = %v, want not found", err)
	}
}

func TestPostRepoFindAllOrdered(t *testing.T) {
	db := testutil.SetupTestDB(t, testutil.TestConfig())
	testutil.CreateTestPost(t, db, "First", "first", "")
	testutil.CreateTestPost(t, db, "Second", "second", "Life")

	posts, err := db.PostRepo().FindAll(context.Background())
	if err != nil {
		t.Fatalf("FindAll() error = %v", err)
	}
	if len(posts) != 2 || posts[0].Slug != "first" || posts[1].Slug != "second" {
		t.Fatalf("FindAll() returned %+v", posts)
	}
	if posts[0].Category != nil {
		t.Error("post without category should have nil Category")
	}
}

func TestPostRepoDuplicateSlug(t *testing.T) {
	db := testutil.SetupTestDB(t, testutil.TestConfig())
	testutil.CreateTestPost(t, db, "Hello", "hello-world", "")

	dup := &models.Post{Title: "Other", Subtitle: "s", Date: "d", Body: "b", Author: "a", Slug: "hello-world"}
	err := db.PostRepo().Add(context.Background(), dup)
	if !errs.IsDuplicateKey(err) {
		t.Fatalf("Add() error = %v, want a duplicate key error", err)
	}

	field, err := db.PostRepo().FindConflictField(context.Background(), "Other", "hello-world", 0)
	if err != nil {
		t.Fatalf("FindConflictField() error = %v", err)
	}
	if field != "slug" {
		t.Errorf("FindConflictField() = %q, want slug", field)
	}
}

func TestPostRepoFindConflictFieldExcludesSelf(t *testing.T) {
	db := testutil.SetupTestDB(t, testutil.TestConfig())
	post := testutil.CreateTestPost(t, db, "Hello", "hello-world", "")

	field, err := db.PostRepo().FindConflictField(context.Background(), "Hello", "hello-world", post.ID)
	if err != nil {
		t.Fatalf("FindConflictField() error = %v", err)
	}
	if field != "" {
		t.Errorf("FindConflictField() = %q, a post must not conflict with itself", field)
	}
}

func TestPostRepoUpdateContentKeepsCategory(t *testing.T) {
	db := testutil.SetupTestDB(t, testutil.TestConfig())
	ctx := context.Background()
	post := testutil.CreateTestPost(t, db, "Hello", "hello-world", "Life")

	post.Title = "Hello again"
	post.Slug = "hello-again"
	post.CategoryID = nil
	post.Date = "changed"
	if err := db.PostRepo().UpdateContent(ctx, post); err != nil {
		t.Fatalf("UpdateContent() error = %v", err)
	}

	got, err := db.PostRepo().FindByID(ctx, post.ID)
	if err != nil {
		t.Fatalf("FindByID() error = %v", err)
	}
	if got.Title != "Hello again" || got.Slug != "hello-again" {
		t.Errorf("content not updated: %+v", got)
	}
	if got.CategoryName() != "Life" {
		t.Errorf("category changed to %q", got.CategoryName())
	}
	if got.Date != "January 02, 2024" {
		t.Errorf("date changed to %q", got.Date)
	}
}

func TestPostRepoDelete(t *testing.T) {
	db := testutil.SetupTestDB(t, testutil.TestConfig())
	ctx := context.Background()
	post := testutil.CreateTestPost(t, db, "Hello", "hello-world", "")

	found, err := db.PostRepo().Delete(ctx, post.ID)
	if err != nil || !found {
		t.Fatalf("Delete() = %v, %v; want true, nil", found, err)
	}
	found, err = db.PostRepo().Delete(ctx, post.ID)
	if err != nil || found {
		t.Fatalf("second Delete() = %v, %v; want false, nil", found, err)
	}
}

func TestCategoryRepoUpsertIsIdempotent(t *testing.T) {
	db := testutil.SetupTestDB(t, testutil.TestConfig())
	ctx := context.Background()

	first, err := db.CategoryRepo().Upsert(ctx, "Life")
	if err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	second, err := db.CategoryRepo().Upsert(ctx, "Life")
	if err != nil {
		t.Fatalf("second Upsert() error = %v", err)
	}
	if first.ID != second.ID {
		t.Errorf("Upsert() returned ids %d and %d for the same name", first.ID, second.ID)
	}

	missing, err := db.CategoryRepo().FindByName(ctx, "Travel")
	if err != nil || missing != nil {
		t.Errorf("FindByName(Travel) = %v, %v; want nil, nil", missing, err)
	}
}

func TestCategoryRepoConcurrentUpsert(t *testing.T) {
	db := testutil.SetupTestDB(t, testutil.TestConfig())
	ctx := context.Background()

	var wg sync.WaitGroup
	errCh := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := db.CategoryRepo().Upsert(ctx, "Life"); err != nil {
				errCh <- err
			}
		}()
	}
	wg.Wait()
	close(errCh)
	for err := range errCh {
		t.Errorf("Upsert() error = %v", err)
	}

	categories, err := db.CategoryRepo().FindAll(ctx)
	if err != nil {
		t.Fatalf("FindAll() error = %v", err)
	}
	if len(categories) != 1 {
		t.Errorf("got %d categories, want 1", len(categories))
	}
}

func TestTransactionRollsBack(t *testing.T) {
	db := testutil.SetupTestDB(t, testutil.TestConfig())
	ctx := context.Background()
	boom := errors.New("boom")

	err := db.Transaction(ctx, func(tx database.Database) error {
		if _, err := tx.CategoryRepo().Upsert(ctx, "Life"); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Transaction() error = %v, want boom", err)
	}

	c, err := db.CategoryRepo().FindByName(ctx, "Life")
	if err != nil {
		t.Fatalf("FindByName() error = %v", err)
	}
	if c != nil {
		t.Error("category should not survive a rolled back transaction")
	}
}

func TestPing(t *testing.T) {
	db := testutil.SetupTestDB(t, testutil.TestConfig())
	if err := db.Ping(context.Background()); err != nil {
		t.Errorf("Ping() error = %v", err)
	}
}
