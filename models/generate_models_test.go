package models_test

import (
	"testing"

	"github.com/rpupo63/words-blog/models"
	"github.com/rpupo63/words-blog/testutil"
)

func TestColumnMismatchReport(t *testing.T) {
	db := testutil.OpenTestDB(t, testutil.TestConfig())

	report, err := models.ColumnMismatchReport(db)
	if err != nil {
		t.Fatalf("ColumnMismatchReport() error = %v", err)
	}
	for table, cols := range report {
		if len(cols) != 0 {
			t.Errorf("fresh table %s reports unknown columns %v", table, cols)
		}
	}

	if err := db.Exec("ALTER TABLE posts ADD COLUMN post_url varchar(250)").Error; err != nil {
		t.Fatalf("alter table: %v", err)
	}

	report, err = models.ColumnMismatchReport(db)
	if err != nil {
		t.Fatalf("ColumnMismatchReport() error = %v", err)
	}
	if got := report["posts"]; len(got) != 1 || got[0] != "post_url" {
		t.Errorf(`report["posts"] = %v, want [post_url]`, got)
	}
	if got := report["categories"]; len(got) != 0 {
		t.Errorf(`report["categories"] = %v, want none`, got)
	}

	total, err := models.LogColumnMismatchReport(db)
	if err != nil {
		t.Fatalf("LogColumnMismatchReport() error = %v", err)
	}
	if total != 1 {
		t.Errorf("LogColumnMismatchReport() = %d, want 1", total)
	}
}

func TestPostCategoryName(t *testing.T) {
	var p models.Post
	if p.CategoryName() != "" {
		t.Error("uncategorized post should have an empty category name")
	}
	p.Category = &models.Category{Name: "Life"}
	if p.CategoryName() != "Life" {
		t.Errorf("CategoryName() = %q, want Life", p.CategoryName())
	}
}
