package database

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/rpupo63/words-blog/errs"
	"github.com/rpupo63/words-blog/models"
)

// contentColumns are the columns an edit may change. ID, category and
// publish date are fixed once a post exists.
var contentColumns = []string{"title", "subtitle", "author", "body", "slug"}

type PostRepo struct {
	db *gorm.DB
}

func NewPostRepo(db *gorm.DB) *PostRepo {
	return &PostRepo{db}
}

// FindAll returns every post with its category, oldest first.
func (r *PostRepo) FindAll(ctx context.Context) ([]*models.Post, error) {
	var posts []*models.Post
	err := r.db.WithContext(ctx).Preload("Category").Order("id").Find(&posts).Error
	return posts, err
}

// FindByID returns the post with the given id or a 404 ApiErr.
func (r *PostRepo) FindByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := r.db.WithContext(ctx).Preload("Category").First(&post, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.NewNotFound("post")
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// FindBySlug returns the post with the given slug or a 404 ApiErr.
func (r *PostRepo) FindBySlug(ctx context.Context, slug string) (*models.Post, error) {
	var post models.Post
	err := r.db.WithContext(ctx).Preload("Category").Where("slug = ?", slug).First(&post).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.NewNotFound("post")
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// Add inserts a new post. The category row must already exist.
func (r *PostRepo) Add(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Omit("Category").Create(post).Error
}

// UpdateContent writes the editable columns of post.
func (r *PostRepo) UpdateContent(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Model(post).Select(contentColumns).Updates(post).Error
}

// Delete removes a post by id and reports whether a row was removed.
func (r *PostRepo) Delete(ctx context.Context, id uint) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&models.Post{}, id)
	return res.RowsAffected > 0, res.Error
}

// FindConflictField returns "title" or "slug" when another post already
// uses that value, checked in that order. excludeID is the post being
// edited, or 0 for a new post. It returns "" when neither collides.
func (r *PostRepo) FindConflictField(ctx context.Context, title, slug string, excludeID uint) (string, error) {
	checks := []struct {
		field string
		value string
	}{
		{"title", title},
		{"slug", slug},
	}

	for _, c := range checks {
		var count int64
		err := r.db.WithContext(ctx).Model(&models.Post{}).
			Where(c.field+" = ? AND id <> ?", c.value, excludeID).
			Count(&count).Error
		if err != nil {
			return "", err
		}
		if count > 0 {
			return c.field, nil
		}
	}
	return "", nil
}
