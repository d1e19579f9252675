package services

import (
	"context"
	"strings"
	"time"

	"github.com/gosimple/slug"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/words-blog/database"
	"github.com/rpupo63/words-blog/errs"
	"github.com/rpupo63/words-blog/models"
)

// DateLayout is the format of a post's publish date, e.g. "March 05, 2024".
const DateLayout = "January 02, 2006"

const maxSlugLength = 250

// PostInput is the validated content of a create or edit submission.
type PostInput struct {
	Title    string
	Subtitle string
	Author   string
	Body     string
	Slug     string
	Category string
}

// PostService owns every write to posts and categories.
type PostService struct {
	db     database.Database
	policy *bluemonday.Policy
	now    func() time.Time
	logger zerolog.Logger
}

func NewPostService(db database.Database) *PostService {
	return &PostService{
		db:     db,
		policy: bluemonday.UGCPolicy(),
		now:    time.Now,
		logger: log.With().Str("service", "posts").Logger(),
	}
}

// WithClock replaces the clock used to stamp publish dates.
func (s *PostService) WithClock(now func() time.Time) *PostService {
	s.now = now
	return s
}

// MakeSlug returns the URL-safe form of given, or of title when given is blank.
func MakeSlug(given, title string) string {
	source := given
	if strings.TrimSpace(source) == "" {
		source = title
	}
	out := slug.Make(source)
	if len(out) > maxSlugLength {
		out = strings.TrimRight(out[:maxSlugLength], "-")
	}
	return out
}

// SanitizeBody strips markup that is unsafe to render back to readers.
func (s *PostService) SanitizeBody(body string) string {
	return s.policy.Sanitize(body)
}

func (s *PostService) List(ctx context.Context) ([]*models.Post, error) {
	posts, err := s.db.PostRepo().FindAll(ctx)
	if err != nil {
		return nil, errs.NewDatabaseError("list", "posts", err)
	}
	return posts, nil
}

func (s *PostService) BySlug(ctx context.Context, postSlug string) (*models.Post, error) {
	post, err := s.db.PostRepo().FindBySlug(ctx, postSlug)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "post", err)
	}
	return post, nil
}

func (s *PostService) ByID(ctx context.Context, id uint) (*models.Post, error) {
	post, err := s.db.PostRepo().FindByID(ctx, id)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "post", err)
	}
	return post, nil
}

// Create stores a new post dated today. The category is created on first
// use; a blank category leaves the post uncategorized. The category upsert
// and the insert share one transaction, so a rejected post leaves no new
// category behind.
//
// Returns:
//   - a 409 ApiErr with Field "title" or "slug" when either is already taken
//   - a 400 ApiErr with Field "slug" when no slug can be derived
//   - a 400 ApiErr with Field "body" when nothing is left after sanitizing
func (s *PostService) Create(ctx context.Context, in PostInput) (*models.Post, error) {
	post := &models.Post{
		Title:    strings.TrimSpace(in.Title),
		Subtitle: strings.TrimSpace(in.Subtitle),
		Date:     s.now().Format(DateLayout),
		Body:     s.SanitizeBody(in.Body),
		Author:   strings.TrimSpace(in.Author),
		Slug:     MakeSlug(in.Slug, in.Title),
	}
	if err := checkContent(post); err != nil {
		return nil, err
	}

	err := s.db.Transaction(ctx, func(tx database.Database) error {
		if name := strings.TrimSpace(in.Category); name != "" {
			category, err := tx.CategoryRepo().Upsert(ctx, name)
			if err != nil {
				return err
			}
			post.CategoryID = &category.ID
			post.Category = category
		}
		return tx.PostRepo().Add(ctx, post)
	})
	if err != nil {
		return nil, s.saveError(ctx, "create", post, 0, err)
	}

	s.logger.Info().Uint("postId", post.ID).Str("slug", post.Slug).Msg("Post created")
	return post, nil
}

// Update overwrites the title, subtitle, author, body and slug of post id.
// Its id, category and publish date are left as they are.
func (s *PostService) Update(ctx context.Context, id uint, in PostInput) (*models.Post, error) {
	post, err := s.ByID(ctx, id)
	if err != nil {
		return nil, err
	}

	post.Title = strings.TrimSpace(in.Title)
	post.Subtitle = strings.TrimSpace(in.Subtitle)
	post.Author = strings.TrimSpace(in.Author)
	post.Body = s.SanitizeBody(in.Body)
	post.Slug = MakeSlug(in.Slug, in.Title)
	if err := checkContent(post); err != nil {
		return nil, err
	}

	if err := s.db.PostRepo().UpdateContent(ctx, post); err != nil {
		return nil, s.saveError(ctx, "update", post, id, err)
	}

	s.logger.Info().Uint("postId", post.ID).Str("slug", post.Slug).Msg("Post updated")
	return post, nil
}

// checkContent rejects posts whose body sanitized away to nothing or whose
// title yields no slug.
func checkContent(post *models.Post) error {
	if strings.TrimSpace(post.Body) == "" {
		return errs.NewInvalidFieldError("body", "the post has no content left after removing unsafe markup")
	}
	if post.Slug == "" {
		return errs.NewInvalidFieldError("slug", "could not derive a slug from the title")
	}
	return nil
}

// Categories lists every category by name, for suggesting one on the create form.
func (s *PostService) Categories(ctx context.Context) ([]*models.Category, error) {
	categories, err := s.db.CategoryRepo().FindAll(ctx)
	if err != nil {
		return nil, errs.NewDatabaseError("list", "categories", err)
	}
	return categories, nil
}

// Delete removes post id, or returns a 404 ApiErr when it does not exist.
func (s *PostService) Delete(ctx context.Context, id uint) error {
	found, err := s.db.PostRepo().Delete(ctx, id)
	if err != nil {
		return errs.NewDatabaseError("delete", "post", err)
	}
	if !found {
		return errs.NewNotFound("post")
	}
	s.logger.Info().Uint("postId", id).Msg("Post deleted")
	return nil
}

// saveError classifies a failed write. The conflicting field is looked up
// after the failed statement has been rolled back.
func (s *PostService) saveError(ctx context.Context, operation string, post *models.Post, excludeID uint, cause error) error {
	if !errs.IsDuplicateKey(cause) {
		return errs.NewDatabaseError(operation, "post", cause)
	}

	field, err := s.db.PostRepo().FindConflictField(ctx, post.Title, post.Slug, excludeID)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to find conflicting field")
	}
	if field == "" {
		return errs.NewDatabaseError(operation, "post", cause)
	}
	return errs.NewUniqueConstraintViolationError("post", field, cause)
}
