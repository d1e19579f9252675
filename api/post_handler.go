package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/words-blog/errs"
	"github.com/rpupo63/words-blog/forms"
	"github.com/rpupo63/words-blog/models"
	"github.com/rpupo63/words-blog/services"
)

type postHandler struct {
	responder Responder
	logger    zerolog.Logger
	posts     *services.PostService
}

func newPostHandler(responder func(zerolog.Logger) Responder, posts *services.PostService) postHandler {
	logger := log.With().Str("handlerName", "postHandler").Logger()
	return postHandler{
		responder: responder(logger),
		logger:    logger,
		posts:     posts,
	}
}

// listPosts renders every post, oldest first.
func (h postHandler) listPosts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		posts, err := h.posts.List(r.Context())
		if err != nil {
			h.responder.WriteError(w, r, err)
			return
		}
		h.responder.Render(w, r, http.StatusOK, "words", pageData{Title: "Words", Posts: posts})
	}
}

func (h postHandler) showPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		post, err := h.posts.BySlug(r.Context(), chi.URLParam(r, "slug"))
		if err != nil {
			h.responder.WriteError(w, r, err)
			return
		}
		h.responder.Render(w, r, http.StatusOK, "post", pageData{Title: post.Title, Post: post})
	}
}

func (h postHandler) createForm() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.responder.Render(w, r, http.StatusOK, "create", h.newPostPage(r, forms.PostForm{}, nil))
	}
}

func (h postHandler) createPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var form forms.PostForm
		if err := forms.Decode(r, &form); err != nil {
			h.responder.WriteError(w, r, err)
			return
		}
		form.Normalize()

		if fieldErrors := forms.Validate(form); fieldErrors.Any() {
			h.responder.Render(w, r, http.StatusBadRequest, "create", h.newPostPage(r, form, fieldErrors))
			return
		}

		post, err := h.posts.Create(r.Context(), postInput(form))
		if err != nil {
			if fieldErrors, status, ok := formError(err); ok {
				h.responder.Render(w, r, status, "create", h.newPostPage(r, form, fieldErrors))
				return
			}
			h.responder.WriteError(w, r, err)
			return
		}

		h.logger.Info().Uint("postId", post.ID).Msg("created post")
		h.responder.Redirect(w, r, "/words")
	}
}

func (h postHandler) editForm() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		post, err := h.findPost(r)
		if err != nil {
			h.responder.WriteError(w, r, err)
			return
		}

		form := forms.PostForm{
			Title:    post.Title,
			Subtitle: post.Subtitle,
			Author:   post.Author,
			Body:     post.Body,
			Slug:     post.Slug,
		}
		h.responder.Render(w, r, http.StatusOK, "create", editPostPage(post, form, nil))
	}
}

func (h postHandler) editPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		post, err := h.findPost(r)
		if err != nil {
			h.responder.WriteError(w, r, err)
			return
		}

		var form forms.PostForm
		if err := forms.Decode(r, &form); err != nil {
			h.responder.WriteError(w, r, err)
			return
		}
		form.Normalize()
		form.Category = ""

		if fieldErrors := forms.Validate(form); fieldErrors.Any() {
			h.responder.Render(w, r, http.StatusBadRequest, "create", editPostPage(post, form, fieldErrors))
			return
		}

		if _, err := h.posts.Update(r.Context(), post.ID, postInput(form)); err != nil {
			if fieldErrors, status, ok := formError(err); ok {
				h.responder.Render(w, r, status, "create", editPostPage(post, form, fieldErrors))
				return
			}
			h.responder.WriteError(w, r, err)
			return
		}

		h.responder.Redirect(w, r, "/words")
	}
}

func (h postHandler) deletePost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parsePostID(r)
		if err != nil {
			h.responder.WriteError(w, r, err)
			return
		}
		if err := h.posts.Delete(r.Context(), id); err != nil {
			h.responder.WriteError(w, r, err)
			return
		}
		h.responder.Redirect(w, r, "/words")
	}
}

func (h postHandler) findPost(r *http.Request) (*models.Post, error) {
	id, err := parsePostID(r)
	if err != nil {
		return nil, err
	}
	return h.posts.ByID(r.Context(), id)
}

// parsePostID reads the {postID} URL parameter. Anything that is not a
// positive integer names no post.
func parsePostID(r *http.Request) (uint, error) {
	id, err := strconv.ParseUint(chi.URLParam(r, "postID"), 10, 0)
	if err != nil || id == 0 {
		return 0, errs.NewNotFound("post")
	}
	return uint(id), nil
}

func postInput(form forms.PostForm) services.PostInput {
	return services.PostInput{
		Title:    form.Title,
		Subtitle: form.Subtitle,
		Author:   form.Author,
		Body:     form.Body,
		Slug:     form.Slug,
		Category: form.Category,
	}
}

// formError turns a rejected save that points at one form field into an
// inline error for that field.
func formError(err error) (forms.FieldErrors, int, bool) {
	var apiErr *errs.ApiErr
	if !errors.As(err, &apiErr) || apiErr.Field == "" {
		return nil, 0, false
	}

	switch {
	case errs.IsUniqueConstraintViolationError(err):
		message := fmt.Sprintf("a post with this %s already exists", apiErr.Field)
		return forms.FieldErrors{apiErr.Field: message}, apiErr.StatusCode, true
	case errs.IsInvalidFieldError(err):
		return forms.FieldErrors{apiErr.Field: apiErr.Details}, apiErr.StatusCode, true
	}
	return nil, 0, false
}

// newPostPage offers the existing categories as suggestions. A failed
// lookup only costs the suggestions.
func (h postHandler) newPostPage(r *http.Request, form forms.PostForm, fieldErrors forms.FieldErrors) pageData {
	categories, err := h.posts.Categories(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to list categories")
	}
	return pageData{
		Title:      "New post",
		Form:       form,
		Errors:     fieldErrors,
		Action:     "/create/",
		Categories: categories,
	}
}

func editPostPage(post *models.Post, form forms.PostForm, fieldErrors forms.FieldErrors) pageData {
	return pageData{
		Title:    "Edit post",
		Form:     form,
		Errors:   fieldErrors,
		Action:   fmt.Sprintf("/edit-post/%d", post.ID),
		IsEdit:   true,
		Category: post.CategoryName(),
		Post:     post,
	}
}
