// Package forms decodes and validates the HTML forms the site accepts.
package forms

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/form/v4"
	"github.com/go-playground/validator/v10"

	"github.com/rpupo63/words-blog/errs"
)

// FieldErrors maps a form field name to the message shown next to it.
type FieldErrors map[string]string

func (fe FieldErrors) Any() bool { return len(fe) > 0 }

func (fe FieldErrors) Error() string {
	parts := make([]string, 0, len(fe))
	for field, msg := range fe {
		parts = append(parts, field+": "+msg)
	}
	return strings.Join(parts, "; ")
}

// LoginForm is the admin login form.
type LoginForm struct {
	Password string `form:"password" validate:"required,min=8,max=30"`
	Next     string `form:"next"`
}

// PostForm is the create and edit form for a post. Category is ignored on edit.
type PostForm struct {
	Title    string `form:"title" validate:"required,max=250"`
	Subtitle string `form:"subtitle" validate:"required,max=250"`
	Author   string `form:"author" validate:"required,max=250"`
	Body     string `form:"body" validate:"required"`
	Slug     string `form:"slug" validate:"omitempty,max=250"`
	Category string `form:"category" validate:"omitempty,max=250"`
}

// Normalize trims surrounding whitespace from every field.
func (f *PostForm) Normalize() {
	f.Title = strings.TrimSpace(f.Title)
	f.Body = strings.TrimSpace(f.Body)
	f.Subtitle = strings.TrimSpace(f.Subtitle)
	f.Author = strings.TrimSpace(f.Author)
	f.Slug = strings.TrimSpace(f.Slug)
	f.Category = strings.TrimSpace(f.Category)
}

// messages overrides the generic message for a field.
var messages = map[string]string{
	"password": "please use a password between 8-30 characters",
}

var (
	decoder  = form.NewDecoder()
	validate = newValidator()
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Decode parses the request body into dst.
func Decode(r *http.Request, dst any) error {
	if err := r.ParseForm(); err != nil {
		return errs.NewMalformedPayloadError("form", err)
	}
	if err := decoder.Decode(dst, r.PostForm); err != nil {
		return errs.NewMalformedPayloadError("form", err)
	}
	return nil
}

// Validate checks v against its validate tags. It returns nil when v is valid.
func Validate(v any) FieldErrors {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return FieldErrors{"": err.Error()}
	}

	fe := make(FieldErrors, len(verrs))
	for _, e := range verrs {
		field := e.Field()
		if _, seen := fe[field]; seen {
			continue
		}
		fe[field] = message(field, e)
	}
	return fe
}

func message(field string, e validator.FieldError) string {
	if msg, ok := messages[field]; ok {
		return msg
	}
	switch e.Tag() {
	case "required":
		return "this field is required"
	case "max":
		return fmt.Sprintf("must be at most %s characters", e.Param())
	case "min":
		return fmt.Sprintf("must be at least %s characters", e.Param())
	default:
		return "is invalid"
	}
}
