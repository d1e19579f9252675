package api

import (
	"html/template"
	"time"

	"github.com/rs/zerolog"

	"github.com/rpupo63/words-blog/config"
	"github.com/rpupo63/words-blog/database"
	"github.com/rpupo63/words-blog/services"
)

// initializeHandlers creates and returns all handlers organized in a routeHandlers struct
func initializeHandlers(cfg config.Config, db database.Database, pages map[string]*template.Template, sessions *sessionStore, startupTime time.Time) *routeHandlers {
	responder := func(logger zerolog.Logger) Responder {
		return NewResponder(logger, pages, sessions)
	}

	return &routeHandlers{
		pageHandler: newPageHandler(responder, db, startupTime),
		authHandler: newAuthHandler(responder, cfg.AdminPassword),
		postHandler: newPostHandler(responder, services.NewPostService(db)),
	}
}
