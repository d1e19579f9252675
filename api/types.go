package api

import (
	"github.com/rpupo63/words-blog/forms"
	"github.com/rpupo63/words-blog/models"
)

// routeHandlers contains all the handlers for different route types
type routeHandlers struct {
	pageHandler pageHandler
	authHandler authHandler
	postHandler postHandler
}

// pageData is the value every page template is executed with.
type pageData struct {
	Title    string
	Path     string
	LoggedIn bool
	Flashes  []flash

	Form     any
	Errors   forms.FieldErrors
	Action   string
	IsEdit   bool
	Category string
	Next     string

	Categories []*models.Category

	Posts []*models.Post
	Post  *models.Post

	StatusCode int
	Message    string
}

// healthResponse is the body of GET /healthz.
type healthResponse struct {
	Status string `json:"status"`
	Uptime string `json:"uptime,omitempty"`
	Error  string `json:"error,omitempty"`
}
