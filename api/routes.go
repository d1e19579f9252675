package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// setupRoutes registers every page. Post management is limited to the admin.
func setupRoutes(r chi.Router, handlers *routeHandlers, auth Authenticator) {
	pages := handlers.pageHandler
	posts := handlers.postHandler
	login := handlers.authHandler

	r.NotFound(pages.notFound())
	r.MethodNotAllowed(pages.methodNotAllowed())

	r.Get("/", pages.static("index", ""))
	r.Get("/home", pages.static("home", "Home"))
	r.Get("/pictures", pages.static("pictures", "Pictures"))
	r.Get("/point_shoot", pages.static("point_shoot", "Point & Shoot"))
	r.Get("/healthz", pages.healthz())

	r.Get("/words", posts.listPosts())
	r.Get("/post/{slug}", posts.showPost())

	for _, path := range []string{"/login", "/logout", "/create"} {
		r.Handle(path, http.HandlerFunc(addTrailingSlash))
	}

	r.Get("/login/", login.loginForm())
	r.Post("/login/", login.login())
	r.Get("/logout/", login.logoutConfirm())
	r.Post("/logout/", login.logout())

	// Authenticated routes
	r.Group(func(r chi.Router) {
		r.Use(requireLogin(auth))

		r.Get("/create/", posts.createForm())
		r.Post("/create/", posts.createPost())
		r.Get("/edit-post/{postID}", posts.editForm())
		r.Post("/edit-post/{postID}", posts.editPost())
		r.Get("/delete/{postID}", posts.deletePost())
	})
}
