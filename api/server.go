package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/words-blog/config"
	"github.com/rpupo63/words-blog/database"
)

type Server struct {
	*http.Server
	startupTime time.Time
}

func NewServer(cfg config.Config, db database.Database) (Server, error) {
	address := fmt.Sprintf("0.0.0.0:%s", cfg.Port) // Bind to 0.0.0.0 for external access

	// Capture startup time
	startupTime := time.Now()

	router, err := newRouter(cfg, db, withStartupTime(startupTime))
	if err != nil {
		return Server{}, err
	}

	server := &http.Server{
		Addr:         address,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,  // Timeout for reading the entire request
		WriteTimeout: cfg.WriteTimeout, // Timeout for writing the response
		IdleTimeout:  cfg.IdleTimeout,  // Timeout for idle connections
	}

	return Server{server, startupTime}, nil
}

type router struct {
	startupTime time.Time
	sessions    *sessionStore
}

func withStartupTime(startupTime time.Time) func(*router) {
	return func(r *router) {
		r.startupTime = startupTime
	}
}

func withSessionStore(sessions *sessionStore) func(*router) {
	return func(r *router) {
		r.sessions = sessions
	}
}

func newRouter(cfg config.Config, db database.Database, opts ...func(*router)) (*chi.Mux, error) {
	router := router{startupTime: time.Now()}
	for _, opt := range opts {
		opt(&router)
	}
	if router.sessions == nil {
		router.sessions = newSessionStore(cfg)
	}

	pages, err := parsePages()
	if err != nil {
		return nil, err
	}

	chiRouter := chi.NewRouter()
	chiRouter.Use(middleware.RequestID)
	chiRouter.Use(middleware.RealIP)
	chiRouter.Use(requestLogger(log.With().Str("component", "http").Logger()))
	chiRouter.Use(LogInternalServerErrors)

	if len(cfg.AcceptedOrigins) > 0 {
		chiRouter.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.AcceptedOrigins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	chiRouter.Use(router.sessions.middleware)

	handlers := initializeHandlers(cfg, db, pages, router.sessions, router.startupTime)
	setupRoutes(chiRouter, handlers, router.sessions)

	return chiRouter, nil
}

func (s Server) Start() error {
	log.Info().Msgf("Server started on: %s", s.Addr)
	return s.ListenAndServe()
}

func (s Server) ShutdownGracefully(timeout time.Duration) error {
	log.Info().Msg("Gracefully shutting down...")

	gracefulCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := s.Shutdown(gracefulCtx); err != nil {
		log.Error().Msgf("Error shutting down the server: %v", err)
		return err
	}
	log.Info().Msg("HttpServer gracefully shut down")
	return nil
}
