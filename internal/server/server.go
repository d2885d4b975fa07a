// Package server wires the scraper into the HTTP surface: JSON API
// routes, the browser-facing embed route, and middleware.
package server

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"anistream/internal/cache"
	"anistream/internal/config"
	"anistream/internal/scraper"
)

// Server owns the router and its collaborators.
type Server struct {
	cfg     *config.Config
	scraper *scraper.Scraper
	cache   *cache.Cache
	router  *mux.Router
	started time.Time
}

// New builds the server and registers all routes.
func New(cfg *config.Config, sc *scraper.Scraper, store *cache.Cache) *Server {
	s := &Server{
		cfg:     cfg,
		scraper: sc,
		cache:   store,
		router:  mux.NewRouter(),
		started: time.Now(),
	}
	s.setupRoutes()
	return s
}

// Handler returns the root http.Handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupRoutes() {
	s.router.Use(loggingMiddleware)
	s.router.Use(enableCORS)

	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/home", s.handleHome).Methods("GET")
	api.HandleFunc("/search", s.handleSearch).Methods("GET")
	api.HandleFunc("/suggestions", s.handleSuggestions).Methods("GET")
	api.HandleFunc("/content/{id}", s.handleContent).Methods("GET")
	api.HandleFunc("/category/{slug}", s.handleCategory).Methods("GET")
	api.HandleFunc("/categories", s.handleCategories).Methods("GET")
	api.HandleFunc("/episode/{id}", s.handleEpisode).Methods("GET")

	s.router.HandleFunc("/embed/{id}", s.handleEmbed).Methods("GET")
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
}
