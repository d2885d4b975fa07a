package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"anistream/internal/models"
	"anistream/internal/player"
	"anistream/internal/scraper"
	"anistream/internal/util"
)

type envelope map[string]interface{}

func writeJSON(w http.ResponseWriter, status int, payload envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeSuccess(w http.ResponseWriter, fields envelope) {
	fields["success"] = true
	writeJSON(w, http.StatusOK, fields)
}

// writeError maps the scraper error taxonomy onto HTTP status codes for
// the JSON endpoints.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, scraper.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, scraper.ErrNoSources):
		status = http.StatusNotFound
	case errors.Is(err, scraper.ErrUpstreamTimeout):
		status = http.StatusGatewayTimeout
	case errors.Is(err, scraper.ErrAccessDenied):
		status = http.StatusBadGateway
	}
	if status == http.StatusInternalServerError {
		util.Error("request failed", "error", err)
	}
	writeJSON(w, status, envelope{"success": false, "error": err.Error()})
}

func pageParam(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

func typeParam(r *http.Request) models.ContentType {
	switch r.URL.Query().Get("type") {
	case "series":
		return models.TypeSeries
	case "movie":
		return models.TypeMovie
	case "cartoon":
		return models.TypeCartoon
	default:
		return models.TypeUnknown
	}
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	home, err := s.scraper.ScrapeHome(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, envelope{
		"featured":     home.Featured,
		"recentSeries": home.Series,
		"recentMovies": home.Movies,
	})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	keyword := r.URL.Query().Get("q")
	if keyword == "" {
		writeJSON(w, http.StatusBadRequest, envelope{"success": false, "error": "query parameter 'q' is required"})
		return
	}

	listing, err := s.scraper.ScrapeSearch(r.Context(), keyword, pageParam(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, envelope{
		"results":    listing.Cards,
		"pagination": listing.Pagination,
	})
}

func (s *Server) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	keyword := r.URL.Query().Get("q")
	if keyword == "" {
		writeJSON(w, http.StatusBadRequest, envelope{"success": false, "error": "query parameter 'q' is required"})
		return
	}

	cards, err := s.scraper.ScrapeSuggestions(r.Context(), keyword)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, envelope{"suggestions": cards})
}

func (s *Server) handleContent(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	detail, err := s.scraper.ScrapeDetail(r.Context(), id, typeParam(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, envelope{"content": detail})
}

func (s *Server) handleCategory(w http.ResponseWriter, r *http.Request) {
	slug := mux.Vars(r)["slug"]

	listing, err := s.scraper.ScrapeCategory(r.Context(), slug, pageParam(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, envelope{
		"category":   slug,
		"results":    listing.Cards,
		"pagination": listing.Pagination,
	})
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.scraper.ScrapeCategories(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, envelope{"categories": categories})
}

func (s *Server) handleEpisode(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	streaming, err := s.scraper.ResolveEpisodeStreaming(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, envelope{"episode": streaming})
}

// handleEmbed serves HTML, never JSON: the consumer is a browser iframe.
func (s *Server) handleEmbed(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	embedURL, err := s.scraper.ResolveEmbedURL(r.Context(), id, typeParam(r))
	if err != nil {
		var raceErr *scraper.RaceError
		switch {
		case errors.Is(err, scraper.ErrNotFound), errors.Is(err, scraper.ErrNoSources):
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(player.NotFoundPage()))
		case errors.Is(err, scraper.ErrUpstreamTimeout):
			w.WriteHeader(http.StatusGatewayTimeout)
			_, _ = w.Write([]byte(player.MaintenancePage()))
		case errors.As(err, &raceErr):
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte(player.ErrorPage("None of the available video sources are responding right now.")))
		default:
			util.Error("embed resolution failed", "id", id, "error", err)
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(player.ErrorPage("")))
		}
		return
	}

	_, _ = w.Write([]byte(player.GenerateEmbed(embedURL)))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, envelope{
		"uptime":    time.Since(s.started).String(),
		"cacheSize": s.cache.Len(),
		"upstream":  s.cfg.BaseURL,
	})
}
